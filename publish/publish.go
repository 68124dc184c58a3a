// Package publish - Sends face detections to downstream consumers.
package publish

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nvr-ai/visioncore/common"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DefaultTopic is the topic faces are published on.
const DefaultTopic = "VisionCore/face_position"

// Backend names a transport.
type Backend string

const (
	// BackendMQTT publishes to an MQTT broker.
	BackendMQTT Backend = "mqtt"
	// BackendRedis publishes to a Redis channel.
	BackendRedis Backend = "redis"
	// BackendLog only logs faces.
	BackendLog Backend = "log"
)

// ErrUnknownBackend is returned for an unsupported backend.
var ErrUnknownBackend = errors.New("publish: unknown backend")

// Publisher delivers one face at a time.
type Publisher interface {
	Publish(ctx context.Context, face common.Face) error
	Close() error
}

// Config selects and configures the transport.
type Config struct {
	Backend Backend `json:"backend" yaml:"backend" mapstructure:"backend"`
	Topic   string  `json:"topic" yaml:"topic" mapstructure:"topic"`
	// Broker is the MQTT broker address, host:port.
	Broker   string `json:"broker" yaml:"broker" mapstructure:"broker"`
	ClientID string `json:"client_id" yaml:"client_id" mapstructure:"client_id"`
	QoS      byte   `json:"qos" yaml:"qos" mapstructure:"qos"`
	// RedisAddr is the Redis server address, host:port.
	RedisAddr     string        `json:"redis_addr" yaml:"redis_addr" mapstructure:"redis_addr"`
	RedisPassword string        `json:"redis_password" yaml:"redis_password" mapstructure:"redis_password"`
	RedisDB       int           `json:"redis_db" yaml:"redis_db" mapstructure:"redis_db"`
	Timeout       time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// DefaultConfig logs faces on DefaultTopic.
func DefaultConfig() Config {
	return Config{
		Backend:   BackendLog,
		Topic:     DefaultTopic,
		Broker:    "localhost:1883",
		ClientID:  "visioncore",
		RedisAddr: "localhost:6379",
		Timeout:   2 * time.Second,
	}
}

// New connects the configured backend.
func New(ctx context.Context, config Config, logger *zap.Logger) (Publisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Topic == "" {
		config.Topic = DefaultTopic
	}
	if config.Timeout <= 0 {
		config.Timeout = 2 * time.Second
	}

	switch config.Backend {
	case BackendMQTT:
		return DialMQTT(config, logger)
	case BackendRedis:
		return DialRedis(ctx, config, logger)
	case BackendLog, "":
		return NewLog(config.Topic, logger), nil
	default:
		return nil, errors.Wrapf(ErrUnknownBackend, "%q", config.Backend)
	}
}

// Payload encodes a face as its JSON record.
func Payload(face common.Face) ([]byte, error) {
	payload, err := json.Marshal(face.Record())
	if err != nil {
		return nil, errors.Wrap(err, "encoding face")
	}
	return payload, nil
}

// Log writes faces to a logger.
type Log struct {
	topic  string
	logger *zap.Logger
}

// NewLog creates a publisher that only logs.
func NewLog(topic string, logger *zap.Logger) *Log {
	return &Log{topic: topic, logger: logger}
}

// Publish logs face.
func (l *Log) Publish(_ context.Context, face common.Face) error {
	rec := face.Record()
	l.logger.Info("face",
		zap.String("topic", l.topic),
		zap.Float32s("bbox", rec.BBox[:]),
		zap.Float32s("center", rec.Center[:]),
		zap.Float32("score", rec.Score))
	return nil
}

// Close is a no-op.
func (l *Log) Close() error {
	return nil
}
