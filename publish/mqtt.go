package publish

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/nvr-ai/visioncore/common"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// mqttClient is the part of mqtt.Client the publisher uses.
type mqttClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTT publishes faces to an MQTT topic.
type MQTT struct {
	client  mqttClient
	topic   string
	qos     byte
	timeout time.Duration
	logger  *zap.Logger

	published atomic.Uint64
	failed    atomic.Uint64
}

// DialMQTT connects to config.Broker with automatic reconnects.
func DialMQTT(config Config, logger *zap.Logger) (*MQTT, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", config.Broker))
	opts.SetClientID(config.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.OnConnect = func(mqtt.Client) {
		logger.Info("mqtt connected", zap.String("broker", config.Broker))
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", zap.String("broker", config.Broker), zap.Error(err))
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(5 * time.Second) {
		return nil, errors.Errorf("mqtt connection to %s timed out", config.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, errors.Wrapf(err, "connecting to %s", config.Broker)
	}

	return newMQTT(client, config, logger), nil
}

func newMQTT(client mqttClient, config Config, logger *zap.Logger) *MQTT {
	return &MQTT{
		client:  client,
		topic:   config.Topic,
		qos:     config.QoS,
		timeout: config.Timeout,
		logger:  logger,
	}
}

// Publish sends face as JSON and waits for the broker up to the configured timeout.
func (m *MQTT) Publish(ctx context.Context, face common.Face) error {
	payload, err := Payload(face)
	if err != nil {
		return err
	}

	timeout := m.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
	}

	token := m.client.Publish(m.topic, m.qos, false, payload)
	if !token.WaitTimeout(timeout) {
		m.failed.Add(1)
		return errors.Errorf("publish to %s timed out", m.topic)
	}
	if err := token.Error(); err != nil {
		m.failed.Add(1)
		return errors.Wrapf(err, "publishing to %s", m.topic)
	}

	m.published.Add(1)
	m.logger.Debug("face published", zap.String("topic", m.topic), zap.Int("size", len(payload)))
	return nil
}

// Stats returns the published and failed message counts.
func (m *MQTT) Stats() (published, failed uint64) {
	return m.published.Load(), m.failed.Load()
}

// Close disconnects with a short grace period.
func (m *MQTT) Close() error {
	m.client.Disconnect(250)
	return nil
}
