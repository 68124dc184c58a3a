package publish

import (
	"context"
	"time"

	"github.com/nvr-ai/visioncore/common"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// redisClient is the part of redis.Client the publisher uses.
type redisClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Close() error
}

// Redis publishes faces to a Redis channel.
type Redis struct {
	client  redisClient
	channel string
	timeout time.Duration
	logger  *zap.Logger
}

// DialRedis connects to config.RedisAddr and checks the connection.
func DialRedis(ctx context.Context, config Config, logger *zap.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         config.RedisAddr,
		Password:     config.RedisPassword,
		DB:           config.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrapf(err, "connecting to redis %s", config.RedisAddr)
	}

	logger.Info("redis connected", zap.String("addr", config.RedisAddr), zap.Int("db", config.RedisDB))
	return newRedis(client, config, logger), nil
}

func newRedis(client redisClient, config Config, logger *zap.Logger) *Redis {
	return &Redis{client: client, channel: config.Topic, timeout: config.Timeout, logger: logger}
}

// Publish sends face as JSON to the channel.
func (r *Redis) Publish(ctx context.Context, face common.Face) error {
	payload, err := Payload(face)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	receivers, err := r.client.Publish(ctx, r.channel, payload).Result()
	if err != nil {
		return errors.Wrapf(err, "publishing to %s", r.channel)
	}
	r.logger.Debug("face published", zap.String("channel", r.channel), zap.Int64("receivers", receivers))
	return nil
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.client.Close()
}
