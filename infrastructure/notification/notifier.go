package notification

import (
	"context"

	"github.com/redis/go-redis/v9"

	"tab-sweeper/infrastructure/logger"
)

// RedisNotifier publishes sweep outcomes to a Redis PUB/SUB channel so a
// desktop listener (or anything else) can surface them. Delivery is
// best-effort: publish failures are logged and swallowed.
type RedisNotifier struct {
	client  *redis.Client
	channel string
}

func NewRedisNotifier(client *redis.Client, channel string) *RedisNotifier {
	return &RedisNotifier{client: client, channel: channel}
}

func (n *RedisNotifier) Notify(ctx context.Context, message string) {
	if err := n.client.Publish(ctx, n.channel, message).Err(); err != nil {
		logger.GetLogger().
			WithField("channel", n.channel).
			WithField("error", err).
			Warn("Failed to publish notification")
		return
	}
	logger.GetLogger().WithField("message", message).Info("Notification published")
}

// LogNotifier is the fallback when Redis is not configured: the notification
// only lands in the service log.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (LogNotifier) Notify(ctx context.Context, message string) {
	logger.GetLogger().WithField("message", message).Info("Notification")
}
