// internal/events/redis.go
package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisNotifier publishes status events on a redis pub/sub channel.
type RedisNotifier struct {
	client *redis.Client
	log    *zap.Logger
}

func NewRedisNotifier(client *redis.Client, log *zap.Logger) *RedisNotifier {
	return &RedisNotifier{client: client, log: log}
}

func (n *RedisNotifier) CampaignStatus(ctx context.Context, campaignID int, status string) error {
	data, err := json.Marshal(CampaignStatusEvent{CampaignID: campaignID, Status: status})
	if err != nil {
		return err
	}
	if err := n.client.Publish(ctx, CampaignStatusChannel, string(data)).Err(); err != nil {
		n.log.Error("failed to publish status event",
			zap.Int("campaign_id", campaignID),
			zap.String("status", status),
			zap.Error(err),
		)
		return err
	}
	return nil
}

var _ Notifier = (*RedisNotifier)(nil)
