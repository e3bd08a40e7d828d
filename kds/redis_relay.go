package kds

import (
	"context"

	"github.com/go-redis/redis/v8"
	"github.com/yeremiapane/comanda-app/utils"
)

// RedisRelay fans hub messages out through a Redis channel so that every
// instance behind a load balancer reaches its own websocket clients.
type RedisRelay struct {
	client  *redis.Client
	channel string
}

func NewRedisRelay(client *redis.Client, channel string) *RedisRelay {
	return &RedisRelay{client: client, channel: channel}
}

func (r *RedisRelay) Forward(ctx context.Context, payload []byte) error {
	return r.client.Publish(ctx, r.channel, payload).Err()
}

// Run subscribes to the channel and delivers every message to hub until ctx
// is done. ready, when non-nil, is closed once the subscription is live.
func (r *RedisRelay) Run(ctx context.Context, hub *Hub, ready chan<- struct{}) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	if ready != nil {
		close(ready)
	}
	utils.InfoLogger.Infof("KDS relay subscribed to %s", r.channel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			hub.Deliver([]byte(msg.Payload))
		}
	}
}
