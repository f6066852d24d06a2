package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBroadcaster публикует уведомление о принятой ставке в канал
// "<prefix>:<user_id>", чтобы клиенты получали его без опроса /notifications.
type RedisBroadcaster struct {
	r      redis.UniversalClient
	prefix string
}

func NewRedisBroadcaster(r redis.UniversalClient, prefix string) *RedisBroadcaster {
	return &RedisBroadcaster{r: r, prefix: prefix}
}

// Connect поднимает клиент и проверяет соединение
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

func (b *RedisBroadcaster) Channel(userID int64) string {
	return fmt.Sprintf("%s:%d", b.prefix, userID)
}

// О новых ставках в канал покупателя не пишем
func (b *RedisBroadcaster) PublishBetPlaced(context.Context, BetPlaced) error { return nil }

func (b *RedisBroadcaster) PublishBetAccepted(ctx context.Context, e BetAccepted) error {
	e.TsUnixMs = time.Now().UnixMilli()
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return b.r.Publish(ctx, b.Channel(e.UserID), payload).Err()
}
