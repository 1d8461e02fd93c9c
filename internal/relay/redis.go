package relay

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "videochat.room."

// RedisBus routes publishes through a shared Redis pub/sub channel so
// that sessions attached to different service instances see the same
// room traffic. Local delivery happens only from the subscription
// loop, which also preserves per-room ordering across instances.
// Контракт для подписчиков тот же, что у MemoryBus.
type RedisBus struct {
	local *MemoryBus
	rdb   *redis.Client
}

func NewRedisBus(local *MemoryBus, rdb *redis.Client) *RedisBus {
	return &RedisBus{local: local, rdb: rdb}
}

func (b *RedisBus) Subscribe(roomID string, s Subscriber)   { b.local.Subscribe(roomID, s) }
func (b *RedisBus) Unsubscribe(roomID string, s Subscriber) { b.local.Unsubscribe(roomID, s) }
func (b *RedisBus) Connected(roomID string) int             { return b.local.Connected(roomID) }

func (b *RedisBus) Publish(ctx context.Context, roomID string, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		slog.Error("redis bus marshal", "room", roomID, "err", err)
		return
	}
	// best-effort, как и у локальной шины: ошибка публикации не
	// пробрасывается отправителю
	if err := b.rdb.Publish(ctx, channelPrefix+roomID, data).Err(); err != nil {
		slog.Error("redis bus publish", "room", roomID, "err", err)
	}
}

// Run качает события из Redis в локальную шину до отмены ctx.
func (b *RedisBus) Run(ctx context.Context) {
	sub := b.rdb.PSubscribe(ctx, channelPrefix+"*")
	defer func() { _ = sub.Close() }()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			roomID := strings.TrimPrefix(msg.Channel, channelPrefix)
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				slog.Warn("redis bus bad payload", "room", roomID, "err", err)
				continue
			}
			b.local.Publish(ctx, roomID, ev)
		}
	}
}
