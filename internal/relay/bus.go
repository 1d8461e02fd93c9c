package relay

import (
	"context"
	"log/slog"
	"sync"
)

// Subscriber is one live connection session. Deliver must not block:
// it reports false when the subscriber's outbound queue is full and
// the event was dropped for that subscriber only.
type Subscriber interface {
	Deliver(ev Event) bool
	User() string
}

// Bus fans events out to every subscriber of a room key. Delivery is
// best-effort, at-most-once per subscriber, with no durability and no
// acknowledgement back to the publisher. Events published to the same
// room are observed by each subscriber in publish order.
type Bus interface {
	Subscribe(roomID string, s Subscriber)
	Unsubscribe(roomID string, s Subscriber)
	Publish(ctx context.Context, roomID string, ev Event)
	// Connected reports the number of live subscribers in a room —
	// источник истины для живого presence.
	Connected(roomID string) int
}

// group — подписчики одной комнаты. pubMu сериализует publish внутри
// комнаты (иначе два конкурентных publish могли бы дойти до разных
// подписчиков в разном порядке); publish в несвязанных комнатах идут
// параллельно.
type group struct {
	pubMu sync.Mutex
	subs  map[Subscriber]struct{}
}

type MemoryBus struct {
	mu    sync.RWMutex // только структура карты; запись subs — под Lock
	rooms map[string]*group
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{rooms: make(map[string]*group)}
}

func (b *MemoryBus) Subscribe(roomID string, s Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	g, ok := b.rooms[roomID]
	if !ok {
		g = &group{subs: make(map[Subscriber]struct{})}
		b.rooms[roomID] = g
	}
	g.subs[s] = struct{}{}
}

func (b *MemoryBus) Unsubscribe(roomID string, s Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	g, ok := b.rooms[roomID]
	if !ok {
		return
	}
	delete(g.subs, s)
	if len(g.subs) == 0 {
		delete(b.rooms, roomID)
	}
}

// Publish доставляет событие всем подписчикам комнаты, включая
// отправителя. Переполненная очередь подписчика — drop только для него.
func (b *MemoryBus) Publish(_ context.Context, roomID string, ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	g, ok := b.rooms[roomID]
	if !ok {
		return
	}

	g.pubMu.Lock()
	defer g.pubMu.Unlock()
	for s := range g.subs {
		if !s.Deliver(ev) {
			slog.Warn("bus delivery dropped", "room", roomID, "type", ev.Type, "subscriber", s.User())
		}
	}
}

func (b *MemoryBus) Connected(roomID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	g, ok := b.rooms[roomID]
	if !ok {
		return 0
	}
	return len(g.subs)
}
