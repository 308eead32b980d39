package editor

import (
	"maps"
	"slices"

	"github.com/dshills/botflow/pkg/flow"
)

// MouseButton identifies the pressed pointer button.
type MouseButton int

const (
	ButtonPrimary MouseButton = iota
	ButtonMiddle
	ButtonSecondary
)

// PointerEvent is a pointer press, move or release in canvas units.
type PointerEvent struct {
	Position flow.Position
	Button   MouseButton
}

// PointerBus fans document-level pointer moves and releases out to the
// gestures currently subscribed. Nothing listens unless a gesture is in
// progress.
type PointerBus struct {
	subs map[int]*Subscription
	next int
}

// NewPointerBus returns a bus with no listeners.
func NewPointerBus() *PointerBus {
	return &PointerBus{subs: make(map[int]*Subscription)}
}

// Subscription is a live move/up listener pair. It stays attached until
// Dispose is called.
type Subscription struct {
	bus    *PointerBus
	id     int
	onMove func(PointerEvent)
	onUp   func(PointerEvent)
}

// Subscribe attaches a move and a release listener.
func (b *PointerBus) Subscribe(onMove, onUp func(PointerEvent)) *Subscription {
	s := &Subscription{bus: b, id: b.next, onMove: onMove, onUp: onUp}
	b.next++
	b.subs[s.id] = s
	return s
}

// Dispose detaches the listeners. Calling it more than once is harmless.
func (s *Subscription) Dispose() {
	if s == nil || s.bus == nil {
		return
	}
	delete(s.bus.subs, s.id)
	s.bus = nil
}

// Active reports whether the subscription is still attached.
func (s *Subscription) Active() bool {
	return s != nil && s.bus != nil
}

// Len returns the number of attached subscriptions.
func (b *PointerBus) Len() int {
	return len(b.subs)
}

// Move delivers a pointer move to every subscription.
func (b *PointerBus) Move(ev PointerEvent) {
	for _, s := range b.snapshot() {
		if s.Active() && s.onMove != nil {
			s.onMove(ev)
		}
	}
}

// Up delivers a pointer release to every subscription.
func (b *PointerBus) Up(ev PointerEvent) {
	for _, s := range b.snapshot() {
		if s.Active() && s.onUp != nil {
			s.onUp(ev)
		}
	}
}

// snapshot orders subscriptions by creation so delivery is deterministic
// and handlers may dispose themselves mid-delivery.
func (b *PointerBus) snapshot() []*Subscription {
	ids := slices.Sorted(maps.Keys(b.subs))
	out := make([]*Subscription, 0, len(ids))
	for _, id := range ids {
		out = append(out, b.subs[id])
	}
	return out
}
