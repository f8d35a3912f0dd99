package table

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lox/holdemtable/internal/game"
)

const (
	// DefaultBuffer is the per-subscriber event buffer.
	DefaultBuffer = 256

	allSeats = -2
)

// Subscription receives the events of one table visible to its viewer. C is
// closed when the subscription is closed or dropped for falling behind.
type Subscription struct {
	C <-chan game.Event

	c      chan game.Event
	seat   int
	player string
	hub    *Hub
	once   sync.Once
}

// Close stops delivery and closes C.
func (s *Subscription) Close() {
	s.hub.remove(s)
}

func (s *Subscription) viewer(seatOf func(string) int) int {
	if s.player != "" {
		if seat := seatOf(s.player); seat >= 0 {
			return seat
		}
		return game.Public
	}
	return s.seat
}

func (s *Subscription) visible(e game.Event, seat int) bool {
	return seat == allSeats || e.Visible(seat)
}

// Hub fans table events out to subscribers. Publish never blocks: a
// subscriber whose buffer is full is dropped.
type Hub struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	buffer int
	logger *log.Logger
}

// NewHub creates a hub with the given per-subscriber buffer.
func NewHub(buffer int, logger *log.Logger) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{
		subs:   make(map[*Subscription]struct{}),
		buffer: buffer,
		logger: logger.WithPrefix("hub"),
	}
}

// Subscribe returns public events plus the private events of seat. Pass
// game.Public for a spectator.
func (h *Hub) Subscribe(seat int) *Subscription {
	return h.add(&Subscription{seat: seat})
}

// SubscribePlayer follows player across seats: private events go to
// whichever seat the player holds when they are published.
func (h *Hub) SubscribePlayer(player string) *Subscription {
	return h.add(&Subscription{seat: game.Public, player: player})
}

// SubscribeAll returns every event, private ones included.
func (h *Hub) SubscribeAll() *Subscription {
	return h.add(&Subscription{seat: allSeats})
}

func (h *Hub) add(s *Subscription) *Subscription {
	s.c = make(chan game.Event, h.buffer)
	s.C = s.c
	s.hub = h
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	return s
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
	s.once.Do(func() { close(s.c) })
}

// Len returns the number of live subscriptions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Publish delivers events in order. seatOf resolves player subscriptions
// and may be nil when there are none.
func (h *Hub) Publish(events []game.Event, seatOf func(string) int) {
	if len(events) == 0 {
		return
	}
	h.mu.Lock()
	var dropped []*Subscription
	for s := range h.subs {
		seat := s.seat
		if s.player != "" && seatOf != nil {
			seat = s.viewer(seatOf)
		}
		for _, e := range events {
			if !s.visible(e, seat) {
				continue
			}
			select {
			case s.c <- e:
				continue
			default:
			}
			dropped = append(dropped, s)
			break
		}
	}
	for _, s := range dropped {
		delete(h.subs, s)
	}
	h.mu.Unlock()

	for _, s := range dropped {
		h.logger.Warn("Dropping slow subscriber", "seat", s.seat, "player", s.player)
		s.once.Do(func() { close(s.c) })
	}
}

// Close closes every subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := h.subs
	h.subs = make(map[*Subscription]struct{})
	h.mu.Unlock()
	for s := range subs {
		s.once.Do(func() { close(s.c) })
	}
}
