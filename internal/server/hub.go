package server

import (
	"sync"

	"github.com/tomaslau/focusonly/internal/model"
)

const subscriberBuffer = 32

// Hub fans status changes out to stream subscribers. Publish never blocks:
// a subscriber that falls behind loses updates rather than stalling tabs.
type Hub struct {
	mu   sync.Mutex
	subs map[chan model.Message]struct{}
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{subs: make(map[chan model.Message]struct{})}
}

// Publish implements tabs.Publisher
func (h *Hub) Publish(tabID int, status model.VerdictStatus) {
	badge := model.BadgeFor(status)
	msg := model.Message{Type: model.MsgStatusUpdate, TabID: tabID, Status: &status, Badge: &badge}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Subscribe registers a new listener. The returned func unsubscribes and
// closes the channel.
func (h *Hub) Subscribe() (<-chan model.Message, func()) {
	ch := make(chan model.Message, subscriberBuffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Len returns the number of subscribers
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
