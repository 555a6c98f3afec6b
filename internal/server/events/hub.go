// Package events fans board changes out to live subscribers.
package events

import (
	"sync"
)

type Kind string

const (
	WidgetCreated Kind = "widget_created"
	WidgetUpdated Kind = "widget_updated"
	WidgetDeleted Kind = "widget_deleted"
	BoardUpdated  Kind = "board_updated"
	// FeatureChanged reports a vote, comment, pin or image change.
	FeatureChanged Kind = "feature_changed"
	// Resync tells a subscriber it fell behind and must reload the board.
	Resync Kind = "resync"
)

type Event struct {
	BoardID  string `json:"boardId"`
	WidgetID string `json:"widgetId,omitempty"`
	Kind     Kind   `json:"kind"`
	Version  int64  `json:"version,omitempty"`
}

const DefaultBuffer = 16

// Hub is safe for concurrent use. Publish never blocks: a subscriber whose
// buffer is full loses its oldest event and receives Resync instead.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]map[*subscriber]struct{}
	buffer int
}

type subscriber struct {
	ch chan Event
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{subs: map[string]map[*subscriber]struct{}{}, buffer: buffer}
}

// Subscribe registers for events of boardID. Calling cancel unregisters and
// closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe(boardID string) (<-chan Event, func()) {
	s := &subscriber{ch: make(chan Event, h.buffer)}

	h.mu.Lock()
	set, ok := h.subs[boardID]
	if !ok {
		set = map[*subscriber]struct{}{}
		h.subs[boardID] = set
	}
	set[s] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if set, ok := h.subs[boardID]; ok {
				delete(set, s)
				if len(set) == 0 {
					delete(h.subs, boardID)
				}
			}
			close(s.ch)
		})
	}
	return s.ch, cancel
}

func (h *Hub) Publish(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for s := range h.subs[e.BoardID] {
		select {
		case s.ch <- e:
		default:
			select {
			case <-s.ch:
			default:
			}
			s.ch <- Event{BoardID: e.BoardID, Kind: Resync}
		}
	}
}

// Subscribers returns the number of live subscriptions on boardID.
func (h *Hub) Subscribers(boardID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[boardID])
}
