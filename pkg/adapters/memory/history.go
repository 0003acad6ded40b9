package memory

import (
	"sync"
	"time"

	"github.com/aretw0/waypoint/pkg/domain"
)

// History implements ports.Location with an in-memory history stack. Back,
// Forward and Go publish popstate events the way a browser does; Visit
// simulates the user editing the URL.
type History struct {
	mu      sync.Mutex
	entries []domain.HistoryEntry
	index   int
	subs    map[int]func(domain.LocationChangeEvent)
	nextSub int
}

// NewHistory creates a history with a single entry for initial ("/" if empty).
func NewHistory(initial string) *History {
	if initial == "" {
		initial = "/"
	}
	return &History{
		entries: []domain.HistoryEntry{{URL: initial}},
		subs:    make(map[int]func(domain.LocationChangeEvent)),
	}
}

// FromState rebuilds a history from a persisted session state.
func FromState(st *domain.State) *History {
	h := NewHistory("")
	h.Restore(st)
	return h
}

// Path returns the URL of the current entry.
func (h *History) Path() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.index].URL
}

// Title returns the title of the current entry.
func (h *History) Title() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.index].Title
}

// PushState drops every forward entry and appends a new one.
func (h *History) PushState(state map[string]any, title, url string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries[:h.index+1], domain.HistoryEntry{URL: url, Title: title, State: state})
	h.index++
	return nil
}

// ReplaceState overwrites the current entry.
func (h *History) ReplaceState(state map[string]any, title, url string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[h.index] = domain.HistoryEntry{URL: url, Title: title, State: state}
	return nil
}

// Subscribe registers fn for popstate and hashchange events.
func (h *History) Subscribe(fn func(domain.LocationChangeEvent)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextSub
	h.nextSub++
	h.subs[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
	}
}

// Back moves one entry back. It reports false at the first entry.
func (h *History) Back() bool { return h.Go(-1) }

// Forward moves one entry forward. It reports false at the last entry.
func (h *History) Forward() bool { return h.Go(1) }

// Go moves delta entries and publishes a popstate event. Out of range moves
// are ignored.
func (h *History) Go(delta int) bool {
	h.mu.Lock()
	target := h.index + delta
	if delta == 0 || target < 0 || target >= len(h.entries) {
		h.mu.Unlock()
		return false
	}
	h.index = target
	e := h.entries[target]
	subs := h.subscribers()
	h.mu.Unlock()

	publish(subs, domain.LocationChangeEvent{URL: e.URL, Trigger: domain.TriggerPopstate, State: e.State})
	return true
}

// Visit appends url as if typed into the address bar and publishes a
// hashchange event.
func (h *History) Visit(url string) {
	h.mu.Lock()
	h.entries = append(h.entries[:h.index+1], domain.HistoryEntry{URL: url})
	h.index++
	subs := h.subscribers()
	h.mu.Unlock()

	publish(subs, domain.LocationChangeEvent{URL: url, Trigger: domain.TriggerHashchange})
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Index returns the position of the current entry.
func (h *History) Index() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.index
}

// Snapshot captures the stack as a session state.
func (h *History) Snapshot(sessionID string) *domain.State {
	h.mu.Lock()
	defer h.mu.Unlock()
	st := domain.NewState(sessionID)
	st.History = append(st.History, h.entries...)
	st.Index = h.index
	st.UpdatedAt = time.Now()
	return st.Clone()
}

// Restore replaces the stack with the entries of st. Subscribers are not
// notified.
func (h *History) Restore(st *domain.State) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if st == nil || len(st.History) == 0 {
		h.entries = []domain.HistoryEntry{{URL: "/"}}
		h.index = 0
		return
	}
	c := st.Clone()
	h.entries = c.History
	h.index = min(max(c.Index, 0), len(c.History)-1)
}

func (h *History) subscribers() []func(domain.LocationChangeEvent) {
	out := make([]func(domain.LocationChangeEvent), 0, len(h.subs))
	for i := 0; i < h.nextSub; i++ {
		if fn, ok := h.subs[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func publish(subs []func(domain.LocationChangeEvent), e domain.LocationChangeEvent) {
	for _, fn := range subs {
		fn(e)
	}
}
