package domain

import (
	"maps"
	"time"
)

// HistoryEntry is one position in a session's history.
type HistoryEntry struct {
	URL   string         `json:"url"`
	Title string         `json:"title,omitempty"`
	State map[string]any `json:"state,omitempty"`
}

// State is the persisted snapshot of a navigation session.
type State struct {
	SessionID string `json:"session_id"`

	// History holds every entry; Index points at the current one.
	History []HistoryEntry `json:"history"`
	Index   int            `json:"index"`

	// Context holds application data attached to the session.
	Context map[string]any `json:"context,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// NewState creates an empty session state.
func NewState(sessionID string) *State {
	return &State{
		SessionID: sessionID,
		Index:     -1,
		Context:   make(map[string]any),
	}
}

// Current returns the entry at Index.
func (s *State) Current() (HistoryEntry, bool) {
	if s == nil || s.Index < 0 || s.Index >= len(s.History) {
		return HistoryEntry{}, false
	}
	return s.History[s.Index], true
}

// URL returns the current URL or "" for an empty history.
func (s *State) URL() string {
	e, _ := s.Current()
	return e.URL
}

// Clone returns a copy that shares no maps or slices with s.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := *s
	out.History = make([]HistoryEntry, len(s.History))
	for i, e := range s.History {
		e.State = maps.Clone(e.State)
		out.History[i] = e
	}
	out.Context = maps.Clone(s.Context)
	if out.Context == nil {
		out.Context = make(map[string]any)
	}
	return &out
}
