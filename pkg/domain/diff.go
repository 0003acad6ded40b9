package domain

import (
	"reflect"
)

// StateDiff represents the changes between two session states.
// It is designed to be serialized to JSON for partial updates on the client.
type StateDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	// URL is set when the current entry moved to a different URL.
	URL *string `json:"url,omitempty"`

	// Index is set when the history cursor moved.
	Index *int `json:"index,omitempty"`

	// Context contains only changed, added or deleted keys.
	// For deletions, the key is present with a nil value.
	Context map[string]any `json:"context,omitempty"`

	// History is set when entries were appended or the stack was rewritten.
	History *HistoryDelta `json:"history,omitempty"`
}

// HistoryDelta represents changes to the history stack.
// Truncated counts entries dropped from the end before Appended was added,
// which is what a push after going back does.
type HistoryDelta struct {
	Truncated int            `json:"truncated,omitempty"`
	Appended  []HistoryEntry `json:"appended,omitempty"`
	Replaced  *HistoryEntry  `json:"replaced,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
// It returns nil when nothing changed.
func Diff(oldState, newState *State) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{
		SessionID: newState.SessionID,
	}

	newURL := newState.URL()
	if oldState == nil || oldState.URL() != newURL {
		diff.URL = &newURL
	}
	if oldState == nil || oldState.Index != newState.Index {
		idx := newState.Index
		diff.Index = &idx
	}

	diff.Context = diffContext(oldState, newState)
	diff.History = diffHistory(oldState, newState)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffContext(old *State, new *State) map[string]any {
	delta := make(map[string]any)

	if old == nil {
		for k, v := range new.Context {
			delta[k] = v
		}
		if len(delta) == 0 {
			return nil
		}
		return delta
	}

	for k, newVal := range new.Context {
		oldVal, exists := old.Context[k]
		if !exists || !reflect.DeepEqual(oldVal, newVal) {
			delta[k] = newVal
		}
	}

	for k := range old.Context {
		if _, exists := new.Context[k]; !exists {
			delta[k] = nil
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}

func diffHistory(old *State, new *State) *HistoryDelta {
	if len(new.History) == 0 {
		return nil
	}
	if old == nil {
		return &HistoryDelta{Appended: new.History}
	}

	// Longest common prefix.
	common := 0
	for common < len(old.History) && common < len(new.History) &&
		old.History[common].URL == new.History[common].URL {
		common++
	}

	delta := &HistoryDelta{
		Truncated: len(old.History) - common,
		Appended:  new.History[common:],
	}

	// Same length with one differing tail entry is a replace.
	if len(old.History) == len(new.History) && delta.Truncated == 1 {
		last := new.History[len(new.History)-1]
		return &HistoryDelta{Replaced: &last}
	}

	if delta.Truncated == 0 && len(delta.Appended) == 0 {
		return nil
	}
	return delta
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.URL == nil &&
		d.Index == nil &&
		len(d.Context) == 0 &&
		d.History == nil
}
