package domain

// Trigger identifies what started a navigation.
type Trigger string

const (
	TriggerAPI        Trigger = "api"
	TriggerPopstate   Trigger = "popstate"
	TriggerHashchange Trigger = "hashchange"
)

// LocationChangeEvent is published by a location adapter when the URL changes
// outside of the router (back/forward buttons, manual hash edits).
type LocationChangeEvent struct {
	URL     string         `json:"url"`
	Trigger Trigger        `json:"trigger"`
	State   map[string]any `json:"state,omitempty"`
}

// Navigation is the transition-wide part of what hooks and strategies see.
type Navigation struct {
	ID          uint64  `json:"id"`
	Trigger     Trigger `json:"trigger"`
	URL         string  `json:"url"`
	PreviousURL string  `json:"previous_url"`
}
