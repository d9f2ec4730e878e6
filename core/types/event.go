package types

// Event represents a typed event emitted during bounty state transitions.
// Attributes are flat string pairs so downstream consumers can index them
// without knowing the record layout.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}
