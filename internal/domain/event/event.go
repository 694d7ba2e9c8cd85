package event

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypePromptsReloaded Type = "prompts_reloaded"
	TypeReloadFailed    Type = "reload_failed"
)

// Channel groups event types for subscribers.
type Channel string

const ChannelRegistry Channel = "registry"

var typeToChannel = map[Type]Channel{
	TypePromptsReloaded: ChannelRegistry,
	TypeReloadFailed:    ChannelRegistry,
}

// ChannelFor returns the channel for a given event type.
func ChannelFor(t Type) Channel { return typeToChannel[t] }

// Event carries a summary only. Subscribers that need the prompt set read it
// from the registry.
type Event struct {
	Type       Type      `json:"type"`
	Generation uuid.UUID `json:"generation"`
	Loaded     int       `json:"loaded"`
	Skipped    int       `json:"skipped"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Reloaded describes a published cache generation.
func Reloaded(generation uuid.UUID, loaded, skipped int) Event {
	return Event{
		Type:       TypePromptsReloaded,
		Generation: generation,
		Loaded:     loaded,
		Skipped:    skipped,
		Timestamp:  time.Now().UTC(),
	}
}

// ReloadFailed reports a scan that could not run at all. The previous
// generation stays published.
func ReloadFailed(err error) Event {
	return Event{
		Type:      TypeReloadFailed,
		Error:     err.Error(),
		Timestamp: time.Now().UTC(),
	}
}
