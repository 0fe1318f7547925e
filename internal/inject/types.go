// Package inject provides the platform boundary for synthetic keyboard input.
package inject

import (
	"errors"

	"keyemu/internal/vk"
)

// Action is the direction of a key event.
type Action int

const (
	// Down presses the key.
	Down Action = iota
	// Up releases the key.
	Up
)

func (a Action) String() string {
	if a == Down {
		return "down"
	}
	return "up"
}

// Injector sends a single synthetic key event to the operating system.
// Implementations are platform-specific; the emulator treats this call as
// opaque and never retries it.
type Injector interface {
	Inject(code vk.Code, action Action) error
	Close() error
}

var (
	// ErrUnsupportedPlatform is returned when no injection backend exists
	// for the current OS.
	ErrUnsupportedPlatform = errors.New("input injection not supported on this platform")

	// ErrInjectionFailed is returned when the OS accepted fewer events than
	// were submitted.
	ErrInjectionFailed = errors.New("input injection failed")
)
