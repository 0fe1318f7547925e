package emulator

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidKeyCode is returned when a key code falls outside the known
	// enumeration. No OS call is made.
	ErrInvalidKeyCode = errors.New("invalid virtual key code")

	// ErrNoInjector is returned when the emulator was built without a
	// working injection backend.
	ErrNoInjector = errors.New("no injector configured")
)

// UnsupportedCharError reports a character with no virtual-key mapping,
// with its byte position in the original string.
type UnsupportedCharError struct {
	Char rune
	Pos  int
}

func (e *UnsupportedCharError) Error() string {
	return fmt.Sprintf("unsupported character %q at byte %d", e.Char, e.Pos)
}
