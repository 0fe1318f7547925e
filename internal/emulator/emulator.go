// Package emulator turns virtual-key operations into ordered OS boundary
// calls while tracking which keys are currently held down.
package emulator

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"keyemu/internal/inject"
	"keyemu/internal/timing"
	"keyemu/internal/vk"
)

// Emulator owns an injector and the held-key set. All operations are
// synchronous; a single mutex serializes boundary calls because the OS
// keyboard state is one global resource.
type Emulator struct {
	mu       sync.Mutex
	injector inject.Injector
	held     map[vk.Code]struct{}
}

// New creates an emulator over the given injector. The held-key set starts
// empty; callers needing isolation (tests) pass their own injector.
func New(injector inject.Injector) *Emulator {
	return &Emulator{
		injector: injector,
		held:     make(map[vk.Code]struct{}),
	}
}

// TypeOptions controls TypeString pacing and error policy.
type TypeOptions struct {
	// Delay is the fixed pause between characters. Ignored when Profile is set.
	Delay time.Duration

	// Profile, when non-nil, humanizes the inter-character delay.
	Profile *timing.Profile

	// SkipUnsupported types around characters with no key mapping instead
	// of aborting on the first one.
	SkipUnsupported bool
}

// Press sends a key-down event and records the key as held. Pressing an
// already-held key resends the event but does not duplicate state.
func (e *Emulator) Press(code vk.Code) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pressLocked(code)
}

// Release sends a key-up event and removes the key from the held set. The
// up event is sent even if the key was not recorded as held: the OS keyboard
// state is authoritative and a spurious up is harmless.
func (e *Emulator) Release(code vk.Code) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.releaseLocked(code)
}

// Tap presses each modifier in order, taps the key, then releases the
// modifiers in reverse order. Modifiers already pressed are released on
// every path, including when the key's down/up pair fails.
func (e *Emulator) Tap(code vk.Code, modifiers ...vk.Code) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tapLocked(code, modifiers)
}

// IsPressed reports whether the key is in the held set. No OS call.
func (e *Emulator) IsPressed(code vk.Code) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.held[code]
	return ok
}

// HeldKeys returns a sorted snapshot of the held-key set.
func (e *Emulator) HeldKeys() []vk.Code {
	e.mu.Lock()
	defer e.mu.Unlock()
	keys := make([]vk.Code, 0, len(e.held))
	for code := range e.held {
		keys = append(keys, code)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// WithModifiers presses all modifiers, runs fn, and releases the modifiers
// in reverse press order on every exit path. fn's error propagates after
// cleanup; release failures during cleanup are logged, not returned.
func (e *Emulator) WithModifiers(modifiers []vk.Code, fn func() error) error {
	pressed := make([]vk.Code, 0, len(modifiers))

	releaseAll := func() {
		for i := len(pressed) - 1; i >= 0; i-- {
			if err := e.Release(pressed[i]); err != nil {
				log.Printf("Emulator: failed to release modifier %s: %v", pressed[i], err)
			}
		}
	}

	for _, mod := range modifiers {
		if err := e.Press(mod); err != nil {
			releaseAll()
			return fmt.Errorf("press modifier %s: %w", mod, err)
		}
		pressed = append(pressed, mod)
	}

	defer releaseAll()
	return fn()
}

// TypeString types text character by character, holding Shift implicitly for
// uppercase letters and shifted symbols, pausing between characters per opts.
//
// Default policy: abort with *UnsupportedCharError at the first character
// without a mapping (use textutil.ValidateText as a pre-check, or set
// opts.SkipUnsupported). Cancellation is honored between characters.
func (e *Emulator) TypeString(ctx context.Context, text string, opts TypeOptions) error {
	if opts.Delay < 0 {
		return fmt.Errorf("negative delay %v", opts.Delay)
	}

	runes := []rune(text)
	pos := 0
	typed := false
	for i, r := range runes {
		if err := ctx.Err(); err != nil {
			return err
		}

		code, shift, ok := vk.Lookup(r)
		if !ok {
			if opts.SkipUnsupported {
				pos += len(string(r))
				continue
			}
			return &UnsupportedCharError{Char: r, Pos: pos}
		}

		// Pause before every character except the first typed one.
		if typed {
			if err := e.sleep(ctx, opts.nextDelay()); err != nil {
				return err
			}
		}

		var err error
		if shift {
			err = e.Tap(code, vk.VK_SHIFT)
		} else {
			err = e.Tap(code)
		}
		if err != nil {
			return fmt.Errorf("type %q (char %d): %w", r, i, err)
		}

		typed = true
		pos += len(string(r))
	}
	return nil
}

func (o TypeOptions) nextDelay() time.Duration {
	if o.Profile != nil {
		return o.Profile.NextDelay()
	}
	return o.Delay
}

func (e *Emulator) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (e *Emulator) pressLocked(code vk.Code) error {
	if err := e.checkCode(code); err != nil {
		return err
	}
	if err := e.injector.Inject(code, inject.Down); err != nil {
		return fmt.Errorf("press %s: %w", code, err)
	}
	e.held[code] = struct{}{}
	return nil
}

func (e *Emulator) releaseLocked(code vk.Code) error {
	if err := e.checkCode(code); err != nil {
		return err
	}
	if err := e.injector.Inject(code, inject.Up); err != nil {
		return fmt.Errorf("release %s: %w", code, err)
	}
	delete(e.held, code)
	return nil
}

func (e *Emulator) tapLocked(code vk.Code, modifiers []vk.Code) error {
	if err := e.checkCode(code); err != nil {
		return err
	}
	for _, mod := range modifiers {
		if err := e.checkCode(mod); err != nil {
			return err
		}
	}

	var pressed []vk.Code
	defer func() {
		for i := len(pressed) - 1; i >= 0; i-- {
			if err := e.releaseLocked(pressed[i]); err != nil {
				log.Printf("Emulator: failed to release modifier %s after tap: %v", pressed[i], err)
			}
		}
	}()

	for _, mod := range modifiers {
		if err := e.pressLocked(mod); err != nil {
			return err
		}
		pressed = append(pressed, mod)
	}

	if err := e.injector.Inject(code, inject.Down); err != nil {
		return fmt.Errorf("tap %s down: %w", code, err)
	}
	if err := e.injector.Inject(code, inject.Up); err != nil {
		return fmt.Errorf("tap %s up: %w", code, err)
	}
	return nil
}

func (e *Emulator) checkCode(code vk.Code) error {
	if e.injector == nil {
		return ErrNoInjector
	}
	if !code.IsValid() {
		return fmt.Errorf("%w: 0x%02X", ErrInvalidKeyCode, uint16(code))
	}
	return nil
}
