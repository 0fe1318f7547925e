package emulator

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"keyemu/internal/inject"
	"keyemu/internal/vk"
)

// fakeInjector records injected events and can be told to fail on a
// specific (code, action) pair.
type fakeInjector struct {
	events     []fakeEvent
	failCode   vk.Code
	failAction inject.Action
	failArmed  bool
}

type fakeEvent struct {
	code   vk.Code
	action inject.Action
}

func (f *fakeInjector) Inject(code vk.Code, action inject.Action) error {
	if f.failArmed && code == f.failCode && action == f.failAction {
		return fmt.Errorf("inject %s %s: %w", code, action, inject.ErrInjectionFailed)
	}
	f.events = append(f.events, fakeEvent{code, action})
	return nil
}

func (f *fakeInjector) Close() error { return nil }

func (f *fakeInjector) failOn(code vk.Code, action inject.Action) {
	f.failCode = code
	f.failAction = action
	f.failArmed = true
}

func (f *fakeInjector) expectEvents(t *testing.T, want ...fakeEvent) {
	t.Helper()
	if len(f.events) != len(want) {
		t.Fatalf("got %d events %v, want %d %v", len(f.events), f.events, len(want), want)
	}
	for i := range want {
		if f.events[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, f.events[i], want[i])
		}
	}
}

func down(code vk.Code) fakeEvent { return fakeEvent{code, inject.Down} }
func up(code vk.Code) fakeEvent   { return fakeEvent{code, inject.Up} }

func TestPressRelease(t *testing.T) {
	fake := &fakeInjector{}
	emu := New(fake)

	if err := emu.Press(vk.VK_A); err != nil {
		t.Fatalf("Press: %v", err)
	}
	if !emu.IsPressed(vk.VK_A) {
		t.Error("VK_A not reported as pressed")
	}

	if err := emu.Release(vk.VK_A); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if emu.IsPressed(vk.VK_A) {
		t.Error("VK_A still reported as pressed after release")
	}

	fake.expectEvents(t, down(vk.VK_A), up(vk.VK_A))
}

func TestReleaseWithoutPress(t *testing.T) {
	fake := &fakeInjector{}
	emu := New(fake)

	// The up event goes to the OS even when the key isn't in the held set.
	if err := emu.Release(vk.VK_B); err != nil {
		t.Fatalf("Release: %v", err)
	}
	fake.expectEvents(t, up(vk.VK_B))
}

func TestPressTwiceKeepsSingleHeldEntry(t *testing.T) {
	fake := &fakeInjector{}
	emu := New(fake)

	emu.Press(vk.VK_A)
	emu.Press(vk.VK_A)

	held := emu.HeldKeys()
	if len(held) != 1 || held[0] != vk.VK_A {
		t.Errorf("HeldKeys() = %v, want [VK_A]", held)
	}
	fake.expectEvents(t, down(vk.VK_A), down(vk.VK_A))
}

func TestHeldKeysSorted(t *testing.T) {
	emu := New(&fakeInjector{})

	emu.Press(vk.VK_Z)
	emu.Press(vk.VK_A)
	emu.Press(vk.VK_M)

	held := emu.HeldKeys()
	want := []vk.Code{vk.VK_A, vk.VK_M, vk.VK_Z}
	if len(held) != len(want) {
		t.Fatalf("HeldKeys() = %v, want %v", held, want)
	}
	for i := range want {
		if held[i] != want[i] {
			t.Errorf("HeldKeys()[%d] = %s, want %s", i, held[i], want[i])
		}
	}
}

func TestTapLeavesStateClean(t *testing.T) {
	fake := &fakeInjector{}
	emu := New(fake)

	if err := emu.Tap(vk.VK_A); err != nil {
		t.Fatalf("Tap: %v", err)
	}
	if emu.IsPressed(vk.VK_A) {
		t.Error("tapped key reported as held")
	}
	fake.expectEvents(t, down(vk.VK_A), up(vk.VK_A))
}

func TestTapWithModifiers(t *testing.T) {
	fake := &fakeInjector{}
	emu := New(fake)

	if err := emu.Tap(vk.VK_A, vk.VK_CONTROL, vk.VK_SHIFT); err != nil {
		t.Fatalf("Tap: %v", err)
	}

	// Modifiers press in order, release in reverse.
	fake.expectEvents(t,
		down(vk.VK_CONTROL), down(vk.VK_SHIFT),
		down(vk.VK_A), up(vk.VK_A),
		up(vk.VK_SHIFT), up(vk.VK_CONTROL),
	)
	if len(emu.HeldKeys()) != 0 {
		t.Errorf("HeldKeys() = %v after tap, want empty", emu.HeldKeys())
	}
}

func TestTapReleasesModifiersOnKeyFailure(t *testing.T) {
	fake := &fakeInjector{}
	fake.failOn(vk.VK_A, inject.Down)
	emu := New(fake)

	err := emu.Tap(vk.VK_A, vk.VK_CONTROL)
	if err == nil {
		t.Fatal("Tap: expected error")
	}
	if !errors.Is(err, inject.ErrInjectionFailed) {
		t.Errorf("Tap error = %v, want ErrInjectionFailed", err)
	}

	// Ctrl must not stay held after the failed tap.
	fake.expectEvents(t, down(vk.VK_CONTROL), up(vk.VK_CONTROL))
	if emu.IsPressed(vk.VK_CONTROL) {
		t.Error("VK_CONTROL still held after failed tap")
	}
}

func TestTapPreservesExternallyHeldKeys(t *testing.T) {
	fake := &fakeInjector{}
	emu := New(fake)

	// A key held via Press stays held across an unrelated tap.
	emu.Press(vk.VK_CONTROL)
	if err := emu.Tap(vk.VK_C, vk.VK_SHIFT); err != nil {
		t.Fatalf("Tap: %v", err)
	}
	if !emu.IsPressed(vk.VK_CONTROL) {
		t.Error("VK_CONTROL released by unrelated tap")
	}
}

func TestInvalidKeyCode(t *testing.T) {
	emu := New(&fakeInjector{})

	for _, op := range []func() error{
		func() error { return emu.Press(vk.Code(0x07)) },
		func() error { return emu.Release(vk.Code(0x07)) },
		func() error { return emu.Tap(vk.Code(0x07)) },
		func() error { return emu.Tap(vk.VK_A, vk.Code(0x07)) },
	} {
		if err := op(); !errors.Is(err, ErrInvalidKeyCode) {
			t.Errorf("got %v, want ErrInvalidKeyCode", err)
		}
	}
}

func TestNoInjector(t *testing.T) {
	emu := New(nil)
	if err := emu.Press(vk.VK_A); !errors.Is(err, ErrNoInjector) {
		t.Errorf("got %v, want ErrNoInjector", err)
	}
}

func TestWithModifiers(t *testing.T) {
	fake := &fakeInjector{}
	emu := New(fake)

	called := false
	err := emu.WithModifiers([]vk.Code{vk.VK_CONTROL, vk.VK_MENU}, func() error {
		called = true
		if !emu.IsPressed(vk.VK_CONTROL) || !emu.IsPressed(vk.VK_MENU) {
			t.Error("modifiers not held inside fn")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithModifiers: %v", err)
	}
	if !called {
		t.Fatal("fn not called")
	}

	fake.expectEvents(t,
		down(vk.VK_CONTROL), down(vk.VK_MENU),
		up(vk.VK_MENU), up(vk.VK_CONTROL),
	)
}

func TestWithModifiersReleasesOnError(t *testing.T) {
	fake := &fakeInjector{}
	emu := New(fake)

	sentinel := errors.New("boom")
	err := emu.WithModifiers([]vk.Code{vk.VK_SHIFT}, func() error {
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("WithModifiers = %v, want sentinel", err)
	}
	if emu.IsPressed(vk.VK_SHIFT) {
		t.Error("VK_SHIFT still held after fn error")
	}
}

func TestWithModifiersPressFailure(t *testing.T) {
	fake := &fakeInjector{}
	fake.failOn(vk.VK_MENU, inject.Down)
	emu := New(fake)

	err := emu.WithModifiers([]vk.Code{vk.VK_CONTROL, vk.VK_MENU}, func() error {
		t.Error("fn must not run when a modifier press fails")
		return nil
	})
	if err == nil {
		t.Fatal("expected error")
	}

	// Ctrl was pressed before Alt failed; it must be released again.
	fake.expectEvents(t, down(vk.VK_CONTROL), up(vk.VK_CONTROL))
}

func TestTypeString(t *testing.T) {
	fake := &fakeInjector{}
	emu := New(fake)

	err := emu.TypeString(context.Background(), "Hi", TypeOptions{})
	if err != nil {
		t.Fatalf("TypeString: %v", err)
	}

	fake.expectEvents(t,
		down(vk.VK_SHIFT), down(vk.VK_H), up(vk.VK_H), up(vk.VK_SHIFT),
		down(vk.VK_I), up(vk.VK_I),
	)
	if len(emu.HeldKeys()) != 0 {
		t.Errorf("HeldKeys() = %v after typing, want empty", emu.HeldKeys())
	}
}

func TestTypeStringUnsupportedChar(t *testing.T) {
	fake := &fakeInjector{}
	emu := New(fake)

	err := emu.TypeString(context.Background(), "ab世cd", TypeOptions{})
	if err == nil {
		t.Fatal("expected error for unsupported character")
	}

	var ucErr *UnsupportedCharError
	if !errors.As(err, &ucErr) {
		t.Fatalf("error type = %T, want *UnsupportedCharError", err)
	}
	if ucErr.Char != '世' {
		t.Errorf("Char = %q, want U+4E16", ucErr.Char)
	}
	if ucErr.Pos != 2 {
		t.Errorf("Pos = %d, want 2", ucErr.Pos)
	}

	// Typing stops at the failing character: only a and b were typed.
	fake.expectEvents(t,
		down(vk.VK_A), up(vk.VK_A),
		down(vk.VK_B), up(vk.VK_B),
	)
}

func TestTypeStringSkipUnsupported(t *testing.T) {
	fake := &fakeInjector{}
	emu := New(fake)

	err := emu.TypeString(context.Background(), "a世b", TypeOptions{SkipUnsupported: true})
	if err != nil {
		t.Fatalf("TypeString: %v", err)
	}
	fake.expectEvents(t,
		down(vk.VK_A), up(vk.VK_A),
		down(vk.VK_B), up(vk.VK_B),
	)
}

func TestTypeStringNegativeDelay(t *testing.T) {
	emu := New(&fakeInjector{})
	err := emu.TypeString(context.Background(), "a", TypeOptions{Delay: -time.Millisecond})
	if err == nil {
		t.Fatal("expected error for negative delay")
	}
}

func TestTypeStringCancellation(t *testing.T) {
	fake := &fakeInjector{}
	emu := New(fake)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := emu.TypeString(ctx, "abc", TypeOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("TypeString = %v, want context.Canceled", err)
	}
	if len(fake.events) != 0 {
		t.Errorf("typed %d events after cancellation, want 0", len(fake.events))
	}
}

func TestTypeStringEmptyText(t *testing.T) {
	fake := &fakeInjector{}
	emu := New(fake)

	if err := emu.TypeString(context.Background(), "", TypeOptions{}); err != nil {
		t.Fatalf("TypeString: %v", err)
	}
	if len(fake.events) != 0 {
		t.Errorf("typed %d events for empty text", len(fake.events))
	}
}
