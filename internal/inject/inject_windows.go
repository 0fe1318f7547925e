//go:build windows

package inject

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"keyemu/internal/vk"
)

// Windows implementation using the user32 SendInput API.

var (
	user32        = windows.NewLazySystemDLL("user32.dll")
	procSendInput = user32.NewProc("SendInput")
)

const (
	inputKeyboard = 1

	keyeventfExtendedKey = 0x0001
	keyeventfKeyUp       = 0x0002

	// Marker placed in dwExtraInfo so hooks can tell our synthetic events
	// apart from physical keystrokes.
	syntheticMarker = 0x4B454D55 // "KEMU"
)

type keybdInput struct {
	WVk         uint16
	WScan       uint16
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

type input struct {
	Type uint32
	Ki   keybdInput
	// SendInput expects the INPUT union sized for MOUSEINPUT; pad the
	// difference (two extra int32 fields on top of KEYBDINPUT).
	_ [8]byte
}

// sendInputInjector injects keyboard events via SendInput.
type sendInputInjector struct{}

// NewInjector returns the SendInput-backed injector.
func NewInjector() (Injector, error) {
	return &sendInputInjector{}, nil
}

// Inject sends one key event to the system input queue.
func (i *sendInputInjector) Inject(code vk.Code, action Action) error {
	var flags uint32
	if action == Up {
		flags |= keyeventfKeyUp
	}
	if code.IsExtended() {
		flags |= keyeventfExtendedKey
	}

	in := input{
		Type: inputKeyboard,
		Ki: keybdInput{
			WVk:         uint16(code),
			DwFlags:     flags,
			DwExtraInfo: syntheticMarker,
		},
	}

	n, _, callErr := procSendInput.Call(
		1,
		uintptr(unsafe.Pointer(&in)),
		unsafe.Sizeof(in),
	)
	if n != 1 {
		return fmt.Errorf("SendInput(%s %s): %w: %v", code, action, ErrInjectionFailed, callErr)
	}
	return nil
}

// Close releases nothing on Windows; SendInput needs no handle.
func (i *sendInputInjector) Close() error {
	return nil
}
