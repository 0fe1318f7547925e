//go:build linux

package inject

import (
	"fmt"

	"github.com/bendahl/uinput"

	"keyemu/internal/vk"
)

// Linux implementation using a virtual keyboard device on /dev/uinput.

// vkToEvdev maps virtual key codes to Linux evdev key codes.
var vkToEvdev = map[vk.Code]int{
	vk.VK_A: 30, vk.VK_B: 48, vk.VK_C: 46, vk.VK_D: 32, vk.VK_E: 18,
	vk.VK_F: 33, vk.VK_G: 34, vk.VK_H: 35, vk.VK_I: 23, vk.VK_J: 36,
	vk.VK_K: 37, vk.VK_L: 38, vk.VK_M: 50, vk.VK_N: 49, vk.VK_O: 24,
	vk.VK_P: 25, vk.VK_Q: 16, vk.VK_R: 19, vk.VK_S: 31, vk.VK_T: 20,
	vk.VK_U: 22, vk.VK_V: 47, vk.VK_W: 17, vk.VK_X: 45, vk.VK_Y: 21,
	vk.VK_Z: 44,

	vk.VK_1: 2, vk.VK_2: 3, vk.VK_3: 4, vk.VK_4: 5, vk.VK_5: 6,
	vk.VK_6: 7, vk.VK_7: 8, vk.VK_8: 9, vk.VK_9: 10, vk.VK_0: 11,

	vk.VK_ESCAPE: 1, vk.VK_BACK: 14, vk.VK_TAB: 15, vk.VK_RETURN: 28,
	vk.VK_SPACE: 57, vk.VK_CAPITAL: 58, vk.VK_NUMLOCK: 69, vk.VK_SCROLL: 70,

	vk.VK_SHIFT: 42, vk.VK_LSHIFT: 42, vk.VK_RSHIFT: 54,
	vk.VK_CONTROL: 29, vk.VK_LCONTROL: 29, vk.VK_RCONTROL: 97,
	vk.VK_MENU: 56, vk.VK_LMENU: 56, vk.VK_RMENU: 100,
	vk.VK_LWIN: 125, vk.VK_RWIN: 126, vk.VK_APPS: 127,

	vk.VK_OEM_MINUS: 12, vk.VK_OEM_PLUS: 13, vk.VK_OEM_4: 26, vk.VK_OEM_6: 27,
	vk.VK_OEM_1: 39, vk.VK_OEM_7: 40, vk.VK_OEM_3: 41, vk.VK_OEM_5: 43,
	vk.VK_OEM_COMMA: 51, vk.VK_OEM_PERIOD: 52, vk.VK_OEM_2: 53,

	vk.VK_F1: 59, vk.VK_F2: 60, vk.VK_F3: 61, vk.VK_F4: 62, vk.VK_F5: 63,
	vk.VK_F6: 64, vk.VK_F7: 65, vk.VK_F8: 66, vk.VK_F9: 67, vk.VK_F10: 68,
	vk.VK_F11: 87, vk.VK_F12: 88,
	vk.VK_F13: 183, vk.VK_F14: 184, vk.VK_F15: 185, vk.VK_F16: 186,
	vk.VK_F17: 187, vk.VK_F18: 188, vk.VK_F19: 189, vk.VK_F20: 190,
	vk.VK_F21: 191, vk.VK_F22: 192, vk.VK_F23: 193, vk.VK_F24: 194,

	vk.VK_HOME: 102, vk.VK_UP: 103, vk.VK_PRIOR: 104, vk.VK_LEFT: 105,
	vk.VK_RIGHT: 106, vk.VK_END: 107, vk.VK_DOWN: 108, vk.VK_NEXT: 109,
	vk.VK_INSERT: 110, vk.VK_DELETE: 111,
	vk.VK_PAUSE: 119, vk.VK_SNAPSHOT: 99,

	vk.VK_NUMPAD0: 82, vk.VK_NUMPAD1: 79, vk.VK_NUMPAD2: 80, vk.VK_NUMPAD3: 81,
	vk.VK_NUMPAD4: 75, vk.VK_NUMPAD5: 76, vk.VK_NUMPAD6: 77, vk.VK_NUMPAD7: 71,
	vk.VK_NUMPAD8: 72, vk.VK_NUMPAD9: 73,
	vk.VK_MULTIPLY: 55, vk.VK_ADD: 78, vk.VK_SUBTRACT: 74,
	vk.VK_DECIMAL: 83, vk.VK_DIVIDE: 98,
}

// uinputInjector injects keyboard events through a uinput virtual keyboard.
type uinputInjector struct {
	kbd uinput.Keyboard
}

// NewInjector creates the virtual keyboard device. Requires write access to
// /dev/uinput.
func NewInjector() (Injector, error) {
	kbd, err := uinput.CreateKeyboard("/dev/uinput", []byte("keyemu"))
	if err != nil {
		return nil, fmt.Errorf("create virtual keyboard: %w", err)
	}
	return &uinputInjector{kbd: kbd}, nil
}

// Inject sends one key event through the virtual device.
func (i *uinputInjector) Inject(code vk.Code, action Action) error {
	evCode, ok := vkToEvdev[code]
	if !ok {
		return fmt.Errorf("no evdev mapping for %s: %w", code, ErrInjectionFailed)
	}

	var err error
	if action == Down {
		err = i.kbd.KeyDown(evCode)
	} else {
		err = i.kbd.KeyUp(evCode)
	}
	if err != nil {
		return fmt.Errorf("uinput %s %s: %w", code, action, err)
	}
	return nil
}

// Close destroys the virtual keyboard device.
func (i *uinputInjector) Close() error {
	return i.kbd.Close()
}
