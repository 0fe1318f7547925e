// Package vk defines the virtual key code enumeration and the character
// mapping tables used for text typing.
package vk

import (
	"fmt"
	"strings"
)

// Code is a Windows-style virtual key code identifying a logical key
// independent of physical layout.
type Code uint16

// Special keys
const (
	VK_BACK     Code = 0x08 // Backspace
	VK_TAB      Code = 0x09
	VK_RETURN   Code = 0x0D // Enter
	VK_SHIFT    Code = 0x10
	VK_CONTROL  Code = 0x11
	VK_MENU     Code = 0x12 // Alt
	VK_PAUSE    Code = 0x13
	VK_CAPITAL  Code = 0x14 // Caps Lock
	VK_ESCAPE   Code = 0x1B
	VK_SPACE    Code = 0x20
	VK_PRIOR    Code = 0x21 // Page Up
	VK_NEXT     Code = 0x22 // Page Down
	VK_END      Code = 0x23
	VK_HOME     Code = 0x24
	VK_LEFT     Code = 0x25
	VK_UP       Code = 0x26
	VK_RIGHT    Code = 0x27
	VK_DOWN     Code = 0x28
	VK_SELECT   Code = 0x29
	VK_PRINT    Code = 0x2A
	VK_EXECUTE  Code = 0x2B
	VK_SNAPSHOT Code = 0x2C // Print Screen
	VK_INSERT   Code = 0x2D
	VK_DELETE   Code = 0x2E
	VK_HELP     Code = 0x2F
)

// Digits 0-9
const (
	VK_0 Code = 0x30
	VK_1 Code = 0x31
	VK_2 Code = 0x32
	VK_3 Code = 0x33
	VK_4 Code = 0x34
	VK_5 Code = 0x35
	VK_6 Code = 0x36
	VK_7 Code = 0x37
	VK_8 Code = 0x38
	VK_9 Code = 0x39
)

// Letters A-Z
const (
	VK_A Code = 0x41
	VK_B Code = 0x42
	VK_C Code = 0x43
	VK_D Code = 0x44
	VK_E Code = 0x45
	VK_F Code = 0x46
	VK_G Code = 0x47
	VK_H Code = 0x48
	VK_I Code = 0x49
	VK_J Code = 0x4A
	VK_K Code = 0x4B
	VK_L Code = 0x4C
	VK_M Code = 0x4D
	VK_N Code = 0x4E
	VK_O Code = 0x4F
	VK_P Code = 0x50
	VK_Q Code = 0x51
	VK_R Code = 0x52
	VK_S Code = 0x53
	VK_T Code = 0x54
	VK_U Code = 0x55
	VK_V Code = 0x56
	VK_W Code = 0x57
	VK_X Code = 0x58
	VK_Y Code = 0x59
	VK_Z Code = 0x5A
)

// Windows keys
const (
	VK_LWIN Code = 0x5B
	VK_RWIN Code = 0x5C
	VK_APPS Code = 0x5D
)

// Numpad
const (
	VK_NUMPAD0   Code = 0x60
	VK_NUMPAD1   Code = 0x61
	VK_NUMPAD2   Code = 0x62
	VK_NUMPAD3   Code = 0x63
	VK_NUMPAD4   Code = 0x64
	VK_NUMPAD5   Code = 0x65
	VK_NUMPAD6   Code = 0x66
	VK_NUMPAD7   Code = 0x67
	VK_NUMPAD8   Code = 0x68
	VK_NUMPAD9   Code = 0x69
	VK_MULTIPLY  Code = 0x6A
	VK_ADD       Code = 0x6B
	VK_SEPARATOR Code = 0x6C
	VK_SUBTRACT  Code = 0x6D
	VK_DECIMAL   Code = 0x6E
	VK_DIVIDE    Code = 0x6F
)

// Function keys
const (
	VK_F1  Code = 0x70
	VK_F2  Code = 0x71
	VK_F3  Code = 0x72
	VK_F4  Code = 0x73
	VK_F5  Code = 0x74
	VK_F6  Code = 0x75
	VK_F7  Code = 0x76
	VK_F8  Code = 0x77
	VK_F9  Code = 0x78
	VK_F10 Code = 0x79
	VK_F11 Code = 0x7A
	VK_F12 Code = 0x7B
	VK_F13 Code = 0x7C
	VK_F14 Code = 0x7D
	VK_F15 Code = 0x7E
	VK_F16 Code = 0x7F
	VK_F17 Code = 0x80
	VK_F18 Code = 0x81
	VK_F19 Code = 0x82
	VK_F20 Code = 0x83
	VK_F21 Code = 0x84
	VK_F22 Code = 0x85
	VK_F23 Code = 0x86
	VK_F24 Code = 0x87
)

// Lock keys
const (
	VK_NUMLOCK Code = 0x90
	VK_SCROLL  Code = 0x91
)

// Left/right modifier variants
const (
	VK_LSHIFT   Code = 0xA0
	VK_RSHIFT   Code = 0xA1
	VK_LCONTROL Code = 0xA2
	VK_RCONTROL Code = 0xA3
	VK_LMENU    Code = 0xA4
	VK_RMENU    Code = 0xA5
)

// OEM keys (US layout)
const (
	VK_OEM_1      Code = 0xBA // ';:'
	VK_OEM_PLUS   Code = 0xBB // '=+'
	VK_OEM_COMMA  Code = 0xBC // ',<'
	VK_OEM_MINUS  Code = 0xBD // '-_'
	VK_OEM_PERIOD Code = 0xBE // '.>'
	VK_OEM_2      Code = 0xBF // '/?'
	VK_OEM_3      Code = 0xC0 // '`~'
	VK_OEM_4      Code = 0xDB // '[{'
	VK_OEM_5      Code = 0xDC // '\|'
	VK_OEM_6      Code = 0xDD // ']}'
	VK_OEM_7      Code = 0xDE // '"\''
	VK_OEM_8      Code = 0xDF
)

// names maps every code in the enumeration to its canonical constant name.
// A code is valid iff it appears here.
var names = map[Code]string{
	VK_BACK: "VK_BACK", VK_TAB: "VK_TAB", VK_RETURN: "VK_RETURN",
	VK_SHIFT: "VK_SHIFT", VK_CONTROL: "VK_CONTROL", VK_MENU: "VK_MENU",
	VK_PAUSE: "VK_PAUSE", VK_CAPITAL: "VK_CAPITAL", VK_ESCAPE: "VK_ESCAPE",
	VK_SPACE: "VK_SPACE", VK_PRIOR: "VK_PRIOR", VK_NEXT: "VK_NEXT",
	VK_END: "VK_END", VK_HOME: "VK_HOME", VK_LEFT: "VK_LEFT",
	VK_UP: "VK_UP", VK_RIGHT: "VK_RIGHT", VK_DOWN: "VK_DOWN",
	VK_SELECT: "VK_SELECT", VK_PRINT: "VK_PRINT", VK_EXECUTE: "VK_EXECUTE",
	VK_SNAPSHOT: "VK_SNAPSHOT", VK_INSERT: "VK_INSERT", VK_DELETE: "VK_DELETE",
	VK_HELP: "VK_HELP",

	VK_0: "VK_0", VK_1: "VK_1", VK_2: "VK_2", VK_3: "VK_3", VK_4: "VK_4",
	VK_5: "VK_5", VK_6: "VK_6", VK_7: "VK_7", VK_8: "VK_8", VK_9: "VK_9",

	VK_A: "VK_A", VK_B: "VK_B", VK_C: "VK_C", VK_D: "VK_D", VK_E: "VK_E",
	VK_F: "VK_F", VK_G: "VK_G", VK_H: "VK_H", VK_I: "VK_I", VK_J: "VK_J",
	VK_K: "VK_K", VK_L: "VK_L", VK_M: "VK_M", VK_N: "VK_N", VK_O: "VK_O",
	VK_P: "VK_P", VK_Q: "VK_Q", VK_R: "VK_R", VK_S: "VK_S", VK_T: "VK_T",
	VK_U: "VK_U", VK_V: "VK_V", VK_W: "VK_W", VK_X: "VK_X", VK_Y: "VK_Y",
	VK_Z: "VK_Z",

	VK_LWIN: "VK_LWIN", VK_RWIN: "VK_RWIN", VK_APPS: "VK_APPS",

	VK_NUMPAD0: "VK_NUMPAD0", VK_NUMPAD1: "VK_NUMPAD1", VK_NUMPAD2: "VK_NUMPAD2",
	VK_NUMPAD3: "VK_NUMPAD3", VK_NUMPAD4: "VK_NUMPAD4", VK_NUMPAD5: "VK_NUMPAD5",
	VK_NUMPAD6: "VK_NUMPAD6", VK_NUMPAD7: "VK_NUMPAD7", VK_NUMPAD8: "VK_NUMPAD8",
	VK_NUMPAD9: "VK_NUMPAD9", VK_MULTIPLY: "VK_MULTIPLY", VK_ADD: "VK_ADD",
	VK_SEPARATOR: "VK_SEPARATOR", VK_SUBTRACT: "VK_SUBTRACT",
	VK_DECIMAL: "VK_DECIMAL", VK_DIVIDE: "VK_DIVIDE",

	VK_F1: "VK_F1", VK_F2: "VK_F2", VK_F3: "VK_F3", VK_F4: "VK_F4",
	VK_F5: "VK_F5", VK_F6: "VK_F6", VK_F7: "VK_F7", VK_F8: "VK_F8",
	VK_F9: "VK_F9", VK_F10: "VK_F10", VK_F11: "VK_F11", VK_F12: "VK_F12",
	VK_F13: "VK_F13", VK_F14: "VK_F14", VK_F15: "VK_F15", VK_F16: "VK_F16",
	VK_F17: "VK_F17", VK_F18: "VK_F18", VK_F19: "VK_F19", VK_F20: "VK_F20",
	VK_F21: "VK_F21", VK_F22: "VK_F22", VK_F23: "VK_F23", VK_F24: "VK_F24",

	VK_NUMLOCK: "VK_NUMLOCK", VK_SCROLL: "VK_SCROLL",

	VK_LSHIFT: "VK_LSHIFT", VK_RSHIFT: "VK_RSHIFT",
	VK_LCONTROL: "VK_LCONTROL", VK_RCONTROL: "VK_RCONTROL",
	VK_LMENU: "VK_LMENU", VK_RMENU: "VK_RMENU",

	VK_OEM_1: "VK_OEM_1", VK_OEM_PLUS: "VK_OEM_PLUS",
	VK_OEM_COMMA: "VK_OEM_COMMA", VK_OEM_MINUS: "VK_OEM_MINUS",
	VK_OEM_PERIOD: "VK_OEM_PERIOD", VK_OEM_2: "VK_OEM_2",
	VK_OEM_3: "VK_OEM_3", VK_OEM_4: "VK_OEM_4", VK_OEM_5: "VK_OEM_5",
	VK_OEM_6: "VK_OEM_6", VK_OEM_7: "VK_OEM_7", VK_OEM_8: "VK_OEM_8",
}

// aliases maps friendly lowercase names (used in chord strings and on the
// command line) to codes, in addition to the canonical VK_* names.
var aliases = map[string]Code{
	"ctrl": VK_CONTROL, "control": VK_CONTROL,
	"shift": VK_SHIFT,
	"alt":   VK_MENU, "menu": VK_MENU,
	"win": VK_LWIN, "super": VK_LWIN, "cmd": VK_LWIN,
	"enter": VK_RETURN, "return": VK_RETURN,
	"esc": VK_ESCAPE, "escape": VK_ESCAPE,
	"space": VK_SPACE, "tab": VK_TAB,
	"backspace": VK_BACK, "back": VK_BACK,
	"delete": VK_DELETE, "del": VK_DELETE,
	"insert": VK_INSERT, "ins": VK_INSERT,
	"home": VK_HOME, "end": VK_END,
	"pageup": VK_PRIOR, "pgup": VK_PRIOR,
	"pagedown": VK_NEXT, "pgdn": VK_NEXT,
	"up": VK_UP, "down": VK_DOWN, "left": VK_LEFT, "right": VK_RIGHT,
	"capslock": VK_CAPITAL, "numlock": VK_NUMLOCK, "scrolllock": VK_SCROLL,
	"printscreen": VK_SNAPSHOT, "pause": VK_PAUSE, "apps": VK_APPS,
}

func init() {
	// Every canonical name is also resolvable, with or without the VK_ prefix.
	for code, name := range names {
		aliases[strings.ToLower(name)] = code
		aliases[strings.ToLower(strings.TrimPrefix(name, "VK_"))] = code
	}
}

// IsValid reports whether c belongs to the known key enumeration.
func (c Code) IsValid() bool {
	_, ok := names[c]
	return ok
}

// String returns the canonical constant name, or a hex form for unknown codes.
func (c Code) String() string {
	if name, ok := names[c]; ok {
		return name
	}
	return fmt.Sprintf("VK(0x%02X)", uint16(c))
}

// IsModifier reports whether c is a modifier key (Shift/Ctrl/Alt/Win,
// including the left/right variants).
func (c Code) IsModifier() bool {
	switch c {
	case VK_SHIFT, VK_CONTROL, VK_MENU, VK_LWIN, VK_RWIN,
		VK_LSHIFT, VK_RSHIFT, VK_LCONTROL, VK_RCONTROL, VK_LMENU, VK_RMENU:
		return true
	}
	return false
}

// IsExtended reports whether c is an extended key that needs the
// extended-key flag when injected on Windows.
func (c Code) IsExtended() bool {
	switch c {
	case VK_INSERT, VK_DELETE, VK_HOME, VK_END, VK_PRIOR, VK_NEXT,
		VK_LEFT, VK_RIGHT, VK_UP, VK_DOWN,
		VK_RCONTROL, VK_RMENU, VK_LWIN, VK_RWIN, VK_APPS,
		VK_NUMLOCK, VK_SNAPSHOT, VK_DIVIDE:
		return true
	}
	return false
}

// FromName resolves a key name to its code. Both canonical constant names
// ("VK_F5") and friendly aliases ("f5", "enter", "ctrl") are accepted,
// case-insensitively.
func FromName(name string) (Code, bool) {
	code, ok := aliases[strings.ToLower(strings.TrimSpace(name))]
	return code, ok
}

// Names returns all canonical names in the enumeration, sorted by code.
func Names() []string {
	out := make([]string, 0, len(names))
	for c := Code(0); c <= 0xFF; c++ {
		if name, ok := names[c]; ok {
			out = append(out, name)
		}
	}
	return out
}
