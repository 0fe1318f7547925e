package vk

import (
	"fmt"
	"strings"
)

// charToVK maps directly typeable characters to their key codes.
var charToVK = map[rune]Code{
	'a': VK_A, 'b': VK_B, 'c': VK_C, 'd': VK_D, 'e': VK_E, 'f': VK_F,
	'g': VK_G, 'h': VK_H, 'i': VK_I, 'j': VK_J, 'k': VK_K, 'l': VK_L,
	'm': VK_M, 'n': VK_N, 'o': VK_O, 'p': VK_P, 'q': VK_Q, 'r': VK_R,
	's': VK_S, 't': VK_T, 'u': VK_U, 'v': VK_V, 'w': VK_W, 'x': VK_X,
	'y': VK_Y, 'z': VK_Z,
	'0': VK_0, '1': VK_1, '2': VK_2, '3': VK_3, '4': VK_4,
	'5': VK_5, '6': VK_6, '7': VK_7, '8': VK_8, '9': VK_9,
	' ': VK_SPACE, '\t': VK_TAB, '\n': VK_RETURN, '\r': VK_RETURN,
	';': VK_OEM_1, '=': VK_OEM_PLUS, ',': VK_OEM_COMMA, '-': VK_OEM_MINUS,
	'.': VK_OEM_PERIOD, '/': VK_OEM_2, '`': VK_OEM_3, '[': VK_OEM_4,
	'\\': VK_OEM_5, ']': VK_OEM_6, '\'': VK_OEM_7,
}

// shiftCharMap maps shifted symbols to the base character on the same key
// (US layout). Uppercase letters are handled separately.
var shiftCharMap = map[rune]rune{
	'!': '1', '@': '2', '#': '3', '$': '4', '%': '5', '^': '6',
	'&': '7', '*': '8', '(': '9', ')': '0', '_': '-', '+': '=',
	'{': '[', '}': ']', '|': '\\', ':': ';', '"': '\'',
	'<': ',', '>': '.', '?': '/', '~': '`',
}

// Lookup maps a character to its key code and reports whether Shift must be
// held while tapping it. ok is false when the character has no mapping.
func Lookup(r rune) (code Code, shift bool, ok bool) {
	if code, ok = charToVK[r]; ok {
		return code, false, true
	}
	if r >= 'A' && r <= 'Z' {
		return charToVK[r+('a'-'A')], true, true
	}
	if base, isShifted := shiftCharMap[r]; isShifted {
		if code, ok = charToVK[base]; ok {
			return code, true, true
		}
	}
	return 0, false, false
}

// Supported reports whether r can be produced by the key mapping table.
func Supported(r rune) bool {
	_, _, ok := Lookup(r)
	return ok
}

// ParseChord parses a key-combination string such as "Ctrl+Shift+A" into the
// modifier codes (in written order) and the final non-modifier key. A chord
// of a single key is allowed; a chord of only modifiers is not.
func ParseChord(chord string) (modifiers []Code, key Code, err error) {
	parts := strings.Split(chord, "+")
	for i, part := range parts {
		part = strings.TrimSpace(part)
		code, ok := FromName(part)
		if !ok && len([]rune(part)) == 1 {
			// Single characters resolve through the typing table ("a", ";").
			r := []rune(strings.ToLower(part))[0]
			code, _, ok = Lookup(r)
		}
		if !ok {
			return nil, 0, fmt.Errorf("unknown key %q in chord %q", part, chord)
		}
		if i == len(parts)-1 {
			key = code
		} else if code.IsModifier() {
			modifiers = append(modifiers, code)
		} else {
			return nil, 0, fmt.Errorf("%q is not a modifier key in chord %q", part, chord)
		}
	}
	if key.IsModifier() && len(modifiers) > 0 {
		return nil, 0, fmt.Errorf("chord %q must end with a non-modifier key", chord)
	}
	return modifiers, key, nil
}
