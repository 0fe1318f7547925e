// Package textutil provides pure helpers for checking and preparing text
// before it is typed.
package textutil

import (
	"fmt"
	"strings"

	"keyemu/internal/vk"
)

// Segment is a run of consecutive characters sharing one support status.
type Segment struct {
	Text      string
	Supported bool
}

// ValidateText checks every character against the key mapping table.
// Unsupported runes are returned de-duplicated, in first-occurrence order.
func ValidateText(text string) (bool, []rune) {
	var unsupported []rune
	seen := make(map[rune]struct{})
	for _, r := range text {
		if vk.Supported(r) {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		unsupported = append(unsupported, r)
	}
	return len(unsupported) == 0, unsupported
}

// SplitBySupport partitions text into segments by greedily grouping
// consecutive characters of the same support status.
func SplitBySupport(text string) []Segment {
	if text == "" {
		return nil
	}

	var segments []Segment
	var current strings.Builder
	currentSupported := vk.Supported([]rune(text)[0])

	for _, r := range text {
		supported := vk.Supported(r)
		if supported != currentSupported {
			segments = append(segments, Segment{Text: current.String(), Supported: currentSupported})
			current.Reset()
			currentSupported = supported
		}
		current.WriteRune(r)
	}
	segments = append(segments, Segment{Text: current.String(), Supported: currentSupported})
	return segments
}

// NormalizeLineEndings rewrites \r\n pairs and lone \r to \n, then converts
// to the requested target ending. Target must be "\n", "\r\n", or "\r".
func NormalizeLineEndings(text, target string) (string, error) {
	switch target {
	case "\n", "\r\n", "\r":
	default:
		return "", fmt.Errorf("invalid line ending target %q", target)
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	if target != "\n" {
		text = strings.ReplaceAll(text, "\n", target)
	}
	return text, nil
}

// escapeReplacer rewrites control characters to their escape sequences for
// display.
var escapeReplacer = strings.NewReplacer(
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
	"\b", `\b`,
	"\f", `\f`,
	"\v", `\v`,
	"\x00", `\0`,
)

// EscapeSpecialChars makes control characters visible for log and error
// output.
func EscapeSpecialChars(text string) string {
	return escapeReplacer.Replace(text)
}
