// Package timing models inter-keystroke delays, fixed or derived from a
// words-per-minute typing speed with humanized variance.
package timing

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"keyemu/internal/vk"
)

// AverageWordLength is the conventional word size used to convert between
// words and characters per minute.
const AverageWordLength = 5

// ErrInvalidWPM is returned for a non-positive words-per-minute value.
var ErrInvalidWPM = errors.New("words per minute must be positive")

// Profile describes a typist: base inter-character delay plus the variance
// and pause parameters used to humanize it. Immutable once built.
type Profile struct {
	WPM           int
	BaseDelay     time.Duration
	Variance      time.Duration
	PauseChance   float64
	PauseDuration time.Duration
}

// NewProfile derives a profile from a words-per-minute rate. Slower typists
// get proportionally more variance.
func NewProfile(wpm int) (*Profile, error) {
	if wpm <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWPM, wpm)
	}

	base := time.Duration(float64(time.Minute) / float64(wpm*AverageWordLength))

	var ratio float64
	switch {
	case wpm >= 80:
		ratio = 0.2
	case wpm >= 40:
		ratio = 0.3
	default:
		ratio = 0.4
	}

	return &Profile{
		WPM:           wpm,
		BaseDelay:     base,
		Variance:      time.Duration(float64(base) * ratio),
		PauseChance:   0.05,
		PauseDuration: 3 * base,
	}, nil
}

// HumanizeDelay returns base plus a uniform random offset in
// [-variance, +variance], clamped at zero.
func HumanizeDelay(base, variance time.Duration) time.Duration {
	if base < 0 || variance < 0 {
		return 0
	}
	offset := time.Duration((rand.Float64()*2 - 1) * float64(variance))
	d := base + offset
	if d < 0 {
		return 0
	}
	return d
}

// NextDelay draws one inter-character delay: occasionally a longer thinking
// pause, otherwise a humanized base delay.
func (p *Profile) NextDelay() time.Duration {
	if rand.Float64() < p.PauseChance {
		return p.PauseDuration
	}
	return HumanizeDelay(p.BaseDelay, p.Variance)
}

// Delays produces one delay per typeable character of text. Characters
// without a key mapping contribute nothing.
func (p *Profile) Delays(text string) []time.Duration {
	var out []time.Duration
	for _, r := range text {
		if !vk.Supported(r) {
			continue
		}
		out = append(out, p.NextDelay())
	}
	return out
}

// EstimateTypingTime sums a drawn delay sequence for text. The result varies
// between calls by design.
func (p *Profile) EstimateTypingTime(text string) time.Duration {
	var total time.Duration
	for _, d := range p.Delays(text) {
		total += d
	}
	return total
}

// CalculateTypingTime estimates how long typing text with a fixed delay
// takes: one delay per typeable character. Characters without a key mapping
// contribute nothing.
func CalculateTypingTime(text string, delay time.Duration) (time.Duration, error) {
	if delay < 0 {
		return 0, fmt.Errorf("negative delay %v", delay)
	}

	typeable := 0
	for _, r := range text {
		if vk.Supported(r) {
			typeable++
		}
	}
	return time.Duration(typeable) * delay, nil
}
