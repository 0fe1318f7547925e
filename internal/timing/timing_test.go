package timing

import (
	"errors"
	"testing"
	"time"
)

func TestNewProfileInvalidWPM(t *testing.T) {
	for _, wpm := range []int{0, -1, -60} {
		if _, err := NewProfile(wpm); !errors.Is(err, ErrInvalidWPM) {
			t.Errorf("NewProfile(%d) = %v, want ErrInvalidWPM", wpm, err)
		}
	}
}

func TestNewProfileBaseDelay(t *testing.T) {
	// 60 WPM * 5 chars/word = 300 chars/min -> 200ms per char
	p, err := NewProfile(60)
	if err != nil {
		t.Fatalf("NewProfile(60): %v", err)
	}
	if p.BaseDelay != 200*time.Millisecond {
		t.Errorf("BaseDelay = %v, want 200ms", p.BaseDelay)
	}
	if p.PauseDuration != 3*p.BaseDelay {
		t.Errorf("PauseDuration = %v, want %v", p.PauseDuration, 3*p.BaseDelay)
	}
	if p.PauseChance != 0.05 {
		t.Errorf("PauseChance = %v, want 0.05", p.PauseChance)
	}
}

func TestNewProfileVarianceBands(t *testing.T) {
	tests := []struct {
		wpm   int
		ratio float64
	}{
		{120, 0.2},
		{80, 0.2},
		{60, 0.3},
		{40, 0.3},
		{30, 0.4},
		{10, 0.4},
	}
	for _, tt := range tests {
		p, err := NewProfile(tt.wpm)
		if err != nil {
			t.Fatalf("NewProfile(%d): %v", tt.wpm, err)
		}
		want := time.Duration(float64(p.BaseDelay) * tt.ratio)
		if p.Variance != want {
			t.Errorf("NewProfile(%d).Variance = %v, want %v", tt.wpm, p.Variance, want)
		}
	}
}

func TestFasterTypistHasShorterDelay(t *testing.T) {
	fast, _ := NewProfile(60)
	slow, _ := NewProfile(30)
	if fast.BaseDelay >= slow.BaseDelay {
		t.Errorf("60 WPM delay %v not shorter than 30 WPM delay %v",
			fast.BaseDelay, slow.BaseDelay)
	}
}

func TestHumanizeDelayBounds(t *testing.T) {
	base := 100 * time.Millisecond
	variance := 30 * time.Millisecond

	for i := 0; i < 1000; i++ {
		d := HumanizeDelay(base, variance)
		if d < base-variance || d > base+variance {
			t.Fatalf("HumanizeDelay = %v, outside [%v, %v]", d, base-variance, base+variance)
		}
	}
}

func TestHumanizeDelayClampsAtZero(t *testing.T) {
	// Variance larger than base can push below zero; result clamps.
	for i := 0; i < 1000; i++ {
		if d := HumanizeDelay(10*time.Millisecond, 50*time.Millisecond); d < 0 {
			t.Fatalf("HumanizeDelay = %v, want >= 0", d)
		}
	}
	if d := HumanizeDelay(-time.Millisecond, time.Millisecond); d != 0 {
		t.Errorf("HumanizeDelay(negative base) = %v, want 0", d)
	}
}

func TestNextDelayBounds(t *testing.T) {
	p, _ := NewProfile(60)
	max := p.PauseDuration
	if p.BaseDelay+p.Variance > max {
		max = p.BaseDelay + p.Variance
	}
	for i := 0; i < 1000; i++ {
		d := p.NextDelay()
		if d < 0 || d > max {
			t.Fatalf("NextDelay = %v, outside [0, %v]", d, max)
		}
	}
}

func TestDelaysSkipsUnsupportedChars(t *testing.T) {
	p, _ := NewProfile(60)

	// "Hello 世界" has 6 typeable characters.
	delays := p.Delays("Hello 世界")
	if len(delays) != 6 {
		t.Errorf("Delays returned %d entries, want 6", len(delays))
	}
	if got := p.Delays(""); got != nil {
		t.Errorf("Delays(\"\") = %v, want nil", got)
	}
}

func TestCalculateTypingTime(t *testing.T) {
	// 11 typeable characters at 100ms each.
	got, err := CalculateTypingTime("Hello World", 100*time.Millisecond)
	if err != nil {
		t.Fatalf("CalculateTypingTime: %v", err)
	}
	if got != 1100*time.Millisecond {
		t.Errorf("CalculateTypingTime = %v, want 1.1s", got)
	}
}

func TestCalculateTypingTimeSkipsUnsupported(t *testing.T) {
	got, err := CalculateTypingTime("ab世", 50*time.Millisecond)
	if err != nil {
		t.Fatalf("CalculateTypingTime: %v", err)
	}
	if got != 100*time.Millisecond {
		t.Errorf("CalculateTypingTime = %v, want 100ms", got)
	}
}

func TestCalculateTypingTimeNegativeDelay(t *testing.T) {
	if _, err := CalculateTypingTime("abc", -time.Millisecond); err == nil {
		t.Fatal("expected error for negative delay")
	}
}

func TestCalculateTypingTimeEmpty(t *testing.T) {
	got, err := CalculateTypingTime("", time.Second)
	if err != nil {
		t.Fatalf("CalculateTypingTime: %v", err)
	}
	if got != 0 {
		t.Errorf("CalculateTypingTime(\"\") = %v, want 0", got)
	}
}
