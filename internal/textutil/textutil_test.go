package textutil

import "testing"

func TestValidateText(t *testing.T) {
	valid, unsupported := ValidateText("Hello, World! 123\n")
	if !valid || len(unsupported) != 0 {
		t.Errorf("ValidateText = (%v, %v), want (true, [])", valid, unsupported)
	}

	valid, unsupported = ValidateText("Hello 世界!")
	if valid {
		t.Error("text with CJK characters reported as valid")
	}
	if len(unsupported) != 2 || unsupported[0] != '世' || unsupported[1] != '界' {
		t.Errorf("unsupported = %q, want [世 界]", unsupported)
	}
}

func TestValidateTextDeduplicates(t *testing.T) {
	_, unsupported := ValidateText("世a世b界世")
	if len(unsupported) != 2 || unsupported[0] != '世' || unsupported[1] != '界' {
		t.Errorf("unsupported = %q, want [世 界] in first-occurrence order", unsupported)
	}
}

func TestValidateTextEmpty(t *testing.T) {
	valid, unsupported := ValidateText("")
	if !valid || unsupported != nil {
		t.Errorf("ValidateText(\"\") = (%v, %v), want (true, nil)", valid, unsupported)
	}
}

func TestSplitBySupport(t *testing.T) {
	segments := SplitBySupport("Hello 世界 World")
	want := []Segment{
		{Text: "Hello ", Supported: true},
		{Text: "世界", Supported: false},
		{Text: " World", Supported: true},
	}
	if len(segments) != len(want) {
		t.Fatalf("got %d segments %v, want %d", len(segments), segments, len(want))
	}
	for i := range want {
		if segments[i] != want[i] {
			t.Errorf("segment %d = %+v, want %+v", i, segments[i], want[i])
		}
	}
}

func TestSplitBySupportSingleSegment(t *testing.T) {
	segments := SplitBySupport("all ascii")
	if len(segments) != 1 || !segments[0].Supported || segments[0].Text != "all ascii" {
		t.Errorf("SplitBySupport = %v, want one supported segment", segments)
	}
}

func TestSplitBySupportEmpty(t *testing.T) {
	if segments := SplitBySupport(""); segments != nil {
		t.Errorf("SplitBySupport(\"\") = %v, want nil", segments)
	}
}

func TestNormalizeLineEndings(t *testing.T) {
	tests := []struct {
		in     string
		target string
		want   string
	}{
		{"Line1\r\nLine2\rLine3\n", "\n", "Line1\nLine2\nLine3\n"},
		{"a\nb", "\r\n", "a\r\nb"},
		{"a\r\nb\nc", "\r", "a\rb\rc"},
		{"no endings", "\n", "no endings"},
		{"", "\n", ""},
	}
	for _, tt := range tests {
		got, err := NormalizeLineEndings(tt.in, tt.target)
		if err != nil {
			t.Errorf("NormalizeLineEndings(%q, %q): %v", tt.in, tt.target, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeLineEndings(%q, %q) = %q, want %q", tt.in, tt.target, got, tt.want)
		}
	}
}

func TestNormalizeLineEndingsInvalidTarget(t *testing.T) {
	for _, target := range []string{"", "\n\n", "x"} {
		if _, err := NormalizeLineEndings("abc", target); err == nil {
			t.Errorf("NormalizeLineEndings(target %q): expected error", target)
		}
	}
}

func TestEscapeSpecialChars(t *testing.T) {
	got := EscapeSpecialChars("a\nb\tc\rd")
	want := `a\nb\tc\rd`
	if got != want {
		t.Errorf("EscapeSpecialChars = %q, want %q", got, want)
	}

	if got := EscapeSpecialChars("plain"); got != "plain" {
		t.Errorf("EscapeSpecialChars(plain) = %q", got)
	}
}
