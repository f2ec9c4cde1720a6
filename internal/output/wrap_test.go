package output

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		want  string
	}{
		{name: "Fits", input: "short", width: 10, want: "short"},
		{name: "Breaks at space", input: "hello world", width: 5, want: "hello\nworld"},
		{name: "Packs words", input: "hello world foo", width: 10, want: "hello\nworld foo"},
		{name: "Hard breaks long word", input: "abcdefghij", width: 4, want: "abcd\nefgh\nij"},
		{name: "Long word after short", input: "a abcdefghij", width: 4, want: "a\nabcd\nefgh\nij"},
		{name: "Wide characters", input: "漢字漢字", width: 4, want: "漢字\n漢字"},
		{name: "Combining marks", input: "e\u0301e\u0301e\u0301", width: 2, want: "e\u0301e\u0301\ne\u0301"},
		{name: "Escapes have no width", input: "\x1b[31mhello\x1b[0m world", width: 5, want: "\x1b[31mhello\x1b[0m\nworld"},
		{name: "Keeps newlines", input: "ab\ncd\n", width: 10, want: "ab\ncd\n"},
		{name: "Keeps indentation", input: "  hello world", width: 8, want: "  hello\nworld"},
		{name: "Zero width disables", input: "hello world", width: 0, want: "hello world"},
		{name: "Empty", input: "", width: 3, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(tt.input, tt.width)
			if got != tt.want {
				t.Errorf("Wrap(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.want)
			}
		})
	}
}

func TestWrap_EscapeOnDroppedSpaceIsKept(t *testing.T) {
	got := Wrap("\x1b[31mhello \x1b[0mworld", 5)
	want := "\x1b[31mhello\n\x1b[0mworld"
	if got != want {
		t.Fatalf("Wrap = %q, want %q", got, want)
	}
}

func TestWrap_Tabs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		want  string
	}{
		{name: "FitsKeepsTabs", input: "a\tb", width: 9, want: "a\tb"},
		{name: "BreaksAtTabStops", input: "aaaa\tbbbb\tcccc\tdddd", width: 10, want: "aaaa\nbbbb\ncccc\ndddd"},
		{name: "ExpandedWhenWrapped", input: "ab\tc de", width: 10, want: "ab      c\nde"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(tt.input, tt.width)
			if got != tt.want {
				t.Fatalf("Wrap(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.want)
			}
			for _, line := range strings.Split(got, "\n") {
				if StringWidth(line) > tt.width {
					t.Errorf("line %q is %d cells wide, limit %d", line, StringWidth(line), tt.width)
				}
			}
		})
	}
}

func TestStringWidth(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{input: "", want: 0},
		{input: "abc", want: 3},
		{input: "\x1b[1mab\x1b[0m", want: 2},
		{input: "漢", want: 2},
		{input: "e\u0301", want: 1},
		{input: "a\tb", want: 9},
		{input: "\ta", want: 9},
		{input: "abcdefgh\t", want: 16},
		{input: "\x1b[31ma\x1b[0m\tb", want: 9},
	}
	for _, tt := range tests {
		if got := StringWidth(tt.input); got != tt.want {
			t.Errorf("StringWidth(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

// --- Property Tests ---

func genText() *rapid.Generator[string] {
	pieces := []string{"a", "b", "c", "word", " ", "  ", "漢", "e\u0301", "\x1b[31m", "\x1b[0m", "\n", "\t"}
	return rapid.Custom(func(t *rapid.T) string {
		return strings.Join(rapid.SliceOfN(rapid.SampledFrom(pieces), 0, 40).Draw(t, "pieces"), "")
	})
}

func visibleSegments(line string) int {
	n := 0
	for _, seg := range segments(line) {
		if !isEscape(seg) {
			n++
		}
	}
	return n
}

func TestRapidWrap_LinesFitWidth(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := genText().Draw(t, "text")
		width := rapid.IntRange(1, 12).Draw(t, "width")

		for _, line := range strings.Split(Wrap(text, width), "\n") {
			if visibleSegments(line) > 1 && StringWidth(line) > width {
				t.Fatalf("line %q is %d cells wide, limit %d", line, StringWidth(line), width)
			}
		}
	})
}

func TestRapidWrap_OnlyWhitespaceChanges(t *testing.T) {
	strip := strings.NewReplacer(" ", "", "\t", "", "\n", "")
	rapid.Check(t, func(t *rapid.T) {
		text := genText().Draw(t, "text")
		width := rapid.IntRange(1, 12).Draw(t, "width")

		got := Wrap(text, width)
		if strip.Replace(got) != strip.Replace(text) {
			t.Fatalf("Wrap(%q, %d) = %q changed non-space content", text, width, got)
		}
		if strings.Count(got, "\n") < strings.Count(text, "\n") {
			t.Fatalf("Wrap(%q, %d) = %q lost newlines", text, width, got)
		}
	})
}
