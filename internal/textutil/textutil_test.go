package textutil

import (
	"strings"
	"testing"
)

func TestWordCount(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"Hello.", 1},
		{"one two three", 3},
		{"hyphen-ated counts as two", 5},
		{"  spaced   out\n\nwords ", 3},
		{"numbers 123 count", 3},
	}
	for _, c := range cases {
		if got := WordCount(c.in); got != c.want {
			t.Fatalf("WordCount(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestCompactWhitespace(t *testing.T) {
	in := "a\tb\r\n\n  c   d  \n\n\ne"
	want := "a b\nc d\ne"
	if got := CompactWhitespace(in); got != want {
		t.Fatalf("CompactWhitespace = %q, want %q", got, want)
	}
}

func TestContextWindowShortTextUnchanged(t *testing.T) {
	in := "short text"
	if got := ContextWindow(in, 100); got != in {
		t.Fatalf("short text should pass through, got %q", got)
	}
	if got := ContextWindow(in, 0); got != in {
		t.Fatalf("zero limit should disable capping, got %q", got)
	}
}

func TestContextWindowKeepsTailVerbatim(t *testing.T) {
	old := strings.Repeat("Old sentence one. Old detail follows here.\n\n", 50)
	tail := "The final paragraph must survive intact."
	text := old + tail

	got := ContextWindow(text, 500)
	if len(got) > 600 {
		t.Fatalf("capped text too long: %d chars", len(got))
	}
	if !strings.Contains(got, tail) {
		t.Fatalf("tail paragraph missing from capped text")
	}
	if !strings.Contains(got, "Old sentence one.") {
		t.Fatalf("older content should be condensed, not dropped")
	}
}

func TestContextWindowSingleHugeParagraph(t *testing.T) {
	text := strings.Repeat("x", 2000)
	got := ContextWindow(text, 500)
	if len(got) != 500 {
		t.Fatalf("expected 500-char tail, got %d", len(got))
	}
}

func TestFirstSentence(t *testing.T) {
	if got := FirstSentence("One. Two. Three."); got != "One." {
		t.Fatalf("FirstSentence = %q", got)
	}
	if got := FirstSentence("no terminator here"); got != "no terminator here" {
		t.Fatalf("FirstSentence fallback = %q", got)
	}
}
