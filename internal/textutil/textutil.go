// Package textutil provides the text helpers shared by the refinement engines:
// word counting, whitespace normalization, and context-window capping.
package textutil

import (
	"regexp"
	"strings"
)

var wordPattern = regexp.MustCompile(`\w+`)

// WordCount counts word tokens the same way the prompts talk about them:
// runs of letters, digits, or underscores.
func WordCount(s string) int {
	return len(wordPattern.FindAllStringIndex(s, -1))
}

// CompactWhitespace collapses runs of spaces inside each line and drops
// empty lines, keeping one newline between the survivors.
func CompactWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	var out []string
	for _, ln := range strings.Split(s, "\n") {
		ln = strings.Join(strings.Fields(ln), " ")
		if ln != "" {
			out = append(out, ln)
		}
	}
	return strings.Join(out, "\n")
}

// ContextWindow caps text to roughly limit characters for use as generation
// context. The newest paragraphs are kept verbatim; older paragraphs are
// reduced to their leading sentence so the narrative thread survives instead
// of being cut off mid-document. limit <= 0 means no cap.
func ContextWindow(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}
	paras := strings.Split(text, "\n\n")

	// Reserve most of the budget for the tail, kept as-is.
	tailBudget := limit * 3 / 4
	tailStart := len(paras)
	size := 0
	for i := len(paras) - 1; i >= 0; i-- {
		size += len(paras[i]) + 2
		if size > tailBudget {
			break
		}
		tailStart = i
	}
	if tailStart == len(paras) {
		// The newest paragraph alone exceeds the budget; keep its tail.
		return text[len(text)-limit:]
	}

	var head []string
	for _, p := range paras[:tailStart] {
		if s := FirstSentence(p); s != "" {
			head = append(head, s)
		}
	}
	condensed := strings.Join(head, " ")
	tail := strings.Join(paras[tailStart:], "\n\n")
	if len(condensed)+len(tail) > limit && len(condensed) > limit/4 {
		condensed = condensed[:limit/4]
	}
	if condensed == "" {
		return tail
	}
	return condensed + "\n\n" + tail
}

// FirstSentence returns the leading sentence of a paragraph, or the whole
// paragraph when no sentence boundary is found.
func FirstSentence(p string) string {
	p = strings.TrimSpace(p)
	for i := 0; i < len(p)-1; i++ {
		switch p[i] {
		case '.', '!', '?':
			if p[i+1] == ' ' || p[i+1] == '\n' {
				return p[:i+1]
			}
		}
	}
	return p
}
