package llm

import (
	"context"
	"strings"
)

var fillerSentence = strings.Fields(
	"The campaign moved forward through the region as supply lines stretched and commanders weighed every report from the front.")

// MockClient is used when no real provider is configured. It deterministically
// emits filler narration so refinement loops still converge by word count or
// loop budget during local runs.
type MockClient struct {
	// WordsPerCall controls how much text each call appends. Zero means 120.
	WordsPerCall int
}

func (m *MockClient) Generate(ctx context.Context, contextText, instruction string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	n := m.WordsPerCall
	if n <= 0 {
		n = 120
	}
	words := make([]string, 0, n)
	for len(words) < n {
		words = append(words, fillerSentence[len(words)%len(fillerSentence)])
	}
	return strings.Join(words, " ") + ".", nil
}
