// Package pipeline holds the single-shot stages that surround the refinement
// engines: transcript generation, purification, keyword tagging, and
// research matching. Each stage is one generation call with no loop
// structure, so they stay out of the refine package.
package pipeline

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/MarcusBloomfield/YoutubeVideoGenerator/internal/prompts"
	"github.com/MarcusBloomfield/YoutubeVideoGenerator/internal/providers/llm"
)

type Pipeline struct {
	Client llm.Client
}

// GenerateTranscript produces a fresh narration transcript for a topic,
// optionally grounded in research material.
func (p *Pipeline) GenerateTranscript(ctx context.Context, topic, research string) (string, error) {
	return p.Client.Generate(ctx, "", prompts.GenerateTranscript(topic, research))
}

// PurifyTranscript cleans a transcript for text-to-speech narration.
func (p *Pipeline) PurifyTranscript(ctx context.Context, transcript string) (string, error) {
	return p.Client.Generate(ctx, transcript, prompts.PurifyTranscript())
}

// SummarizeResearch condenses a research synthesis into a short summary
// suitable for a video description.
func (p *Pipeline) SummarizeResearch(ctx context.Context, topic, synthesis string) (string, error) {
	return p.Client.Generate(ctx, synthesis, prompts.ResearchSummary(topic))
}

// MatchResearch picks the research passages most relevant to a transcript.
func (p *Pipeline) MatchResearch(ctx context.Context, transcript, research string) (string, error) {
	return p.Client.Generate(ctx, research, prompts.MatchResearch(transcript))
}

// TagKeywords extracts up to limit footage keywords for a narration segment.
func (p *Pipeline) TagKeywords(ctx context.Context, text string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}
	resp, err := p.Client.Generate(ctx, "", prompts.TagKeywords(text, limit))
	if err != nil {
		return nil, err
	}
	kws := ParseKeywordList(resp)
	if len(kws) > limit {
		kws = kws[:limit]
	}
	return kws, nil
}

var (
	jsonArrayPattern = regexp.MustCompile(`(?s)\[.*?\]`)
	quotedPattern    = regexp.MustCompile(`"([^"]+)"`)
)

// ParseKeywordList pulls a keyword list out of a model reply. It prefers a
// proper JSON array, falls back to quoted strings, and finally to one
// keyword per line, since models do not reliably honor format instructions.
func ParseKeywordList(resp string) []string {
	if m := jsonArrayPattern.FindString(resp); m != "" {
		var out []string
		if err := json.Unmarshal([]byte(m), &out); err == nil {
			return cleanKeywords(out)
		}
	}
	if quoted := quotedPattern.FindAllStringSubmatch(resp, -1); len(quoted) > 0 {
		out := make([]string, 0, len(quoted))
		for _, m := range quoted {
			out = append(out, m[1])
		}
		return cleanKeywords(out)
	}
	var out []string
	for _, line := range strings.Split(resp, "\n") {
		line = strings.Trim(strings.TrimSpace(line), `"-,`)
		if len(line) > 3 && !strings.HasPrefix(line, "[") && !strings.HasPrefix(line, "]") {
			out = append(out, line)
		}
	}
	return cleanKeywords(out)
}

func cleanKeywords(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, k := range in {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
