// Package prompts holds the instruction templates sent to the generation
// client. Keeping them in one place keeps the engines free of prose.
package prompts

import (
	"fmt"
	"strings"
)

// NoRelevantInfo is the sentinel the extraction prompt asks the model to
// return when a page contains nothing usable for the topic.
const NoRelevantInfo = "NO_RELEVANT_INFO"

// ExpandTranscript asks the model to grow the working transcript by roughly
// wordsNeeded words. Research material is folded in when available.
func ExpandTranscript(wordsNeeded int, research string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `Rewrite and expand the working transcript below into a more detailed and engaging narrative.

Requirements:
- Add approximately %d more words
- Enrich existing paragraphs with specific details, dates, locations, and key figures
- Add relevant historical context, personal stories, and perspectives
- Ensure smooth transitions and a single coherent document
- No formatting or section headers; blocks of text suitable for reading aloud
- Return ONLY the additional narration to append, with no comments or explanations`, wordsNeeded)
	if research = strings.TrimSpace(research); research != "" {
		fmt.Fprintf(&b, "\n\nResearch materials to incorporate:\n%s", research)
	}
	return b.String()
}

// GenerateTranscript produces a fresh narration transcript for a topic.
func GenerateTranscript(topic, research string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `Create a detailed historical transcript for a YouTube video about %s.

Requirements:
- Engaging historical context introduction, then chronological coverage of key events
- Military strategies, tactical decisions, and personal stories where relevant
- Specific dates, locations, and key figures; accurate historical details
- Single cohesive block of text, no section headers or formatting
- Minimum 1000 words, optimized for text-to-speech narration`, topic)
	if research = strings.TrimSpace(research); research != "" {
		fmt.Fprintf(&b, "\n\nResearch content:\n%s", research)
	}
	return b.String()
}

// ResearchExtract asks for a report of topic-relevant information from one
// fetched page, skipping material already present in the working synthesis.
func ResearchExtract(topic, domain string) string {
	return fmt.Sprintf(`Extract information relevant to the topic %q from the page content below, fetched from %s.

Requirements:
- Format as a report with introduction, body, and conclusion
- Include key dates, figures, statistics, and events
- Skip anything already covered by the working text supplied separately
- Be detailed and verbose; ensure historical accuracy
- If the content has nothing relevant to the topic, reply with exactly %s`, topic, domain, NoRelevantInfo)
}

// ResearchSummary asks for a concise closing summary of the synthesis.
func ResearchSummary(topic string) string {
	return fmt.Sprintf(`Create a concise summary of the research on %q below.

Requirements:
- Be clear and concise
- Focus on key points
- Maintain accuracy`, topic)
}

// MatchResearch asks the model to pick out the research passages most
// relevant to a transcript.
func MatchResearch(transcript string) string {
	return fmt.Sprintf(`Analyze the transcript below against the research materials supplied separately and return only the most relevant research content.

Requirements:
- Focus on content that adds context, details, or insights
- Exclude irrelevant or redundant information
- Format as a single block of text, maximum 3000 words

Transcript:
%s`, transcript)
}

// PurifyTranscript strips narration artifacts so the text reads cleanly
// for text-to-speech.
func PurifyTranscript() string {
	return `Clean up the working transcript below for text-to-speech narration.

Requirements:
- Remove stage directions, timestamps, speaker labels, and markup
- Fix obvious transcription errors without changing meaning
- Keep every factual statement; do not shorten the content
- Return ONLY the cleaned transcript`
}

// TagKeywords asks for descriptive keywords for a piece of narration,
// returned as a JSON array so callers can parse them mechanically.
func TagKeywords(text string, limit int) string {
	return fmt.Sprintf(`Extract up to %d keywords describing the visual content of this narration, for matching against stock footage.

Return only a valid JSON array of lowercase strings.

Narration:
%s`, limit, text)
}
