package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GeminiClient implements Client on top of the Google generative AI SDK.
type GeminiClient struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

func (c *GeminiClient) Generate(ctx context.Context, contextText, instruction string) (string, error) {
	cctx, cancel := callContext(ctx, c.Timeout)
	defer cancel()

	client, err := genai.NewClient(cctx, option.WithAPIKey(c.APIKey))
	if err != nil {
		return "", transientErr("gemini", err)
	}
	defer client.Close()

	model := client.GenerativeModel(c.Model)
	resp, err := model.GenerateContent(cctx, genai.Text(composePrompt(contextText, instruction)))
	if err != nil {
		return "", classifyGemini(err)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "", rejectedErr("gemini", fmt.Sprintf("prompt blocked: %s", resp.PromptFeedback.BlockReason))
	}
	txt := strings.TrimSpace(firstText(resp))
	if txt == "" {
		return "", transientErr("gemini", errors.New("empty response"))
	}
	return txt, nil
}

func classifyGemini(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if retryableStatus(gerr.Code) {
			return transientErr("gemini", err)
		}
		return rejectedErr("gemini", gerr.Message)
	}
	return classifyTransport("gemini", err)
}

func firstText(r *genai.GenerateContentResponse) string {
	if r == nil {
		return ""
	}
	for _, c := range r.Candidates {
		if c.Content == nil {
			continue
		}
		for _, part := range c.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}
