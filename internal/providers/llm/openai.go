package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClient implements Client using the official openai-go SDK
// (chat completions).
type OpenAIClient struct {
	Model   string
	Timeout time.Duration
	opts    []option.RequestOption
}

func NewOpenAIClient(apiKey, baseURL, model string, timeout time.Duration) *OpenAIClient {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(baseURL, "/")))
	}
	return &OpenAIClient{Model: model, Timeout: timeout, opts: opts}
}

func (c *OpenAIClient) Generate(ctx context.Context, contextText, instruction string) (string, error) {
	cctx, cancel := callContext(ctx, c.Timeout)
	defer cancel()

	client := openai.NewClient(c.opts...)
	resp, err := client.Chat.Completions.New(cctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(composePrompt(contextText, instruction)),
		},
		Temperature: openai.Float(0.7),
	})
	if err != nil {
		return "", classifyOpenAI(err)
	}
	if len(resp.Choices) == 0 {
		return "", transientErr("openai", errors.New("empty choices"))
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func classifyOpenAI(err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		if retryableStatus(apierr.StatusCode) {
			return transientErr("openai", err)
		}
		return rejectedErr("openai", apierr.Error())
	}
	return classifyTransport("openai", err)
}
