package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// AnthropicClient implements Client against the Messages API with a plain
// HTTP client; no SDK dependency is needed for a single endpoint.
type AnthropicClient struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

func (c *AnthropicClient) Generate(ctx context.Context, contextText, instruction string) (string, error) {
	body := map[string]any{
		"model":      c.Model,
		"max_tokens": 4096,
		"messages": []map[string]any{{
			"role":    "user",
			"content": []map[string]string{{"type": "text", "text": composePrompt(contextText, instruction)}},
		}},
	}
	var resp struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := c.postJSON(ctx, body, &resp); err != nil {
		return "", err
	}
	if len(resp.Content) == 0 {
		return "", transientErr("anthropic", errors.New("no content"))
	}
	return strings.TrimSpace(resp.Content[0].Text), nil
}

func (c *AnthropicClient) postJSON(ctx context.Context, body any, out any) error {
	b, _ := json.Marshal(body)
	url := os.Getenv("ANTHROPIC_API_URL")
	if url == "" {
		url = "https://api.anthropic.com/v1/messages"
	}
	cctx, cancel := callContext(ctx, c.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(cctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return rejectedErr("anthropic", err.Error())
	}
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")
	req.Header.Set("content-type", "application/json")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return classifyTransport("anthropic", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return json.NewDecoder(res.Body).Decode(out)
	}
	var eresp map[string]any
	_ = json.NewDecoder(res.Body).Decode(&eresp)
	msg := fmt.Sprintf("anthropic status %d: %v", res.StatusCode, eresp)
	if retryableStatus(res.StatusCode) {
		return transientErr("anthropic", errors.New(msg))
	}
	return rejectedErr("anthropic", msg)
}
