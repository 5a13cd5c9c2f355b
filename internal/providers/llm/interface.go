package llm

import (
	"context"
	"strings"
	"time"
)

// DefaultTimeout bounds a single generation call unless a provider is
// configured otherwise.
const DefaultTimeout = 60 * time.Second

// Client is the minimal generation capability the refinement engines need.
// Any provider implementation should satisfy this.
type Client interface {
	// Generate produces text for an instruction, optionally grounded in prior
	// context (the accumulated transcript or synthesis). Each call is
	// independent: no session state is carried between calls. Failures are
	// reported as *GenerationError so callers can tell transient faults from
	// explicit rejections.
	Generate(ctx context.Context, contextText, instruction string) (string, error)
}

// composePrompt joins instruction and working context into one user prompt.
func composePrompt(contextText, instruction string) string {
	contextText = strings.TrimSpace(contextText)
	if contextText == "" {
		return instruction
	}
	return instruction + "\n\nWorking text:\n```\n" + contextText + "\n```"
}

func callContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}
