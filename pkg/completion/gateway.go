package completion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"legal-assistant-be/pkg/llm"
)

// Typed gateway failures. The session layer recovers from both by
// substituting a fallback reply; they never abort a turn.
var (
	ErrTimeout  = errors.New("completion backend timed out")
	ErrUpstream = errors.New("completion backend failed")
)

// Gateway invokes the external completion capability with a bounded
// timeout. It is stateless between calls and owns no storage.
type Gateway struct {
	provider llm.LLMProvider
	timeout  time.Duration
}

func NewGateway(provider llm.LLMProvider, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Gateway{
		provider: provider,
		timeout:  timeout,
	}
}

// Complete sends the prior history plus the new user text to the model
// and returns its reply. The passed context scopes cancellation from the
// caller's side; the gateway adds its own deadline on top.
func (g *Gateway) Complete(ctx context.Context, history []llm.Message, newText string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: "user", Content: newText})

	reply, err := g.provider.Chat(ctx, messages)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return reply, nil
}
