package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/DachengChen/paiData/credential"
)

// Placeholder answers offline. It is used for demos and development when
// no real service is configured.
type Placeholder struct {
	delay time.Duration
}

var _ Protocol = (*Placeholder)(nil)

// NewPlaceholder creates an offline protocol that answers after delay.
func NewPlaceholder(delay time.Duration) *Placeholder {
	return &Placeholder{delay: delay}
}

func (p *Placeholder) Name() string { return "placeholder" }

func (p *Placeholder) Send(ctx context.Context, _ credential.Credential, req CompletionRequest) (string, error) {
	// Simulate network latency.
	select {
	case <-time.After(p.delay):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	return fmt.Sprintf("[Placeholder]\n\nYou asked: %q\n\n"+
		"The prompt carried %d characters of dataset context. "+
		"Configure a real provider (openai, groq, anthropic, gemini, ollama) to get an actual answer.",
		truncate(req.Question, 80), len([]rune(req.Conversation.User.Content))), nil
}
