package ai

import (
	"context"
	"net/http"

	"github.com/DachengChen/paiData/credential"
)

// Chat speaks the OpenAI chat-completions protocol. Groq and other
// OpenAI-compatible services use it too with a different base URL.
type Chat struct {
	baseURL string
	hc      *http.Client
}

var _ Protocol = (*Chat)(nil)

// NewChat creates a chat-completions protocol rooted at baseURL.
func NewChat(baseURL string, hc *http.Client) *Chat {
	return &Chat{baseURL: baseURL, hc: hc}
}

func (c *Chat) Name() string { return "chat" }

func (c *Chat) Send(ctx context.Context, cred credential.Credential, req CompletionRequest) (string, error) {
	body := map[string]any{
		"model":       req.Model,
		"messages":    req.Conversation.Messages(),
		"temperature": req.Temperature,
	}
	if req.MaxTokens > 0 {
		body["max_tokens"] = req.MaxTokens
	}

	respBody, err := postJSON(ctx, c.hc, c.Name(), c.baseURL+"/chat/completions", bearer(cred.Secret()), body)
	if err != nil {
		return "", err
	}
	return ExtractAnswer(c.Name(), respBody)
}

// Prompt speaks the legacy text-completions protocol. The conversation is
// flattened into a single prompt.
type Prompt struct {
	baseURL string
	hc      *http.Client
}

var _ Protocol = (*Prompt)(nil)

// NewPrompt creates a text-completions protocol rooted at baseURL.
func NewPrompt(baseURL string, hc *http.Client) *Prompt {
	return &Prompt{baseURL: baseURL, hc: hc}
}

func (p *Prompt) Name() string { return "prompt" }

func (p *Prompt) Send(ctx context.Context, cred credential.Credential, req CompletionRequest) (string, error) {
	body := map[string]any{
		"model":       req.Model,
		"prompt":      req.Conversation.Flatten(),
		"temperature": req.Temperature,
	}
	if req.MaxTokens > 0 {
		body["max_tokens"] = req.MaxTokens
	}

	respBody, err := postJSON(ctx, p.hc, p.Name(), p.baseURL+"/completions", bearer(cred.Secret()), body)
	if err != nil {
		return "", err
	}
	return ExtractAnswer(p.Name(), respBody)
}
