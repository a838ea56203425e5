package ai

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/DachengChen/paiData/credential"
)

// Ollama speaks the /api/chat protocol of an Ollama server. The credential
// is sent as a bearer token for servers behind an authenticating proxy.
type Ollama struct {
	host string
	hc   *http.Client
}

var _ Protocol = (*Ollama)(nil)

// NewOllama creates an Ollama protocol for host.
func NewOllama(host string, hc *http.Client) *Ollama {
	return &Ollama{host: host, hc: hc}
}

func (o *Ollama) Name() string { return "ollama" }

func (o *Ollama) Send(ctx context.Context, cred credential.Credential, req CompletionRequest) (string, error) {
	options := map[string]any{"temperature": req.Temperature}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}
	body := map[string]any{
		"model":    req.Model,
		"messages": req.Conversation.Messages(),
		"stream":   false,
		"options":  options,
	}

	respBody, err := postJSON(ctx, o.hc, o.Name(), o.host+"/api/chat", bearer(cred.Secret()), body)
	if err != nil {
		return "", err
	}

	var result struct {
		Message *struct {
			Content *string `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", shapeErrorf(o.Name(), "body does not match the chat schema")
	}
	if result.Message == nil {
		return "", shapeErrorf(o.Name(), "missing message")
	}
	if result.Message.Content == nil {
		return "", shapeErrorf(o.Name(), "message has no content")
	}
	return *result.Message.Content, nil
}
