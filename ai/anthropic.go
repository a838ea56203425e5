package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/DachengChen/paiData/credential"
)

const (
	anthropicVersion   = "2023-06-01"
	anthropicMaxTokens = 1024
)

// Anthropic speaks the Anthropic Messages API.
type Anthropic struct {
	baseURL string
	hc      *http.Client
}

var _ Protocol = (*Anthropic)(nil)

// NewAnthropic creates a Messages API protocol rooted at baseURL.
func NewAnthropic(baseURL string, hc *http.Client) *Anthropic {
	return &Anthropic{baseURL: baseURL, hc: hc}
}

func (a *Anthropic) Name() string { return "anthropic" }

func (a *Anthropic) Send(ctx context.Context, cred credential.Credential, req CompletionRequest) (string, error) {
	// max_tokens is mandatory for this API.
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = anthropicMaxTokens
	}

	// The system prompt is a top-level field, not a message.
	body := map[string]any{
		"model":       req.Model,
		"max_tokens":  maxTokens,
		"temperature": req.Temperature,
		"system":      req.Conversation.System.Content,
		"messages":    []Message{req.Conversation.User},
	}

	header := http.Header{}
	header.Set("x-api-key", cred.Secret())
	header.Set("anthropic-version", anthropicVersion)

	respBody, err := postJSON(ctx, a.hc, a.Name(), a.baseURL+"/messages", header, body)
	if err != nil {
		return "", err
	}

	var result struct {
		Content []struct {
			Type string  `json:"type"`
			Text *string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", shapeErrorf(a.Name(), "body does not match the messages schema")
	}
	if result.Content == nil {
		return "", shapeErrorf(a.Name(), "missing content")
	}

	// Concatenate all text blocks.
	var sb strings.Builder
	found := false
	for _, block := range result.Content {
		if block.Type != "text" || block.Text == nil {
			continue
		}
		found = true
		sb.WriteString(*block.Text)
	}
	if !found {
		return "", shapeErrorf(a.Name(), "no text content blocks")
	}
	return sb.String(), nil
}
