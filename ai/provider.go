// Package ai turns a dataset context and a question into a completion
// request, sends it to a language-model service and classifies the result.
//
// Design decisions:
//   - Protocol is a strategy interface so the wire format (OpenAI chat,
//     legacy prompt completions, Anthropic, Ollama, Gemini) can be swapped
//     by configuration without touching the pipeline.
//   - Client.Complete never returns an error: every outcome is a Result,
//     either an answer or a classified failure.
//   - Exactly one request per question. No retries, no streaming.
package ai

import (
	"context"
	"strings"

	"github.com/DachengChen/paiData/credential"
)

// Role identifies who authored a message.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is a single (role, content) pair.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is one system instruction followed by one user message.
// No history is carried between questions.
type Conversation struct {
	System Message
	User   Message
}

// Messages returns the conversation in wire order.
func (c Conversation) Messages() []Message {
	return []Message{c.System, c.User}
}

// Flatten joins the conversation into a single prompt for protocols that
// take plain text, ending with an "Answer:" cue.
func (c Conversation) Flatten() string {
	var sb strings.Builder
	if c.System.Content != "" {
		sb.WriteString(c.System.Content)
		sb.WriteString("\n\n")
	}
	sb.WriteString(c.User.Content)
	sb.WriteString("\nAnswer:")
	return sb.String()
}

// CompletionRequest is built fresh for every question.
type CompletionRequest struct {
	// Question is the text the user typed. It is only used for logs and
	// display; the service sees it inside Conversation.
	Question     string
	Model        string
	Conversation Conversation
	Temperature  float64
	MaxTokens    int // 0 = service default
}

// Protocol is the interface all completion backends must implement.
type Protocol interface {
	// Send issues exactly one request and returns the answer text.
	// Errors should be *StatusError for rejected requests and *ShapeError
	// for responses that do not have the expected structure. Transport
	// errors are passed through, or wrapped in *TransportError when the
	// connection fails while the response body is read.
	Send(ctx context.Context, cred credential.Credential, req CompletionRequest) (string, error)

	// Name returns the protocol name for display and logs.
	Name() string
}
