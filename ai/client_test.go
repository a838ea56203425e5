package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/DachengChen/paiData/credential"
	"github.com/DachengChen/paiData/dataset"
)

const testSecret = "sk-test-secret"

func testCredential(t *testing.T) credential.Credential {
	t.Helper()
	cred, err := credential.FromString(testSecret)
	require.NoError(t, err)
	return cred
}

func testRequest(t *testing.T) CompletionRequest {
	t.Helper()
	conv, err := Assemble(dataset.Fragment{Text: " Name  Revenue\nAlice     1234"}, "What is the total revenue?")
	require.NoError(t, err)
	return CompletionRequest{Question: "What is the total revenue?", Model: "gpt-4", Conversation: conv, Temperature: 0.5}
}

// captured is what a fake service saw.
type captured struct {
	path   string
	header http.Header
	body   map[string]any
}

func fakeService(t *testing.T, status int, response string) (*httptest.Server, *captured) {
	t.Helper()
	seen := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		seen.path = r.URL.Path
		seen.header = r.Header.Clone()
		_ = json.Unmarshal(raw, &seen.body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return srv, seen
}

func chatClient(t *testing.T, srv *httptest.Server, opts ClientOptions) *Client {
	t.Helper()
	return NewClient(NewChat(srv.URL, srv.Client()), testCredential(t), opts)
}

func requireFailure(t *testing.T, res Result, kind Kind) Failure {
	t.Helper()
	f, failed := res.Failure()
	require.True(t, failed, "expected a failure, got an answer")
	assert.Equal(t, kind, f.Kind, "detail: %s", f.Detail)
	return f
}

func TestChat_Answer(t *testing.T) {
	srv, seen := fakeService(t, http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"1,234"}}]}`)

	res := chatClient(t, srv, ClientOptions{}).Complete(context.Background(), testRequest(t))

	text, ok := res.Answer()
	require.True(t, ok)
	assert.Equal(t, "1,234", text)

	assert.Equal(t, "/chat/completions", seen.path)
	assert.Equal(t, "Bearer "+testSecret, seen.header.Get("Authorization"))
	assert.Equal(t, "gpt-4", seen.body["model"])
	assert.Equal(t, 0.5, seen.body["temperature"])
	assert.NotContains(t, seen.body, "max_tokens")

	msgs, ok := seen.body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])
	assert.Contains(t, msgs[1].(map[string]any)["content"], "Question: What is the total revenue?")
}

func TestChat_SendsMaxTokens(t *testing.T) {
	srv, seen := fakeService(t, http.StatusOK, `{"choices":[{"message":{"content":"ok"}}]}`)
	req := testRequest(t)
	req.MaxTokens = 200

	chatClient(t, srv, ClientOptions{}).Complete(context.Background(), req)
	assert.Equal(t, float64(200), seen.body["max_tokens"])
}

func TestChat_StatusClassification(t *testing.T) {
	tests := []struct {
		status int
		body   string
		kind   Kind
		detail string
	}{
		{http.StatusTooManyRequests, `{"error":{"message":"Rate limit reached"}}`, ServiceError, "HTTP 429 Too Many Requests: Rate limit reached"},
		{http.StatusUnauthorized, `{"error":{"message":"Incorrect API key provided"}}`, Unauthorized, "HTTP 401 Unauthorized: Incorrect API key provided"},
		{http.StatusForbidden, ``, Unauthorized, "HTTP 403 Forbidden"},
		{http.StatusInternalServerError, `upstream exploded`, ServiceError, "HTTP 500 Internal Server Error: upstream exploded"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			srv, _ := fakeService(t, tt.status, tt.body)
			res := chatClient(t, srv, ClientOptions{}).Complete(context.Background(), testRequest(t))
			f := requireFailure(t, res, tt.kind)
			assert.Equal(t, tt.detail, f.Detail)
		})
	}
}

func TestChat_MalformedBodies(t *testing.T) {
	for _, body := range []string{`not json`, `{}`, `{"choices":[]}`, `{"choices":[{"message":{"content":null}}]}`} {
		srv, _ := fakeService(t, http.StatusOK, body)
		res := chatClient(t, srv, ClientOptions{}).Complete(context.Background(), testRequest(t))
		requireFailure(t, res, MalformedResponse)
	}
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	res := chatClient(t, srv, ClientOptions{Timeout: 50 * time.Millisecond}).Complete(context.Background(), testRequest(t))
	f := requireFailure(t, res, NetworkFailure)
	assert.Equal(t, "timeout", f.Detail)
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(NewChat(url, nil), testCredential(t), ClientOptions{Timeout: 5 * time.Second})
	res := client.Complete(context.Background(), testRequest(t))
	f := requireFailure(t, res, NetworkFailure)
	assert.NotContains(t, f.Detail, url)
}

func TestClient_PanicsWithoutCredential(t *testing.T) {
	assert.Panics(t, func() {
		NewClient(NewPlaceholder(0), credential.Credential{}, ClientOptions{})
	})
	assert.Panics(t, func() {
		NewClient(nil, testCredential(t), ClientOptions{})
	})
}

func TestClient_LogsWithoutCredential(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	srv, _ := fakeService(t, http.StatusUnauthorized, `{"error":{"message":"bad key"}}`)

	chatClient(t, srv, ClientOptions{Logger: zap.New(core)}).Complete(context.Background(), testRequest(t))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "ai request", entries[0].Message)
	assert.Equal(t, "What is the total revenue?", entries[0].ContextMap()["question"])
	assert.Equal(t, "ai failure", entries[1].Message)
	assert.Equal(t, "Unauthorized", entries[1].ContextMap()["kind"])

	for _, e := range entries {
		assert.NotContains(t, fmt.Sprint(e.ContextMap()), testSecret)
	}
}

func TestPrompt_FlattensConversation(t *testing.T) {
	srv, seen := fakeService(t, http.StatusOK, `{"choices":[{"text":" 1,234"}]}`)
	req := testRequest(t)
	req.Model = "gpt-3.5-turbo-instruct"
	req.MaxTokens = 200

	client := NewClient(NewPrompt(srv.URL, srv.Client()), testCredential(t), ClientOptions{})
	res := client.Complete(context.Background(), req)

	text, ok := res.Answer()
	require.True(t, ok)
	assert.Equal(t, " 1,234", text)
	assert.Equal(t, "/completions", seen.path)
	prompt, _ := seen.body["prompt"].(string)
	assert.True(t, strings.HasSuffix(prompt, "\nAnswer:"))
	assert.NotContains(t, seen.body, "messages")
	assert.Equal(t, float64(200), seen.body["max_tokens"])
}

func TestAnthropic_Answer(t *testing.T) {
	srv, seen := fakeService(t, http.StatusOK,
		`{"content":[{"type":"text","text":"Total is "},{"type":"tool_use"},{"type":"text","text":"1,234"}]}`)

	client := NewClient(NewAnthropic(srv.URL, srv.Client()), testCredential(t), ClientOptions{})
	res := client.Complete(context.Background(), testRequest(t))

	text, ok := res.Answer()
	require.True(t, ok)
	assert.Equal(t, "Total is 1,234", text)
	assert.Equal(t, "/messages", seen.path)
	assert.Equal(t, testSecret, seen.header.Get("x-api-key"))
	assert.Equal(t, anthropicVersion, seen.header.Get("anthropic-version"))
	assert.Equal(t, float64(anthropicMaxTokens), seen.body["max_tokens"])
	assert.Contains(t, seen.body["system"], "data analyst")
	msgs, _ := seen.body["messages"].([]any)
	assert.Len(t, msgs, 1)
}

func TestAnthropic_Malformed(t *testing.T) {
	for _, body := range []string{`{}`, `{"content":[]}`, `{"content":"text"}`} {
		srv, _ := fakeService(t, http.StatusOK, body)
		client := NewClient(NewAnthropic(srv.URL, srv.Client()), testCredential(t), ClientOptions{})
		requireFailure(t, client.Complete(context.Background(), testRequest(t)), MalformedResponse)
	}
}

func TestOllama_Answer(t *testing.T) {
	srv, seen := fakeService(t, http.StatusOK, `{"model":"llama3.2","message":{"role":"assistant","content":"1,234"},"done":true}`)

	client := NewClient(NewOllama(srv.URL, srv.Client()), testCredential(t), ClientOptions{})
	res := client.Complete(context.Background(), testRequest(t))

	text, ok := res.Answer()
	require.True(t, ok)
	assert.Equal(t, "1,234", text)
	assert.Equal(t, "/api/chat", seen.path)
	assert.Equal(t, false, seen.body["stream"])
	options, _ := seen.body["options"].(map[string]any)
	assert.Equal(t, 0.5, options["temperature"])
}

func TestOllama_ErrorBody(t *testing.T) {
	srv, _ := fakeService(t, http.StatusNotFound, `{"error":"model \"nope\" not found"}`)
	client := NewClient(NewOllama(srv.URL, srv.Client()), testCredential(t), ClientOptions{})
	f := requireFailure(t, client.Complete(context.Background(), testRequest(t)), ServiceError)
	assert.Contains(t, f.Detail, `model "nope" not found`)
}

func TestGemini_Answer(t *testing.T) {
	srv, seen := fakeService(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"1,234"}]}}]}`)

	client := NewClient(NewGemini(srv.URL, srv.Client()), testCredential(t), ClientOptions{})
	req := testRequest(t)
	req.Model = "gemini-2.0-flash"
	res := client.Complete(context.Background(), req)

	text, ok := res.Answer()
	require.True(t, ok)
	assert.Equal(t, "1,234", text)
	assert.True(t, strings.HasSuffix(seen.path, "models/gemini-2.0-flash:generateContent"), seen.path)
}

func TestGemini_Unauthorized(t *testing.T) {
	srv, _ := fakeService(t, http.StatusForbidden,
		`{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`)

	client := NewClient(NewGemini(srv.URL, srv.Client()), testCredential(t), ClientOptions{})
	requireFailure(t, client.Complete(context.Background(), testRequest(t)), Unauthorized)
}

func TestGemini_NoCandidates(t *testing.T) {
	srv, _ := fakeService(t, http.StatusOK, `{"candidates":[]}`)

	client := NewClient(NewGemini(srv.URL, srv.Client()), testCredential(t), ClientOptions{})
	requireFailure(t, client.Complete(context.Background(), testRequest(t)), MalformedResponse)
}

func TestGemini_MalformedBodies(t *testing.T) {
	bodies := map[string]string{
		"wrong type":        `{"candidates":"x"}`,
		"not json":          `<html>gateway</html>`,
		"parts not a list":  `{"candidates":[{"content":{"parts":"x"}}]}`,
		"content not a map": `{"candidates":[{"content":7}]}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			srv, _ := fakeService(t, http.StatusOK, body)
			client := NewClient(NewGemini(srv.URL, srv.Client()), testCredential(t), ClientOptions{})

			f := requireFailure(t, client.Complete(context.Background(), testRequest(t)), MalformedResponse)
			assert.NotContains(t, f.Detail, "unmarshalling")
			assert.NotContains(t, f.Detail, "gateway")
		})
	}
}

// truncatedService declares a long body and closes the connection early.
func truncatedService(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Length", "1000")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, `{"choices":[{"message"`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_ConnectionClosedWhileReading(t *testing.T) {
	protocols := map[string]func(srv *httptest.Server) Protocol{
		"chat":   func(srv *httptest.Server) Protocol { return NewChat(srv.URL, srv.Client()) },
		"ollama": func(srv *httptest.Server) Protocol { return NewOllama(srv.URL, srv.Client()) },
		"gemini": func(srv *httptest.Server) Protocol { return NewGemini(srv.URL, srv.Client()) },
	}
	for name, newProtocol := range protocols {
		t.Run(name, func(t *testing.T) {
			srv := truncatedService(t)
			client := NewClient(newProtocol(srv), testCredential(t), ClientOptions{})

			f := requireFailure(t, client.Complete(context.Background(), testRequest(t)), NetworkFailure)
			assert.Equal(t, "connection closed while reading the response", f.Detail)
		})
	}
}

func TestClient_LogsQuestionNotPrompt(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	req := testRequest(t)
	req.Question = strings.Repeat("why ", 100)
	req.Conversation.User.Content = "no marker here, just rows"

	client := NewClient(NewPlaceholder(0), testCredential(t), ClientOptions{Logger: zap.New(core)})
	client.Complete(context.Background(), req)

	entries := logs.FilterMessage("ai request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, req.Question, entries[0].ContextMap()["question"], "questions up to the log bound are kept whole")
}

func TestPlaceholder(t *testing.T) {
	client := NewClient(NewPlaceholder(0), testCredential(t), ClientOptions{})
	text, ok := client.Complete(context.Background(), testRequest(t)).Answer()
	require.True(t, ok)
	assert.Contains(t, text, `"What is the total revenue?"`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	slow := NewClient(NewPlaceholder(time.Hour), testCredential(t), ClientOptions{})
	f := requireFailure(t, slow.Complete(ctx, testRequest(t)), NetworkFailure)
	assert.Equal(t, "cancelled", f.Detail)
}
