package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/DachengChen/paiData/credential"
)

// Gemini talks to Google's Gemini API through the genai SDK.
type Gemini struct {
	baseURL string
	hc      *http.Client
}

var _ Protocol = (*Gemini)(nil)

// NewGemini creates a Gemini protocol. An empty baseURL uses the SDK default.
func NewGemini(baseURL string, hc *http.Client) *Gemini {
	return &Gemini{baseURL: baseURL, hc: hc}
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Send(ctx context.Context, cred credential.Credential, req CompletionRequest) (answer string, err error) {
	// The SDK converts responses with unchecked type assertions, so a body
	// with the wrong JSON types panics instead of returning an error.
	defer func() {
		if r := recover(); r != nil {
			answer, err = "", shapeErrorf(g.Name(), "unexpected response structure")
		}
	}()

	cc := &genai.ClientConfig{
		APIKey:     cred.Secret(),
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: g.hc,
	}
	if g.baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: g.baseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return "", fmt.Errorf("create gemini client: %w", err)
	}

	gc := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if s := req.Conversation.System.Content; s != "" {
		gc.SystemInstruction = genai.NewContentFromText(s, genai.RoleUser)
	}
	if req.MaxTokens > 0 {
		gc.MaxOutputTokens = int32(req.MaxTokens)
	}

	contents := []*genai.Content{
		genai.NewContentFromText(req.Conversation.User.Content, genai.RoleUser),
	}
	resp, err := client.Models.GenerateContent(ctx, req.Model, contents, gc)
	if err != nil {
		return "", g.convert(err)
	}
	return g.answer(resp)
}

// convert turns SDK API errors into *StatusError. Transport and context
// errors pass through; anything else means the SDK could not decode the
// response body and becomes a *ShapeError.
func (g *Gemini) convert(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &StatusError{Protocol: g.Name(), Code: apiErr.Code, Message: truncate(apiErr.Message, maxDetail)}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &StatusError{Protocol: g.Name(), Code: apiErrPtr.Code, Message: truncate(apiErrPtr.Message, maxDetail)}
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return &TransportError{Protocol: g.Name(), Err: err}
	}
	return shapeErrorf(g.Name(), "response could not be decoded")
}

func (g *Gemini) answer(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", shapeErrorf(g.Name(), "no candidates returned")
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return "", shapeErrorf(g.Name(), "candidate has no content")
	}

	var sb strings.Builder
	found := false
	for _, part := range cand.Content.Parts {
		if part == nil || part.Text == "" {
			continue
		}
		found = true
		sb.WriteString(part.Text)
	}
	if !found {
		return "", shapeErrorf(g.Name(), "candidate has no text parts")
	}
	return sb.String(), nil
}
