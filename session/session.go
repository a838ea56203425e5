// Package session runs the question-answering pipeline for one user:
// dataset context, prompt assembly, one completion request, and the text
// shown for the outcome.
//
// A Session owns its credential. Nothing is shared between sessions, and
// nothing is written back to the environment.
package session

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/DachengChen/paiData/ai"
	"github.com/DachengChen/paiData/credential"
	"github.com/DachengChen/paiData/dataset"
)

// Session answers questions about one dataset. Questions are expected one
// at a time; the front-end must not submit concurrently.
type Session struct {
	cfg      Config
	ds       *dataset.Dataset
	fragment dataset.Fragment
	client   *ai.Client
	log      *zap.Logger
}

// Outcome is the result of one Ask.
type Outcome struct {
	Question string
	Skipped  bool // empty question, no request was made
	Result   ai.Result
	Elapsed  time.Duration
}

// Text is what the presenter shows. Skipped outcomes have no text.
func (o Outcome) Text() string {
	if o.Skipped {
		return ""
	}
	return Present(o.Result)
}

// New starts a session. It fails with credential.ErrMissing when the
// resolver has nothing, before any request can be made.
func New(cfg Config, ds *dataset.Dataset, protocol ai.Protocol, resolver *credential.Resolver, log *zap.Logger) (*Session, error) {
	if ds == nil {
		return nil, errors.New("session: no dataset")
	}
	if protocol == nil {
		return nil, errors.New("session: no protocol")
	}
	if log == nil {
		log = zap.NewNop()
	}

	cred, err := resolver.Resolve()
	if err != nil {
		return nil, err
	}

	// The dataset is immutable and Build is deterministic, so the fragment
	// is rendered once.
	frag := dataset.Build(ds, cfg.Policy)

	log.Info("session started",
		zap.String("category", "SESSION"),
		zap.String("dataset", ds.Summary()),
		zap.String("protocol", protocol.Name()),
		zap.String("model", cfg.Model),
		zap.Stringer("policy", cfg.Policy),
		zap.Int("context_chars", frag.Len()),
		zap.Bool("context_truncated", frag.Truncated),
	)

	return &Session{
		cfg:      cfg,
		ds:       ds,
		fragment: frag,
		client:   ai.NewClient(protocol, cred, ai.ClientOptions{Timeout: cfg.Timeout, Logger: log}),
		log:      log,
	}, nil
}

// Dataset returns the session's dataset.
func (s *Session) Dataset() *dataset.Dataset { return s.ds }

// Fragment returns the context sent with every question.
func (s *Session) Fragment() dataset.Fragment { return s.fragment }

// Protocol returns the completion protocol name.
func (s *Session) Protocol() string { return s.client.Protocol() }

// Model returns the configured model.
func (s *Session) Model() string { return s.cfg.Model }

// Ask answers one question with exactly one request. An empty question is
// skipped without a request. A failed request leaves the session usable.
func (s *Session) Ask(ctx context.Context, question string) Outcome {
	conv, err := s.cfg.Template.Assemble(s.fragment, question)
	if errors.Is(err, ai.ErrEmptyInput) {
		return Outcome{Question: question, Skipped: true}
	}

	start := time.Now()
	res := s.client.Complete(ctx, ai.CompletionRequest{
		Question:     question,
		Model:        s.cfg.Model,
		Conversation: conv,
		Temperature:  s.cfg.Temperature,
		MaxTokens:    s.cfg.MaxTokens,
	})
	return Outcome{Question: question, Result: res, Elapsed: time.Since(start)}
}
