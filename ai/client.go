package ai

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/DachengChen/paiData/credential"
)

// ClientOptions tune a Client. The zero value means no timeout and no logging.
type ClientOptions struct {
	// Timeout bounds the single network call. Zero disables it.
	Timeout time.Duration
	Logger  *zap.Logger
}

// Client sends completion requests for one session with one credential.
type Client struct {
	protocol Protocol
	cred     credential.Credential
	timeout  time.Duration
	log      *zap.Logger
}

// NewClient binds a protocol to a resolved credential.
// It panics if protocol is nil or cred is empty: both are programming errors.
func NewClient(protocol Protocol, cred credential.Credential, opts ClientOptions) *Client {
	if protocol == nil {
		panic("ai: NewClient called with nil protocol")
	}
	if cred.IsZero() {
		panic("ai: NewClient called before the credential was resolved")
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{protocol: protocol, cred: cred, timeout: opts.Timeout, log: log}
}

// Protocol returns the protocol name.
func (c *Client) Protocol() string { return c.protocol.Name() }

// Complete issues exactly one request and classifies the outcome. It never
// returns an error and never retries.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) Result {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	name := c.protocol.Name()
	logRequest(c.log, name, req)
	start := time.Now()

	var res Result
	answer, err := c.protocol.Send(ctx, c.cred, req)
	if err != nil {
		f := classify(err)
		res = NewFailure(f.Kind, f.Detail)
	} else {
		res = NewAnswer(answer)
	}

	logResult(c.log, name, res, time.Since(start))
	return res
}
