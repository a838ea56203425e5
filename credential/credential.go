// Package credential resolves the bearer secret used to call the
// completion service.
//
// Resolution order:
//   - a value supplied interactively during this session;
//   - the configured environment variable;
//   - otherwise ErrMissing, and no request may be issued.
//
// A Resolver is owned by one session. Nothing here is process-global and
// nothing is written back to the environment.
package credential

import (
	"errors"
	"os"
	"strings"
	"sync"
)

// DefaultEnvVar is read when no variable name is configured.
const DefaultEnvVar = "OPENAI_API_KEY"

// ErrMissing means no usable credential exists after all resolution steps.
var ErrMissing = errors.New("credential: API key not found")

// Credential is an opaque, non-empty secret.
type Credential struct {
	secret string
}

// Secret returns the raw value for use in an Authorization header.
func (c Credential) Secret() string { return c.secret }

// IsZero reports whether the credential is unset.
func (c Credential) IsZero() bool { return c.secret == "" }

// String never reveals the secret, so a Credential is safe to print or log.
func (c Credential) String() string {
	if c.secret == "" {
		return "<unset>"
	}
	return "<redacted>"
}

// FromString wraps a raw value. Surrounding whitespace is dropped.
func FromString(s string) (Credential, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Credential{}, ErrMissing
	}
	return Credential{secret: s}, nil
}

// Source looks up a credential outside the process, e.g. in the environment.
type Source interface {
	Lookup() (string, bool)
	Name() string
}

// EnvSource reads a single named environment variable.
type EnvSource struct {
	Var string
}

func (s EnvSource) Name() string { return "env:" + s.Var }

func (s EnvSource) Lookup() (string, bool) {
	v, ok := os.LookupEnv(s.Var)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// Resolver holds one session's credential.
type Resolver struct {
	source Source

	mu       sync.Mutex
	supplied Credential
	resolved Credential
}

// NewResolver creates a resolver over the given external source.
// A nil source means only interactively supplied values count.
func NewResolver(source Source) *Resolver {
	return &Resolver{source: source}
}

// NewEnvResolver reads envVar, or DefaultEnvVar when envVar is empty.
func NewEnvResolver(envVar string) *Resolver {
	if envVar == "" {
		envVar = DefaultEnvVar
	}
	return NewResolver(EnvSource{Var: envVar})
}

// Source returns the external source, for status messages.
func (r *Resolver) Source() Source { return r.source }

// Supply records a value entered by the user. It takes precedence over the
// environment for the rest of the session. An empty value is ignored and
// reported as ErrMissing.
func (r *Resolver) Supply(value string) error {
	c, err := FromString(value)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.supplied = c
	r.resolved = c
	return nil
}

// Resolve returns the session credential. Repeated calls return the same
// value until Supply replaces it.
func (r *Resolver) Resolve() (Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.resolved.IsZero() {
		return r.resolved, nil
	}
	if !r.supplied.IsZero() {
		r.resolved = r.supplied
		return r.resolved, nil
	}
	if r.source != nil {
		if v, ok := r.source.Lookup(); ok {
			c, err := FromString(v)
			if err == nil {
				r.resolved = c
				return c, nil
			}
		}
	}
	return Credential{}, ErrMissing
}
