package ai

import "fmt"

// Kind classifies a failed completion attempt.
type Kind int

const (
	NetworkFailure Kind = iota + 1
	Unauthorized
	ServiceError
	MalformedResponse
)

func (k Kind) String() string {
	switch k {
	case NetworkFailure:
		return "NetworkFailure"
	case Unauthorized:
		return "Unauthorized"
	case ServiceError:
		return "ServiceError"
	case MalformedResponse:
		return "MalformedResponse"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Failure describes why no answer was produced.
type Failure struct {
	Kind   Kind
	Detail string
}

func (f Failure) Error() string {
	return f.Kind.String() + ": " + f.Detail
}

// Result is either an answer or a failure, never both.
type Result struct {
	answer  string
	failure *Failure
}

// NewAnswer wraps a successful answer.
func NewAnswer(text string) Result {
	return Result{answer: text}
}

// NewFailure wraps a classified failure.
func NewFailure(kind Kind, detail string) Result {
	return Result{failure: &Failure{Kind: kind, Detail: detail}}
}

// Answer returns the answer text; ok is false for a failure.
func (r Result) Answer() (text string, ok bool) {
	if r.failure != nil {
		return "", false
	}
	return r.answer, true
}

// Failure returns the failure; ok is false for an answer.
func (r Result) Failure() (f Failure, ok bool) {
	if r.failure == nil {
		return Failure{}, false
	}
	return *r.failure, true
}

// OK reports whether the result is an answer.
func (r Result) OK() bool { return r.failure == nil }
