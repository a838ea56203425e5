package dataset

import "fmt"

// LoadErrorKind classifies why a dataset could not be made available.
type LoadErrorKind int

const (
	LoadOther LoadErrorKind = iota
	LoadFileNotFound
	LoadEncoding
)

func (k LoadErrorKind) String() string {
	switch k {
	case LoadFileNotFound:
		return "file not found"
	case LoadEncoding:
		return "encoding error"
	default:
		return "load error"
	}
}

// LoadError is returned by every dataset source. It is a different type
// from the completion errors in package ai so callers can tell a dataset
// that never loaded apart from a question that failed.
type LoadError struct {
	Kind   LoadErrorKind
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("dataset %s: %s: %v", e.Source, e.Kind, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
