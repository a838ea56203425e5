package session

import (
	"errors"
	"fmt"

	"github.com/DachengChen/paiData/ai"
	"github.com/DachengChen/paiData/credential"
	"github.com/DachengChen/paiData/dataset"
)

// Present turns a completion result into the text shown to the user.
// An answer is returned exactly as received.
func Present(res ai.Result) string {
	if text, ok := res.Answer(); ok {
		return text
	}
	f, _ := res.Failure()

	switch f.Kind {
	case ai.NetworkFailure:
		if f.Detail == "timeout" {
			return "The request timed out before the service answered. Try again."
		}
		return fmt.Sprintf("Could not reach the completion service (%s). Check your network and try again.", f.Detail)
	case ai.Unauthorized:
		return fmt.Sprintf("The service rejected the API key (%s). Check the key and restart.", f.Detail)
	case ai.ServiceError:
		return fmt.Sprintf("The service could not answer this question (%s). Try again in a moment.", f.Detail)
	case ai.MalformedResponse:
		return fmt.Sprintf("The service returned a response that could not be read (%s).", f.Detail)
	default:
		return fmt.Sprintf("An error occurred during the request: %s", f.Detail)
	}
}

// PresentError turns a session start failure into one line of text.
// label names the credential, e.g. "OpenAI API key".
func PresentError(err error, label string) string {
	if errors.Is(err, credential.ErrMissing) {
		return fmt.Sprintf("%s not found. Application cannot proceed.", label)
	}

	var le *dataset.LoadError
	if errors.As(err, &le) {
		switch le.Kind {
		case dataset.LoadFileNotFound:
			return fmt.Sprintf("Dataset not found at path: %s", le.Source)
		case dataset.LoadEncoding:
			return fmt.Sprintf("Dataset %s could not be decoded: %v", le.Source, le.Err)
		default:
			return fmt.Sprintf("An error occurred while reading the dataset %s: %v", le.Source, le.Err)
		}
	}

	return fmt.Sprintf("An error occurred: %v", err)
}
