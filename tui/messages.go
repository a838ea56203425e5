// messages.go defines Bubble Tea messages used for async communication.
//
// Dataset loading and completion requests run in tea.Cmd goroutines and
// report back via these message types, so the UI never blocks.
package tui

import (
	"github.com/DachengChen/paiData/dataset"
	"github.com/DachengChen/paiData/session"
)

// CredentialSubmittedMsg carries the value typed at the credential prompt.
// It is handed to the resolver and never rendered or logged.
type CredentialSubmittedMsg struct {
	Value string
}

// DatasetLoadedMsg is sent when the dataset source has been read.
type DatasetLoadedMsg struct {
	Dataset *dataset.Dataset
	Err     error
}

// AnswerMsg is sent when a question has been answered or has failed.
type AnswerMsg struct {
	Outcome session.Outcome
}

// StatusMsg is a transient status message for the status bar.
type StatusMsg string
