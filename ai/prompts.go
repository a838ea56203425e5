package ai

import (
	"errors"
	"strings"

	"github.com/DachengChen/paiData/dataset"
)

// ErrEmptyInput is returned for an empty or whitespace-only question.
// Callers treat it as a no-op, not a failure.
var ErrEmptyInput = errors.New("question is empty")

// System prompt and user template shared across all protocols.

const systemPromptAnalyst = `You are a data analyst. Analyze the dataset and answer questions based on it.`

// userTemplateDataset places the rendered table before the question.
// {context} and {question} are substituted in a single pass, so a question
// that itself contains "{context}" is sent literally.
const userTemplateDataset = "Here is the dataset:\n\n{context}\n\nQuestion: {question}"

// Template is the wording of a conversation.
type Template struct {
	System string
	User   string
}

// DefaultTemplate returns the built-in data-analyst prompt.
func DefaultTemplate() Template {
	return Template{System: systemPromptAnalyst, User: userTemplateDataset}
}

// TemplateFromConfig overrides the defaults with non-empty values.
func TemplateFromConfig(system, user string) Template {
	t := DefaultTemplate()
	if strings.TrimSpace(system) != "" {
		t.System = system
	}
	if strings.TrimSpace(user) != "" {
		t.User = user
	}
	return t
}

// Assemble builds the conversation for one question using the default template.
func Assemble(fragment dataset.Fragment, question string) (Conversation, error) {
	return DefaultTemplate().Assemble(fragment, question)
}

// Assemble builds the conversation for one question. An empty fragment is
// passed through unchanged.
func (t Template) Assemble(fragment dataset.Fragment, question string) (Conversation, error) {
	if strings.TrimSpace(question) == "" {
		return Conversation{}, ErrEmptyInput
	}

	r := strings.NewReplacer("{context}", fragment.Text, "{question}", question)
	return Conversation{
		System: Message{Role: RoleSystem, Content: t.System},
		User:   Message{Role: RoleUser, Content: r.Replace(t.User)},
	}, nil
}
