package session

import (
	"fmt"
	"time"

	"github.com/DachengChen/paiData/ai"
	"github.com/DachengChen/paiData/config"
	"github.com/DachengChen/paiData/dataset"
)

// Config is everything a session needs besides the dataset, the protocol
// and the credential. It is built once and passed by value.
type Config struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Policy      dataset.Policy
	Template    ai.Template
	Timeout     time.Duration
}

// FromConfig derives a session Config from application settings.
func FromConfig(c *config.Config) (Config, error) {
	policy := dataset.Full()
	if c.Context.Policy != "" {
		p, err := dataset.ParsePolicy(c.Context.Policy)
		if err != nil {
			return Config{}, fmt.Errorf("context.policy: %w", err)
		}
		policy = p
	}

	return Config{
		Model:       c.AI.ResolvedModel(),
		Temperature: c.AI.Temperature,
		MaxTokens:   c.AI.MaxTokens,
		Policy:      policy,
		Template:    ai.TemplateFromConfig(c.AI.SystemPrompt, c.AI.UserTemplate),
		Timeout:     c.AI.Timeout,
	}, nil
}
