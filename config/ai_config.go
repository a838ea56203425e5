// ai_config.go holds the AI provider configuration.
//
// The credential itself is never part of the config file: it comes from
// the environment variable named by credential_env, or is typed in at
// startup.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Protocol names understood by ai.NewProtocol.
const (
	ProtocolChat        = "chat"
	ProtocolPrompt      = "prompt"
	ProtocolAnthropic   = "anthropic"
	ProtocolOllama      = "ollama"
	ProtocolGemini      = "gemini"
	ProtocolPlaceholder = "placeholder"
)

// AIConfig holds the provider selection and sampling parameters.
type AIConfig struct {
	Provider      string        `mapstructure:"provider"` // "openai", "groq", "anthropic", "gemini", "ollama", "placeholder"
	Protocol      string        `mapstructure:"protocol"` // empty = provider default
	Model         string        `mapstructure:"model"`
	BaseURL       string        `mapstructure:"base_url"`
	CredentialEnv string        `mapstructure:"credential_env"`
	Temperature   float64       `mapstructure:"temperature"`
	MaxTokens     int           `mapstructure:"max_tokens"`
	Timeout       time.Duration `mapstructure:"timeout"`

	// Prompt wording. Empty means the built-in data-analyst template.
	SystemPrompt string `mapstructure:"system_prompt"`
	UserTemplate string `mapstructure:"user_template"`
}

// ProviderPreset is the default wiring of a named provider.
type ProviderPreset struct {
	Protocol      string
	BaseURL       string
	CredentialEnv string
	Model         string
}

// Providers lists the built-in presets. OpenAI-compatible services
// (vLLM, Together, DeepSeek, ...) use "openai" with a custom base_url.
var Providers = map[string]ProviderPreset{
	"openai": {
		Protocol:      ProtocolChat,
		BaseURL:       "https://api.openai.com/v1",
		CredentialEnv: "OPENAI_API_KEY",
		Model:         "gpt-4",
	},
	"groq": {
		Protocol:      ProtocolChat,
		BaseURL:       "https://api.groq.com/openai/v1",
		CredentialEnv: "GROQ_API_KEY",
		Model:         "llama-3.1-8b-instant",
	},
	"anthropic": {
		Protocol:      ProtocolAnthropic,
		BaseURL:       "https://api.anthropic.com/v1",
		CredentialEnv: "ANTHROPIC_API_KEY",
		Model:         "claude-sonnet-4-20250514",
	},
	"gemini": {
		Protocol:      ProtocolGemini,
		CredentialEnv: "GEMINI_API_KEY",
		Model:         "gemini-2.0-flash",
	},
	"ollama": {
		Protocol:      ProtocolOllama,
		BaseURL:       "http://localhost:11434",
		CredentialEnv: "OLLAMA_API_KEY",
		Model:         "llama3.2",
	},
	"placeholder": {
		Protocol:      ProtocolPlaceholder,
		CredentialEnv: "PAIDATA_API_KEY",
		Model:         "placeholder",
	},
}

// defaultPromptModel is used by the legacy completions endpoint, which
// does not serve chat models.
const defaultPromptModel = "gpt-3.5-turbo-instruct"

// DefaultAIConfig returns sensible defaults.
func DefaultAIConfig() AIConfig {
	return AIConfig{
		Provider:    "openai",
		Temperature: 0.5,
		MaxTokens:   512,
		Timeout:     60 * time.Second,
	}
}

func (c AIConfig) preset() ProviderPreset {
	if p, ok := Providers[strings.ToLower(c.Provider)]; ok {
		return p
	}
	return Providers["openai"]
}

// ResolvedProtocol returns the configured protocol or the provider's default.
func (c AIConfig) ResolvedProtocol() string {
	if c.Protocol != "" {
		return strings.ToLower(c.Protocol)
	}
	return c.preset().Protocol
}

// ResolvedModel returns the configured model or the provider's default.
func (c AIConfig) ResolvedModel() string {
	if c.Model != "" {
		return c.Model
	}
	if c.ResolvedProtocol() == ProtocolPrompt {
		return defaultPromptModel
	}
	return c.preset().Model
}

// ResolvedBaseURL returns the configured endpoint or the provider's default.
func (c AIConfig) ResolvedBaseURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return c.preset().BaseURL
}

// ResolvedCredentialEnv names the environment variable holding the API key.
func (c AIConfig) ResolvedCredentialEnv() string {
	if c.CredentialEnv != "" {
		return c.CredentialEnv
	}
	return c.preset().CredentialEnv
}

// CredentialLabel is the human name of the credential, e.g. "OpenAI API key".
func (c AIConfig) CredentialLabel() string {
	switch strings.ToLower(c.Provider) {
	case "anthropic":
		return "Anthropic API key"
	case "gemini":
		return "Gemini API key"
	case "groq":
		return "Groq API key"
	case "ollama":
		return "Ollama API key"
	case "placeholder":
		return "placeholder API key"
	default:
		return "OpenAI API key"
	}
}

func (c AIConfig) validate() []string {
	var warnings []string

	if _, ok := Providers[strings.ToLower(c.Provider)]; !ok {
		warnings = append(warnings, fmt.Sprintf("unknown ai.provider %q, falling back to openai defaults", c.Provider))
	}
	switch c.ResolvedProtocol() {
	case ProtocolChat, ProtocolPrompt, ProtocolAnthropic, ProtocolOllama, ProtocolGemini, ProtocolPlaceholder:
	default:
		warnings = append(warnings, fmt.Sprintf("unknown ai.protocol %q", c.Protocol))
	}
	if c.Temperature < 0 || c.Temperature > 2.0 {
		warnings = append(warnings, fmt.Sprintf("ai.temperature %.2f is outside recommended range [0.0, 2.0]", c.Temperature))
	}
	if c.MaxTokens < 0 {
		warnings = append(warnings, fmt.Sprintf("ai.max_tokens %d is negative", c.MaxTokens))
	}
	if c.Timeout < 0 {
		warnings = append(warnings, fmt.Sprintf("ai.timeout %s is negative", c.Timeout))
	}
	if c.UserTemplate != "" && !strings.Contains(c.UserTemplate, "{question}") {
		warnings = append(warnings, "ai.user_template does not contain {question}")
	}
	return warnings
}
