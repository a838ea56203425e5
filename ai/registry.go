package ai

import (
	"fmt"
	"net/http"
	"time"

	"github.com/DachengChen/paiData/config"
)

// SupportedProtocols lists available protocol names for display.
var SupportedProtocols = []string{
	config.ProtocolChat,
	config.ProtocolPrompt,
	config.ProtocolAnthropic,
	config.ProtocolOllama,
	config.ProtocolGemini,
	config.ProtocolPlaceholder,
}

// placeholderDelay simulates a round trip for the offline protocol.
const placeholderDelay = 500 * time.Millisecond

// NewProtocol creates the protocol selected by the application config.
// hc may be nil, in which case http.DefaultClient is used.
func NewProtocol(cfg config.AIConfig, hc *http.Client) (Protocol, error) {
	baseURL := cfg.ResolvedBaseURL()

	switch p := cfg.ResolvedProtocol(); p {
	case config.ProtocolChat:
		return NewChat(baseURL, hc), nil
	case config.ProtocolPrompt:
		return NewPrompt(baseURL, hc), nil
	case config.ProtocolAnthropic:
		return NewAnthropic(baseURL, hc), nil
	case config.ProtocolOllama:
		return NewOllama(baseURL, hc), nil
	case config.ProtocolGemini:
		return NewGemini(baseURL, hc), nil
	case config.ProtocolPlaceholder:
		return NewPlaceholder(placeholderDelay), nil
	default:
		return nil, fmt.Errorf("unknown AI protocol %q. Supported: %v", p, SupportedProtocols)
	}
}
