package assistant

import (
	"aiva/internal/config"
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one turn of a conversation passed to the completion backend.
type Message struct {
	Role    string
	Content string
}

// Service produces assistant replies from a conversation history.
type Service interface {
	ProviderID() string
	Complete(ctx context.Context, history []Message) (string, error)
}

// NewService builds the configured completion backend. A nil Service with
// a nil error means assistant replies are disabled.
func NewService(cfg config.Config) (Service, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.AssistantProvider))
	switch provider {
	case "":
		logrus.Info("assistant provider not configured, replies disabled")
		return nil, nil
	case "openai":
		return NewOpenAI(cfg)
	case "ark":
		return NewArk(cfg)
	default:
		return nil, fmt.Errorf("unsupported assistant provider: %s", cfg.AssistantProvider)
	}
}
