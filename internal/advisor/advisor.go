// Package advisor provides the conversational AI backends used in advisor
// mode and the parser that turns model replies into dispatchable commands.
package advisor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tiendasmegan/meganbot/internal/config"
)

// Role values for conversation history entries.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a sender's conversation history.
type Message struct {
	Role    string
	Content string
}

// Client defines the interface for the conversational AI backend. Reply
// receives the system block and the sender's full history (oldest first,
// the new user turn already appended) and returns the raw model reply.
type Client interface {
	Reply(ctx context.Context, system string, history []Message) (string, error)
}

// NewClient creates a Client based on the configured provider. It acts as a
// factory, selecting either the OpenAI or Gemini implementation.
func NewClient(ctx context.Context, cfg config.AdvisorConfig, log *slog.Logger) (Client, error) {
	log.Info("Initializing advisor client", "provider", cfg.Provider, "model", cfg.Model)

	switch cfg.Provider {
	case "openai":
		return newOpenAIClient(cfg, log), nil
	case "gemini":
		client, err := newGeminiClient(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown advisor provider: %s", cfg.Provider)
	}
}
