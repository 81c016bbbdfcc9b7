package advisor

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/tiendasmegan/meganbot/internal/config"
)

// openAIClient implements Client using the OpenAI chat completions API.
type openAIClient struct {
	client      openai.Client
	log         *slog.Logger
	model       string
	temperature float64
	timeout     time.Duration
}

func newOpenAIClient(cfg config.AdvisorConfig, log *slog.Logger) *openAIClient {
	opts := []option.RequestOption{option.WithAPIKey(cfg.Token)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &openAIClient{
		client:      openai.NewClient(opts...),
		log:         log.With("component", "advisor_openai"),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
	}
}

func (c *openAIClient) Reply(ctx context.Context, system string, history []Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	messages = append(messages, openai.SystemMessage(system))
	for _, m := range history {
		if m.Role == RoleAssistant {
			messages = append(messages, openai.AssistantMessage(m.Content))
		} else {
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	startTime := time.Now()
	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    messages,
		Temperature: openai.Float(c.temperature),
	})
	if err != nil {
		c.log.Error("OpenAI API call failed", "error", err, "duration_ms", time.Since(startTime).Milliseconds())
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("no response choices returned from OpenAI")
	}

	reply := strings.TrimSpace(completion.Choices[0].Message.Content)
	c.log.Debug("OpenAI reply generated",
		"turns", len(history),
		"duration_ms", time.Since(startTime).Milliseconds())
	return reply, nil
}
