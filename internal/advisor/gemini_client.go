package advisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/tiendasmegan/meganbot/internal/config"
)

// geminiClient implements Client using the Google Gemini Go SDK.
type geminiClient struct {
	client      *genai.Client
	log         *slog.Logger
	model       string
	temperature float64
	timeout     time.Duration
}

func newGeminiClient(ctx context.Context, cfg config.AdvisorConfig, log *slog.Logger) (*geminiClient, error) {
	if cfg.Token == "" {
		return nil, errors.New("advisor token is required for Gemini")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.Token,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &geminiClient{
		client:      client,
		log:         log.With("component", "advisor_gemini"),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
	}, nil
}

func (c *geminiClient) Reply(ctx context.Context, system string, history []Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	contents := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		role := genai.RoleUser
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}

	temperature := float32(c.temperature)
	startTime := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
		Temperature:       &temperature,
	})
	if err != nil {
		c.log.Error("Gemini API call failed", "error", err, "duration_ms", time.Since(startTime).Milliseconds())
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no response candidates returned from Gemini")
	}

	var builder strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Text == "" {
			continue
		}
		builder.WriteString(part.Text)
	}

	reply := strings.TrimSpace(builder.String())
	c.log.Debug("Gemini reply generated",
		"turns", len(history),
		"duration_ms", time.Since(startTime).Milliseconds())
	return reply, nil
}
