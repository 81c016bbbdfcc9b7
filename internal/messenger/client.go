package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/tiendasmegan/meganbot/internal/config"
)

// Client sends messages through the Graph API /me/messages endpoint.
type Client struct {
	httpClient *http.Client
	log        *slog.Logger
	endpoint   string
}

// NewClient constructs a Client from the Messenger configuration. The page
// access token is baked into the endpoint query string the way the Graph
// API expects it.
func NewClient(cfg config.MessengerConfig, log *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.SendTimeout},
		log:        log.With("component", "messenger_client"),
		endpoint:   cfg.GraphURL + "?access_token=" + url.QueryEscape(cfg.PageAccessToken),
	}
}

// SendText sends a plain text message.
func (c *Client) SendText(ctx context.Context, recipientID, text string) error {
	return c.send(ctx, recipientID, sendMessage{Text: text})
}

// SendImage sends a single image attachment by URL.
func (c *Client) SendImage(ctx context.Context, recipientID, imageURL string) error {
	return c.send(ctx, recipientID, sendMessage{
		Attachment: &attachment{
			Type:    "image",
			Payload: attachmentPayload{URL: imageURL, IsReusable: true},
		},
	})
}

// SendButtonTemplate sends a button template: text plus up to 3 buttons.
func (c *Client) SendButtonTemplate(ctx context.Context, recipientID, text string, buttons []Button) error {
	return c.send(ctx, recipientID, sendMessage{
		Attachment: &attachment{
			Type: "template",
			Payload: attachmentPayload{
				TemplateType: "button",
				Text:         text,
				Buttons:      buttons,
			},
		},
	})
}

// SendQuickReplies sends text with selectable quick-reply chips.
func (c *Client) SendQuickReplies(ctx context.Context, recipientID, text string, replies []QuickReply) error {
	return c.send(ctx, recipientID, sendMessage{Text: text, QuickReplies: replies})
}

func (c *Client) send(ctx context.Context, recipientID string, msg sendMessage) error {
	body, err := json.Marshal(sendRequest{
		Recipient: recipient{ID: recipientID},
		Message:   msg,
	})
	if err != nil {
		return fmt.Errorf("failed to encode send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("graph API returned %d: %s", resp.StatusCode, detail)
	}

	c.log.Debug("Message delivered", "recipient_id", recipientID)
	return nil
}
