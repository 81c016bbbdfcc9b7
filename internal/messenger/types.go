// Package messenger implements the Facebook Messenger surface: the Graph
// API send client and the webhook that receives and classifies platform
// events.
package messenger

import "context"

// EventKind classifies an inbound messaging event.
type EventKind int

// The three inbound event classes the platform delivers.
const (
	EventText EventKind = iota
	EventQuickReply
	EventPostback
)

// Event is one classified inbound messaging event.
type Event struct {
	SenderID string
	Kind     EventKind
	// Text carries the message text for EventText.
	Text string
	// Payload carries the structured payload for EventQuickReply and
	// EventPostback.
	Payload string
}

// Handler processes classified inbound events.
type Handler interface {
	HandleEvent(ctx context.Context, ev Event)
}

// Button is one button of a button template. Type is "postback" or
// "web_url"; Payload is set for postbacks, URL for web links.
type Button struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Payload string `json:"payload,omitempty"`
	URL     string `json:"url,omitempty"`
}

// PostbackButton builds a postback button.
func PostbackButton(title, payload string) Button {
	return Button{Type: "postback", Title: title, Payload: payload}
}

// URLButton builds a web-link button.
func URLButton(title, url string) Button {
	return Button{Type: "web_url", Title: title, URL: url}
}

// QuickReply is one selectable quick-reply chip.
type QuickReply struct {
	ContentType string `json:"content_type"`
	Title       string `json:"title"`
	Payload     string `json:"payload"`
}

// TextQuickReply builds a text quick reply.
func TextQuickReply(title, payload string) QuickReply {
	return QuickReply{ContentType: "text", Title: title, Payload: payload}
}

// Outbound send request shapes, mirroring the Graph API /me/messages
// payload.

type sendRequest struct {
	Recipient recipient   `json:"recipient"`
	Message   sendMessage `json:"message"`
}

type recipient struct {
	ID string `json:"id"`
}

type sendMessage struct {
	Text         string       `json:"text,omitempty"`
	Attachment   *attachment  `json:"attachment,omitempty"`
	QuickReplies []QuickReply `json:"quick_replies,omitempty"`
}

type attachment struct {
	Type    string            `json:"type"`
	Payload attachmentPayload `json:"payload"`
}

type attachmentPayload struct {
	URL          string   `json:"url,omitempty"`
	IsReusable   bool     `json:"is_reusable,omitempty"`
	TemplateType string   `json:"template_type,omitempty"`
	Text         string   `json:"text,omitempty"`
	Buttons      []Button `json:"buttons,omitempty"`
}

// Inbound webhook payload shapes.

type webhookPayload struct {
	Object string         `json:"object"`
	Entry  []webhookEntry `json:"entry"`
}

type webhookEntry struct {
	Messaging []messagingEvent `json:"messaging"`
}

type messagingEvent struct {
	Sender   eventSender   `json:"sender"`
	Message  *eventMessage `json:"message"`
	Postback *eventPayload `json:"postback"`
}

type eventSender struct {
	ID string `json:"id"`
}

type eventMessage struct {
	Text       string        `json:"text"`
	QuickReply *eventPayload `json:"quick_reply"`
}

type eventPayload struct {
	Payload string `json:"payload"`
}
