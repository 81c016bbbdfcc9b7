package messenger

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tiendasmegan/meganbot/internal/config"
)

var (
	errSignatureMissing   = errors.New("X-Hub-Signature-256 header missing")
	errSignatureMalformed = errors.New("malformed signature header")
	errSignatureMismatch  = errors.New("signature mismatch")
)

// Webhook receives platform events: the GET verification handshake and the
// POST event intake. Events are classified and handed to the Handler
// without blocking the HTTP response.
type Webhook struct {
	log         *slog.Logger
	verifyToken string
	appSecret   string
	handler     Handler
}

// NewWebhook builds the HTTP routes for the webhook endpoint.
func NewWebhook(cfg config.MessengerConfig, handler Handler, log *slog.Logger) http.Handler {
	w := &Webhook{
		log:         log.With("component", "webhook"),
		verifyToken: cfg.VerifyToken,
		appSecret:   cfg.AppSecret,
		handler:     handler,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/webhook", w.verify)
	r.Post("/webhook", w.receive)
	r.Get("/health", func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})
	return r
}

// verify answers the platform's subscription handshake: echo the challenge
// when the mode and the shared verify token match.
func (w *Webhook) verify(rw http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode == "subscribe" && token == w.verifyToken {
		w.log.Info("Webhook verified")
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte(challenge))
		return
	}

	w.log.Warn("Webhook verification rejected", "mode", mode)
	rw.WriteHeader(http.StatusForbidden)
}

func (w *Webhook) receive(rw http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(rw, "failed to read body", http.StatusBadRequest)
		return
	}

	if err := w.checkSignature(r, body); err != nil {
		w.log.Warn("Webhook signature rejected", "error", err)
		rw.WriteHeader(http.StatusForbidden)
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		http.Error(rw, "invalid payload", http.StatusBadRequest)
		return
	}

	if payload.Object != "page" {
		rw.WriteHeader(http.StatusNotFound)
		return
	}

	// Events are processed without holding up the HTTP response; the
	// platform only wants a prompt 200.
	ctx := context.WithoutCancel(r.Context())
	for _, entry := range payload.Entry {
		for _, msg := range entry.Messaging {
			ev, ok := classify(msg)
			if !ok {
				continue
			}
			go w.handler.HandleEvent(ctx, ev)
		}
	}

	rw.WriteHeader(http.StatusOK)
	_, _ = rw.Write([]byte("EVENT_RECEIVED"))
}

// checkSignature validates X-Hub-Signature-256 when an app secret is
// configured; without one the check is skipped.
func (w *Webhook) checkSignature(r *http.Request, body []byte) error {
	if w.appSecret == "" {
		return nil
	}

	header := r.Header.Get("X-Hub-Signature-256")
	if header == "" {
		return errSignatureMissing
	}
	parts := strings.SplitN(header, "=", 2)
	if len(parts) != 2 {
		return errSignatureMalformed
	}

	mac := hmac.New(sha256.New, []byte(w.appSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(parts[1])) {
		return errSignatureMismatch
	}
	return nil
}

func classify(msg messagingEvent) (Event, bool) {
	switch {
	case msg.Message != nil && msg.Message.QuickReply != nil:
		return Event{SenderID: msg.Sender.ID, Kind: EventQuickReply, Payload: msg.Message.QuickReply.Payload}, true
	case msg.Message != nil && msg.Message.Text != "":
		return Event{SenderID: msg.Sender.ID, Kind: EventText, Text: msg.Message.Text}, true
	case msg.Postback != nil:
		return Event{SenderID: msg.Sender.ID, Kind: EventPostback, Payload: msg.Postback.Payload}, true
	default:
		return Event{}, false
	}
}
