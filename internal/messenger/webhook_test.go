package messenger

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiendasmegan/meganbot/internal/config"
)

type recordingHandler struct {
	mu     sync.Mutex
	events []Event
}

func (h *recordingHandler) HandleEvent(_ context.Context, ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, ev)
}

func (h *recordingHandler) snapshot() []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Event, len(h.events))
	copy(out, h.events)
	return out
}

func newTestWebhook(appSecret string) (http.Handler, *recordingHandler) {
	h := &recordingHandler{}
	cfg := config.MessengerConfig{
		VerifyToken: "verify-me",
		AppSecret:   appSecret,
	}
	return NewWebhook(cfg, h, slog.Default()), h
}

func TestWebhookVerifyHandshake(t *testing.T) {
	t.Parallel()

	wh, _ := newTestWebhook("")

	req := httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=12345", nil)
	rec := httptest.NewRecorder()
	wh.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "12345", rec.Body.String())
}

func TestWebhookVerifyRejectsBadToken(t *testing.T) {
	t.Parallel()

	wh, _ := newTestWebhook("")

	req := httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", nil)
	rec := httptest.NewRecorder()
	wh.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestWebhookReceiveClassifiesEvents(t *testing.T) {
	t.Parallel()

	wh, h := newTestWebhook("")

	body := `{
		"object": "page",
		"entry": [{
			"messaging": [
				{"sender": {"id": "u1"}, "message": {"text": "hola"}},
				{"sender": {"id": "u2"}, "message": {"text": "x", "quick_reply": {"payload": "UBICACION_LIMA"}}},
				{"sender": {"id": "u3"}, "postback": {"payload": "CABALLEROS"}},
				{"sender": {"id": "u4"}}
			]
		}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	rec := httptest.NewRecorder()
	wh.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "EVENT_RECEIVED", rec.Body.String())

	require.Eventually(t, func() bool { return len(h.snapshot()) == 3 }, time.Second, time.Millisecond)

	byID := map[string]Event{}
	for _, ev := range h.snapshot() {
		byID[ev.SenderID] = ev
	}
	assert.Equal(t, EventText, byID["u1"].Kind)
	assert.Equal(t, "hola", byID["u1"].Text)
	assert.Equal(t, EventQuickReply, byID["u2"].Kind)
	assert.Equal(t, "UBICACION_LIMA", byID["u2"].Payload)
	assert.Equal(t, EventPostback, byID["u3"].Kind)
	assert.Equal(t, "CABALLEROS", byID["u3"].Payload)
}

func TestWebhookReceiveRejectsNonPage(t *testing.T) {
	t.Parallel()

	wh, h := newTestWebhook("")

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"object": "instagram", "entry": []}`))
	rec := httptest.NewRecorder()
	wh.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, h.snapshot())
}

func TestWebhookSignatureCheck(t *testing.T) {
	t.Parallel()

	const secret = "app-secret"
	body := `{"object": "page", "entry": []}`

	sign := func(payload string) string {
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write([]byte(payload))
		return "sha256=" + hex.EncodeToString(mac.Sum(nil))
	}

	cases := []struct {
		name     string
		header   string
		wantCode int
	}{
		{"valid signature", sign(body), http.StatusOK},
		{"missing header", "", http.StatusForbidden},
		{"malformed header", "not-a-signature", http.StatusForbidden},
		{"wrong signature", "sha256=" + strings.Repeat("0", 64), http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			wh, _ := newTestWebhook(secret)
			req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
			if tc.header != "" {
				req.Header.Set("X-Hub-Signature-256", tc.header)
			}
			rec := httptest.NewRecorder()
			wh.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantCode, rec.Code)
		})
	}
}

func TestWebhookSignatureSkippedWithoutSecret(t *testing.T) {
	t.Parallel()

	wh, _ := newTestWebhook("")

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"object": "page", "entry": []}`))
	rec := httptest.NewRecorder()
	wh.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWebhookHealth(t *testing.T) {
	t.Parallel()

	wh, _ := newTestWebhook("")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	wh.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
