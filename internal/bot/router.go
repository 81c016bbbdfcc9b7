// Package bot implements the conversation core: the intent router, the
// purchase data-collection flow, the advisor-mode AI dispatch, and the
// lifecycle orchestration around them.
package bot

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/tiendasmegan/meganbot/internal/advisor"
	"github.com/tiendasmegan/meganbot/internal/catalog"
	"github.com/tiendasmegan/meganbot/internal/config"
	"github.com/tiendasmegan/meganbot/internal/messenger"
	"github.com/tiendasmegan/meganbot/internal/session"
)

// Sender is the outbound messaging surface the router needs. Delivery
// failures are logged and swallowed; the triggering flow continues as if
// the send succeeded.
type Sender interface {
	SendText(ctx context.Context, recipientID, text string) error
	SendImage(ctx context.Context, recipientID, imageURL string) error
	SendButtonTemplate(ctx context.Context, recipientID, text string, buttons []messenger.Button) error
	SendQuickReplies(ctx context.Context, recipientID, text string, replies []messenger.QuickReply) error
}

var gratitudeRe = regexp.MustCompile(`^(gracias|muchas gracias|mil gracias|gracias!|gracias :\))$`)

// Fixed substring triggers for the promo-of-the-day products, checked
// against the lowercased message.
var promoTriggers = []struct {
	substring string
	promoKey  string
}{
	{"me interesa este reloj exclusivo", "reloj1"},
	{"me interesa este reloj de lujo", "reloj2"},
}

// catalogPayloads maps catalog postback payloads to category names.
var catalogPayloads = map[string]string{
	"CABALLEROS_AUTO":   "caballeros_automaticos",
	"CABALLEROS_CUARZO": "caballeros_cuarzo",
	"DAMAS_AUTO":        "damas_automaticos",
	"DAMAS_CUARZO":      "damas_cuarzo",
}

// Router classifies inbound events and drives the scripted flows or the
// advisor delegate. It owns the session store and the inactivity tracker
// so arming, cancellation, and firing stay next to the state they affect.
type Router struct {
	log      *slog.Logger
	messages *config.MessagesConfig
	sessions *session.Store
	tracker  *session.Tracker
	catalog  *catalog.Catalog
	advisor  advisor.Client
	sender   Sender
}

// NewRouter wires the router with its collaborators and arms the
// inactivity tracker callbacks against them.
func NewRouter(
	log *slog.Logger,
	cfg *config.Config,
	sessions *session.Store,
	clock clockwork.Clock,
	cat *catalog.Catalog,
	advisorClient advisor.Client,
	sender Sender,
) *Router {
	r := &Router{
		log:      log.With("component", "router"),
		messages: &cfg.Messages,
		sessions: sessions,
		catalog:  cat,
		advisor:  advisorClient,
		sender:   sender,
	}
	r.tracker = session.NewTracker(sessions, clock, log, cfg.Session.NudgeAfter, cfg.Session.EndAfter, session.Callbacks{
		OnNudge: r.sendIdleNudge,
		OnEnd:   r.sendSessionEnded,
	})
	return r
}

// Tracker exposes the inactivity tracker, mainly for tests.
func (r *Router) Tracker() *session.Tracker {
	return r.tracker
}

// HandleEvent dispatches one classified inbound event.
func (r *Router) HandleEvent(ctx context.Context, ev messenger.Event) {
	log := r.log.With("sender_id", ev.SenderID)

	switch ev.Kind {
	case messenger.EventQuickReply:
		log.Debug("Handling quick reply", "payload", ev.Payload)
		r.handleQuickReply(ctx, ev.SenderID, ev.Payload)
	case messenger.EventPostback:
		log.Debug("Handling postback", "payload", ev.Payload)
		r.handlePostback(ctx, ev.SenderID, ev.Payload)
	case messenger.EventText:
		log.Debug("Handling text message")
		r.handleText(ctx, ev.SenderID, ev.Text)
	}
}

// handleText applies the free-text dispatch order: advisor mode first, then
// gratitude, purchase flows, promo triggers, menu triggers, and finally the
// AI fallback gated by the first-message rule.
func (r *Router) handleText(ctx context.Context, senderID, raw string) {
	r.tracker.Touch(senderID)

	text := strings.TrimSpace(raw)
	lower := strings.ToLower(text)
	sess := r.sessions.Get(senderID)

	if sess.Stage == session.StageAdvisor {
		if lower == "salir" {
			r.exitAdvisor(ctx, senderID, r.messages.AdvisorExit)
			return
		}
		r.consultAdvisor(ctx, senderID, text)
		return
	}

	if gratitudeRe.MatchString(lower) {
		r.sendText(ctx, senderID, r.messages.Gratitude)
		return
	}

	if sess.Stage == session.StageAwaitingDataLima || sess.Stage == session.StageAwaitingDataProvincia {
		r.handlePurchase(ctx, senderID, sess.Stage, text)
		return
	}

	for _, trigger := range promoTriggers {
		if strings.Contains(lower, trigger.substring) {
			if p, ok := r.catalog.Promo(trigger.promoKey); ok {
				r.sendPromoCard(ctx, senderID, p)
			}
			return
		}
	}

	if strings.Contains(lower, "ver otros modelos") || strings.Contains(lower, "hola") {
		r.sendMainMenu(ctx, senderID)
		return
	}

	if sess.FirstMessageSeen {
		r.consultAdvisor(ctx, senderID, text)
		return
	}
	// A brand-new sender's first unmatched message is swallowed on
	// purpose: mark it seen and send nothing.
	r.sessions.Mutate(senderID, func(s *session.Session) {
		s.FirstMessageSeen = true
	})
}

func (r *Router) handleQuickReply(ctx context.Context, senderID, payload string) {
	switch {
	case strings.HasPrefix(payload, "COMPRAR_"):
		r.sendLocationPrompt(ctx, senderID)
	case payload == "UBICACION_LIMA":
		r.sessions.Mutate(senderID, func(s *session.Session) {
			s.Stage = session.StageAwaitingDataLima
			s.WarningSent = false
		})
		r.sendText(ctx, senderID, r.messages.DataRequestLima)
	case payload == "UBICACION_PROVINCIA":
		r.sessions.Mutate(senderID, func(s *session.Session) {
			s.Stage = session.StageAwaitingDataProvincia
			s.WarningSent = false
			s.ProvinceConfirmationSent = false
		})
		r.sendText(ctx, senderID, r.messages.DataRequestProvince)
	}
}

func (r *Router) handlePostback(ctx context.Context, senderID, payload string) {
	switch payload {
	case "CABALLEROS", "DAMAS":
		r.sendTypeSubmenu(ctx, senderID, payload)
	case "ASESOR":
		r.sessions.Mutate(senderID, func(s *session.Session) {
			s.Stage = session.StageAdvisor
			s.History = nil
			s.AdvisorMessages = 0
		})
		r.sendText(ctx, senderID, r.messages.AdvisorWelcome)
	case "CABALLEROS_AUTO", "CABALLEROS_CUARZO", "DAMAS_AUTO", "DAMAS_CUARZO":
		r.sendCatalog(ctx, senderID, catalogPayloads[payload])
	case "VER_MODELOS":
		r.sendMainMenu(ctx, senderID)
	case "SALIR_ASESOR":
		r.exitAdvisor(ctx, senderID, r.messages.AdvisorExitShort)
	default:
		if strings.HasPrefix(payload, "COMPRAR_") {
			r.sendLocationPrompt(ctx, senderID)
			return
		}
		r.sendText(ctx, senderID, r.messages.UnknownPostback)
	}
}

// exitAdvisor tears the advisor session down on explicit user action:
// timers are cancelled so a stale finalize cannot fire on cleared state.
func (r *Router) exitAdvisor(ctx context.Context, senderID, farewell string) {
	r.tracker.Cancel(senderID)
	r.sessions.Mutate(senderID, func(s *session.Session) {
		s.Stage = session.StageNone
		s.History = nil
		s.AdvisorMessages = 0
	})
	r.sendText(ctx, senderID, farewell)
	r.sendMainMenu(ctx, senderID)
}

func (r *Router) sendIdleNudge(senderID string) {
	ctx := context.Background()
	err := r.sender.SendButtonTemplate(ctx, senderID, r.messages.IdleNudge, []messenger.Button{
		messenger.URLButton("📞 Continuar en WhatsApp", r.messages.WhatsAppURL),
	})
	if err != nil {
		r.log.Error("Failed to send idle nudge", "error", err, "sender_id", senderID)
	}
}

func (r *Router) sendSessionEnded(senderID string) {
	r.sendText(context.Background(), senderID, r.messages.SessionEnded)
}
