package bot

import (
	"context"

	"github.com/tiendasmegan/meganbot/internal/advisor"
	"github.com/tiendasmegan/meganbot/internal/messenger"
	"github.com/tiendasmegan/meganbot/internal/session"
)

// advisorExitThreshold is the exchange count after which plain advisor
// replies carry the exit button.
const advisorExitThreshold = 6

// consultAdvisor runs one advisor exchange: the user turn is appended to
// history before the call and stays there even when the call fails, so a
// retry carries the full context. The assistant turn is appended only on
// success, command replies included.
func (r *Router) consultAdvisor(ctx context.Context, senderID, text string) {
	var (
		history []advisor.Message
		count   int
	)
	r.sessions.Mutate(senderID, func(s *session.Session) {
		s.History = append(s.History, advisor.Message{Role: advisor.RoleUser, Content: text})
		s.AdvisorMessages++
		history = append(history, s.History...)
		count = s.AdvisorMessages
	})

	reply, err := r.advisor.Reply(ctx, r.catalog.SystemContext(), history)
	if err != nil {
		r.log.Error("Advisor call failed", "error", err, "sender_id", senderID)
		r.sendText(ctx, senderID, r.messages.AdvisorError)
		return
	}

	r.sessions.Mutate(senderID, func(s *session.Session) {
		s.History = append(s.History, advisor.Message{Role: advisor.RoleAssistant, Content: reply})
	})

	cmd := advisor.ParseReply(reply)
	switch cmd.Kind {
	case advisor.KindShowModel:
		if p, ok := r.catalog.ByCode(cmd.Arg); ok {
			r.sendPromoCard(ctx, senderID, p)
		} else {
			r.sendText(ctx, senderID, r.messages.ModelNotFound)
		}
	case advisor.KindShowCatalog:
		r.sendCatalog(ctx, senderID, cmd.Arg)
	case advisor.KindAskGender:
		r.sessions.SetStage(senderID, session.StageAwaitingGender)
		r.sendText(ctx, senderID, r.messages.AskGender)
	case advisor.KindAskType:
		r.sendTypeSubmenu(ctx, senderID, cmd.Arg)
	default:
		r.sendAdvisorReply(ctx, senderID, reply, count)
	}
}

// sendAdvisorReply sends a plain advisor answer, attaching the exit
// button once the conversation has run long enough that the user may want
// out.
func (r *Router) sendAdvisorReply(ctx context.Context, senderID, text string, count int) {
	if count < advisorExitThreshold {
		r.sendText(ctx, senderID, text)
		return
	}
	err := r.sender.SendButtonTemplate(ctx, senderID, text, []messenger.Button{
		messenger.PostbackButton("↩️ Volver al inicio", "SALIR_ASESOR"),
	})
	if err != nil {
		r.log.Error("Failed to send advisor reply", "error", err, "sender_id", senderID)
	}
}
