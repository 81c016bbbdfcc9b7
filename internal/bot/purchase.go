package bot

import (
	"context"
	"regexp"

	"github.com/tiendasmegan/meganbot/internal/session"
)

// Field predicates for the purchase data-collection flows. The name
// pattern matches a run of 2-4 title-cased words anywhere in the message;
// RE2 \b does not cover accented letters, so the name pattern uses
// explicit whitespace anchors instead.
var (
	nameRe    = regexp.MustCompile(`(^|\s)[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+(\s+[A-ZÁÉÍÓÚÑ]?[a-záéíóúñ]+){1,3}(\s|$)`)
	phoneRe   = regexp.MustCompile(`\b9\d{8}\b`)
	dniRe     = regexp.MustCompile(`\b\d{8}\b`)
	addressRe = regexp.MustCompile(`(?i)(jirón|jr\.|avenida|av\.|calle|pasaje|mz|mza|lote|urb\.|urbanización)`)
)

// handlePurchase validates one data-collection message for the active
// branch. The user is expected to send every field in a single message;
// the first failing predicate picks the corrective prompt. A message with
// no recognizable field at all gets the generic reminder once per flow.
func (r *Router) handlePurchase(ctx context.Context, senderID string, stage session.Stage, text string) {
	hasName := nameRe.MatchString(text)
	hasPhone := phoneRe.MatchString(text)

	if stage == session.StageAwaitingDataProvincia {
		hasDNI := dniRe.MatchString(text)
		switch {
		case hasName && hasDNI && hasPhone:
			r.sessions.Mutate(senderID, func(s *session.Session) {
				s.Stage = session.StageNone
				s.ProvinceConfirmationSent = true
			})
			r.sendText(ctx, senderID, r.messages.ConfirmProvince)
			r.sendText(ctx, senderID, r.messages.PaymentProvince)
		case !hasName && !hasDNI && !hasPhone:
			r.sendReminderOnce(ctx, senderID)
		case !hasName:
			r.sendText(ctx, senderID, r.messages.ErrName)
		case !hasDNI:
			r.sendText(ctx, senderID, r.messages.ErrDNI)
		default:
			r.sendText(ctx, senderID, r.messages.ErrPhone)
		}
		return
	}

	hasAddress := addressRe.MatchString(text)
	switch {
	case hasName && hasPhone && hasAddress:
		r.sessions.SetStage(senderID, session.StageNone)
		r.sendText(ctx, senderID, r.messages.ConfirmLima)
	case !hasName && !hasPhone && !hasAddress:
		r.sendReminderOnce(ctx, senderID)
	case !hasName:
		r.sendText(ctx, senderID, r.messages.ErrName)
	case !hasPhone:
		r.sendText(ctx, senderID, r.messages.ErrPhone)
	default:
		r.sendText(ctx, senderID, r.messages.ErrAddress)
	}
}

// sendReminderOnce sends the generic data reminder at most once per flow.
func (r *Router) sendReminderOnce(ctx context.Context, senderID string) {
	warned := false
	r.sessions.Mutate(senderID, func(s *session.Session) {
		warned = s.WarningSent
		s.WarningSent = true
	})
	if !warned {
		r.sendText(ctx, senderID, r.messages.DataReminder)
	}
}
