package bot

import (
	"context"

	"github.com/tiendasmegan/meganbot/internal/catalog"
	"github.com/tiendasmegan/meganbot/internal/messenger"
	"github.com/tiendasmegan/meganbot/internal/session"
)

// sendText logs and swallows delivery errors so flows never abort on a
// failed send.
func (r *Router) sendText(ctx context.Context, senderID, text string) {
	if err := r.sender.SendText(ctx, senderID, text); err != nil {
		r.log.Error("Failed to send text", "error", err, "sender_id", senderID)
	}
}

func (r *Router) sendMainMenu(ctx context.Context, senderID string) {
	err := r.sender.SendButtonTemplate(ctx, senderID, r.messages.MainMenu, []messenger.Button{
		messenger.PostbackButton("⌚ Para Caballeros", "CABALLEROS"),
		messenger.PostbackButton("🕒 Para Damas", "DAMAS"),
		messenger.PostbackButton("💬 Hablar con Asesor", "ASESOR"),
	})
	if err != nil {
		r.log.Error("Failed to send main menu", "error", err, "sender_id", senderID)
	}
}

// sendTypeSubmenu shows the automatic/quartz choice for one gender and
// records the pending-choice stage.
func (r *Router) sendTypeSubmenu(ctx context.Context, senderID, gender string) {
	text := r.messages.SubmenuMen
	buttons := []messenger.Button{
		messenger.PostbackButton("⌚ Automáticos ⚙️", "CABALLEROS_AUTO"),
		messenger.PostbackButton("🕑 De cuarzo ✨", "CABALLEROS_CUARZO"),
	}
	if gender == "DAMAS" {
		text = r.messages.SubmenuWomen
		buttons = []messenger.Button{
			messenger.PostbackButton("⌚ Automáticos ⚙️", "DAMAS_AUTO"),
			messenger.PostbackButton("🕑 De cuarzo ✨", "DAMAS_CUARZO"),
		}
	}
	r.sessions.SetStage(senderID, session.StageAwaitingType(gender))
	if err := r.sender.SendButtonTemplate(ctx, senderID, text, buttons); err != nil {
		r.log.Error("Failed to send type submenu", "error", err, "sender_id", senderID)
	}
}

func (r *Router) sendLocationPrompt(ctx context.Context, senderID string) {
	err := r.sender.SendQuickReplies(ctx, senderID, r.messages.LocationPrompt, []messenger.QuickReply{
		messenger.TextQuickReply("🏙 Lima", "UBICACION_LIMA"),
		messenger.TextQuickReply("🏞 Provincia", "UBICACION_PROVINCIA"),
	})
	if err != nil {
		r.log.Error("Failed to send location prompt", "error", err, "sender_id", senderID)
	}
}

// sendPromoCard sends a product as an image followed by a button card with
// the purchase entry points.
func (r *Router) sendPromoCard(ctx context.Context, senderID string, p catalog.Product) {
	if p.ImageURL != "" {
		if err := r.sender.SendImage(ctx, senderID, p.ImageURL); err != nil {
			r.log.Error("Failed to send product image", "error", err, "sender_id", senderID, "code", p.Code)
		}
	}
	text := p.Name + "\n" + p.Description + "\n💰 Precio: " + p.PriceLabel()
	err := r.sender.SendButtonTemplate(ctx, senderID, text, []messenger.Button{
		messenger.PostbackButton("🛍️ Comprar ahora", "COMPRAR_"+p.Code),
		messenger.URLButton("📞 Comprar por WhatsApp", r.messages.WhatsAppBuyURL),
		messenger.PostbackButton("📖 Ver otros modelos", "VER_MODELOS"),
	})
	if err != nil {
		r.log.Error("Failed to send product card", "error", err, "sender_id", senderID, "code", p.Code)
	}
}

// sendCatalog sends every product of a category as a promo-style card.
func (r *Router) sendCatalog(ctx context.Context, senderID, category string) {
	products := r.catalog.Category(category)
	if len(products) == 0 {
		r.sendText(ctx, senderID, r.messages.EmptyCategory)
		return
	}
	for _, p := range products {
		r.sendPromoCard(ctx, senderID, p)
	}
}
