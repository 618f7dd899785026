package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JulierBo/codeshop-bot/internal/config"
	"github.com/JulierBo/codeshop-bot/internal/ledger"
	"github.com/JulierBo/codeshop-bot/internal/store"
	"github.com/JulierBo/codeshop-bot/internal/telegram"
)

// Notifier formats and delivers the two outbound notifications the ledger
// drives: admin prompts for pending receipts and decision results for users.
type Notifier struct {
	cfg *config.Config
	bot *telegram.Bot
	log *slog.Logger
}

// New creates a new Notifier
func New(cfg *config.Config, bot *telegram.Bot, log *slog.Logger) *Notifier {
	return &Notifier{
		cfg: cfg,
		bot: bot,
		log: log,
	}
}

// ReceiptPending prompts the admin with an approve/reject choice for a new
// pending receipt.
func (n *Notifier) ReceiptPending(ctx context.Context, userID int64, username, receiptID, kind string) {
	header := "📥 Receipt purchase pending:"
	if kind == store.KindRegistration {
		header = "📥 Registration pending:"
	}

	text := fmt.Sprintf(
		"%s\nUser: %s (%d)\nReceipt ID: %s",
		header, username, userID, receiptID,
	)

	err := n.bot.SendNotification(ctx, n.cfg.AdminID, text, telegram.DecisionKeyboard(receiptID))
	if err != nil {
		n.log.Error("notify admin", "error", err, "receipt_id", receiptID)
	}
}

// ReceiptDecided tells the submitting user the terminal outcome of their
// receipt.
func (n *Notifier) ReceiptDecided(ctx context.Context, dec *ledger.Decision) {
	var text string
	switch {
	case dec.Approved && dec.Kind == store.KindRegistration:
		text = "✅ Your registration was approved. Welcome!"
	case dec.Approved:
		text = fmt.Sprintf("✅ Your purchase approved! Code: %s", dec.Code)
	case dec.Kind == store.KindRegistration:
		text = "❌ Your registration was rejected."
	default:
		text = "❌ Your receipt purchase was rejected."
	}

	if err := n.bot.SendNotification(ctx, dec.UserID, text, nil); err != nil {
		n.log.Error("notify user", "error", err,
			"user_id", dec.UserID,
			"receipt_id", dec.ReceiptID,
		)
	}
}
