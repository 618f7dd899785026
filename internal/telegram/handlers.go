package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/JulierBo/codeshop-bot/internal/config"
	"github.com/JulierBo/codeshop-bot/internal/ledger"
	"github.com/JulierBo/codeshop-bot/internal/store"
)

// Notifier delivers the ledger's outbound notifications: the admin prompt
// for every new pending receipt and the user message on every terminal
// decision.
type Notifier interface {
	ReceiptPending(ctx context.Context, userID int64, username, receiptID, kind string)
	ReceiptDecided(ctx context.Context, dec *ledger.Decision)
}

// Bot wraps the telegram bot with handlers
type Bot struct {
	bot    *bot.Bot
	cfg    *config.Config
	ledger *ledger.Ledger
	states *StateManager
	notify Notifier
	log    *slog.Logger
}

// New creates a new telegram bot
func New(cfg *config.Config, ldg *ledger.Ledger, log *slog.Logger) (*Bot, error) {
	b := &Bot{
		cfg:    cfg,
		ledger: ldg,
		states: NewStateManager(),
		log:    log,
	}

	opts := []bot.Option{
		bot.WithDefaultHandler(b.defaultHandler),
		bot.WithCallbackQueryDataHandler("", bot.MatchTypePrefix, b.callbackHandler),
	}

	tgBot, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	b.bot = tgBot

	// Register command handlers
	tgBot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, b.startHandler)
	tgBot.RegisterHandler(bot.HandlerTypeMessageText, "/start ", bot.MatchTypePrefix, b.startHandler)
	tgBot.RegisterHandler(bot.HandlerTypeMessageText, "/setbalance", bot.MatchTypePrefix, b.setBalanceHandler)
	tgBot.RegisterHandler(bot.HandlerTypeMessageText, "/addstock", bot.MatchTypePrefix, b.addStockHandler)
	tgBot.RegisterHandler(bot.HandlerTypeMessageText, "/setprice", bot.MatchTypePrefix, b.setPriceHandler)
	tgBot.RegisterHandler(bot.HandlerTypeMessageText, "/setpayment", bot.MatchTypePrefix, b.setPaymentHandler)
	tgBot.RegisterHandler(bot.HandlerTypeMessageText, "/viewhistory", bot.MatchTypePrefix, b.viewHistoryHandler)

	return b, nil
}

// UseNotifier attaches the outbound notifier. Wired after construction
// because the notifier sends through this bot.
func (b *Bot) UseNotifier(n Notifier) {
	b.notify = n
}

// Start starts the bot polling
func (b *Bot) Start(ctx context.Context) {
	b.bot.Start(ctx)
}

// --- Handlers ---

func (b *Bot) startHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	userName := displayName(update.Message.From)
	text := fmt.Sprintf("👋 Hello %s! Welcome!", userName)
	b.sendMessage(ctx, update.Message.Chat.ID, text, MainKeyboard())
}

func (b *Bot) defaultHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	userID := update.Message.From.ID
	text := strings.TrimSpace(update.Message.Text)

	if b.states.Get(userID) != StateWaitReceipt {
		return
	}
	b.handleReceiptText(ctx, update.Message, text)
}

func (b *Bot) handleReceiptText(ctx context.Context, msg *models.Message, text string) {
	userID := msg.From.ID

	receiptID, err := b.ledger.SubmitReceipt(userID, text)
	switch {
	case errors.Is(err, ledger.ErrInvalidReceipt):
		// Keep the state so the user can retry with a corrected number.
		b.sendMessage(ctx, msg.Chat.ID,
			"⚠️ Invalid receipt number. Must be 5–6 digits.", nil)
		return
	case errors.Is(err, ledger.ErrDuplicateReceipt):
		b.sendMessage(ctx, msg.Chat.ID,
			"⚠️ This receipt number was already used. Send another one.", nil)
		return
	case err != nil:
		b.log.Error("submit receipt", "error", err, "user_id", userID)
		b.sendMessage(ctx, msg.Chat.ID, "⚠️ Something went wrong, please try again.", nil)
		return
	}

	b.states.Clear(userID)

	if b.notify != nil {
		b.notify.ReceiptPending(ctx, userID, displayName(msg.From), receiptID, store.KindPurchase)
	}
	b.sendMessage(ctx, msg.Chat.ID, "⏳ Waiting for admin approval...", nil)
}

func (b *Bot) callbackHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}

	cb := update.CallbackQuery

	// Answer callback to remove loading state
	tgBot.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: cb.ID,
	})

	in := parseIntent(cb.Data)
	switch in.kind {
	case intentMenu:
		b.showMainMenu(ctx, cb)
	case intentRegister:
		b.handleRegister(ctx, cb)
	case intentBalance:
		b.handleBalance(ctx, cb)
	case intentHelp:
		b.showHelp(ctx, cb)
	case intentBuy:
		b.showBuyMenu(ctx, cb)
	case intentBuyBalance:
		b.handleBuyBalance(ctx, cb)
	case intentBuyReceipt:
		b.handleBuyReceipt(ctx, cb)
	case intentDecide:
		b.handleDecide(ctx, cb, in)
	default:
		b.log.Warn("unknown callback", "data", cb.Data, "user_id", cb.From.ID)
	}
}

func (b *Bot) showMainMenu(ctx context.Context, cb *models.CallbackQuery) {
	text := fmt.Sprintf("👋 Hello %s! Welcome!", displayName(&cb.From))
	b.editMessage(ctx, cb.Message, text, MainKeyboard())
}

func (b *Bot) handleRegister(ctx context.Context, cb *models.CallbackQuery) {
	userID := cb.From.ID

	receiptID, err := b.ledger.BeginRegistration(userID)
	switch {
	case errors.Is(err, ledger.ErrAlreadyRegistered):
		b.editMessage(ctx, cb.Message, "✅ Already registered.", nil)
		return
	case err != nil:
		b.log.Error("begin registration", "error", err, "user_id", userID)
		b.editMessage(ctx, cb.Message, "⚠️ Something went wrong, please try again.", nil)
		return
	}

	if b.notify != nil {
		b.notify.ReceiptPending(ctx, userID, displayName(&cb.From), receiptID, store.KindRegistration)
	}
	b.editMessage(ctx, cb.Message, "⏳ Registration pending admin approval.", nil)
}

func (b *Bot) handleBalance(ctx context.Context, cb *models.CallbackQuery) {
	balance, err := b.ledger.GetBalance(cb.From.ID)
	if err != nil {
		b.log.Error("get balance", "error", err, "user_id", cb.From.ID)
		b.editMessage(ctx, cb.Message, "⚠️ Something went wrong, please try again.", nil)
		return
	}

	text := fmt.Sprintf("💰 Your balance: %d %s", balance, b.cfg.Currency)
	b.editMessage(ctx, cb.Message, text, BackKeyboard())
}

func (b *Bot) showHelp(ctx context.Context, cb *models.CallbackQuery) {
	text := "ℹ️ How to use:\n" +
		"- Register to get started.\n" +
		"- Check balance.\n" +
		"- Buy code with balance or receipt.\n" +
		"- Admin approves receipt purchases.\n" +
		"- Your purchase history is saved."
	b.editMessage(ctx, cb.Message, text, BackKeyboard())
}

func (b *Bot) showBuyMenu(ctx context.Context, cb *models.CallbackQuery) {
	catalog := b.ledger.GetCatalog()
	if catalog.StockCount == 0 {
		b.editMessage(ctx, cb.Message, "⚠️ No codes available.", BackKeyboard())
		return
	}

	var lines []string
	lines = append(lines,
		fmt.Sprintf("Available codes: %d", catalog.StockCount),
		fmt.Sprintf("Price: %d %s", catalog.Price, b.cfg.Currency),
	)
	if len(catalog.Payment) > 0 {
		lines = append(lines, "", "Payment methods:")
		methods := make([]string, 0, len(catalog.Payment))
		for name := range catalog.Payment {
			methods = append(methods, name)
		}
		sort.Strings(methods)
		for _, name := range methods {
			m := catalog.Payment[name]
			lines = append(lines, fmt.Sprintf("• %s: %s (%s)", name, m.Phone, m.Name))
		}
	}

	b.editMessage(ctx, cb.Message, strings.Join(lines, "\n"), BuyKeyboard(catalog.Price, b.cfg.Currency))
}

func (b *Bot) handleBuyBalance(ctx context.Context, cb *models.CallbackQuery) {
	code, balance, err := b.ledger.RedeemWithBalance(cb.From.ID)
	switch {
	case errors.Is(err, ledger.ErrOutOfStock):
		b.editMessage(ctx, cb.Message, "⚠️ No codes available.", BackKeyboard())
		return
	case errors.Is(err, ledger.ErrInsufficientBalance):
		b.editMessage(ctx, cb.Message, "⚠️ Not enough balance.", BackKeyboard())
		return
	case err != nil:
		b.log.Error("redeem with balance", "error", err, "user_id", cb.From.ID)
		b.editMessage(ctx, cb.Message, "⚠️ Something went wrong, please try again.", nil)
		return
	}

	text := fmt.Sprintf(
		"✅ Purchase successful! Your code: %s\nRemaining balance: %d %s",
		code, balance, b.cfg.Currency,
	)
	b.editMessage(ctx, cb.Message, text, BackKeyboard())
}

func (b *Bot) handleBuyReceipt(ctx context.Context, cb *models.CallbackQuery) {
	b.states.Set(cb.From.ID, StateWaitReceipt)
	b.editMessage(ctx, cb.Message,
		"Send your receipt number (5–6 digits) to buy a code:", nil)
}

func (b *Bot) handleDecide(ctx context.Context, cb *models.CallbackQuery, in intent) {
	dec, err := b.ledger.DecideReceipt(cb.From.ID, in.receiptID, in.approve)
	switch {
	case errors.Is(err, ledger.ErrUnauthorized):
		b.editMessage(ctx, cb.Message, "⚠️ Only admin can do this.", nil)
		return
	case errors.Is(err, ledger.ErrReceiptNotFound):
		b.editMessage(ctx, cb.Message, "⚠️ Receipt not found.", nil)
		return
	case errors.Is(err, ledger.ErrAlreadyDecided):
		b.editMessage(ctx, cb.Message, "⚠️ Receipt was already decided.", nil)
		return
	case errors.Is(err, ledger.ErrOutOfStock):
		b.editMessage(ctx, cb.Message,
			fmt.Sprintf("⚠️ No stock available. Receipt %s stays pending, restock and retry.", in.receiptID),
			DecisionKeyboard(in.receiptID))
		return
	case err != nil:
		b.log.Error("decide receipt", "error", err, "receipt_id", in.receiptID)
		b.editMessage(ctx, cb.Message, "⚠️ Something went wrong, please try again.", DecisionKeyboard(in.receiptID))
		return
	}

	if b.notify != nil {
		b.notify.ReceiptDecided(ctx, dec)
	}

	if dec.Approved {
		b.editMessage(ctx, cb.Message, fmt.Sprintf("✅ Approved receipt %s", dec.ReceiptID), nil)
	} else {
		b.editMessage(ctx, cb.Message, fmt.Sprintf("❌ Rejected receipt %s", dec.ReceiptID), nil)
	}
}

// --- Admin commands ---

func (b *Bot) setBalanceHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.From.ID != b.cfg.AdminID {
		return
	}

	args := strings.Fields(msg.Text)[1:]
	usage := "Usage: /setbalance <user_id> <amount>"
	if len(args) != 2 {
		b.sendMessage(ctx, msg.Chat.ID, usage, nil)
		return
	}
	userID, err1 := strconv.ParseInt(args[0], 10, 64)
	amount, err2 := strconv.ParseInt(args[1], 10, 64)
	if err1 != nil || err2 != nil {
		b.sendMessage(ctx, msg.Chat.ID, usage, nil)
		return
	}

	if err := b.ledger.SetBalance(userID, amount); err != nil {
		if errors.Is(err, ledger.ErrInvalidAmount) {
			b.sendMessage(ctx, msg.Chat.ID, "⚠️ Amount must not be negative.", nil)
			return
		}
		b.log.Error("set balance", "error", err, "user_id", userID)
		b.sendMessage(ctx, msg.Chat.ID, "⚠️ Failed to set balance, try again.", nil)
		return
	}

	b.sendMessage(ctx, msg.Chat.ID,
		fmt.Sprintf("✅ Set balance of %d to %d %s", userID, amount, b.cfg.Currency), nil)
}

func (b *Bot) addStockHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.From.ID != b.cfg.AdminID {
		return
	}

	codes := strings.Fields(msg.Text)[1:]
	if len(codes) == 0 {
		b.sendMessage(ctx, msg.Chat.ID, "Usage: /addstock <code> [code...]", nil)
		return
	}

	count, err := b.ledger.AddStock(codes)
	if err != nil {
		b.log.Error("add stock", "error", err)
		b.sendMessage(ctx, msg.Chat.ID, "⚠️ Failed to add stock, try again.", nil)
		return
	}

	b.sendMessage(ctx, msg.Chat.ID, fmt.Sprintf("✅ Added %d codes to stock.", count), nil)
}

func (b *Bot) setPriceHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.From.ID != b.cfg.AdminID {
		return
	}

	args := strings.Fields(msg.Text)[1:]
	usage := "Usage: /setprice <amount>"
	if len(args) != 1 {
		b.sendMessage(ctx, msg.Chat.ID, usage, nil)
		return
	}
	amount, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.sendMessage(ctx, msg.Chat.ID, usage, nil)
		return
	}

	if err := b.ledger.SetPrice(amount); err != nil {
		if errors.Is(err, ledger.ErrInvalidAmount) {
			b.sendMessage(ctx, msg.Chat.ID, "⚠️ Price must be positive.", nil)
			return
		}
		b.log.Error("set price", "error", err)
		b.sendMessage(ctx, msg.Chat.ID, "⚠️ Failed to set price, try again.", nil)
		return
	}

	b.sendMessage(ctx, msg.Chat.ID,
		fmt.Sprintf("✅ Price updated to %d %s", amount, b.cfg.Currency), nil)
}

func (b *Bot) setPaymentHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.From.ID != b.cfg.AdminID {
		return
	}

	args := strings.Fields(msg.Text)[1:]
	if len(args) < 3 {
		b.sendMessage(ctx, msg.Chat.ID, "Usage: /setpayment <method> <phone> <name>", nil)
		return
	}
	method, phone := args[0], args[1]
	name := strings.Join(args[2:], " ")

	if err := b.ledger.SetPayment(method, phone, name); err != nil {
		b.log.Error("set payment", "error", err, "method", method)
		b.sendMessage(ctx, msg.Chat.ID, "⚠️ Failed to update payment method, try again.", nil)
		return
	}

	b.sendMessage(ctx, msg.Chat.ID,
		fmt.Sprintf("✅ Payment method %s updated.", method), nil)
}

func (b *Bot) viewHistoryHandler(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.From.ID != b.cfg.AdminID {
		return
	}

	args := strings.Fields(msg.Text)[1:]
	usage := "Usage: /viewhistory <user_id>"
	if len(args) != 1 {
		b.sendMessage(ctx, msg.Chat.ID, usage, nil)
		return
	}
	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.sendMessage(ctx, msg.Chat.ID, usage, nil)
		return
	}

	history, err := b.ledger.GetHistory(userID)
	if err != nil {
		b.log.Error("get history", "error", err, "user_id", userID)
		b.sendMessage(ctx, msg.Chat.ID, "⚠️ Failed to load history, try again.", nil)
		return
	}

	lines := []string{fmt.Sprintf("📜 User %d history:", userID)}
	if len(history) == 0 {
		lines = append(lines, "(empty)")
	}
	for _, p := range history {
		if p.Type == store.PurchaseByReceipt {
			lines = append(lines, fmt.Sprintf("• %s (receipt %s)", p.Code, p.Receipt))
		} else {
			lines = append(lines, fmt.Sprintf("• %s (balance)", p.Code))
		}
	}

	b.sendMessage(ctx, msg.Chat.ID, strings.Join(lines, "\n"), nil)
}

// --- Helpers ---

func displayName(u *models.User) string {
	if u == nil {
		return "there"
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != "" {
		return u.Username
	}
	return "there"
}

func (b *Bot) sendMessage(ctx context.Context, chatID int64, text string, keyboard *models.InlineKeyboardMarkup) {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}
	if keyboard != nil {
		params.ReplyMarkup = keyboard
	}

	_, err := b.bot.SendMessage(ctx, params)
	if err != nil {
		b.log.Error("send message", "error", err)
	}
}

func (b *Bot) editMessage(ctx context.Context, msg models.MaybeInaccessibleMessage, text string, keyboard *models.InlineKeyboardMarkup) {
	if msg.Message == nil {
		return
	}

	params := &bot.EditMessageTextParams{
		ChatID:    msg.Message.Chat.ID,
		MessageID: msg.Message.ID,
		Text:      text,
	}
	if keyboard != nil {
		params.ReplyMarkup = keyboard
	}

	_, err := b.bot.EditMessageText(ctx, params)
	if err != nil {
		b.log.Error("edit message", "error", err)
	}
}

// SendNotification sends a notification message to a user
func (b *Bot) SendNotification(ctx context.Context, userID int64, text string, keyboard *models.InlineKeyboardMarkup) error {
	params := &bot.SendMessageParams{
		ChatID: userID,
		Text:   text,
	}
	if keyboard != nil {
		params.ReplyMarkup = keyboard
	}

	_, err := b.bot.SendMessage(ctx, params)
	return err
}
