package telegram

import (
	"fmt"

	"github.com/go-telegram/bot/models"
)

// MainKeyboard returns the main menu keyboard
func MainKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "📌 Register", CallbackData: cbRegister},
			},
			{
				{Text: "💰 Balance", CallbackData: cbBalance},
			},
			{
				{Text: "🛒 Buy Code", CallbackData: cbBuy},
			},
			{
				{Text: "ℹ️ Help", CallbackData: cbHelp},
			},
		},
	}
}

// BuyKeyboard returns the payment options keyboard for the buy view
func BuyKeyboard(price int64, currency string) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: fmt.Sprintf("Pay with Balance (%d %s)", price, currency), CallbackData: cbBuyBalance},
			},
			{
				{Text: "Pay with Receipt", CallbackData: cbBuyReceipt},
			},
			{
				{Text: "⬅️ Back", CallbackData: cbMenu},
			},
		},
	}
}

// DecisionKeyboard returns the admin approve/reject keyboard for a receipt
func DecisionKeyboard(receiptID string) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "✅ Approve", CallbackData: cbApprovePrefix + receiptID},
				{Text: "❌ Reject", CallbackData: cbRejectPrefix + receiptID},
			},
		},
	}
}

// BackKeyboard returns a simple back button
func BackKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "⬅️ Back", CallbackData: cbMenu},
			},
		},
	}
}
