package telegram

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseIntent(t *testing.T) {
	tests := []struct {
		data string
		want intent
	}{
		{"menu", intent{kind: intentMenu}},
		{"register", intent{kind: intentRegister}},
		{"balance", intent{kind: intentBalance}},
		{"help", intent{kind: intentHelp}},
		{"buy", intent{kind: intentBuy}},
		{"buy_balance", intent{kind: intentBuyBalance}},
		{"buy_receipt", intent{kind: intentBuyReceipt}},
		{"approve:12345", intent{kind: intentDecide, receiptID: "12345", approve: true}},
		{"reject:999999", intent{kind: intentDecide, receiptID: "999999"}},
		{"approve:", intent{}},
		{"reject:", intent{}},
		{"", intent{}},
		{"nonsense", intent{}},
		{"approve_12345", intent{}},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, parseIntent(tt.data), "data %q", tt.data)
	}
}

func TestDecisionKeyboardRoundTrips(t *testing.T) {
	kb := DecisionKeyboard("54321")
	require.Len(t, kb.InlineKeyboard, 1)
	require.Len(t, kb.InlineKeyboard[0], 2)

	approve := parseIntent(kb.InlineKeyboard[0][0].CallbackData)
	require.Equal(t, intent{kind: intentDecide, receiptID: "54321", approve: true}, approve)

	reject := parseIntent(kb.InlineKeyboard[0][1].CallbackData)
	require.Equal(t, intent{kind: intentDecide, receiptID: "54321"}, reject)
}

func TestStateManager(t *testing.T) {
	sm := NewStateManager()

	require.Empty(t, sm.Get(1))

	sm.Set(1, StateWaitReceipt)
	require.Equal(t, StateWaitReceipt, sm.Get(1))
	require.Empty(t, sm.Get(2))

	sm.Clear(1)
	require.Empty(t, sm.Get(1))
}
