package telegram

import "strings"

// intentKind enumerates every action a callback button can carry.
type intentKind int

const (
	intentUnknown intentKind = iota
	intentMenu
	intentRegister
	intentBalance
	intentHelp
	intentBuy
	intentBuyBalance
	intentBuyReceipt
	intentDecide
)

// intent is the decoded form of a callback payload. Callback data is parsed
// exactly once, here, so handlers and the ledger only ever see typed values.
type intent struct {
	kind      intentKind
	receiptID string
	approve   bool
}

// Callback data values. The decision buttons carry the receipt id after the
// prefix, everything else is a bare tag.
const (
	cbMenu       = "menu"
	cbRegister   = "register"
	cbBalance    = "balance"
	cbHelp       = "help"
	cbBuy        = "buy"
	cbBuyBalance = "buy_balance"
	cbBuyReceipt = "buy_receipt"

	cbApprovePrefix = "approve:"
	cbRejectPrefix  = "reject:"
)

func parseIntent(data string) intent {
	switch data {
	case cbMenu:
		return intent{kind: intentMenu}
	case cbRegister:
		return intent{kind: intentRegister}
	case cbBalance:
		return intent{kind: intentBalance}
	case cbHelp:
		return intent{kind: intentHelp}
	case cbBuy:
		return intent{kind: intentBuy}
	case cbBuyBalance:
		return intent{kind: intentBuyBalance}
	case cbBuyReceipt:
		return intent{kind: intentBuyReceipt}
	}

	switch {
	case strings.HasPrefix(data, cbApprovePrefix):
		id := strings.TrimPrefix(data, cbApprovePrefix)
		if id == "" {
			return intent{}
		}
		return intent{kind: intentDecide, receiptID: id, approve: true}
	case strings.HasPrefix(data, cbRejectPrefix):
		id := strings.TrimPrefix(data, cbRejectPrefix)
		if id == "" {
			return intent{}
		}
		return intent{kind: intentDecide, receiptID: id}
	}

	return intent{}
}
