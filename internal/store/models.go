package store

// Receipt status values.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Receipt kinds. An empty kind is read as a purchase receipt so documents
// written before the field existed keep their meaning.
const (
	KindRegistration = "registration"
	KindPurchase     = "purchase"
)

// Purchase entry types.
const (
	PurchaseByBalance = "balance"
	PurchaseByReceipt = "receipt"
)

// User holds one customer's balance and redemption history.
type User struct {
	Balance   int64      `json:"balance"`
	History   []Purchase `json:"history"`
	Confirmed bool       `json:"confirmed,omitempty"`
}

// Purchase is one redeemed code. Receipt is set only for receipt purchases.
type Purchase struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Receipt string `json:"receipt,omitempty"`
}

// Receipt ties a 5-6 digit token to the user who submitted it and the
// admin's decision on it.
type Receipt struct {
	UserID int64  `json:"user_id"`
	Status string `json:"status"`
	Kind   string `json:"kind,omitempty"`
}

// PaymentMethod is the display instructions for one payment channel.
type PaymentMethod struct {
	Phone string `json:"phone"`
	Name  string `json:"name"`
}

// Document is the entire durable ledger state. Its JSON shape is the
// persistence contract and must round-trip losslessly.
type Document struct {
	Users    map[int64]*User          `json:"users"`
	Stock    []string                 `json:"stock"`
	Receipts map[string]*Receipt      `json:"receipts"`
	Price    int64                    `json:"price"`
	Payment  map[string]PaymentMethod `json:"payment"`
}

// DefaultDocument is the state of a store that has never been saved.
func DefaultDocument() *Document {
	return &Document{
		Users:    make(map[int64]*User),
		Stock:    []string{"CODE1", "CODE2", "CODE3", "CODE4", "CODE5"},
		Receipts: make(map[string]*Receipt),
		Price:    1000,
		Payment: map[string]PaymentMethod{
			"Wave": {Phone: "09673585480", Name: "Nine Nine"},
			"KPay": {Phone: "09678786528", Name: "Ma May Phoo Wai"},
		},
	}
}

// Clone returns a deep copy of the document. The ledger snapshots the
// document before every mutation so a failed save can be rolled back.
func (d *Document) Clone() *Document {
	c := &Document{
		Users:    make(map[int64]*User, len(d.Users)),
		Stock:    append([]string(nil), d.Stock...),
		Receipts: make(map[string]*Receipt, len(d.Receipts)),
		Price:    d.Price,
		Payment:  make(map[string]PaymentMethod, len(d.Payment)),
	}
	for id, u := range d.Users {
		uc := &User{
			Balance:   u.Balance,
			History:   append([]Purchase(nil), u.History...),
			Confirmed: u.Confirmed,
		}
		c.Users[id] = uc
	}
	for id, r := range d.Receipts {
		rc := *r
		c.Receipts[id] = &rc
	}
	for name, m := range d.Payment {
		c.Payment[name] = m
	}
	return c
}
