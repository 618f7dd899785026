package ledger

import (
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"sync"

	"github.com/JulierBo/codeshop-bot/internal/store"
)

// Ledger owns the shared storefront document: user balances, the FIFO code
// stock, receipts, and the catalog config. Every operation runs as one
// atomic transaction: read-check-mutate-save under a single mutex, with the
// in-memory change rolled back if the save fails.
type Ledger struct {
	mu      sync.Mutex
	store   store.Store
	doc     *store.Document
	adminID int64
	log     *slog.Logger
}

// Decision is the outcome of an admin call on a pending receipt.
type Decision struct {
	ReceiptID string
	UserID    int64
	Kind      string
	Approved  bool
	Code      string // set only for approved purchase receipts
}

// Catalog is the read view of the sellable state.
type Catalog struct {
	Price      int64
	Payment    map[string]store.PaymentMethod
	StockCount int
}

// New loads the document from st and returns a ledger guarding it. adminID
// is the only identity allowed to decide receipts.
func New(st store.Store, adminID int64, log *slog.Logger) (*Ledger, error) {
	doc, err := st.Load()
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return &Ledger{
		store:   st,
		doc:     doc,
		adminID: adminID,
		log:     log,
	}, nil
}

// commit saves the document, restoring snap on failure so no uncommitted
// state survives the operation. Called with the mutex held.
func (l *Ledger) commit(snap *store.Document) error {
	if err := l.store.Save(l.doc); err != nil {
		l.doc = snap
		l.log.Error("save ledger", "error", err)
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// userLocked returns the user record, creating it in memory when absent.
// Callers persist; the bool reports whether a record was created.
func (l *Ledger) userLocked(userID int64) (*store.User, bool) {
	if u, ok := l.doc.Users[userID]; ok {
		return u, false
	}
	u := &store.User{Balance: 0, History: []store.Purchase{}}
	l.doc.Users[userID] = u
	return u, true
}

// EnsureUser returns the user record, creating and persisting a zero-balance
// one on first reference.
func (l *Ledger) EnsureUser(userID int64) (store.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := l.doc.Clone()
	u, created := l.userLocked(userID)
	if created {
		if err := l.commit(snap); err != nil {
			return store.User{}, err
		}
	}
	return *u, nil
}

// BeginRegistration allocates a pending registration receipt for a user not
// yet known to the store and returns its id for the admin prompt.
func (l *Ledger) BeginRegistration(userID int64) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.doc.Users[userID]; ok {
		return "", ErrAlreadyRegistered
	}

	snap := l.doc.Clone()
	id := l.newReceiptIDLocked()
	l.doc.Receipts[id] = &store.Receipt{
		UserID: userID,
		Status: store.StatusPending,
		Kind:   store.KindRegistration,
	}
	if err := l.commit(snap); err != nil {
		return "", err
	}

	l.log.Info("registration pending", "user_id", userID, "receipt_id", id)
	return id, nil
}

// newReceiptIDLocked picks a random 5-6 digit numeral not yet present in
// the receipt table. Ids are never reused, so the loop terminates as long
// as the table stays well below the ~10^6 id space.
func (l *Ledger) newReceiptIDLocked() string {
	for {
		id := strconv.Itoa(rand.Intn(990000) + 10000)
		if _, ok := l.doc.Receipts[id]; !ok {
			return id
		}
	}
}

// SetBalance sets a user's balance to an absolute amount, creating the user
// when absent.
func (l *Ledger) SetBalance(userID, amount int64) error {
	if amount < 0 {
		return ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	snap := l.doc.Clone()
	u, _ := l.userLocked(userID)
	u.Balance = amount
	return l.commit(snap)
}

// AddStock appends codes to the back of the stock in the given order and
// returns how many were appended. Codes are not checked against earlier
// stock or histories; the admin owns dedup.
func (l *Ledger) AddStock(codes []string) (int, error) {
	if len(codes) == 0 {
		return 0, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	snap := l.doc.Clone()
	l.doc.Stock = append(l.doc.Stock, codes...)
	if err := l.commit(snap); err != nil {
		return 0, err
	}

	l.log.Info("stock added", "count", len(codes), "total", len(l.doc.Stock))
	return len(codes), nil
}

// SetPrice sets the cost of one code. The price must be positive.
func (l *Ledger) SetPrice(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	snap := l.doc.Clone()
	l.doc.Price = amount
	return l.commit(snap)
}

// SetPayment creates or replaces the display instructions for a payment
// method.
func (l *Ledger) SetPayment(method, phone, name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := l.doc.Clone()
	l.doc.Payment[method] = store.PaymentMethod{Phone: phone, Name: name}
	return l.commit(snap)
}

// RedeemWithBalance pops the oldest code from stock, debits the price from
// the user's balance, and records the purchase. All three changes commit
// together or not at all.
func (l *Ledger) RedeemWithBalance(userID int64) (string, int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := l.doc.Clone()
	u, _ := l.userLocked(userID)

	if len(l.doc.Stock) == 0 {
		// The lazy-created user record still persists, as on any lookup.
		if _, existed := snap.Users[userID]; !existed {
			if err := l.commit(snap); err != nil {
				return "", 0, err
			}
		}
		return "", u.Balance, ErrOutOfStock
	}
	if u.Balance < l.doc.Price {
		if _, existed := snap.Users[userID]; !existed {
			if err := l.commit(snap); err != nil {
				return "", 0, err
			}
		}
		return "", u.Balance, ErrInsufficientBalance
	}

	code := l.doc.Stock[0]
	l.doc.Stock = l.doc.Stock[1:]
	u.Balance -= l.doc.Price
	u.History = append(u.History, store.Purchase{
		Type: store.PurchaseByBalance,
		Code: code,
	})
	if err := l.commit(snap); err != nil {
		return "", 0, err
	}

	l.log.Info("code redeemed",
		"user_id", userID,
		"balance", u.Balance,
		"stock_left", len(l.doc.Stock),
	)
	return code, u.Balance, nil
}

// SubmitReceipt records a user-chosen receipt number as a pending purchase
// receipt. The number must be 5-6 digits and never seen before, in any
// status.
func (l *Ledger) SubmitReceipt(userID int64, rawText string) (string, error) {
	if !validReceiptID(rawText) {
		return "", ErrInvalidReceipt
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.doc.Receipts[rawText]; ok {
		return "", ErrDuplicateReceipt
	}

	snap := l.doc.Clone()
	l.userLocked(userID)
	l.doc.Receipts[rawText] = &store.Receipt{
		UserID: userID,
		Status: store.StatusPending,
		Kind:   store.KindPurchase,
	}
	if err := l.commit(snap); err != nil {
		return "", err
	}

	l.log.Info("receipt submitted", "user_id", userID, "receipt_id", rawText)
	return rawText, nil
}

// DecideReceipt applies the admin's terminal decision to a pending receipt.
// Approving a purchase receipt issues a code; if stock is empty the receipt
// stays pending so the decision can be retried after a restock. Approving a
// registration receipt marks the account confirmed and touches neither
// stock nor history.
func (l *Ledger) DecideReceipt(actorID int64, receiptID string, approve bool) (*Decision, error) {
	if actorID != l.adminID {
		return nil, ErrUnauthorized
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	r, ok := l.doc.Receipts[receiptID]
	if !ok {
		return nil, ErrReceiptNotFound
	}
	if r.Status != store.StatusPending {
		return nil, ErrAlreadyDecided
	}

	snap := l.doc.Clone()
	dec := &Decision{
		ReceiptID: receiptID,
		UserID:    r.UserID,
		Kind:      r.Kind,
		Approved:  approve,
	}
	if dec.Kind == "" {
		dec.Kind = store.KindPurchase
	}

	if !approve {
		r.Status = store.StatusRejected
		if err := l.commit(snap); err != nil {
			return nil, err
		}
		l.log.Info("receipt rejected", "receipt_id", receiptID, "user_id", r.UserID)
		return dec, nil
	}

	if dec.Kind == store.KindRegistration {
		u, _ := l.userLocked(r.UserID)
		u.Confirmed = true
		r.Status = store.StatusApproved
		if err := l.commit(snap); err != nil {
			return nil, err
		}
		l.log.Info("registration approved", "receipt_id", receiptID, "user_id", r.UserID)
		return dec, nil
	}

	if len(l.doc.Stock) == 0 {
		return nil, ErrOutOfStock
	}

	code := l.doc.Stock[0]
	l.doc.Stock = l.doc.Stock[1:]
	u, _ := l.userLocked(r.UserID)
	u.History = append(u.History, store.Purchase{
		Type:    store.PurchaseByReceipt,
		Code:    code,
		Receipt: receiptID,
	})
	r.Status = store.StatusApproved
	if err := l.commit(snap); err != nil {
		return nil, err
	}

	dec.Code = code
	l.log.Info("receipt approved",
		"receipt_id", receiptID,
		"user_id", r.UserID,
		"stock_left", len(l.doc.Stock),
	)
	return dec, nil
}

// GetBalance returns a user's balance, creating the user on first reference.
func (l *Ledger) GetBalance(userID int64) (int64, error) {
	u, err := l.EnsureUser(userID)
	if err != nil {
		return 0, err
	}
	return u.Balance, nil
}

// GetHistory returns a copy of a user's purchase history in chronological
// order, creating the user on first reference.
func (l *Ledger) GetHistory(userID int64) ([]store.Purchase, error) {
	u, err := l.EnsureUser(userID)
	if err != nil {
		return nil, err
	}
	return append([]store.Purchase(nil), u.History...), nil
}

// GetCatalog returns the current price, payment instructions, and stock
// count.
func (l *Ledger) GetCatalog() Catalog {
	l.mu.Lock()
	defer l.mu.Unlock()

	payment := make(map[string]store.PaymentMethod, len(l.doc.Payment))
	for name, m := range l.doc.Payment {
		payment[name] = m
	}
	return Catalog{
		Price:      l.doc.Price,
		Payment:    payment,
		StockCount: len(l.doc.Stock),
	}
}

func validReceiptID(s string) bool {
	if len(s) < 5 || len(s) > 6 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
