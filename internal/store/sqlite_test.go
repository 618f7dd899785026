package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteFirstLoadReturnsDefaults(t *testing.T) {
	s := newTestSQLiteStore(t)

	doc, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, DefaultDocument(), doc)
}

func TestSQLiteRoundTrip(t *testing.T) {
	s := newTestSQLiteStore(t)

	doc := DefaultDocument()
	doc.Users[7] = &User{Balance: 250, History: []Purchase{{Type: PurchaseByReceipt, Code: "Z1", Receipt: "99999"}}}
	doc.Receipts["99999"] = &Receipt{UserID: 7, Status: StatusApproved, Kind: KindPurchase}
	doc.Stock = []string{"Q1"}

	require.NoError(t, s.Save(doc))

	got, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, doc, got)

	// Second save overwrites the single row.
	doc.Price = 9000
	require.NoError(t, s.Save(doc))
	got, err = s.Load()
	require.NoError(t, err)
	require.Equal(t, int64(9000), got.Price)
}
