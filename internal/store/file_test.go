package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "store.json"))
}

func TestFileStoreFirstLoadReturnsDefaults(t *testing.T) {
	fs := newTestFileStore(t)

	doc, err := fs.Load()
	require.NoError(t, err)
	require.Empty(t, doc.Users)
	require.Equal(t, []string{"CODE1", "CODE2", "CODE3", "CODE4", "CODE5"}, doc.Stock)
	require.Empty(t, doc.Receipts)
	require.Equal(t, int64(1000), doc.Price)
	require.Contains(t, doc.Payment, "Wave")
	require.Contains(t, doc.Payment, "KPay")

	// First load does not create the file.
	_, err = os.Stat(fs.path)
	require.True(t, os.IsNotExist(err))
}

func TestFileStoreRoundTrip(t *testing.T) {
	fs := newTestFileStore(t)

	doc := DefaultDocument()
	doc.Users[42] = &User{
		Balance: 500,
		History: []Purchase{
			{Type: PurchaseByBalance, Code: "A1"},
			{Type: PurchaseByReceipt, Code: "A2", Receipt: "12345"},
		},
		Confirmed: true,
	}
	doc.Stock = []string{"B1", "B2"}
	doc.Receipts["12345"] = &Receipt{UserID: 42, Status: StatusApproved, Kind: KindPurchase}
	doc.Receipts["54321"] = &Receipt{UserID: 7, Status: StatusPending, Kind: KindRegistration}
	doc.Price = 750

	require.NoError(t, fs.Save(doc))

	got, err := fs.Load()
	require.NoError(t, err)
	require.Equal(t, doc, got)
}

func TestFileStoreSaveReplacesPrevious(t *testing.T) {
	fs := newTestFileStore(t)

	doc := DefaultDocument()
	require.NoError(t, fs.Save(doc))

	doc.Stock = nil
	doc.Price = 1
	require.NoError(t, fs.Save(doc))

	got, err := fs.Load()
	require.NoError(t, err)
	require.Equal(t, int64(1), got.Price)
	require.Empty(t, got.Stock)

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(fs.path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestFileStoreEmptyFileReturnsDefaults(t *testing.T) {
	fs := newTestFileStore(t)
	require.NoError(t, os.WriteFile(fs.path, nil, 0644))

	doc, err := fs.Load()
	require.NoError(t, err)
	require.Equal(t, DefaultDocument(), doc)
}

func TestFileStoreCorruptFile(t *testing.T) {
	fs := newTestFileStore(t)
	require.NoError(t, os.WriteFile(fs.path, []byte("{not json"), 0644))

	_, err := fs.Load()
	require.Error(t, err)
}

func TestLoadNormalizesMissingMaps(t *testing.T) {
	fs := newTestFileStore(t)
	require.NoError(t, os.WriteFile(fs.path, []byte(`{"stock":["X"],"price":200}`), 0644))

	doc, err := fs.Load()
	require.NoError(t, err)
	require.NotNil(t, doc.Users)
	require.NotNil(t, doc.Receipts)
	require.NotNil(t, doc.Payment)
	require.Equal(t, []string{"X"}, doc.Stock)
}

func TestDocumentClone(t *testing.T) {
	doc := DefaultDocument()
	doc.Users[1] = &User{Balance: 100, History: []Purchase{{Type: PurchaseByBalance, Code: "A"}}}
	doc.Receipts["12345"] = &Receipt{UserID: 1, Status: StatusPending}

	clone := doc.Clone()
	require.Equal(t, doc, clone)

	// Mutating the clone must not touch the original.
	clone.Users[1].Balance = 0
	clone.Users[1].History[0].Code = "B"
	clone.Receipts["12345"].Status = StatusApproved
	clone.Stock[0] = "MUT"
	clone.Payment["Wave"] = PaymentMethod{Phone: "0", Name: "x"}

	require.Equal(t, int64(100), doc.Users[1].Balance)
	require.Equal(t, "A", doc.Users[1].History[0].Code)
	require.Equal(t, StatusPending, doc.Receipts["12345"].Status)
	require.Equal(t, "CODE1", doc.Stock[0])
	require.Equal(t, "09673585480", doc.Payment["Wave"].Phone)
}

func TestOpenPicksBackendByExtension(t *testing.T) {
	dir := t.TempDir()

	st, err := Open(filepath.Join(dir, "ledger.json"))
	require.NoError(t, err)
	require.IsType(t, &FileStore{}, st)

	st, err = Open(filepath.Join(dir, "ledger.db"))
	require.NoError(t, err)
	require.IsType(t, &SQLiteStore{}, st)
	require.NoError(t, st.(*SQLiteStore).Close())
}
