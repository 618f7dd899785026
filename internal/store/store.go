package store

import "strings"

// Store persists the ledger document as one unit. Load on a store that has
// never been saved returns DefaultDocument, not an error. Save must replace
// the previous snapshot atomically.
type Store interface {
	Load() (*Document, error)
	Save(*Document) error
}

// Open picks a backend by path: .db/.sqlite paths get the sqlite backend,
// anything else the plain JSON file backend.
func Open(path string) (Store, error) {
	if strings.HasSuffix(path, ".db") || strings.HasSuffix(path, ".sqlite") {
		return OpenSQLite(path)
	}
	return NewFileStore(path), nil
}
