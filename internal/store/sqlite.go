package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps the document as a single row. The document is still the
// unit of persistence; sqlite only supplies durable atomic replacement.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and if needed initializes) a sqlite-backed store.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS ledger (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		doc TEXT NOT NULL
	)`)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Load() (*Document, error) {
	var data []byte
	err := s.db.QueryRow("SELECT doc FROM ledger WHERE id = 1").Scan(&data)
	if err == sql.ErrNoRows {
		return DefaultDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}

	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	normalize(doc)
	return doc, nil
}

func (s *SQLiteStore) Save(doc *Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(
		`INSERT INTO ledger (id, doc) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET doc = excluded.doc`,
		data,
	)
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}
