package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps the document in a single JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store at the given path. The file is
// created on the first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Load() (*Document, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return DefaultDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	if len(data) == 0 {
		return DefaultDocument(), nil
	}

	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.path, err)
	}
	normalize(doc)
	return doc, nil
}

// Save writes to a temp file in the same directory and renames it over the
// target, so a crash mid-write never leaves a truncated document.
func (f *FileStore) Save(doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".store-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}

// normalize fills in nil maps from hand-edited or older documents.
func normalize(doc *Document) {
	if doc.Users == nil {
		doc.Users = make(map[int64]*User)
	}
	if doc.Receipts == nil {
		doc.Receipts = make(map[string]*Receipt)
	}
	if doc.Payment == nil {
		doc.Payment = make(map[string]PaymentMethod)
	}
}
