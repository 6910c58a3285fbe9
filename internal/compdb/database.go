package compdb

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrWrite marks failures to produce the output file.
var ErrWrite = errors.New("write database")

// Database holds entries in the order their invocations appear in the log.
// Entries are never merged or reordered; a file compiled twice is listed
// twice.
type Database struct {
	entries []Entry
}

func (db *Database) Add(e Entry) {
	db.entries = append(db.entries, e)
}

func (db *Database) Entries() []Entry {
	return db.entries
}

func (db *Database) Len() int {
	return len(db.entries)
}

// WriteJSON writes the database as an indented JSON array.
func (db *Database) WriteJSON(w io.Writer) error {
	entries := db.entries
	if entries == nil {
		entries = []Entry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(entries)
}

// WriteFile writes the database next to path and renames it into place, so
// an interrupted write leaves any previous file untouched.
func (db *Database) WriteFile(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	defer os.Remove(tmp.Name())

	if err := db.WriteJSON(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}
