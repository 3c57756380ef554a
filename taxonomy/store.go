// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package taxonomy

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "modernc.org/sqlite"
)

// Store is a taxonomy stored in a SQLite database.
//
// Lookups are cached,
// and it is safe for concurrent use.
type Store struct {
	db *sql.DB

	mu      sync.Mutex
	lineage map[string][]string
	names   map[string]string
	err     error
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS species (
		taxid TEXT PRIMARY KEY,
		parent TEXT,
		spname TEXT,
		track TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS species_name ON species (lower(spname))`,
}

// Open opens a taxonomy database.
// If the database does not exist,
// it will be created.
func Open(name string) (*Store, error) {
	db, err := sql.Open("sqlite", name)
	if err != nil {
		return nil, fmt.Errorf("taxonomy: open database %q: %w", name, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("taxonomy: pragma %q: %w", p, err)
		}
	}
	for _, q := range schema {
		if _, err := db.Exec(q); err != nil {
			db.Close()
			return nil, fmt.Errorf("taxonomy: schema: %w", err)
		}
	}

	return &Store{
		db:      db,
		lineage: make(map[string][]string),
		names:   make(map[string]string),
	}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Err returns the first database error
// found during a lookup.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Import adds all the taxa of a taxonomy
// into the database.
// Taxa already in the database are replaced.
func (s *Store) Import(db *DB) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("taxonomy: begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO species (taxid, parent, spname, track) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("taxonomy: prepare: %w", err)
	}
	defer stmt.Close()

	for _, id := range db.IDs() {
		t := db.taxa[id]
		if _, err := stmt.Exec(t.ID, t.Parent, t.Name, FormatTrack(t.Lineage)); err != nil {
			return fmt.Errorf("taxonomy: taxon %q: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("taxonomy: commit: %w", err)
	}

	s.mu.Lock()
	s.lineage = make(map[string][]string)
	s.names = make(map[string]string)
	s.mu.Unlock()
	return nil
}

// Len returns the number of taxa in the database.
func (s *Store) Len() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT count(*) FROM species`).Scan(&n); err != nil {
		return 0, fmt.Errorf("taxonomy: count: %w", err)
	}
	return n, nil
}

// Lineage returns the lineage of a taxon.
func (s *Store) Lineage(id string) ([]string, bool) {
	s.mu.Lock()
	lin, ok := s.lineage[id]
	s.mu.Unlock()
	if ok {
		return append([]string(nil), lin...), lin != nil
	}

	var track string
	err := s.db.QueryRow(`SELECT track FROM species WHERE taxid = ?`, id).Scan(&track)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		s.setErr(err)
		return nil, false
	}
	if err == nil {
		lin = ParseTrack(track)
	}

	s.mu.Lock()
	if _, ok := s.lineage[id]; !ok {
		s.lineage[id] = lin
	}
	s.mu.Unlock()
	return append([]string(nil), lin...), lin != nil
}

// Name returns the name of a taxon.
func (s *Store) Name(id string) (string, bool) {
	s.mu.Lock()
	nm, ok := s.names[id]
	s.mu.Unlock()
	if ok {
		return nm, nm != ""
	}

	var name sql.NullString
	err := s.db.QueryRow(`SELECT spname FROM species WHERE taxid = ?`, id).Scan(&name)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		s.setErr(err)
		return "", false
	}
	nm = name.String

	s.mu.Lock()
	if _, ok := s.names[id]; !ok {
		s.names[id] = nm
	}
	s.mu.Unlock()
	return nm, nm != ""
}

// TaxID returns the identifier of a taxon name.
// Names are case insensitive.
func (s *Store) TaxID(name string) (string, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	var id string
	err := s.db.QueryRow(`SELECT taxid FROM species WHERE lower(spname) = ? LIMIT 1`, name).Scan(&id)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.setErr(err)
		}
		return "", false
	}
	return id, true
}

// Taxon returns a taxon from the database.
func (s *Store) Taxon(id string) (Taxon, bool) {
	var parent, name sql.NullString
	var track string
	err := s.db.QueryRow(`SELECT parent, spname, track FROM species WHERE taxid = ?`, id).Scan(&parent, &name, &track)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.setErr(err)
		}
		return Taxon{}, false
	}
	return Taxon{
		ID:      id,
		Parent:  parent.String,
		Name:    name.String,
		Lineage: ParseTrack(track),
	}, true
}

func (s *Store) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = fmt.Errorf("taxonomy: query: %w", err)
	}
}
