// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package taxonomy implements a reference taxonomy
// used to annotate the terminals of a tree
// with their taxonomic lineage.
package taxonomy

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/js-arias/treeko/phylo"
)

// Unknown is the name used for taxa
// not found in the taxonomy.
const Unknown = "Unknown"

// ErrNoTaxon is returned when a terminal
// can not be assigned to a taxon.
var ErrNoTaxon = errors.New("undefined taxon")

// A Lookup is a read-only taxonomy.
type Lookup interface {
	// Lineage returns the lineage of a taxon,
	// from the root of the taxonomy
	// to the taxon.
	Lineage(id string) ([]string, bool)

	// Name returns the name of a taxon.
	Name(id string) (string, bool)
}

// A Source is a taxonomy that can be queried
// by taxon names and identifiers.
// Both DB and Store are sources.
type Source interface {
	Lookup

	// TaxID returns the identifier of a taxon name.
	TaxID(name string) (string, bool)

	// Taxon returns a taxon.
	Taxon(id string) (Taxon, bool)
}

// A Taxon is a taxon in a taxonomy.
type Taxon struct {
	ID     string
	Parent string
	Name   string

	// Lineage of the taxon
	// from the root of the taxonomy
	// to the taxon.
	Lineage []string
}

// DB is an in-memory taxonomy.
type DB struct {
	taxa   map[string]*Taxon
	byName map[string]string
}

// New creates a new empty taxonomy.
func New() *DB {
	return &DB{
		taxa:   make(map[string]*Taxon),
		byName: make(map[string]string),
	}
}

// Add adds a taxon to the taxonomy.
// The lineage of the taxon must end
// with the taxon itself.
func (db *DB) Add(tx Taxon) error {
	tx.ID = strings.TrimSpace(tx.ID)
	if tx.ID == "" {
		return errors.New("empty taxon identifier")
	}
	if len(tx.Lineage) == 0 || tx.Lineage[len(tx.Lineage)-1] != tx.ID {
		return fmt.Errorf("taxon %q: invalid lineage %v", tx.ID, tx.Lineage)
	}
	if _, dup := db.taxa[tx.ID]; dup {
		return fmt.Errorf("taxon %q: already defined", tx.ID)
	}

	tx.Lineage = slices.Clone(tx.Lineage)
	db.taxa[tx.ID] = &tx
	if tx.Name != "" {
		db.byName[strings.ToLower(tx.Name)] = tx.ID
	}
	return nil
}

// IDs returns the identifiers of the taxa
// in the taxonomy.
func (db *DB) IDs() []string {
	ids := make([]string, 0, len(db.taxa))
	for id := range db.taxa {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Len returns the number of taxa in the taxonomy.
func (db *DB) Len() int {
	return len(db.taxa)
}

// Taxon returns a taxon.
func (db *DB) Taxon(id string) (Taxon, bool) {
	tx, ok := db.taxa[id]
	if !ok {
		return Taxon{}, false
	}
	return *tx, true
}

// Lineage returns the lineage of a taxon.
func (db *DB) Lineage(id string) ([]string, bool) {
	tx, ok := db.taxa[id]
	if !ok {
		return nil, false
	}
	return slices.Clone(tx.Lineage), true
}

// Name returns the name of a taxon.
func (db *DB) Name(id string) (string, bool) {
	tx, ok := db.taxa[id]
	if !ok {
		return "", false
	}
	return tx.Name, true
}

// TaxID returns the identifier of a taxon name.
// Names are case insensitive.
func (db *DB) TaxID(name string) (string, bool) {
	id, ok := db.byName[strings.ToLower(strings.TrimSpace(name))]
	return id, ok
}

// Annotate sets the species name,
// the lineage,
// and the named lineage
// of the terminals of a tree
// using a taxonomy.
//
// Taxa not found in the taxonomy are tolerated,
// and they are defined as a group
// that only contains themselves.
// It returns the identifiers of the unknown taxa.
func Annotate(t *phylo.Tree, lk Lookup) []string {
	names := make(map[string]string)
	name := func(id string) string {
		if nm, ok := names[id]; ok {
			return nm
		}
		nm, ok := lk.Name(id)
		if !ok || nm == "" {
			nm = id
		}
		names[id] = nm
		return nm
	}

	unknown := make(map[string]bool)
	for _, n := range t.Leaves() {
		if n.TaxID == "" {
			n.SpName = Unknown
			n.Lineage = nil
			n.NamedLineage = nil
			continue
		}

		lin, ok := lk.Lineage(n.TaxID)
		if !ok || len(lin) == 0 {
			unknown[n.TaxID] = true
			n.SpName = Unknown
			n.Lineage = []string{n.TaxID}
			n.NamedLineage = []string{Unknown}
			continue
		}

		n.SpName = Unknown
		if nm, ok := lk.Name(n.TaxID); ok {
			n.SpName = nm
		}
		n.Lineage = lin
		n.NamedLineage = make([]string, 0, len(lin))
		for _, id := range lin {
			n.NamedLineage = append(n.NamedLineage, name(id))
		}
	}

	ids := make([]string, 0, len(unknown))
	for id := range unknown {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// SetTaxa sets the taxon of each terminal of a tree
// using a table of terminal names to taxon identifiers.
// It is an error if a terminal is not in the table.
func SetTaxa(t *phylo.Tree, names map[string]string) error {
	for _, n := range t.Leaves() {
		id, ok := names[n.Name]
		if !ok {
			return fmt.Errorf("terminal %q: %w", n.Name, ErrNoTaxon)
		}
		n.TaxID = id
	}
	return nil
}

// SetSpeciesCodes sets the taxon of the terminals of a tree
// without a taxon
// using the species code of the terminal name.
func SetSpeciesCodes(t *phylo.Tree) {
	for _, n := range t.Leaves() {
		if n.TaxID != "" {
			continue
		}
		n.TaxID = SpeciesCode(n.Name)
	}
}

// SpeciesCode returns the species code of a gene name.
// If the name contains an underscore,
// the code is the first three characters
// after the first underscore,
// otherwise,
// it is the first three characters of the name.
func SpeciesCode(name string) string {
	if _, after, ok := strings.Cut(name, "_"); ok {
		name = after
	}
	r := []rune(name)
	if len(r) > 3 {
		r = r[:3]
	}
	return string(r)
}

// Topology returns a tree
// with the taxonomic hierarchy
// of a set of taxa.
// Nodes with a single descendant are removed.
//
// The terminals of the tree
// are named with the taxon names,
// and store the taxon identifier.
func Topology(lk Lookup, ids []string) (*phylo.Tree, error) {
	ids = slices.Clone(ids)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	if len(ids) == 0 {
		return nil, errors.New("empty taxon list")
	}

	nodes := make(map[string]*phylo.Node)
	var root *phylo.Node
	for _, id := range ids {
		lin, ok := lk.Lineage(id)
		if !ok || len(lin) == 0 {
			return nil, fmt.Errorf("taxon %q: unknown lineage", id)
		}

		var parent *phylo.Node
		for _, x := range lin {
			n, ok := nodes[x]
			if !ok {
				n = &phylo.Node{TaxID: x}
				if nm, ok := lk.Name(x); ok {
					n.Name = nm
				}
				if n.Name == "" {
					n.Name = x
				}
				nodes[x] = n
				if parent != nil {
					parent.AddChild(n)
				}
			}
			parent = n
		}
		r := nodes[lin[0]]
		if root == nil {
			root = r
		}
		if r != root {
			return nil, fmt.Errorf("taxon %q: lineage with a different root %q", id, lin[0])
		}
	}

	// requested taxa that are internal nodes
	// are added as terminals
	for _, id := range ids {
		n := nodes[id]
		if n.IsLeaf() {
			continue
		}
		n.AddChild(&phylo.Node{
			Name:  n.Name,
			TaxID: n.TaxID,
		})
	}

	for _, n := range phylo.Descendants(root) {
		if n.IsRoot() {
			continue
		}
		if len(n.Children()) == 1 {
			n.Delete(false)
		}
	}
	if len(root.Children()) == 1 && !root.Children()[0].IsLeaf() {
		root = root.Children()[0].Detach()
	}
	return phylo.New("taxonomy", root), nil
}
