// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package monophyly implements a test
// of the consistency of a tree
// with the taxonomic groups
// defined by the lineages of its terminals.
//
// A taxonomic group is monophyletic
// if for every node of the tree,
// the node either contains all the terminals of the group,
// or only contains terminals of the group.
// Otherwise the group is broken.
package monophyly

import (
	"errors"
	"fmt"
	"slices"

	"github.com/js-arias/treeko/phylo"
)

// ErrNoLineage is returned
// when a terminal does not have a lineage.
var ErrNoLineage = errors.New("undefined lineage")

// Result is the result of the analysis
// of a tree.
type Result struct {
	// Mono are the groups that are monophyletic.
	Mono []string

	// Broken are the groups that are not monophyletic.
	Broken []string

	// Names are the names of each group.
	Names map[string]string
}

// IsBroken returns true if the given group
// is broken.
func (r Result) IsBroken(id string) bool {
	_, ok := slices.BinarySearch(r.Broken, id)
	return ok
}

// BrokenNames returns the names of the broken groups.
func (r Result) BrokenNames() []string {
	names := make([]string, 0, len(r.Broken))
	for _, id := range r.Broken {
		nm := r.Names[id]
		if nm == "" {
			nm = id
		}
		names = append(names, nm)
	}
	return names
}

// Analyze compares the groups defined
// by the lineages of the terminals of a tree
// with the clades of the tree.
//
// All terminals with a taxon identifier
// must have a lineage,
// otherwise it returns an error.
// Terminals without a taxon identifier
// do not belong to any group.
func Analyze(t *phylo.Tree) (Result, error) {
	total := make(map[string]int)
	names := make(map[string]string)
	for _, n := range t.Leaves() {
		if n.TaxID != "" && len(n.Lineage) == 0 {
			return Result{}, fmt.Errorf("terminal %q: %w", n.Name, ErrNoLineage)
		}
		for id := range lineageSet(n) {
			total[id]++
		}
		if len(n.NamedLineage) == len(n.Lineage) {
			for i, id := range n.Lineage {
				names[id] = n.NamedLineage[i]
			}
		}
	}

	broken := make(map[string]bool)
	tracks := make(map[*phylo.Node]map[string]int)
	size := make(map[*phylo.Node]int)
	for _, n := range t.PostOrder() {
		if n.IsLeaf() {
			tr := make(map[string]int)
			for id := range lineageSet(n) {
				tr[id] = 1
			}
			tracks[n] = tr
			size[n] = 1
			continue
		}

		tr := make(map[string]int)
		sz := 0
		for _, c := range n.Children() {
			for id, v := range tracks[c] {
				tr[id] += v
			}
			sz += size[c]
			delete(tracks, c)
			delete(size, c)
		}
		tracks[n] = tr
		size[n] = sz

		for id, v := range tr {
			if broken[id] {
				continue
			}
			if v != total[id] && v != sz {
				broken[id] = true
			}
		}
	}

	r := Result{
		Names: names,
	}
	for id := range total {
		if broken[id] {
			r.Broken = append(r.Broken, id)
			continue
		}
		r.Mono = append(r.Mono, id)
	}
	slices.Sort(r.Mono)
	slices.Sort(r.Broken)
	return r, nil
}

func lineageSet(n *phylo.Node) map[string]bool {
	set := make(map[string]bool, len(n.Lineage))
	for _, id := range n.Lineage {
		set[id] = true
	}
	return set
}

// WriteBack annotates the broken groups
// found in a speciation subtree
// into the source tree.
//
// The terminals of the source tree
// that are part of the subtree,
// as well as its least common ancestor,
// will store the identifiers of the broken groups.
// The topology of the source tree is never modified.
func WriteBack(src, sub *phylo.Tree, r Result) error {
	if len(r.Broken) == 0 {
		return nil
	}

	leaves := make(map[string]*phylo.Node)
	for _, n := range src.Leaves() {
		leaves[n.Name] = n
	}

	var affected []*phylo.Node
	for _, n := range sub.Leaves() {
		x, ok := leaves[n.Name]
		if !ok {
			return fmt.Errorf("terminal %q not found in tree %q", n.Name, src.Name)
		}
		addBroken(x, r.Broken)
		affected = append(affected, x)
	}
	if len(affected) == 0 {
		return nil
	}

	lca := phylo.LCA(affected...)
	addBroken(lca, r.Broken)
	return nil
}

func addBroken(n *phylo.Node, ids []string) {
	if n.Broken == nil {
		n.Broken = make(map[string]bool, len(ids))
	}
	for _, id := range ids {
		n.Broken[id] = true
	}
}
