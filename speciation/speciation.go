// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package speciation implements the decomposition
// of a gene family tree
// into the maximal subtrees
// that only contain speciation events.
//
// A node is considered a duplication
// if the species sets of its children overlap.
package speciation

import (
	"fmt"
	"slices"

	"github.com/js-arias/treeko/phylo"
)

// Content is the set of taxon identifiers
// found in the terminals of each node of a tree.
type Content map[*phylo.Node]map[string]bool

// Contents returns the taxon content
// of each node in a tree.
// The content of each node is calculated only once,
// from the content of its children.
func Contents(t *phylo.Tree) Content {
	c := make(Content)
	for _, n := range t.PostOrder() {
		set := make(map[string]bool)
		if n.IsLeaf() {
			if n.TaxID != "" {
				set[n.TaxID] = true
			}
			c[n] = set
			continue
		}
		for _, x := range n.Children() {
			for id := range c[x] {
				set[id] = true
			}
		}
		c[n] = set
	}
	return c
}

// IsDuplication returns true if the node is a duplication,
// i.e.,
// a taxon is found in more than one of its children.
//
// It is an overlap test,
// a node with coincidental counts
// is taken as a speciation.
func IsDuplication(n *phylo.Node, c Content) bool {
	total := len(c[n])
	if total <= 1 {
		return false
	}

	sub := 0
	for _, x := range n.Children() {
		sub += len(c[x])
	}
	return sub != total
}

// Duplications returns the number of duplication nodes
// in a tree.
func Duplications(t *phylo.Tree) int {
	c := Contents(t)
	dups := 0
	for _, n := range t.Nodes() {
		if IsDuplication(n, c) {
			dups++
		}
	}
	return dups
}

// A Forest is a set of disjoint trees.
type Forest []*phylo.Tree

// Valid returns the trees of the forest
// with more than one terminal.
func (f Forest) Valid() Forest {
	var v Forest
	for _, t := range f {
		if t.Len() > 1 {
			v = append(v, t)
		}
	}
	return v
}

// Split splits a tree into speciation trees.
// The source tree is not modified.
//
// If the root of a (sub)tree is a duplication,
// each of its children is split independently.
// Otherwise,
// the duplication nodes found below it
// are detached and split independently,
// and the remaining skeleton
// (after removing single-child nodes
// and internal nodes without terminals)
// is a speciation tree.
func Split(t *phylo.Tree) Forest {
	w := t.Clone()
	c := Contents(w)

	var forest Forest
	stack := []*phylo.Node{w.Root()}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if IsDuplication(n, c) {
			children := slices.Clone(n.Children())
			for i := len(children) - 1; i >= 0; i-- {
				stack = append(stack, children[i].Detach())
			}
			continue
		}

		dups := stopNodes(n, c)
		for _, d := range dups {
			d.Detach()
		}

		st := phylo.New(fmt.Sprintf("%s.%d", t.Name, len(forest)), n)
		clean(st)
		if len(st.Root().Children()) > 0 {
			forest = append(forest, st)
		}

		for i := len(dups) - 1; i >= 0; i-- {
			stack = append(stack, dups[i])
		}
	}
	return forest
}

// StopNodes returns the duplication nodes
// found below a node,
// without descending below a duplication.
func stopNodes(n *phylo.Node, c Content) []*phylo.Node {
	var dups []*phylo.Node
	stack := slices.Clone(n.Children())
	slices.Reverse(stack)
	for len(stack) > 0 {
		x := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if x.IsLeaf() {
			continue
		}
		if IsDuplication(x, c) {
			dups = append(dups, x)
			continue
		}
		children := x.Children()
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return dups
}

// Clean removes the nodes with a single child,
// and the nodes without children
// that are not terminals of a taxon.
func clean(t *phylo.Tree) {
	var remove []*phylo.Node
	for _, n := range phylo.LevelOrder(t.Root()) {
		ch := len(n.Children())
		if ch == 1 || (ch == 0 && n.TaxID == "") {
			remove = append(remove, n)
		}
	}
	for _, n := range remove {
		n.Delete(true)
	}
}
