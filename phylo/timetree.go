// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package phylo

import (
	"fmt"
	"io"

	"github.com/js-arias/timetree"
)

const millionYears = 1_000_000

// FromTimetree creates a new tree
// from a time calibrated tree.
// Terminal taxa are used as node names,
// and branch lengths are set in million years.
// Terminal names must be unique.
func FromTimetree(t *timetree.Tree) (*Tree, error) {
	var root *Node
	ids := make(map[int]*Node)
	for _, id := range t.Nodes() {
		n := &Node{
			Name: t.Taxon(id),
		}
		p := t.Parent(id)
		if p < 0 {
			root = n
			ids[id] = n
			continue
		}
		n.Length = float64(t.Age(p)-t.Age(id)) / millionYears
		n.HasLength = true
		ids[p].AddChild(n)
		ids[id] = n
	}
	tr := New(t.Name(), root)
	if err := checkTerms(tr); err != nil {
		return nil, fmt.Errorf("tree %q: %w", tr.Name, err)
	}
	return tr, nil
}

// ReadTimetreeTSV reads a collection of time calibrated trees
// from a TSV file
// and returns them as trees.
func ReadTimetreeTSV(r io.Reader) ([]*Tree, error) {
	c, err := timetree.ReadTSV(r)
	if err != nil {
		return nil, err
	}

	names := c.Names()
	if len(names) == 0 {
		return nil, fmt.Errorf("no tree found")
	}
	trees := make([]*Tree, 0, len(names))
	for _, tn := range names {
		t, err := FromTimetree(c.Tree(tn))
		if err != nil {
			return nil, err
		}
		trees = append(trees, t)
	}
	return trees, nil
}
