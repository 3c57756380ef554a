// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package monophyly_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/js-arias/treeko/monophyly"
	"github.com/js-arias/treeko/phylo"
)

var lineages = map[string][]string{
	"A": {"1", "G", "A"},
	"B": {"1", "G", "B"},
	"C": {"1", "H", "C"},
	"D": {"1", "H", "D"},
	"E": {"1", "E"},
}

var groupNames = map[string]string{
	"1": "root",
	"G": "Gnathostomata",
	"H": "Hexapoda",
	"A": "Alpha",
	"B": "Beta",
	"C": "Gamma",
	"D": "Delta",
	"E": "Epsilon",
}

func newTree(t testing.TB, nw string) *phylo.Tree {
	t.Helper()

	tr, err := phylo.ParseNewick(nw, "test")
	if err != nil {
		t.Fatalf("unable to parse %q: %v", nw, err)
	}
	for _, n := range tr.Leaves() {
		n.TaxID = n.Name
		lin, ok := lineages[n.Name]
		if !ok {
			// unknown taxa are their own group
			n.Lineage = []string{n.Name}
			n.NamedLineage = []string{"Unknown"}
			continue
		}
		n.Lineage = lin
		for _, id := range lin {
			n.NamedLineage = append(n.NamedLineage, groupNames[id])
		}
	}
	return tr
}

func TestMonophyletic(t *testing.T) {
	tr := newTree(t, "((A,B),(C,D));")
	r, err := monophyly.Analyze(tr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mono := []string{"1", "A", "B", "C", "D", "G", "H"}
	if !reflect.DeepEqual(r.Mono, mono) {
		t.Errorf("monophyletic: got %v, want %v", r.Mono, mono)
	}
	if len(r.Broken) != 0 {
		t.Errorf("broken: got %v, want none", r.Broken)
	}
	if r.Names["G"] != "Gnathostomata" {
		t.Errorf("name of %q: got %q, want %q", "G", r.Names["G"], "Gnathostomata")
	}
}

func TestBroken(t *testing.T) {
	tr := newTree(t, "((A,C),(B,D));")
	r, err := monophyly.Analyze(tr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	broken := []string{"G", "H"}
	if !reflect.DeepEqual(r.Broken, broken) {
		t.Errorf("broken: got %v, want %v", r.Broken, broken)
	}
	mono := []string{"1", "A", "B", "C", "D"}
	if !reflect.DeepEqual(r.Mono, mono) {
		t.Errorf("monophyletic: got %v, want %v", r.Mono, mono)
	}
	if !r.IsBroken("G") || r.IsBroken("A") {
		t.Errorf("is broken: unexpected result for %q or %q", "G", "A")
	}
	names := []string{"Gnathostomata", "Hexapoda"}
	if got := r.BrokenNames(); !reflect.DeepEqual(got, names) {
		t.Errorf("broken names: got %v, want %v", got, names)
	}
}

func TestBrokenIsGlobal(t *testing.T) {
	// G is split at the node (A,E),
	// even if the root contains the whole group.
	tr := newTree(t, "(((A,E),B),(C,D));")
	r, err := monophyly.Analyze(tr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	broken := []string{"G"}
	if !reflect.DeepEqual(r.Broken, broken) {
		t.Errorf("broken: got %v, want %v", r.Broken, broken)
	}
}

func TestUnknownTaxon(t *testing.T) {
	tr := newTree(t, "((A,B),Xenus);")
	r, err := monophyly.Analyze(tr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.IsBroken("Xenus") {
		t.Errorf("unknown taxon reported as broken")
	}
	found := false
	for _, id := range r.Mono {
		if id == "Xenus" {
			found = true
		}
	}
	if !found {
		t.Errorf("unknown taxon not found in monophyletic groups: %v", r.Mono)
	}
}

func TestNoLineage(t *testing.T) {
	tr := newTree(t, "((A,B),C);")
	c, _ := tr.Leaf("C")
	c.Lineage = nil

	if _, err := monophyly.Analyze(tr); !errors.Is(err, monophyly.ErrNoLineage) {
		t.Errorf("got error %v, want %v", err, monophyly.ErrNoLineage)
	}
}

func TestNoTaxon(t *testing.T) {
	tr := newTree(t, "((A,B),X);")
	x, _ := tr.Leaf("X")
	x.TaxID = ""
	x.Lineage = nil
	x.NamedLineage = nil

	r, err := monophyly.Analyze(tr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"1", "A", "B", "G"}; !reflect.DeepEqual(r.Mono, want) {
		t.Errorf("monophyletic: got %v, want %v", r.Mono, want)
	}
	if len(r.Broken) != 0 {
		t.Errorf("broken: got %v, want none", r.Broken)
	}
}

func TestWriteBack(t *testing.T) {
	src := newTree(t, "(((A,C),(B,D))s,E)r;")
	var s *phylo.Node
	for _, n := range src.Nodes() {
		if n.Name == "s" {
			s = n
		}
	}
	before := src.String()
	nodes := len(src.Nodes())

	sub := phylo.Subtree("sub", s)
	r, err := monophyly.Analyze(sub)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := monophyly.WriteBack(src, sub, r); err != nil {
			t.Fatalf("write back: %v", err)
		}
	}

	if got := src.String(); got != before {
		t.Errorf("topology changed: got %s, want %s", got, before)
	}
	if got := len(src.Nodes()); got != nodes {
		t.Errorf("nodes: got %d, want %d", got, nodes)
	}

	want := map[string]bool{"G": true, "H": true}
	if !reflect.DeepEqual(s.Broken, want) {
		t.Errorf("ancestor: got %v, want %v", s.Broken, want)
	}
	a, _ := src.Leaf("A")
	if !reflect.DeepEqual(a.Broken, want) {
		t.Errorf("terminal: got %v, want %v", a.Broken, want)
	}
	if src.Root().Broken != nil {
		t.Errorf("root: got %v, want no annotation", src.Root().Broken)
	}
	e, _ := src.Leaf("E")
	if e.Broken != nil {
		t.Errorf("terminal outside subtree: got %v, want no annotation", e.Broken)
	}
}
