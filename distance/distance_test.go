// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package distance_test

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/js-arias/treeko/distance"
	"github.com/js-arias/treeko/phylo"
)

func parse(t testing.TB, name, nw string) *phylo.Tree {
	t.Helper()

	tr, err := phylo.ParseNewick(nw, name)
	if err != nil {
		t.Fatalf("unable to parse %q: %v", nw, err)
	}
	return tr
}

func fixedMetric(values map[string]phylo.Distance) distance.Metric {
	return func(sub, ref *phylo.Tree) (phylo.Distance, error) {
		d, ok := values[sub.Name]
		if !ok {
			return phylo.Distance{}, phylo.ErrNoComparable
		}
		return d, nil
	}
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-12
}

func TestAggregate(t *testing.T) {
	forest := []*phylo.Tree{
		parse(t, "a", "((A,B),C);"),
		parse(t, "b", "((A,B),(C,(D,E)));"),
		parse(t, "c", "(X,Y);"),
		parse(t, "single", "(A);"),
	}
	m := fixedMetric(map[string]phylo.Distance{
		"a":      {Raw: 1, Max: 3},
		"b":      {Raw: 2, Max: 7},
		"single": {Raw: 5, Max: 5},
	})

	s, err := distance.Aggregate(forest, nil, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Count != 2 {
		t.Errorf("count: got %d, want %d", s.Count, 2)
	}
	if s.Skipped != 1 {
		t.Errorf("skipped: got %d, want %d", s.Skipped, 1)
	}
	if s.MaxObserved != 7 {
		t.Errorf("max observed: got %d, want %d", s.MaxObserved, 7)
	}

	mean := (3*(1.0/3) + 5*(2.0/7)) / 8
	if !near(s.Mean, mean) {
		t.Errorf("mean: got %.6f, want %.6f", s.Mean, mean)
	}
	median := (1.0/3 + 2.0/7) / 2
	if !near(s.Median, median) {
		t.Errorf("median: got %.6f, want %.6f", s.Median, median)
	}
	std := (1.0/3 - 2.0/7) / 2
	if !near(s.StdDev, std) {
		t.Errorf("std: got %.6f, want %.6f", s.StdDev, std)
	}
}

func TestAggregateEmpty(t *testing.T) {
	forest := []*phylo.Tree{
		parse(t, "x", "(X,Y);"),
	}
	s, err := distance.Aggregate(forest, nil, fixedMetric(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Count != 0 || s.Skipped != 1 {
		t.Errorf("got count %d, skipped %d, want 0, 1", s.Count, s.Skipped)
	}
	if s.Mean != 0 || s.Median != 0 || s.StdDev != 0 {
		t.Errorf("statistics: got %v, %v, %v, want zero values", s.Mean, s.Median, s.StdDev)
	}
}

func TestAggregateError(t *testing.T) {
	forest := []*phylo.Tree{
		parse(t, "x", "(X,Y);"),
	}
	bad := errors.New("metric failure")
	m := func(sub, ref *phylo.Tree) (phylo.Distance, error) {
		return phylo.Distance{}, bad
	}
	if _, err := distance.Aggregate(forest, nil, m); !errors.Is(err, bad) {
		t.Errorf("got error %v, want %v", err, bad)
	}
}

func TestAggregateDuplicatedKeys(t *testing.T) {
	ref := parse(t, "ref", "((A,B),(C,D));")
	forest := []*phylo.Tree{
		parse(t, "paralogs", "(((A_1,A_2),B_1),(C_1,D_1));"),
		parse(t, "clean", "((A_3,B_3),C_3);"),
	}
	for _, tr := range forest {
		for _, n := range tr.Leaves() {
			n.TaxID = n.Name[:1]
		}
	}

	tax := func(n *phylo.Node) string { return n.TaxID }
	name := func(n *phylo.Node) string { return n.Name }
	s, err := distance.Aggregate(forest, ref, distance.RFMetric(tax, name))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Count != 1 {
		t.Errorf("count: got %d, want %d", s.Count, 1)
	}
	if s.Skipped != 1 {
		t.Errorf("skipped: got %d, want %d", s.Skipped, 1)
	}
	if len(s.Values) != 1 || s.Values[0].Tree != "clean" {
		t.Errorf("values: got %v, want only %q", s.Values, "clean")
	}
}

func TestRFMetric(t *testing.T) {
	ref := parse(t, "ref", "((Homo,Pan),(Mus,Rattus));")
	forest := []*phylo.Tree{
		parse(t, "same", "((HUMAN,CHIMP),MOUSE);"),
		parse(t, "diff", "((HUMAN,MOUSE),CHIMP);"),
	}
	species := map[string]string{
		"HUMAN": "Homo",
		"CHIMP": "Pan",
		"MOUSE": "Mus",
	}
	for _, tr := range forest {
		for _, n := range tr.Leaves() {
			n.TaxID = species[n.Name]
		}
	}

	tax := func(n *phylo.Node) string { return n.TaxID }
	name := func(n *phylo.Node) string { return n.Name }
	s, err := distance.Aggregate(forest, ref, distance.RFMetric(tax, name))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Count != 2 {
		t.Fatalf("count: got %d, want %d", s.Count, 2)
	}
	if d := s.Values[0].Distance; d.Raw != 0 || d.Max != 2 {
		t.Errorf("subtree %q: got %d/%d, want 0/2", s.Values[0].Tree, d.Raw, d.Max)
	}
	if d := s.Values[1].Distance; d.Raw != 2 || d.Max != 2 {
		t.Errorf("subtree %q: got %d/%d, want 2/2", s.Values[1].Tree, d.Raw, d.Max)
	}
	if !near(s.Mean, 0.5) {
		t.Errorf("mean: got %.6f, want %.6f", s.Mean, 0.5)
	}
}

func TestPlot(t *testing.T) {
	s := distance.Stats{
		Count: 2,
		Values: []distance.Value{
			{Tree: "a", Leaves: 3, Distance: phylo.Distance{Raw: 1, Max: 3}},
			{Tree: "b", Leaves: 5, Distance: phylo.Distance{Raw: 2, Max: 7}},
		},
	}
	name := filepath.Join(t.TempDir(), "hist.png")
	if err := distance.Plot(name, s); err != nil {
		t.Fatalf("unable to plot: %v", err)
	}
	if _, err := os.Stat(name); err != nil {
		t.Errorf("plot file: %v", err)
	}

	if err := distance.Plot(name, distance.Stats{}); err == nil {
		t.Errorf("empty stats: expecting error")
	}
}
