// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package distance implements the aggregation
// of the topological distances
// between the speciation subtrees of a gene tree
// and a reference species tree.
package distance

import (
	"errors"
	"fmt"
	"slices"

	"github.com/js-arias/treeko/phylo"
	"gonum.org/v1/gonum/stat"
)

// A Metric is a function that returns the distance
// between a subtree and a reference tree.
//
// A metric must return phylo.ErrNoComparable
// if the trees can not be compared,
// or phylo.ErrDuplicatedKey
// if a terminal key is repeated in a tree.
type Metric func(sub, ref *phylo.Tree) (phylo.Distance, error)

// RFMetric returns a metric using the Robinson-Foulds distance
// with the given functions to retrieve
// the keys of the subtree and the reference terminals.
func RFMetric(keySub, keyRef func(*phylo.Node) string) Metric {
	return func(sub, ref *phylo.Tree) (phylo.Distance, error) {
		return phylo.RF(sub, ref, keySub, keyRef)
	}
}

// A Value is the distance of a single subtree.
type Value struct {
	Tree     string
	Leaves   int
	Distance phylo.Distance
}

// Stats is the summary of the distances
// of a set of subtrees.
type Stats struct {
	// Number of compared subtrees.
	Count int

	// Number of subtrees without enough terminals
	// in common with the reference.
	Skipped int

	// Mean of the normalized distances
	// weighted by the number of terminals
	// of each subtree.
	Mean float64

	// Median of the normalized distances.
	Median float64

	// Standard deviation
	// of the normalized distances.
	StdDev float64

	// Largest maximum distance
	// found in a subtree.
	MaxObserved int

	// Distance of each compared subtree.
	Values []Value
}

// Norm returns the normalized distances
// of the compared subtrees.
func (s Stats) Norm() []float64 {
	x := make([]float64, 0, len(s.Values))
	for _, v := range s.Values {
		x = append(x, v.Distance.Norm())
	}
	return x
}

// Aggregate compares each tree of a forest
// with more than a single terminal
// with a reference tree,
// and returns the summary statistics.
//
// Subtrees that can not be compared with the reference,
// including subtrees with repeated terminal keys
// (e.g., paralogs of a single species),
// are skipped.
func Aggregate(forest []*phylo.Tree, ref *phylo.Tree, m Metric) (Stats, error) {
	var s Stats
	var w []float64
	for _, t := range forest {
		if t.Len() < 2 {
			continue
		}
		d, err := m(t, ref)
		if errors.Is(err, phylo.ErrNoComparable) || errors.Is(err, phylo.ErrDuplicatedKey) {
			s.Skipped++
			continue
		}
		if err != nil {
			return Stats{}, fmt.Errorf("subtree %q: %w", t.Name, err)
		}

		s.Values = append(s.Values, Value{
			Tree:     t.Name,
			Leaves:   t.Len(),
			Distance: d,
		})
		w = append(w, float64(t.Len()))
		if d.Max > s.MaxObserved {
			s.MaxObserved = d.Max
		}
	}
	s.Count = len(s.Values)
	if s.Count == 0 {
		return s, nil
	}

	x := s.Norm()
	s.Mean = stat.Mean(x, w)
	_, s.StdDev = stat.PopMeanStdDev(x, nil)
	s.Median = median(x)
	return s, nil
}

func median(x []float64) float64 {
	x = slices.Clone(x)
	slices.Sort(x)
	m := len(x) / 2
	if len(x)%2 == 1 {
		return x[m]
	}
	return (x[m-1] + x[m]) / 2
}
