// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package analysis implements the analysis of gene trees
// by splitting them into speciation subtrees,
// testing the taxonomic consistency of each subtree,
// and comparing them against a reference species tree.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"sync"

	"github.com/js-arias/treeko/distance"
	"github.com/js-arias/treeko/monophyly"
	"github.com/js-arias/treeko/phylo"
	"github.com/js-arias/treeko/speciation"
)

// ErrNoTaxID is returned when a terminal
// does not have a taxon identifier.
var ErrNoTaxID = errors.New("undefined taxon identifier")

// Options are the options used for an analysis.
type Options struct {
	// Reference is the species tree
	// used to score the subtrees.
	// If nil, no distance is calculated.
	Reference *phylo.Tree

	// SubKey is the terminal key
	// of the subtrees.
	// By default it uses the taxon identifier.
	SubKey func(*phylo.Node) string

	// RefKey is the terminal key
	// of the reference tree.
	// By default it uses the terminal name.
	RefKey func(*phylo.Node) string

	// If set, the taxonomic consistency
	// of the subtrees will be tested.
	// Terminals must have a lineage.
	Taxonomy bool

	// If set, the broken groups
	// are annotated into the analyzed tree.
	WriteBack bool
}

// Summary is the result of the analysis of a tree.
type Summary struct {
	Name string

	// Number of duplication nodes
	// in the tree.
	Duplications int

	// Number of speciation subtrees
	// with more than one terminal.
	Subtrees int

	// Number of subtrees
	// with at least one broken group.
	BrokenSubtrees int

	// Sum of the broken groups
	// of each subtree.
	BrokenClades int

	// Groups broken in at least one subtree.
	Broken []string

	// Groups monophyletic in at least one subtree.
	Correct []string

	// Names of the groups.
	Names map[string]string

	// Distance to the reference tree.
	HasDistance bool
	Distance    distance.Stats

	// Speciation subtrees
	// with more than one terminal.
	Forest speciation.Forest
}

// BrokenNames returns the names of the broken groups.
func (s Summary) BrokenNames() []string {
	names := make([]string, 0, len(s.Broken))
	for _, id := range s.Broken {
		nm := s.Names[id]
		if nm == "" {
			nm = id
		}
		names = append(names, nm)
	}
	return names
}

func taxID(n *phylo.Node) string { return n.TaxID }

func name(n *phylo.Node) string { return n.Name }

// Analyze analyzes a tree.
// All terminals of the tree must have a taxon identifier.
func Analyze(t *phylo.Tree, opt Options) (Summary, error) {
	for _, n := range t.Leaves() {
		if n.TaxID == "" {
			return Summary{}, fmt.Errorf("tree %q: terminal %q: %w", t.Name, n.Name, ErrNoTaxID)
		}
	}

	s := Summary{
		Name:         t.Name,
		Duplications: speciation.Duplications(t),
		Forest:       speciation.Split(t).Valid(),
		Names:        make(map[string]string),
	}
	s.Subtrees = len(s.Forest)

	if opt.Taxonomy {
		broken := make(map[string]bool)
		correct := make(map[string]bool)
		for _, sub := range s.Forest {
			r, err := monophyly.Analyze(sub)
			if err != nil {
				return Summary{}, fmt.Errorf("tree %q: %w", t.Name, err)
			}
			if len(r.Broken) > 0 {
				s.BrokenSubtrees++
			}
			s.BrokenClades += len(r.Broken)
			for _, id := range r.Broken {
				broken[id] = true
			}
			for _, id := range r.Mono {
				correct[id] = true
			}
			for id, nm := range r.Names {
				s.Names[id] = nm
			}

			if !opt.WriteBack {
				continue
			}
			if err := monophyly.WriteBack(t, sub, r); err != nil {
				return Summary{}, fmt.Errorf("tree %q: %w", t.Name, err)
			}
		}
		s.Broken = setList(broken)
		s.Correct = setList(correct)
	}

	if opt.Reference != nil {
		subKey := opt.SubKey
		if subKey == nil {
			subKey = taxID
		}
		refKey := opt.RefKey
		if refKey == nil {
			refKey = name
		}
		d, err := distance.Aggregate(s.Forest, opt.Reference, distance.RFMetric(subKey, refKey))
		if err != nil {
			return Summary{}, fmt.Errorf("tree %q: %w", t.Name, err)
		}
		s.Distance = d
		s.HasDistance = true
	}

	return s, nil
}

func setList(set map[string]bool) []string {
	ls := make([]string, 0, len(set))
	for id := range set {
		ls = append(ls, id)
	}
	slices.Sort(ls)
	return ls
}

// An Outcome is the result of the analysis
// of a tree in a batch.
type Outcome struct {
	Name    string
	Summary Summary
	Err     error
}

// Batch analyzes a set of trees.
// Use cpu to define the number of process
// used for the analysis.
// The default (zero) uses all available CPU.
//
// An error in a tree is stored in its outcome,
// and does not stop the analysis of the other trees.
// If the context is canceled,
// trees not yet analyzed will return the context error.
// The outcomes are in the same order as the trees.
func Batch(ctx context.Context, trees []*phylo.Tree, opt Options, cpu int) []Outcome {
	if cpu <= 0 {
		cpu = runtime.NumCPU()
	}

	out := make([]Outcome, len(trees))
	jobs := make(chan int, cpu*2)
	var wg sync.WaitGroup
	for range cpu {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				t := trees[i]
				if err := ctx.Err(); err != nil {
					out[i] = Outcome{Name: t.Name, Err: err}
					continue
				}
				s, err := Analyze(t, opt)
				out[i] = Outcome{
					Name:    t.Name,
					Summary: s,
					Err:     err,
				}
			}
		}()
	}

	for i := range trees {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return out
}
