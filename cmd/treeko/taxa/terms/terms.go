// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package terms implements a command to print
// the taxa of the terminals
// in the gene trees of a treeko project.
package terms

import (
	"fmt"

	"github.com/js-arias/command"
	"github.com/js-arias/treeko/phylo"
	"github.com/js-arias/treeko/project"
	"github.com/js-arias/treeko/taxonomy"
	"golang.org/x/exp/slices"
)

var Command = &command.Command{
	Usage: "terms [--tree <tree-name>] <project-file>",
	Short: "print the taxa of tree terminals",
	Long: `
Command terms reads the gene trees from a treeko project and prints the
terminals with their taxon identifiers in the standard output.

The argument of the command is the name of the project file.

If the project has a taxonomy, the name of the taxon will be printed, or
"Unknown" if the taxon is not in the taxonomy.

By default all terminals will be printed. If the flag --tree is set, only the
terminals of the indicated tree will be printed.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var treeName string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&treeName, "tree", "", "")
}

type term struct {
	name   string
	taxID  string
	spName string
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}
	trees, err := p.Trees()
	if err != nil {
		return err
	}
	if err := p.SetTaxa(trees); err != nil {
		return err
	}

	if p.HasTaxonomy() {
		tax, closeTax, err := p.Taxonomy()
		if err != nil {
			return err
		}
		defer closeTax()
		for _, t := range trees {
			taxonomy.Annotate(t, tax)
		}
	}

	for _, tm := range termList(trees) {
		if tm.spName == "" {
			fmt.Fprintf(c.Stdout(), "%s\t%s\n", tm.name, tm.taxID)
			continue
		}
		fmt.Fprintf(c.Stdout(), "%s\t%s\t%s\n", tm.name, tm.taxID, tm.spName)
	}
	return nil
}

func termList(trees []*phylo.Tree) []term {
	terms := make(map[string]term)
	for _, t := range trees {
		if treeName != "" && t.Name != treeName {
			continue
		}
		for _, n := range t.Leaves() {
			terms[n.Name] = term{
				name:   n.Name,
				taxID:  n.TaxID,
				spName: n.SpName,
			}
		}
	}

	ls := make([]term, 0, len(terms))
	for _, tm := range terms {
		ls = append(ls, tm)
	}
	slices.SortFunc(ls, func(a, b term) int {
		if a.name < b.name {
			return -1
		}
		if a.name > b.name {
			return 1
		}
		return 0
	})
	return ls
}
