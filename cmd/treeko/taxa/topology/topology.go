// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package topology implements a command to print
// the taxonomic hierarchy of a set of taxa
// as a tree.
package topology

import (
	"fmt"

	"github.com/js-arias/command"
	"github.com/js-arias/treeko/phylo"
	"github.com/js-arias/treeko/project"
	"github.com/js-arias/treeko/taxonomy"
)

var Command = &command.Command{
	Usage: "topology [--taxid] <project-file> [<taxon>...]",
	Short: "print the taxonomy of a set of taxa as a tree",
	Long: `
Command topology reads the taxonomy of a treeko project and prints the
taxonomic hierarchy of a set of taxa as a tree in Newick format. Nodes with a
single descendant are removed.

The first argument of the command is the name of the project file. The
following arguments are the taxa, either as taxon identifiers, or as taxon
names (names are case insensitive). If no taxa are given, the taxa of the gene
tree terminals of the project will be used.

By default, the nodes of the tree are labeled with the taxon names. Use the
flag --taxid to label the nodes with the taxon identifiers.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var taxIDFlag bool

func setFlags(c *command.Command) {
	c.Flags().BoolVar(&taxIDFlag, "taxid", false, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}
	tax, closeTax, err := p.Taxonomy()
	if err != nil {
		return err
	}
	defer closeTax()

	var ids []string
	if len(args) > 1 {
		for _, a := range args[1:] {
			if _, ok := tax.Taxon(a); ok {
				ids = append(ids, a)
				continue
			}
			id, ok := tax.TaxID(a)
			if !ok {
				fmt.Fprintf(c.Stderr(), "WARNING: taxon %q not found\n", a)
				continue
			}
			ids = append(ids, id)
		}
	} else {
		ids, err = treeTaxa(p, tax)
		if err != nil {
			return err
		}
	}
	if len(ids) == 0 {
		return fmt.Errorf("no valid taxa")
	}

	t, err := taxonomy.Topology(tax, ids)
	if err != nil {
		return err
	}

	var label func(*phylo.Node) string
	if taxIDFlag {
		label = func(n *phylo.Node) string { return n.TaxID }
		for _, n := range t.Nodes() {
			if !n.IsLeaf() {
				n.Name = n.TaxID
			}
		}
	}
	if err := t.Newick(c.Stdout(), label); err != nil {
		return err
	}

	if s, ok := tax.(*taxonomy.Store); ok {
		return s.Err()
	}
	return nil
}

func treeTaxa(p *project.Project, tax taxonomy.Source) ([]string, error) {
	trees, err := p.Trees()
	if err != nil {
		return nil, err
	}
	if err := p.SetTaxa(trees); err != nil {
		return nil, err
	}

	var ids []string
	seen := make(map[string]bool)
	for _, t := range trees {
		for _, n := range t.Leaves() {
			if seen[n.TaxID] {
				continue
			}
			seen[n.TaxID] = true
			if _, ok := tax.Lineage(n.TaxID); !ok {
				continue
			}
			ids = append(ids, n.TaxID)
		}
	}
	return ids, nil
}
