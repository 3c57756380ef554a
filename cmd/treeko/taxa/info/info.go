// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package info implements a command to print
// the lineage of taxa
// in the taxonomy of a treeko project.
package info

import (
	"fmt"
	"strings"

	"github.com/js-arias/command"
	"github.com/js-arias/treeko/project"
	"github.com/js-arias/treeko/taxonomy"
)

var Command = &command.Command{
	Usage: "info <project-file> <taxon>...",
	Short: "print the lineage of taxa",
	Long: `
Command info reads the taxonomy of a treeko project and prints the name and
the lineage of one or more taxa.

The first argument of the command is the name of the project file. The
following arguments are the taxa to search, either as taxon identifiers, or as
taxon names (names are case insensitive).

The output is a tab-delimited table with the identifier of the taxon, its
name, the names of its lineage, and the identifiers of its lineage.
	`,
	Run: run,
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}
	if len(args) < 2 {
		return c.UsageError("expecting taxon")
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

	fmt.Fprintf(c.Stdout(), "taxid\tname\tnamed-lineage\tlineage\n")
	for _, a := range args[1:] {
		tx, ok := search(tax, a)
		if !ok {
			fmt.Fprintf(c.Stderr(), "WARNING: taxon %q not found\n", a)
			continue
		}

		named := make([]string, 0, len(tx.Lineage))
		for _, id := range tx.Lineage {
			nm, ok := tax.Name(id)
			if !ok || nm == "" {
				nm = taxonomy.Unknown
			}
			named = append(named, nm)
		}
		fmt.Fprintf(c.Stdout(), "%s\t%s\t%s\t%s\n", tx.ID, tx.Name, strings.Join(named, ","), strings.Join(tx.Lineage, ","))
	}

	if s, ok := tax.(*taxonomy.Store); ok {
		return s.Err()
	}
	return nil
}

func search(tax taxonomy.Source, a string) (taxonomy.Taxon, bool) {
	if tx, ok := tax.Taxon(a); ok {
		return tx, true
	}
	id, ok := tax.TaxID(a)
	if !ok {
		return taxonomy.Taxon{}, false
	}
	return tax.Taxon(id)
}
