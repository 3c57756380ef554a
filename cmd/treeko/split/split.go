// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package split implements a command to write
// the speciation subtrees of the gene trees
// of a project.
package split

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/js-arias/command"
	"github.com/js-arias/treeko/phylo"
	"github.com/js-arias/treeko/project"
	"github.com/js-arias/treeko/speciation"
)

var Command = &command.Command{
	Usage: `split [--all] [--taxid]
	[-o|--output <file>]
	<project-file> [<tree-file>...]`,
	Short: "write the speciation subtrees of gene trees",
	Long: `
Command split reads the gene trees of a treeko project, splits each tree into
speciation subtrees (i.e., subtrees without duplication nodes), and writes the
subtrees in Newick format.

The first argument of the command is the name of the project file. One or more
tree files can be given as additional arguments, otherwise, the gene trees of
the project will be used.

The taxon identifiers of the terminals are read as in the command
'treeko analyze'. A node is a duplication if the species of its children
overlap.

By default, only subtrees with more than one terminal will be written. Use the
flag --all to write all subtrees.

By default, terminals are written with their names. Use the flag --taxid to
use the taxon identifiers as labels.

By default, the trees will be written in the standard output. Use the flag
--output, or -o, to define an output file.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var allFlag bool
var taxIDFlag bool
var output string

func setFlags(c *command.Command) {
	c.Flags().BoolVar(&allFlag, "all", false, "")
	c.Flags().BoolVar(&taxIDFlag, "taxid", false, "")
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
}

func run(c *command.Command, args []string) (err error) {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	var trees []*phylo.Tree
	if len(args) > 1 {
		trees, err = project.ReadTreeFiles(args[1:]...)
		if err != nil {
			return err
		}
	} else {
		trees, err = p.Trees()
		if err != nil {
			return err
		}
	}
	if err := p.SetTaxa(trees); err != nil {
		return err
	}

	w := c.Stdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer func() {
			e := f.Close()
			if e != nil && err == nil {
				err = e
			}
		}()
		w = f
	}

	if err := writeSubtrees(w, c.Stderr(), trees); err != nil {
		return err
	}
	return nil
}

func writeSubtrees(w, log io.Writer, trees []*phylo.Tree) error {
	var label func(*phylo.Node) string
	if taxIDFlag {
		label = func(n *phylo.Node) string { return n.TaxID }
	}

	bw := bufio.NewWriter(w)
	for _, t := range trees {
		forest := speciation.Split(t)
		if !allFlag {
			forest = forest.Valid()
		}
		fmt.Fprintf(log, "# %s: duplications: %d: subtrees: %d\n", t.Name, speciation.Duplications(t), len(forest))
		for _, st := range forest {
			if err := st.Newick(bw, label); err != nil {
				return fmt.Errorf("while writing tree %q: %v", st.Name, err)
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("while writing trees: %v", err)
	}
	return nil
}
