// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package analyze implements a command to analyze
// the gene trees of a project
// using speciation subtrees.
package analyze

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/js-arias/command"
	"github.com/js-arias/treeko/analysis"
	"github.com/js-arias/treeko/distance"
	"github.com/js-arias/treeko/phylo"
	"github.com/js-arias/treeko/project"
	"github.com/js-arias/treeko/taxonomy"
)

var Command = &command.Command{
	Usage: `analyze [--ref <tree-file>] [--notax]
	[--cpu <number>] [-o|--output <file>]
	[--plot <image-file>] [--draw <prefix>]
	<project-file> [<tree-file>...]`,
	Short: "analyze gene trees using speciation subtrees",
	Long: `
Command analyze reads the gene trees of a treeko project, splits each tree
into speciation subtrees (i.e., subtrees without duplication nodes), tests the
monophyly of the taxonomic groups in each subtree, and compares each subtree
with a reference species tree.

The first argument of the command is the name of the project file. One or more
tree files can be given as additional arguments, otherwise, the gene trees of
the project will be used.

The taxon identifiers of the terminals are read from the names file of the
project. If no names file is defined, the taxon identifiers defined in the tree
file will be used, or, if is not defined, the species code of the terminal
name (the first three letters after the first underscore, or the first three
letters of the name).

If the project has a taxonomy, the lineage of each terminal will be used to
test the monophyly of the taxonomic groups. Taxa not found in the taxonomy
will be reported as a warning. Use the flag --notax to skip the test.

If the project has a reference tree, or it is defined with the flag --ref,
the speciation subtrees will be compared with the reference tree using the
Robinson-Foulds distance. Terminals of the reference tree are matched by its
taxon identifier, or by the taxon name (underscores are read as spaces). The
Treeko distance is the mean of the normalized distances of the subtrees,
weighted by the number of terminals of each subtree.

The results are printed as a tab-delimited table in the standard output. Use
the flag --output, or -o, to define an output file.

If the flag --plot is defined, a histogram of the normalized distances of all
subtrees will be saved in the indicated image file. The image format is
defined by the file extension (e.g., "png", "svg", or "pdf").

If the flag --draw is defined, each gene tree will be drawn as an SVG file,
with the broken taxonomic groups highlighted. The value of the flag is used
as the prefix of the resulting files. Colors of the taxonomic groups are read
from the color key file of the project, and new colors are stored in that
file.

By default, all available processors will be used for the analysis. Use the
flag --cpu to define a different number of processors.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var noTax bool
var numCPU int
var refFile string
var output string
var plotFile string
var drawPrefix string

func setFlags(c *command.Command) {
	c.Flags().BoolVar(&noTax, "notax", false, "")
	c.Flags().IntVar(&numCPU, "cpu", 0, "")
	c.Flags().StringVar(&refFile, "ref", "", "")
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
	c.Flags().StringVar(&plotFile, "plot", "", "")
	c.Flags().StringVar(&drawPrefix, "draw", "", "")
}

func run(c *command.Command, args []string) (err error) {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	trees, err := readGeneTrees(p, args[1:])
	if err != nil {
		return err
	}
	if err := p.SetTaxa(trees); err != nil {
		return err
	}

	var tax taxonomy.Source
	if !noTax && p.HasTaxonomy() {
		var closeTax func() error
		tax, closeTax, err = p.Taxonomy()
		if err != nil {
			return err
		}
		defer closeTax()

		for _, t := range trees {
			unk := taxonomy.Annotate(t, tax)
			if len(unk) > 0 {
				fmt.Fprintf(c.Stderr(), "WARNING: tree %q: unknown taxa: %s\n", t.Name, strings.Join(unk, ", "))
			}
		}
		if s, ok := tax.(*taxonomy.Store); ok {
			if err := s.Err(); err != nil {
				return err
			}
		}
	}

	ref, err := readReference(p)
	if err != nil {
		return err
	}
	if ref != nil {
		setReferenceTaxa(ref, tax)
	}

	opt := analysis.Options{
		Reference: ref,
		RefKey:    func(n *phylo.Node) string { return n.TaxID },
		Taxonomy:  tax != nil,
		WriteBack: drawPrefix != "",
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	out := analysis.Batch(ctx, trees, opt, numCPU)

	for _, o := range out {
		if o.Err != nil {
			fmt.Fprintf(c.Stderr(), "WARNING: %v\n", o.Err)
		}
	}

	if err := writeOutcomes(c.Stdout(), out); err != nil {
		return err
	}

	if plotFile != "" && ref != nil {
		if err := plotDistances(out); err != nil {
			return err
		}
	}

	if drawPrefix != "" {
		if err := drawTrees(p, trees, out); err != nil {
			return err
		}
	}
	return nil
}

func readGeneTrees(p *project.Project, files []string) ([]*phylo.Tree, error) {
	if len(files) == 0 {
		return p.Trees()
	}

	return project.ReadTreeFiles(files...)
}

func readReference(p *project.Project) (*phylo.Tree, error) {
	if refFile != "" {
		ts, err := project.ReadTrees(refFile)
		if err != nil {
			return nil, err
		}
		return ts[0], nil
	}
	if p.Path(project.Reference) == "" {
		return nil, nil
	}
	return p.Reference()
}

// setReferenceTaxa sets the taxon identifiers
// of the reference tree terminals.
func setReferenceTaxa(ref *phylo.Tree, tax taxonomy.Source) {
	for _, n := range ref.Leaves() {
		if n.TaxID != "" {
			continue
		}
		n.TaxID = n.Name
		if tax == nil {
			continue
		}
		if id, ok := tax.TaxID(strings.ReplaceAll(n.Name, "_", " ")); ok {
			n.TaxID = id
		}
	}
}

func writeOutcomes(w io.Writer, out []analysis.Outcome) (err error) {
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

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# treeko analysis\n")
	if err := analysis.WriteTSV(bw, out); err != nil {
		return fmt.Errorf("while writing results: %v", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("while writing results: %v", err)
	}
	return nil
}

func plotDistances(out []analysis.Outcome) error {
	var all distance.Stats
	for _, o := range out {
		if o.Err != nil || !o.Summary.HasDistance {
			continue
		}
		all.Count += o.Summary.Distance.Count
		all.Skipped += o.Summary.Distance.Skipped
		all.Values = append(all.Values, o.Summary.Distance.Values...)
	}
	if all.Count == 0 {
		return nil
	}
	return distance.Plot(plotFile, all)
}
