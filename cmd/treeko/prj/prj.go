// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package prj implements a command to print
// the basic information of a project,
// and to set the files of a project.
package prj

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/js-arias/command"
	"github.com/js-arias/treeko/phylo"
	"github.com/js-arias/treeko/project"
	"github.com/js-arias/treeko/taxonomy"
)

var Command = &command.Command{
	Usage: "prj [--set <dataset>=<path>] <project-file>",
	Short: "print information about a project",
	Long: `
Command prj reads a treeko project and prints the information of the
different project elements into the standard output.

The argument of the command is the name of the project file.

If the flag --set is defined, the path of a dataset will be set in the
project, and the project will be saved. The syntax of the definition is:

	"<dataset>=<path>"

If the path is empty, the dataset will be removed from the project. If the
project file does not exist, a new project will be created. Valid datasets
are "trees", "reference", "taxonomy", "taxdb", "names", and "colors". Type
'treeko help projects' to learn more about project files.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var setFlag string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&setFlag, "set", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	if setFlag != "" {
		return setDataset(args[0])
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	w := c.Stdout()
	for _, s := range p.Sets() {
		fmt.Fprintf(w, "%s\t%s\n", s, p.Path(s))
	}
	fmt.Fprintf(w, "\n")

	if tf := p.Path(project.Trees); tf != "" {
		if err := readTrees(w, "Gene trees", tf); err != nil {
			return err
		}
	}
	if rf := p.Path(project.Reference); rf != "" {
		if err := readTrees(w, "Reference tree", rf); err != nil {
			return err
		}
	}
	if p.HasTaxonomy() {
		if err := readTaxonomy(w, p); err != nil {
			return err
		}
	}
	if p.Path(project.Names) != "" {
		names, err := p.Names()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Terminal names:\n")
		fmt.Fprintf(w, "\tfile: %s\n", p.Path(project.Names))
		fmt.Fprintf(w, "\tterminals: %d\n", len(names))
		fmt.Fprintf(w, "\n")
	}

	return nil
}

func setDataset(name string) error {
	ds, path, ok := strings.Cut(setFlag, "=")
	if !ok {
		return fmt.Errorf("invalid dataset definition %q", setFlag)
	}
	set := project.Dataset(strings.ToLower(strings.TrimSpace(ds)))
	if !set.IsValid() {
		return fmt.Errorf("unknown dataset %q", ds)
	}

	p, err := project.Read(name)
	if errors.Is(err, os.ErrNotExist) {
		p = project.New()
		p.SetName(name)
		err = nil
	}
	if err != nil {
		return err
	}

	p.Add(set, strings.TrimSpace(path))
	return p.Write()
}

func readTrees(w io.Writer, title, name string) error {
	ts, err := project.ReadTrees(name)
	if err != nil {
		return err
	}

	terms := make(map[string]bool)
	var maxLeaves int
	for _, t := range ts {
		for _, tn := range t.Terms() {
			terms[tn] = true
		}
		if t.Len() > maxLeaves {
			maxLeaves = t.Len()
		}
	}

	fmt.Fprintf(w, "%s:\n", title)
	fmt.Fprintf(w, "\tfile: %s\n", name)
	fmt.Fprintf(w, "\ttrees: %d\n", len(ts))
	fmt.Fprintf(w, "\tterminals: %d\n", len(terms))
	fmt.Fprintf(w, "\tlargest tree: %d terminals\n", maxLeaves)
	fmt.Fprintf(w, "\tnodes: %d\n", countNodes(ts))
	fmt.Fprintf(w, "\n")
	return nil
}

func countNodes(ts []*phylo.Tree) int {
	var n int
	for _, t := range ts {
		n += len(t.Nodes())
	}
	return n
}

func readTaxonomy(w io.Writer, p *project.Project) error {
	tax, closeTax, err := p.Taxonomy()
	if err != nil {
		return err
	}
	defer closeTax()

	fmt.Fprintf(w, "Taxonomy:\n")
	switch db := tax.(type) {
	case *taxonomy.Store:
		n, err := db.Len()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\tdatabase: %s\n", p.Path(project.TaxDB))
		fmt.Fprintf(w, "\ttaxa: %d\n", n)
	case *taxonomy.DB:
		fmt.Fprintf(w, "\tfile: %s\n", p.Path(project.Taxonomy))
		fmt.Fprintf(w, "\ttaxa: %d\n", db.Len())
	}
	fmt.Fprintf(w, "\n")
	return nil
}
