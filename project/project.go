// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package project implements reading and writing
// of treeko project files.
//
// A treeko project is a tab-delimited file (TSV)
// used to store the different data files
// required by treeko commands.
// A project links the gene trees to be analyzed
// (Newick or time calibrated TSV trees)
// with the reference species tree,
// the taxonomy used to test the monophyly of taxonomic groups
// (either a TSV table or a SQLite database),
// the table that assigns taxon identifiers
// to the gene tree terminals,
// and the color key used to draw broken groups.
//
// Paths are stored as given,
// so relative paths are resolved
// from the working directory of the command.
package project

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"
)

// Dataset is a keyword to identify
// the type of a dataset file in a project.
type Dataset string

// Valid dataset types.
const (
	// File for the gene trees.
	Trees Dataset = "trees"

	// File for the reference species tree.
	Reference Dataset = "reference"

	// File for the taxonomy,
	// as a TSV table.
	Taxonomy Dataset = "taxonomy"

	// File for the taxonomy,
	// as a SQLite database.
	TaxDB Dataset = "taxdb"

	// File for the taxon identifiers
	// of the gene tree terminals.
	Names Dataset = "names"

	// File for the colors
	// of the taxonomic groups.
	Colors Dataset = "colors"
)

// Datasets returns the valid dataset types.
func Datasets() []Dataset {
	return []Dataset{Colors, Names, Reference, TaxDB, Taxonomy, Trees}
}

// IsValid returns true if the dataset
// is a valid dataset type.
func (d Dataset) IsValid() bool {
	return slices.Contains(Datasets(), d)
}

// A Project represents a collection of paths
// for particular datasets.
type Project struct {
	name  string
	paths map[Dataset]string
}

// New creates a new empty project.
func New() *Project {
	return &Project{
		name:  "",
		paths: make(map[Dataset]string),
	}
}

var header = []string{
	"dataset",
	"path",
}

// Read reads a project file from a TSV file.
//
// The TSV must contain the following fields:
//
//   - dataset, for the kind of file
//   - path, for the path of the file
//
// Valid datasets are:
//
//   - trees, the gene trees
//   - reference, the reference species tree
//   - taxonomy, a taxonomy table (see taxonomy.ReadTSV)
//   - taxdb, a taxonomy database (see taxonomy.Open)
//   - names, the taxon identifiers of terminals
//     (see taxonomy.ReadNames)
//   - colors, the colors of taxonomic groups
//     (see taxkey.Read)
//
// Unknown datasets are rejected.
//
// Here is an example file:
//
//	# treeko project files
//	dataset	path
//	trees	ensembl-families.nwk
//	reference	species.nwk
//	taxdb	ncbi-taxonomy.db
//	names	gene-taxids.tab
//	colors	group-colors.tab
func Read(name string) (*Project, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tsv := csv.NewReader(f)
	tsv.Comma = '\t'
	tsv.Comment = '#'

	head, err := tsv.Read()
	if err != nil {
		return nil, fmt.Errorf("on file %q: header: %v", name, err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		h = strings.ToLower(h)
		fields[h] = i
	}
	for _, h := range header {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("on file %q: expecting field %q", name, h)
		}
	}

	p := New()
	p.name = name
	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on file %q: on row %d: %v", name, ln, err)
		}

		f := "dataset"
		s := Dataset(strings.ToLower(strings.TrimSpace(row[fields[f]])))
		if !s.IsValid() {
			return nil, fmt.Errorf("on file %q: on row %d: field %q: unknown dataset %q", name, ln, f, s)
		}

		f = "path"
		path := row[fields[f]]
		p.paths[s] = path
	}

	return p, nil
}

// Add adds a filepath of a dataset to a given project.
// It returns the previous value
// for the dataset.
func (p *Project) Add(set Dataset, path string) string {
	prev := p.paths[set]
	if path == "" {
		delete(p.paths, set)
		return prev
	}

	p.paths[set] = path
	return prev
}

// Path returns the path of the given dataset.
func (p *Project) Path(set Dataset) string {
	return p.paths[set]
}

// Sets returns the datasets defined on a project.
func (p *Project) Sets() []Dataset {
	var sets []Dataset
	for s := range p.paths {
		sets = append(sets, s)
	}
	slices.Sort(sets)
	return sets
}

// SetName sets the project file name.
func (p *Project) SetName(name string) {
	p.name = name
}

// Write writes a project into a file.
func (p *Project) Write() (err error) {
	f, err := os.Create(p.name)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	bw := bufio.NewWriter(f)
	fmt.Fprintf(bw, "# treeko project files\n")
	fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))
	tsv := csv.NewWriter(bw)
	tsv.Comma = '\t'
	tsv.UseCRLF = true

	if err := tsv.Write(header); err != nil {
		return fmt.Errorf("on file %q: while writing header: %v", p.name, err)
	}

	sets := p.Sets()
	for _, s := range sets {
		row := []string{
			string(s),
			p.paths[s],
		}
		if err := tsv.Write(row); err != nil {
			return fmt.Errorf("on file %q: %v", p.name, err)
		}
	}

	tsv.Flush()
	if err := tsv.Error(); err != nil {
		return fmt.Errorf("on file %q: while writing data: %v", p.name, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("on file %q: while writing data: %v", p.name, err)
	}
	return nil
}
