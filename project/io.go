// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package project

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/js-arias/treeko/phylo"
	"github.com/js-arias/treeko/taxkey"
	"github.com/js-arias/treeko/taxonomy"
)

// ReadTrees reads the trees from a file.
//
// If the file starts with a parenthesis,
// it will be read as a file of Newick trees,
// otherwise it will be read as a TSV file
// of time calibrated trees.
// Trees in a Newick file are named
// after the file name.
func ReadTrees(name string) ([]*phylo.Tree, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}

	var ts []*phylo.Tree
	if s := bytes.TrimSpace(data); len(s) > 0 && s[0] == '(' {
		base := filepath.Base(name)
		if i := strings.LastIndex(base, "."); i > 0 {
			base = base[:i]
		}
		ts, err = phylo.ReadNewick(bytes.NewReader(data), base)
	} else {
		ts, err = phylo.ReadTimetreeTSV(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	if len(ts) == 0 {
		return nil, fmt.Errorf("on file %q: no trees", name)
	}
	return ts, nil
}

// ReadTreeFiles reads the trees from one or more files.
//
// If a tree name is already used
// by a tree from a previous file
// (e.g., files with the same base name
// in different directories),
// the tree is renamed as "<name>-<number>",
// with the smallest number that gives an unused name.
func ReadTreeFiles(files ...string) ([]*phylo.Tree, error) {
	var trees []*phylo.Tree
	used := make(map[string]bool)
	for _, f := range files {
		ts, err := ReadTrees(f)
		if err != nil {
			return nil, err
		}
		for _, t := range ts {
			name := t.Name
			for i := 2; used[name]; i++ {
				name = fmt.Sprintf("%s-%d", t.Name, i)
			}
			t.Name = name
			used[name] = true
		}
		trees = append(trees, ts...)
	}
	return trees, nil
}

// Trees reads the gene trees
// as defined in a project.
func (p *Project) Trees() ([]*phylo.Tree, error) {
	name := p.Path(Trees)
	if name == "" {
		return nil, fmt.Errorf("trees not defined in project %q", p.name)
	}
	return ReadTrees(name)
}

// Reference reads the reference species tree
// as defined in a project.
// If the file contains more than one tree,
// the first tree will be used.
func (p *Project) Reference() (*phylo.Tree, error) {
	name := p.Path(Reference)
	if name == "" {
		return nil, fmt.Errorf("reference tree not defined in project %q", p.name)
	}
	ts, err := ReadTrees(name)
	if err != nil {
		return nil, err
	}
	return ts[0], nil
}

// Taxonomy opens the taxonomy
// as defined in a project.
// If a taxonomy database is defined,
// it will be used,
// otherwise it will read the taxonomy TSV file.
//
// The returned function must be called
// to release the taxonomy.
func (p *Project) Taxonomy() (taxonomy.Source, func() error, error) {
	if name := p.Path(TaxDB); name != "" {
		if _, err := os.Stat(name); err != nil {
			return nil, nil, err
		}
		s, err := taxonomy.Open(name)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}

	name := p.Path(Taxonomy)
	if name == "" {
		return nil, nil, fmt.Errorf("taxonomy not defined in project %q", p.name)
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	db, err := taxonomy.ReadTSV(f)
	if err != nil {
		return nil, nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return db, func() error { return nil }, nil
}

// HasTaxonomy returns true if a taxonomy
// is defined in the project.
func (p *Project) HasTaxonomy() bool {
	return p.Path(TaxDB) != "" || p.Path(Taxonomy) != ""
}

// Names reads the table of terminal names
// to taxon identifiers
// as defined in a project.
func (p *Project) Names() (map[string]string, error) {
	name := p.Path(Names)
	if name == "" {
		return nil, fmt.Errorf("names not defined in project %q", p.name)
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	names, err := taxonomy.ReadNames(f)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return names, nil
}

// SetTaxa sets the taxon identifiers
// of the terminals of the trees.
// If a names table is defined in the project,
// it will be used,
// otherwise terminals without a taxon
// will use the species code of their names.
func (p *Project) SetTaxa(ts []*phylo.Tree) error {
	if p.Path(Names) == "" {
		for _, t := range ts {
			taxonomy.SetSpeciesCodes(t)
		}
		return nil
	}

	names, err := p.Names()
	if err != nil {
		return err
	}
	for _, t := range ts {
		if err := taxonomy.SetTaxa(t, names); err != nil {
			return fmt.Errorf("tree %q: %v", t.Name, err)
		}
	}
	return nil
}

// Colors reads the color key of the taxonomic groups
// as defined in a project.
// If the key is not defined,
// or the file does not exist,
// it returns an empty key.
func (p *Project) Colors() (*taxkey.Key, error) {
	name := p.Path(Colors)
	if name == "" {
		return taxkey.New(), nil
	}

	f, err := os.Open(name)
	if errors.Is(err, os.ErrNotExist) {
		return taxkey.New(), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	k, err := taxkey.Read(f)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return k, nil
}

// WriteColors writes a color key
// into the file defined in a project.
func (p *Project) WriteColors(k *taxkey.Key) (err error) {
	name := p.Path(Colors)
	if name == "" {
		return fmt.Errorf("colors not defined in project %q", p.name)
	}

	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	if err := k.TSV(f); err != nil {
		return fmt.Errorf("while writing %q: %v", name, err)
	}
	return nil
}
