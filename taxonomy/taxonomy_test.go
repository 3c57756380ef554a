// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package taxonomy_test

import (
	"bytes"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/js-arias/treeko/phylo"
	"github.com/js-arias/treeko/taxonomy"
)

const taxaTSV = `# test taxonomy
taxid	parent	name	track
1		root	1
40674	1	Mammalia	40674,1
9604	40674	Hominidae	9604,40674,1
9606	9604	Homo sapiens	9606,9604,40674,1
9598	9604	Pan troglodytes	9598,9604,40674,1
10090	40674	Mus musculus	10090,40674,1
7227	1	Drosophila melanogaster	7227,1
`

func readTaxonomy(t testing.TB) *taxonomy.DB {
	t.Helper()

	db, err := taxonomy.ReadTSV(strings.NewReader(taxaTSV))
	if err != nil {
		t.Fatalf("unable to read taxonomy: %v", err)
	}
	return db
}

func TestReadTSV(t *testing.T) {
	db := readTaxonomy(t)

	if db.Len() != 7 {
		t.Errorf("taxa: got %d, want %d", db.Len(), 7)
	}
	lin, ok := db.Lineage("9606")
	if !ok {
		t.Fatalf("taxon %q not found", "9606")
	}
	want := []string{"1", "40674", "9604", "9606"}
	if !reflect.DeepEqual(lin, want) {
		t.Errorf("lineage: got %v, want %v", lin, want)
	}
	if nm, _ := db.Name("9598"); nm != "Pan troglodytes" {
		t.Errorf("name: got %q, want %q", nm, "Pan troglodytes")
	}
	if id, ok := db.TaxID("homo SAPIENS"); !ok || id != "9606" {
		t.Errorf("taxid: got %q, want %q", id, "9606")
	}

	var w bytes.Buffer
	if err := db.TSV(&w); err != nil {
		t.Fatalf("unable to write taxonomy: %v", err)
	}
	np, err := taxonomy.ReadTSV(strings.NewReader(w.String()))
	if err != nil {
		t.Fatalf("unable to read written taxonomy: %v", err)
	}
	if !reflect.DeepEqual(np.IDs(), db.IDs()) {
		t.Errorf("ids: got %v, want %v", np.IDs(), db.IDs())
	}
	for _, id := range db.IDs() {
		got, _ := np.Taxon(id)
		want, _ := db.Taxon(id)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("taxon %q: got %v, want %v", id, got, want)
		}
	}
}

func TestReadTSVErrors(t *testing.T) {
	tests := map[string]string{
		"no header":     "taxid\tname\n1\troot\n",
		"empty track":   "taxid\tparent\tname\ttrack\n1\t\troot\t\n",
		"wrong lineage": "taxid\tparent\tname\ttrack\n1\t\troot\t2,1\n",
		"duplicated":    "taxid\tparent\tname\ttrack\n1\t\troot\t1\n1\t\troot\t1\n",
	}
	for name, test := range tests {
		if _, err := taxonomy.ReadTSV(strings.NewReader(test)); err == nil {
			t.Errorf("%s: expecting error", name)
		}
	}
}

func TestTrack(t *testing.T) {
	lin := taxonomy.ParseTrack(" 9606, 9604,1 ")
	want := []string{"1", "9604", "9606"}
	if !reflect.DeepEqual(lin, want) {
		t.Errorf("parse track: got %v, want %v", lin, want)
	}
	if got := taxonomy.FormatTrack(lin); got != "9606,9604,1" {
		t.Errorf("format track: got %q, want %q", got, "9606,9604,1")
	}
}

func TestAnnotate(t *testing.T) {
	db := readTaxonomy(t)
	tr, err := phylo.ParseNewick("((HUMAN,CHIMP),(MOUSE,ALIEN));", "test")
	if err != nil {
		t.Fatalf("unable to parse tree: %v", err)
	}
	names := map[string]string{
		"HUMAN": "9606",
		"CHIMP": "9598",
		"MOUSE": "10090",
		"ALIEN": "424242",
	}
	if err := taxonomy.SetTaxa(tr, names); err != nil {
		t.Fatalf("set taxa: %v", err)
	}

	unknown := taxonomy.Annotate(tr, db)
	if !reflect.DeepEqual(unknown, []string{"424242"}) {
		t.Errorf("unknown: got %v, want %v", unknown, []string{"424242"})
	}

	h, _ := tr.Leaf("HUMAN")
	if h.SpName != "Homo sapiens" {
		t.Errorf("species name: got %q, want %q", h.SpName, "Homo sapiens")
	}
	named := []string{"root", "Mammalia", "Hominidae", "Homo sapiens"}
	if !reflect.DeepEqual(h.NamedLineage, named) {
		t.Errorf("named lineage: got %v, want %v", h.NamedLineage, named)
	}

	a, _ := tr.Leaf("ALIEN")
	if a.SpName != taxonomy.Unknown {
		t.Errorf("unknown species name: got %q, want %q", a.SpName, taxonomy.Unknown)
	}
	if !reflect.DeepEqual(a.Lineage, []string{"424242"}) {
		t.Errorf("unknown lineage: got %v, want %v", a.Lineage, []string{"424242"})
	}
	if !reflect.DeepEqual(a.NamedLineage, []string{taxonomy.Unknown}) {
		t.Errorf("unknown named lineage: got %v, want %v", a.NamedLineage, []string{taxonomy.Unknown})
	}
}

func TestSetTaxa(t *testing.T) {
	tr, err := phylo.ParseNewick("(A,B);", "test")
	if err != nil {
		t.Fatalf("unable to parse tree: %v", err)
	}
	err = taxonomy.SetTaxa(tr, map[string]string{"A": "1"})
	if !errors.Is(err, taxonomy.ErrNoTaxon) {
		t.Errorf("got error %v, want %v", err, taxonomy.ErrNoTaxon)
	}
}

func TestSpeciesCode(t *testing.T) {
	tests := map[string]string{
		"Hsa_BRCA2":   "BRC",
		"HUMAN":       "HUM",
		"Mm":          "Mm",
		"gene_MUSmus": "MUS",
	}
	for name, want := range tests {
		if got := taxonomy.SpeciesCode(name); got != want {
			t.Errorf("species code of %q: got %q, want %q", name, got, want)
		}
	}
}

func TestTopology(t *testing.T) {
	db := readTaxonomy(t)

	tr, err := taxonomy.Topology(db, []string{"9606", "9598", "10090", "7227"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	label := func(n *phylo.Node) string { return n.TaxID }
	var w bytes.Buffer
	if err := tr.Newick(&w, label); err != nil {
		t.Fatalf("unable to write tree: %v", err)
	}
	want := "((10090,(9598,9606)Hominidae)Mammalia,7227)root;"
	if got := strings.TrimSpace(w.String()); got != want {
		t.Errorf("topology: got %s, want %s", got, want)
	}

	// an internal taxon is added as a terminal
	tr, err = taxonomy.Topology(db, []string{"9606", "9598", "9604"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := tr.Terms(); !reflect.DeepEqual(got, []string{"Hominidae", "Homo sapiens", "Pan troglodytes"}) {
		t.Errorf("terms: got %v", got)
	}

	if _, err := taxonomy.Topology(db, []string{"9606", "424242"}); err == nil {
		t.Errorf("unknown taxon: expecting error")
	}
}

func TestStore(t *testing.T) {
	db := readTaxonomy(t)

	name := filepath.Join(t.TempDir(), "taxonomy.db")
	s, err := taxonomy.Open(name)
	if err != nil {
		t.Fatalf("unable to open database: %v", err)
	}
	defer s.Close()

	if err := s.Import(db); err != nil {
		t.Fatalf("import: %v", err)
	}
	n, err := s.Len()
	if err != nil {
		t.Fatalf("len: %v", err)
	}
	if n != db.Len() {
		t.Errorf("taxa: got %d, want %d", n, db.Len())
	}

	for _, id := range db.IDs() {
		want, _ := db.Lineage(id)
		got, ok := s.Lineage(id)
		if !ok {
			t.Errorf("taxon %q: not found", id)
			continue
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("lineage of %q: got %v, want %v", id, got, want)
		}
	}
	if nm, _ := s.Name("9606"); nm != "Homo sapiens" {
		t.Errorf("name: got %q, want %q", nm, "Homo sapiens")
	}
	if id, ok := s.TaxID("mus MUSCULUS"); !ok || id != "10090" {
		t.Errorf("taxid: got %q, want %q", id, "10090")
	}
	if _, ok := s.Lineage("424242"); ok {
		t.Errorf("unknown taxon: found")
	}
	if tx, ok := s.Taxon("9604"); !ok || tx.Parent != "40674" {
		t.Errorf("taxon: got %v", tx)
	}

	// re-import keeps the number of taxa
	if err := s.Import(db); err != nil {
		t.Fatalf("import: %v", err)
	}
	if n, _ := s.Len(); n != db.Len() {
		t.Errorf("taxa after re-import: got %d, want %d", n, db.Len())
	}
	if err := s.Err(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	// the store can be used to annotate a tree
	tr, err := phylo.ParseNewick("(HUMAN,MOUSE);", "test")
	if err != nil {
		t.Fatalf("unable to parse tree: %v", err)
	}
	taxonomy.SetTaxa(tr, map[string]string{"HUMAN": "9606", "MOUSE": "10090"})
	if u := taxonomy.Annotate(tr, s); len(u) != 0 {
		t.Errorf("unknown: got %v, want none", u)
	}
}
