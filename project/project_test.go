// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package project_test

import (
	"image/color"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"testing"

	"github.com/js-arias/treeko/project"
	"github.com/js-arias/treeko/taxonomy"
)

type setPath struct {
	set  project.Dataset
	path string
}

func TestProject(t *testing.T) {
	p := project.New()

	sets := []setPath{
		{project.Trees, "gene-trees.nwk"},
		{project.Reference, "species.nwk"},
		{project.Taxonomy, "taxonomy.tab"},
		{project.TaxDB, "taxonomy.db"},
		{project.Names, "names.tab"},
		{project.Colors, "colors.tab"},
	}

	for _, s := range sets {
		p.Add(s.set, s.path)
	}
	testProject(t, p, sets)

	name := filepath.Join(t.TempDir(), "project.tab")
	p.SetName(name)
	if err := p.Write(); err != nil {
		t.Fatalf("error when writing data: %v", err)
	}

	np, err := project.Read(name)
	if err != nil {
		t.Fatalf("error when reading data: %v", err)
	}
	testProject(t, np, sets)
}

func TestReadUnknownDataset(t *testing.T) {
	name := filepath.Join(t.TempDir(), "project.tab")
	data := "dataset\tpath\nlandscape\tlandscape.tab\n"
	if err := os.WriteFile(name, []byte(data), 0o644); err != nil {
		t.Fatalf("unable to write project: %v", err)
	}
	if _, err := project.Read(name); err == nil {
		t.Errorf("unknown dataset: expecting error")
	}
}

func testProject(t testing.TB, p *project.Project, sets []setPath) {
	t.Helper()

	for _, s := range sets {
		if path := p.Path(s.set); path != s.path {
			t.Errorf("set %s: got path %q, want %q", s.set, path, s.path)
		}
	}
	datasets := make([]project.Dataset, 0, len(sets))
	for _, v := range sets {
		datasets = append(datasets, v.set)
	}
	slices.Sort(datasets)

	if ls := p.Sets(); !reflect.DeepEqual(ls, datasets) {
		t.Errorf("sets: got %v, want %v", ls, datasets)
	}
}

func writeFile(t testing.TB, dir, name, data string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("unable to write %q: %v", name, err)
	}
	return path
}

func TestLoaders(t *testing.T) {
	dir := t.TempDir()

	p := project.New()
	p.SetName(filepath.Join(dir, "project.tab"))
	p.Add(project.Trees, writeFile(t, dir, "genes.nwk", "((A_HUMAN,B_HUMAN),C_MOUSE);\n(A_HUMAN,C_MOUSE);\n"))
	p.Add(project.Reference, writeFile(t, dir, "species.nwk", "(Homo_sapiens,Mus_musculus);\n"))
	p.Add(project.Taxonomy, writeFile(t, dir, "taxonomy.tab", "taxid\tparent\tname\ttrack\n1\t\troot\t1\n9606\t1\tHomo sapiens\t9606,1\n10090\t1\tMus musculus\t10090,1\n"))
	p.Add(project.Names, writeFile(t, dir, "names.tab", "name\ttaxid\nA_HUMAN\t9606\nB_HUMAN\t9606\nC_MOUSE\t10090\n"))
	p.Add(project.Colors, filepath.Join(dir, "colors.tab"))

	ts, err := p.Trees()
	if err != nil {
		t.Fatalf("trees: %v", err)
	}
	if len(ts) != 2 {
		t.Fatalf("trees: got %d, want %d", len(ts), 2)
	}
	if ts[0].Name != "genes" || ts[1].Name != "genes.1" {
		t.Errorf("tree names: got %q, %q", ts[0].Name, ts[1].Name)
	}

	ref, err := p.Reference()
	if err != nil {
		t.Fatalf("reference: %v", err)
	}
	if want := []string{"Homo_sapiens", "Mus_musculus"}; !reflect.DeepEqual(ref.Terms(), want) {
		t.Errorf("reference terms: got %v, want %v", ref.Terms(), want)
	}

	names, err := p.Names()
	if err != nil {
		t.Fatalf("names: %v", err)
	}
	if err := taxonomy.SetTaxa(ts[0], names); err != nil {
		t.Fatalf("set taxa: %v", err)
	}

	if !p.HasTaxonomy() {
		t.Fatalf("taxonomy: not defined")
	}
	tax, closeTax, err := p.Taxonomy()
	if err != nil {
		t.Fatalf("taxonomy: %v", err)
	}
	defer closeTax()
	if u := taxonomy.Annotate(ts[0], tax); len(u) != 0 {
		t.Errorf("unknown taxa: %v", u)
	}
	if id, ok := tax.TaxID("Mus musculus"); !ok || id != "10090" {
		t.Errorf("taxid: got %q, want %q", id, "10090")
	}

	k, err := p.Colors()
	if err != nil {
		t.Fatalf("colors: %v", err)
	}
	k.SetColor("Homo sapiens", color.RGBA{1, 2, 3, 255})
	if err := p.WriteColors(k); err != nil {
		t.Fatalf("write colors: %v", err)
	}
	nk, err := p.Colors()
	if err != nil {
		t.Fatalf("colors: %v", err)
	}
	if c := nk.Color("homo sapiens"); c != (color.RGBA{1, 2, 3, 255}) {
		t.Errorf("color: got %v", c)
	}
}

func TestReadTreeFiles(t *testing.T) {
	dir := t.TempDir()
	for _, d := range []string{"a", "b"} {
		if err := os.Mkdir(filepath.Join(dir, d), 0o755); err != nil {
			t.Fatalf("unable to create directory: %v", err)
		}
	}
	fa := writeFile(t, dir, filepath.Join("a", "genes.nwk"), "(A_HUMAN,C_MOUSE);\n(A_HUMAN,B_HUMAN);\n")
	fb := writeFile(t, dir, filepath.Join("b", "genes.nwk"), "(A_HUMAN,C_MOUSE);\n")

	ts, err := project.ReadTreeFiles(fa, fb, fb)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got []string
	for _, tr := range ts {
		got = append(got, tr.Name)
	}
	want := []string{"genes", "genes.1", "genes-2", "genes-3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tree names: got %v, want %v", got, want)
	}
}

func TestSetTaxa(t *testing.T) {
	dir := t.TempDir()
	p := project.New()
	p.SetName(filepath.Join(dir, "project.tab"))
	p.Add(project.Trees, writeFile(t, dir, "genes.nwk", "((A_HUMAN,B_HUMAN[&&NHX:taxid=9606]),C_MOUSE);\n"))

	ts, err := p.Trees()
	if err != nil {
		t.Fatalf("trees: %v", err)
	}
	if err := p.SetTaxa(ts); err != nil {
		t.Fatalf("set taxa: %v", err)
	}
	want := map[string]string{
		"A_HUMAN": "HUM",
		"B_HUMAN": "9606",
		"C_MOUSE": "MOU",
	}
	for _, n := range ts[0].Leaves() {
		if n.TaxID != want[n.Name] {
			t.Errorf("terminal %q: got %q, want %q", n.Name, n.TaxID, want[n.Name])
		}
	}

	p.Add(project.Names, writeFile(t, dir, "names.tab", "name\ttaxid\nA_HUMAN\t9606\n"))
	if err := p.SetTaxa(ts); err == nil {
		t.Errorf("missing terminal in names: expecting error")
	}
}
