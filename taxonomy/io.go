// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package taxonomy

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

var header = []string{
	"taxid",
	"parent",
	"name",
	"track",
}

// ReadTSV reads a taxonomy from a TSV file.
//
// The TSV file must contain the following fields:
//
//   - taxid, the identifier of the taxon
//   - parent, the identifier of the parent taxon
//   - name, the scientific name of the taxon
//   - track, the comma separated list of identifiers
//     from the taxon to the root of the taxonomy
//
// Here is an example file:
//
//	taxid	parent	name	track
//	1		root	1
//	9604	1	Hominidae	9604,1
//	9606	9604	Homo sapiens	9606,9604,1
//	9598	9604	Pan troglodytes	9598,9604,1
func ReadTSV(r io.Reader) (*DB, error) {
	tab := csv.NewReader(r)
	tab.Comma = '\t'
	tab.Comment = '#'

	head, err := tab.Read()
	if err != nil {
		return nil, fmt.Errorf("while reading header: %v", err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		h = strings.ToLower(h)
		fields[h] = i
	}
	for _, h := range header {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("expecting field %q", h)
		}
	}

	db := New()
	for {
		row, err := tab.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tab.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}

		f := "taxid"
		id := strings.TrimSpace(row[fields[f]])
		if id == "" {
			continue
		}

		f = "track"
		track := ParseTrack(row[fields[f]])
		if len(track) == 0 {
			return nil, fmt.Errorf("on row %d: field %q: empty track", ln, f)
		}

		tx := Taxon{
			ID:      id,
			Parent:  strings.TrimSpace(row[fields["parent"]]),
			Name:    strings.Join(strings.Fields(row[fields["name"]]), " "),
			Lineage: track,
		}
		if err := db.Add(tx); err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}
	}
	return db, nil
}

// ParseTrack returns a lineage
// (from the root to the taxon)
// from a comma separated track
// (from the taxon to the root).
func ParseTrack(s string) []string {
	var lin []string
	for _, id := range strings.Split(s, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		lin = append(lin, id)
	}
	slices.Reverse(lin)
	return lin
}

// FormatTrack returns a comma separated track
// (from the taxon to the root)
// from a lineage.
func FormatTrack(lin []string) string {
	track := slices.Clone(lin)
	slices.Reverse(track)
	return strings.Join(track, ",")
}

// TSV writes a taxonomy as a TSV file.
func (db *DB) TSV(w io.Writer) error {
	tab := csv.NewWriter(w)
	tab.Comma = '\t'
	tab.UseCRLF = true

	if err := tab.Write(header); err != nil {
		return fmt.Errorf("unable to write header: %v", err)
	}

	for _, id := range db.IDs() {
		tx := db.taxa[id]
		row := []string{
			tx.ID,
			tx.Parent,
			tx.Name,
			FormatTrack(tx.Lineage),
		}
		if err := tab.Write(row); err != nil {
			return fmt.Errorf("when writing data: %v", err)
		}
	}

	tab.Flush()
	if err := tab.Error(); err != nil {
		return fmt.Errorf("when writing data: %v", err)
	}
	return nil
}

// ReadNames reads a table of terminal names
// to taxon identifiers
// from a TSV file.
//
// The TSV file must contain the following fields:
//
//   - name, the name of the terminal
//   - taxid, the identifier of the taxon
//
// Here is an example file:
//
//	name	taxid
//	BRCA2_HUMAN	9606
//	BRCA2_PANTR	9598
func ReadNames(r io.Reader) (map[string]string, error) {
	tab := csv.NewReader(r)
	tab.Comma = '\t'
	tab.Comment = '#'

	head, err := tab.Read()
	if err != nil {
		return nil, fmt.Errorf("while reading header: %v", err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		h = strings.ToLower(h)
		fields[h] = i
	}
	for _, h := range []string{"name", "taxid"} {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("expecting field %q", h)
		}
	}

	names := make(map[string]string)
	for {
		row, err := tab.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tab.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}

		name := strings.TrimSpace(row[fields["name"]])
		if name == "" {
			continue
		}
		f := "taxid"
		id := strings.TrimSpace(row[fields[f]])
		if id == "" {
			return nil, fmt.Errorf("on row %d: field %q: empty value for %q", ln, f, name)
		}
		names[name] = id
	}
	return names, nil
}
