// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package analysis

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var header = []string{
	"tree",
	"duplications",
	"subtrees",
	"broken-subtrees",
	"broken-clades",
	"distance",
	"median",
	"stdev",
	"compared",
	"skipped",
	"broken",
	"error",
}

// WriteTSV writes the outcomes of a batch
// as a TSV table.
//
// Distance fields are empty
// if no distance was calculated.
func WriteTSV(w io.Writer, outcomes []Outcome) error {
	tab := csv.NewWriter(w)
	tab.Comma = '\t'
	tab.UseCRLF = true

	if err := tab.Write(header); err != nil {
		return fmt.Errorf("unable to write header: %v", err)
	}

	for _, o := range outcomes {
		row := make([]string, len(header))
		row[0] = o.Name
		if o.Err != nil {
			row[len(row)-1] = o.Err.Error()
			if err := tab.Write(row); err != nil {
				return fmt.Errorf("when writing data: %v", err)
			}
			continue
		}

		s := o.Summary
		row[1] = strconv.Itoa(s.Duplications)
		row[2] = strconv.Itoa(s.Subtrees)
		row[3] = strconv.Itoa(s.BrokenSubtrees)
		row[4] = strconv.Itoa(s.BrokenClades)
		if s.HasDistance {
			row[5] = strconv.FormatFloat(s.Distance.Mean, 'f', 6, 64)
			row[6] = strconv.FormatFloat(s.Distance.Median, 'f', 6, 64)
			row[7] = strconv.FormatFloat(s.Distance.StdDev, 'f', 6, 64)
			row[8] = strconv.Itoa(s.Distance.Count)
			row[9] = strconv.Itoa(s.Distance.Skipped)
		}
		row[10] = strings.Join(s.BrokenNames(), ",")
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
