// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package distance

import (
	"errors"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Bins is the number of bins used in histograms.
var Bins = 10

// Plot saves a histogram of the normalized distances
// into a file.
// The format of the image is defined by the file extension.
func Plot(name string, s Stats) error {
	if s.Count == 0 {
		return errors.New("plot: no distance values")
	}

	p := plot.New()
	p.X.Label.Text = "normalized distance"
	p.Y.Label.Text = "subtrees"
	p.X.Min = 0
	p.X.Max = 1

	vals := plotter.Values(s.Norm())
	h, err := plotter.NewHist(vals, Bins)
	if err != nil {
		return fmt.Errorf("while building histogram: %v", err)
	}
	h.LineStyle.Width = vg.Length(0.5)
	p.Add(h)

	if err := p.Save(5*vg.Inch, 3*vg.Inch, name); err != nil {
		return err
	}
	return nil
}
