// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package taxkey implements a color key
// for taxonomic groups.
//
// A key is a cache that can be stored in a file,
// so the colors of the groups
// are the same between different drawings.
package taxkey

import (
	"encoding/csv"
	"errors"
	"fmt"
	"image/color"
	"io"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/js-arias/blind"
)

// Key stores the colors for taxonomic groups.
// It is safe for concurrent use.
type Key struct {
	mu    sync.Mutex
	color map[string]color.RGBA

	// Random is the function used to define the color
	// of a group without a color.
	Random func() color.RGBA
}

// New creates a new empty key.
func New() *Key {
	return &Key{
		color:  make(map[string]color.RGBA),
		Random: randColor,
	}
}

func randColor() color.RGBA {
	return blind.Sequential(blind.Iridescent, rand.Float64())
}

// Color returns the color of a group.
// If the group has no color,
// a new random color will be assigned to the group.
func (k *Key) Color(group string) color.RGBA {
	group = strings.ToLower(strings.TrimSpace(group))

	k.mu.Lock()
	defer k.mu.Unlock()
	if c, ok := k.color[group]; ok {
		return c
	}
	rnd := k.Random
	if rnd == nil {
		rnd = randColor
	}
	c := rnd()
	k.color[group] = c
	return c
}

// Has returns true if the group has a defined color.
func (k *Key) Has(group string) bool {
	group = strings.ToLower(strings.TrimSpace(group))

	k.mu.Lock()
	defer k.mu.Unlock()
	_, ok := k.color[group]
	return ok
}

// SetColor sets the color of a group.
func (k *Key) SetColor(group string, c color.Color) {
	group = strings.ToLower(strings.TrimSpace(group))
	if group == "" {
		return
	}
	r, g, b, _ := c.RGBA()

	k.mu.Lock()
	defer k.mu.Unlock()
	k.color[group] = color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), 255}
}

// Groups returns the groups with a defined color.
func (k *Key) Groups() []string {
	k.mu.Lock()
	defer k.mu.Unlock()

	gs := make([]string, 0, len(k.color))
	for g := range k.color {
		gs = append(gs, g)
	}
	slices.Sort(gs)
	return gs
}

var header = []string{
	"group",
	"color",
}

// Read reads a key file used to define the colors
// of taxonomic groups.
//
// A key file is a tab-delimited file
// with the following required columns:
//
//	-group	the name of the group
//	-color	an RGB value separated by commas,
//		for example "125,132,148".
//
// Any other columns, will be ignored.
// Group names are case insensitive.
// Here is an example of a key file:
//
//	group	color
//	mammalia	0, 26, 51
//	hominidae	68, 167, 196
//	unknown	229, 229, 224
func Read(r io.Reader) (*Key, error) {
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

	k := New()
	for {
		row, err := tab.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tab.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}

		f := "group"
		g := strings.ToLower(strings.TrimSpace(row[fields[f]]))
		if g == "" {
			continue
		}

		f = "color"
		c, err := parseColor(row[fields[f]])
		if err != nil {
			return nil, fmt.Errorf("on row %d: field %q: %v", ln, f, err)
		}
		k.color[g] = c
	}
	return k, nil
}

func parseColor(s string) (color.RGBA, error) {
	val := strings.Split(s, ",")
	if len(val) != 3 {
		return color.RGBA{}, fmt.Errorf("found %d values, want 3", len(val))
	}

	var rgb [3]uint8
	for i, n := range []string{"red", "green", "blue"} {
		v, err := strconv.Atoi(strings.TrimSpace(val[i]))
		if err != nil {
			return color.RGBA{}, fmt.Errorf("[%s value]: %v", n, err)
		}
		if v < 0 || v > 255 {
			return color.RGBA{}, fmt.Errorf("[%s value]: invalid value %d", n, v)
		}
		rgb[i] = uint8(v)
	}
	return color.RGBA{rgb[0], rgb[1], rgb[2], 255}, nil
}

// TSV writes a key as a TSV file.
func (k *Key) TSV(w io.Writer) error {
	tab := csv.NewWriter(w)
	tab.Comma = '\t'
	tab.UseCRLF = true

	if err := tab.Write(header); err != nil {
		return fmt.Errorf("unable to write header: %v", err)
	}

	for _, g := range k.Groups() {
		c := k.Color(g)
		row := []string{
			g,
			fmt.Sprintf("%d,%d,%d", c.R, c.G, c.B),
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
