// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package analyze

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"image/color"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/js-arias/treeko/analysis"
	"github.com/js-arias/treeko/phylo"
	"github.com/js-arias/treeko/project"
	"github.com/js-arias/treeko/taxkey"
)

const (
	xStep = 20
	yStep = 14

	// assume that each character has 6 pixels wide
	charWidth = 6
)

type node struct {
	x    int
	y    int
	topY int
	botY int

	label  string
	groups []string
	broken []string
	anc    *node
	leaf   bool
}

type svgTree struct {
	x     int
	y     int
	nodes []*node
	key   *taxkey.Key
}

func drawTrees(p *project.Project, trees []*phylo.Tree, out []analysis.Outcome) error {
	key, err := p.Colors()
	if err != nil {
		return err
	}

	for i, t := range trees {
		o := out[i]
		if o.Err != nil {
			continue
		}
		s := copyTree(t, o.Summary.Names)
		s.key = key
		if err := writeSVG(t.Name, s); err != nil {
			return err
		}
	}

	if p.Path(project.Colors) == "" {
		return nil
	}
	return p.WriteColors(key)
}

func copyTree(t *phylo.Tree, names map[string]string) *svgTree {
	s := &svgTree{}
	ids := make(map[*phylo.Node]*node)
	for _, pn := range t.Nodes() {
		n := &node{
			anc:  ids[pn.Parent()],
			leaf: pn.IsLeaf(),
		}
		if n.anc != nil {
			n.x = n.anc.x + xStep
		} else {
			n.x = 10
		}
		if n.x > s.x {
			s.x = n.x
		}

		if n.leaf {
			n.label = pn.Name
			if pn.SpName != "" {
				n.label = fmt.Sprintf("%s [%s]", pn.Name, pn.SpName)
			}
			if len(pn.NamedLineage) == len(pn.Lineage) {
				for j, id := range pn.Lineage {
					if pn.Broken[id] {
						n.groups = append(n.groups, pn.NamedLineage[j])
					}
				}
			}
		} else {
			for id := range pn.Broken {
				nm := names[id]
				if nm == "" {
					nm = id
				}
				n.broken = append(n.broken, nm)
			}
			slices.Sort(n.broken)
		}
		ids[pn] = n
		s.nodes = append(s.nodes, n)
	}

	// set the vertical positions
	for _, pn := range t.PostOrder() {
		n := ids[pn]
		if n.leaf {
			n.y = s.y*yStep + 5
			s.y++
			continue
		}
		ch := pn.Children()
		n.topY = ids[ch[0]].y
		n.botY = ids[ch[len(ch)-1]].y
		n.y = n.topY + (n.botY-n.topY)/2
	}
	s.y *= yStep
	return s
}

func writeSVG(name string, s *svgTree) (err error) {
	name = fmt.Sprintf("%s-%s.svg", drawPrefix, name)
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

	bw := bufio.NewWriter(f)
	if err := s.draw(bw); err != nil {
		return fmt.Errorf("while writing file %q: %v", name, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("while writing file %q: %v", name, err)
	}
	return nil
}

func (s *svgTree) width() int {
	w := s.x
	for _, n := range s.nodes {
		ln := n.x + 10 + len(n.label)*charWidth
		for _, g := range n.groups {
			ln += (len(g) + 2) * charWidth
		}
		if len(n.broken) > 0 {
			ln = n.x + 5 + len(strings.Join(n.broken, ", "))*charWidth
		}
		if ln > w {
			w = ln
		}
	}
	return w + 10
}

func (s *svgTree) draw(w io.Writer) error {
	fmt.Fprintf(w, "%s", xml.Header)
	e := xml.NewEncoder(w)
	svg := xml.StartElement{
		Name: xml.Name{Local: "svg"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "height"}, Value: strconv.Itoa(s.y + 5)},
			{Name: xml.Name{Local: "width"}, Value: strconv.Itoa(s.width())},
			{Name: xml.Name{Local: "xmlns"}, Value: "http://www.w3.org/2000/svg"},
		},
	}
	e.EncodeToken(svg)

	g := xml.StartElement{
		Name: xml.Name{Local: "g"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "stroke-width"}, Value: "2"},
			{Name: xml.Name{Local: "stroke"}, Value: "black"},
			{Name: xml.Name{Local: "stroke-linecap"}, Value: "round"},
			{Name: xml.Name{Local: "font-family"}, Value: "Verdana"},
			{Name: xml.Name{Local: "font-size"}, Value: "10"},
		},
	}
	e.EncodeToken(g)

	for _, n := range s.nodes {
		n.draw(e)
	}
	for _, n := range s.nodes {
		s.label(e, n)
	}

	e.EncodeToken(g.End())
	e.EncodeToken(svg.End())
	if err := e.Flush(); err != nil {
		return err
	}
	return nil
}

func (n *node) draw(e *xml.Encoder) {
	// horizontal line
	ln := xml.StartElement{
		Name: xml.Name{Local: "line"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "x1"}, Value: strconv.Itoa(n.x - 5)},
			{Name: xml.Name{Local: "y1"}, Value: strconv.Itoa(n.y)},
			{Name: xml.Name{Local: "x2"}, Value: strconv.Itoa(n.x)},
			{Name: xml.Name{Local: "y2"}, Value: strconv.Itoa(n.y)},
		},
	}
	if n.anc != nil {
		ln.Attr[0].Value = strconv.Itoa(n.anc.x)
	}
	if len(n.broken) > 0 {
		ln.Attr = append(ln.Attr, xml.Attr{Name: xml.Name{Local: "stroke"}, Value: "red"})
	}
	e.EncodeToken(ln)
	e.EncodeToken(ln.End())

	if n.leaf {
		return
	}

	// vertical line
	ln.Attr[0].Value = ln.Attr[2].Value
	ln.Attr[1].Value = strconv.Itoa(n.topY)
	ln.Attr[3].Value = strconv.Itoa(n.botY)
	e.EncodeToken(ln)
	e.EncodeToken(ln.End())
}

func (s *svgTree) label(e *xml.Encoder, n *node) {
	if !n.leaf {
		if len(n.broken) == 0 {
			return
		}
		tx := xml.StartElement{
			Name: xml.Name{Local: "text"},
			Attr: []xml.Attr{
				{Name: xml.Name{Local: "x"}, Value: strconv.Itoa(n.x + 3)},
				{Name: xml.Name{Local: "y"}, Value: strconv.Itoa(n.y - 3)},
				{Name: xml.Name{Local: "stroke-width"}, Value: "0"},
				{Name: xml.Name{Local: "fill"}, Value: "red"},
			},
		}
		e.EncodeToken(tx)
		e.EncodeToken(xml.CharData(strings.Join(n.broken, ", ")))
		e.EncodeToken(tx.End())
		return
	}

	x := n.x + 10
	tx := xml.StartElement{
		Name: xml.Name{Local: "text"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "x"}, Value: strconv.Itoa(x)},
			{Name: xml.Name{Local: "y"}, Value: strconv.Itoa(n.y + 5)},
			{Name: xml.Name{Local: "stroke-width"}, Value: "0"},
			{Name: xml.Name{Local: "font-style"}, Value: "italic"},
		},
	}
	e.EncodeToken(tx)
	e.EncodeToken(xml.CharData(n.label))
	e.EncodeToken(tx.End())

	// broken groups
	x += (len(n.label) + 1) * charWidth
	for _, g := range n.groups {
		wd := (len(g) + 1) * charWidth
		rect := xml.StartElement{
			Name: xml.Name{Local: "rect"},
			Attr: []xml.Attr{
				{Name: xml.Name{Local: "x"}, Value: strconv.Itoa(x)},
				{Name: xml.Name{Local: "y"}, Value: strconv.Itoa(n.y - 6)},
				{Name: xml.Name{Local: "width"}, Value: strconv.Itoa(wd)},
				{Name: xml.Name{Local: "height"}, Value: strconv.Itoa(yStep - 2)},
				{Name: xml.Name{Local: "stroke-width"}, Value: "0"},
				{Name: xml.Name{Local: "fill"}, Value: rgb(s.key.Color(g))},
			},
		}
		e.EncodeToken(rect)
		e.EncodeToken(rect.End())

		gt := xml.StartElement{
			Name: xml.Name{Local: "text"},
			Attr: []xml.Attr{
				{Name: xml.Name{Local: "x"}, Value: strconv.Itoa(x + charWidth/2)},
				{Name: xml.Name{Local: "y"}, Value: strconv.Itoa(n.y + 4)},
				{Name: xml.Name{Local: "stroke-width"}, Value: "0"},
			},
		}
		e.EncodeToken(gt)
		e.EncodeToken(xml.CharData(g))
		e.EncodeToken(gt.End())

		x += wd + charWidth
	}
}

func rgb(c color.RGBA) string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
}
