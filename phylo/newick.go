// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package phylo

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadNewick reads one or more trees
// in parenthetical (Newick) format.
//
// Internal node labels that are numbers
// are stored as support values.
// Comments are ignored,
// except NHX comments (e.g., "[&&NHX:taxid=9606]"),
// in which the keys "taxid", "T", and "S"
// are used to set the taxon identifier
// (or species name in the case of "S")
// of the node.
//
// Terminal names must be unique within a tree.
//
// The first tree will be named with the given name,
// if more trees are found,
// they will be named "<name>.<number>".
func ReadNewick(r io.Reader, name string) ([]*Tree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	p := &parser{data: data, line: 1}

	var trees []*Tree
	for {
		p.skipSpaces()
		if p.eof() {
			break
		}
		tn := name
		if len(trees) > 0 {
			tn = fmt.Sprintf("%s.%d", name, len(trees))
		}
		t, err := p.tree(tn)
		if err != nil {
			return nil, fmt.Errorf("tree %d: line %d: %w", len(trees)+1, p.line, err)
		}
		if err := checkTerms(t); err != nil {
			return nil, fmt.Errorf("tree %d: %w", len(trees)+1, err)
		}
		trees = append(trees, t)
	}
	if len(trees) == 0 {
		return nil, errors.New("no tree found")
	}
	return trees, nil
}

// ParseNewick parses a single tree
// from a string.
func ParseNewick(s, name string) (*Tree, error) {
	ts, err := ReadNewick(strings.NewReader(s), name)
	if err != nil {
		return nil, err
	}
	if len(ts) > 1 {
		return nil, fmt.Errorf("expecting a single tree, found %d", len(ts))
	}
	return ts[0], nil
}

type parser struct {
	data []byte
	pos  int
	line int
}

func (p *parser) eof() bool {
	return p.pos >= len(p.data)
}

func (p *parser) peek() byte {
	return p.data[p.pos]
}

func (p *parser) skipSpaces() {
	for !p.eof() {
		c := p.peek()
		if c == '\n' {
			p.line++
		}
		if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			return
		}
		p.pos++
	}
}

func (p *parser) tree(name string) (*Tree, error) {
	root := &Node{}
	cur := root
	for {
		p.skipSpaces()
		if p.eof() {
			return nil, io.ErrUnexpectedEOF
		}
		switch p.peek() {
		case '(':
			p.pos++
			if len(cur.children) > 0 || cur.Name != "" {
				return nil, errors.New("unexpected '('")
			}
			cur = cur.AddChild(&Node{})
			continue
		case ',':
			p.pos++
			if cur.parent == nil {
				return nil, errors.New("unexpected ','")
			}
			cur = cur.parent.AddChild(&Node{})
			continue
		case ')':
			p.pos++
			if cur.parent == nil {
				return nil, errors.New("unbalanced ')'")
			}
			cur = cur.parent
			if err := p.nodeInfo(cur, false); err != nil {
				return nil, err
			}
			continue
		case ';':
			p.pos++
			if cur != root {
				return nil, errors.New("unexpected ';'")
			}
			return New(name, root), nil
		}
		if err := p.nodeInfo(cur, true); err != nil {
			return nil, err
		}
		p.skipSpaces()
		if p.eof() {
			return nil, io.ErrUnexpectedEOF
		}
		if c := p.peek(); c != ',' && c != ')' && c != ';' {
			return nil, fmt.Errorf("unexpected %q", c)
		}
	}
}

// NodeInfo reads the label,
// branch length,
// and comments of a node.
func (p *parser) nodeInfo(n *Node, isLeaf bool) error {
	p.skipSpaces()
	label, err := p.label()
	if err != nil {
		return err
	}
	if label != "" {
		if isLeaf {
			n.Name = label
		} else if v, err := strconv.ParseFloat(label, 64); err == nil {
			n.Support = v
			n.HasSupport = true
		} else {
			n.Name = label
		}
	}

	for {
		p.skipSpaces()
		if p.eof() {
			return nil
		}
		switch p.peek() {
		case '[':
			if err := p.comment(n); err != nil {
				return err
			}
		case ':':
			p.pos++
			p.skipSpaces()
			v, err := p.number()
			if err != nil {
				return fmt.Errorf("node %q: branch length: %v", n.Name, err)
			}
			n.Length = v
			n.HasLength = true
		default:
			return nil
		}
	}
}

func isDelim(c byte) bool {
	switch c {
	case '(', ')', ',', ':', ';', '[', ' ', '\t', '\n', '\r':
		return true
	}
	return false
}

func (p *parser) label() (string, error) {
	if p.eof() {
		return "", nil
	}
	if p.peek() != '\'' {
		start := p.pos
		for !p.eof() && !isDelim(p.peek()) {
			p.pos++
		}
		return string(p.data[start:p.pos]), nil
	}

	p.pos++
	var b strings.Builder
	for {
		if p.eof() {
			return "", errors.New("unterminated quoted label")
		}
		c := p.peek()
		p.pos++
		if c == '\'' {
			if !p.eof() && p.peek() == '\'' {
				b.WriteByte('\'')
				p.pos++
				continue
			}
			return b.String(), nil
		}
		if c == '\n' {
			p.line++
		}
		b.WriteByte(c)
	}
}

func (p *parser) number() (float64, error) {
	start := p.pos
	for !p.eof() && !isDelim(p.peek()) {
		p.pos++
	}
	return strconv.ParseFloat(string(p.data[start:p.pos]), 64)
}

const nhxPrefix = "&&NHX:"

func (p *parser) comment(n *Node) error {
	p.pos++
	start := p.pos
	for {
		if p.eof() {
			return errors.New("unterminated comment")
		}
		c := p.peek()
		if c == '\n' {
			p.line++
		}
		if c == ']' {
			break
		}
		p.pos++
	}
	cm := string(p.data[start:p.pos])
	p.pos++

	if !strings.HasPrefix(cm, nhxPrefix) {
		return nil
	}
	for _, kv := range strings.Split(cm[len(nhxPrefix):], ":") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		switch strings.ToLower(k) {
		case "taxid", "t":
			n.TaxID = v
		case "s":
			n.SpName = v
		}
	}
	return nil
}

// Newick writes a tree in parenthetical format.
// Label is a function to define the label of a terminal,
// if nil,
// the node name will be used.
func (t *Tree) Newick(w io.Writer, label func(*Node) string) error {
	if label == nil {
		label = func(n *Node) string { return n.Name }
	}
	bw := bufio.NewWriter(w)

	type frame struct {
		n    *Node
		next int
	}
	stack := []frame{{n: t.root}}
	for len(stack) > 0 {
		f := &stack[len(stack)-1]
		if f.n.IsLeaf() {
			bw.WriteString(quote(label(f.n)))
			writeLength(bw, f.n)
			stack = stack[:len(stack)-1]
			continue
		}
		if f.next == 0 {
			bw.WriteByte('(')
		}
		if f.next < len(f.n.children) {
			if f.next > 0 {
				bw.WriteByte(',')
			}
			c := f.n.children[f.next]
			f.next++
			stack = append(stack, frame{n: c})
			continue
		}
		bw.WriteByte(')')
		if f.n.Name != "" {
			bw.WriteString(quote(f.n.Name))
		} else if f.n.HasSupport {
			bw.WriteString(strconv.FormatFloat(f.n.Support, 'f', -1, 64))
		}
		writeLength(bw, f.n)
		stack = stack[:len(stack)-1]
	}
	bw.WriteString(";\n")
	return bw.Flush()
}

// String returns the tree in parenthetical format.
func (t *Tree) String() string {
	var b strings.Builder
	t.Newick(&b, nil)
	return strings.TrimSpace(b.String())
}

func writeLength(bw *bufio.Writer, n *Node) {
	if !n.HasLength {
		return
	}
	bw.WriteByte(':')
	bw.WriteString(strconv.FormatFloat(n.Length, 'f', -1, 64))
}

func quote(s string) string {
	if !strings.ContainsAny(s, "()[],:;' \t\n\r") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
