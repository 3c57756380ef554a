// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package phylo implements rooted phylogenetic trees
// with taxonomic annotations
// used for the analysis of gene family trees.
package phylo

import (
	"errors"
	"fmt"
	"slices"
)

// ErrRepeatedTerm is returned when a tree
// has two terminals with the same name.
var ErrRepeatedTerm = errors.New("repeated terminal name")

// A Node is a node of a phylogenetic tree.
//
// Optional features are stored explicitly,
// an empty value means the feature is not defined.
type Node struct {
	// Name of the node.
	// It must be unique among terminals.
	Name string

	// TaxID is the taxon identifier of a terminal.
	TaxID string

	// SpName is the name of the taxon
	// of a terminal.
	SpName string

	// Lineage is the ordered list of taxon identifiers
	// from the root of the taxonomy
	// to the taxon of the terminal.
	Lineage []string

	// NamedLineage is the lineage
	// using the names of the taxa.
	NamedLineage []string

	// Broken is the set of taxon identifiers
	// flagged as inconsistent with the tree.
	Broken map[string]bool

	// Support value of the node.
	Support    float64
	HasSupport bool

	// Length of the branch to the parent.
	Length    float64
	HasLength bool

	// Changed is a transient mark used by the analysis.
	Changed bool

	parent   *Node
	children []*Node
}

// NewNode returns a new node with the given name.
func NewNode(name string) *Node {
	return &Node{Name: name}
}

// Parent returns the parent of the node.
// It returns nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the children of the node.
func (n *Node) Children() []*Node {
	return n.children
}

// IsLeaf returns true if the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.children) == 0
}

// IsRoot returns true if the node has no parent.
func (n *Node) IsRoot() bool {
	return n.parent == nil
}

// AddChild adds a child to the node.
// It panics if the child already has a parent.
func (n *Node) AddChild(c *Node) *Node {
	if c.parent != nil {
		panic("phylo: adding a node that already has a parent")
	}
	if c == n {
		panic("phylo: adding a node as its own child")
	}
	c.parent = n
	n.children = append(n.children, c)
	return c
}

// Detach removes the node from its parent
// and returns it as the root of its own subtree.
func (n *Node) Detach() *Node {
	p := n.parent
	if p == nil {
		return n
	}
	i := slices.Index(p.children, n)
	if i < 0 {
		panic("phylo: node not found among the children of its parent")
	}
	p.children = slices.Delete(p.children, i, i+1)
	n.parent = nil
	return n
}

// Delete removes the node from the tree
// and attaches its children to its parent.
// A root can not be deleted.
//
// If preventNonDichotomic is true
// and the parent of the node is left
// with a single child,
// the parent is also deleted.
func (n *Node) Delete(preventNonDichotomic bool) {
	p := n.parent
	if p == nil {
		return
	}
	i := slices.Index(p.children, n)
	if i < 0 {
		panic("phylo: node not found among the children of its parent")
	}
	for _, c := range n.children {
		c.parent = p
	}
	ch := make([]*Node, 0, len(p.children)+len(n.children)-1)
	ch = append(ch, p.children[:i]...)
	ch = append(ch, n.children...)
	ch = append(ch, p.children[i+1:]...)
	p.children = ch

	n.children = nil
	n.parent = nil

	if preventNonDichotomic && len(p.children) < 2 {
		p.Delete(false)
	}
}

// copy returns a copy of the node features,
// without the tree structure.
func (n *Node) copy() *Node {
	c := &Node{
		Name:       n.Name,
		TaxID:      n.TaxID,
		SpName:     n.SpName,
		Support:    n.Support,
		HasSupport: n.HasSupport,
		Length:     n.Length,
		HasLength:  n.HasLength,
		Changed:    n.Changed,
	}
	if n.Lineage != nil {
		c.Lineage = slices.Clone(n.Lineage)
	}
	if n.NamedLineage != nil {
		c.NamedLineage = slices.Clone(n.NamedLineage)
	}
	if n.Broken != nil {
		c.Broken = make(map[string]bool, len(n.Broken))
		for id := range n.Broken {
			c.Broken[id] = true
		}
	}
	return c
}

// A Tree is a rooted phylogenetic tree.
type Tree struct {
	Name string
	root *Node
}

// New creates a new tree using the given node as the root.
// The root is detached from any parent.
func New(name string, root *Node) *Tree {
	if root == nil {
		root = &Node{}
	}
	root.Detach()
	return &Tree{
		Name: name,
		root: root,
	}
}

// Root returns the root of the tree.
func (t *Tree) Root() *Node {
	return t.root
}

// Nodes returns the nodes of the tree
// in pre-order.
func (t *Tree) Nodes() []*Node {
	return Descendants(t.root)
}

// Descendants returns a node and all of its descendants
// in pre-order.
func Descendants(n *Node) []*Node {
	var nodes []*Node
	stack := []*Node{n}
	for len(stack) > 0 {
		x := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nodes = append(nodes, x)
		for i := len(x.children) - 1; i >= 0; i-- {
			stack = append(stack, x.children[i])
		}
	}
	return nodes
}

// LevelOrder returns a node and all of its descendants
// ordered by levels,
// starting at the node.
func LevelOrder(n *Node) []*Node {
	nodes := []*Node{n}
	for i := 0; i < len(nodes); i++ {
		nodes = append(nodes, nodes[i].children...)
	}
	return nodes
}

// PostOrder returns the nodes of the tree
// with each node after all of its descendants.
func (t *Tree) PostOrder() []*Node {
	var post []*Node

	type frame struct {
		n    *Node
		next int
	}
	stack := []frame{{n: t.root}}
	for len(stack) > 0 {
		f := &stack[len(stack)-1]
		if f.next < len(f.n.children) {
			c := f.n.children[f.next]
			f.next++
			stack = append(stack, frame{n: c})
			continue
		}
		post = append(post, f.n)
		stack = stack[:len(stack)-1]
	}
	return post
}

// Leaves returns the terminals of the tree,
// in pre-order.
func (t *Tree) Leaves() []*Node {
	return Leaves(t.root)
}

// Leaves returns the terminals descendants of a node.
func Leaves(n *Node) []*Node {
	var leaves []*Node
	for _, x := range Descendants(n) {
		if x.IsLeaf() {
			leaves = append(leaves, x)
		}
	}
	return leaves
}

// Len returns the number of terminals in the tree.
func (t *Tree) Len() int {
	return len(t.Leaves())
}

// Leaf returns the terminal with the given name.
func (t *Tree) Leaf(name string) (*Node, bool) {
	for _, n := range t.Leaves() {
		if n.Name == name {
			return n, true
		}
	}
	return nil, false
}

// checkTerms returns an error
// if a terminal name is repeated.
func checkTerms(t *Tree) error {
	seen := make(map[string]bool)
	for _, n := range t.Leaves() {
		if seen[n.Name] {
			return fmt.Errorf("%w: %q", ErrRepeatedTerm, n.Name)
		}
		seen[n.Name] = true
	}
	return nil
}

// Terms returns the names of the terminals,
// sorted alphabetically.
func (t *Tree) Terms() []string {
	leaves := t.Leaves()
	terms := make([]string, 0, len(leaves))
	for _, n := range leaves {
		terms = append(terms, n.Name)
	}
	slices.Sort(terms)
	return terms
}

// Clone returns a deep copy of the tree.
func (t *Tree) Clone() *Tree {
	return &Tree{
		Name: t.Name,
		root: cloneNode(t.root),
	}
}

// Subtree returns a copy of the subtree rooted at a node.
func Subtree(name string, n *Node) *Tree {
	return &Tree{
		Name: name,
		root: cloneNode(n),
	}
}

func cloneNode(n *Node) *Node {
	root := n.copy()
	type pair struct {
		src, dst *Node
	}
	stack := []pair{{n, root}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range p.src.children {
			nc := c.copy()
			p.dst.AddChild(nc)
			stack = append(stack, pair{c, nc})
		}
	}
	return root
}

// LCA returns the least common ancestor
// of a set of nodes.
// It panics if the nodes are not from the same tree.
func LCA(nodes ...*Node) *Node {
	if len(nodes) == 0 {
		return nil
	}

	// path from the first node to the root
	depth := make(map[*Node]int)
	var path []*Node
	for x := nodes[0]; x != nil; x = x.parent {
		path = append(path, x)
	}
	for i, x := range path {
		depth[x] = len(path) - i
	}

	lca := nodes[0]
	for _, n := range nodes[1:] {
		x := n
		for x != nil {
			if _, ok := depth[x]; ok {
				break
			}
			x = x.parent
		}
		if x == nil {
			panic("phylo: LCA of nodes from different trees")
		}
		if depth[x] < depth[lca] {
			lca = x
		}
	}
	return lca
}
