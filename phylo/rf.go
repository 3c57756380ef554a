// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package phylo

import (
	"errors"
	"fmt"
	"slices"
)

// MinComparable is the minimum number of shared terminals
// required to compare two trees.
const MinComparable = 2

// Errors returned by RF.
var (
	ErrNoComparable  = errors.New("not enough terminals in common")
	ErrDuplicatedKey = errors.New("duplicated terminal key")
)

// Distance is the Robinson-Foulds distance
// between two trees.
type Distance struct {
	// Raw is the number of clusters
	// present in only one of the trees.
	Raw int

	// Max is the maximum possible distance,
	// i.e., the number of informative clusters
	// in both trees.
	Max int

	// Terminal keys of each tree.
	LeavesA []string
	LeavesB []string
}

// Norm returns the distance scaled to [0, 1].
func (d Distance) Norm() float64 {
	if d.Max == 0 {
		return 0
	}
	return float64(d.Raw) / float64(d.Max)
}

// RF returns the Robinson-Foulds distance
// between two rooted trees,
// using the clusters defined over the terminals
// shared by both trees.
// KeyA and keyB are the functions used to retrieve
// the identity of the terminals of each tree;
// terminals with an empty key are ignored.
func RF(a, b *Tree, keyA, keyB func(*Node) string) (Distance, error) {
	la, err := leafKeys(a, keyA)
	if err != nil {
		return Distance{}, fmt.Errorf("tree %q: %w", a.Name, err)
	}
	lb, err := leafKeys(b, keyB)
	if err != nil {
		return Distance{}, fmt.Errorf("tree %q: %w", b.Name, err)
	}

	idx := make(map[string]int)
	for _, k := range la {
		if _, ok := slices.BinarySearch(lb, k); ok {
			idx[k] = len(idx)
		}
	}
	d := Distance{
		LeavesA: la,
		LeavesB: lb,
	}
	if len(idx) < MinComparable {
		return d, ErrNoComparable
	}

	ca := clusters(a, keyA, idx)
	cb := clusters(b, keyB, idx)
	for c := range ca {
		if !cb[c] {
			d.Raw++
		}
	}
	for c := range cb {
		if !ca[c] {
			d.Raw++
		}
	}
	d.Max = len(ca) + len(cb)
	return d, nil
}

func leafKeys(t *Tree, key func(*Node) string) ([]string, error) {
	seen := make(map[string]bool)
	var keys []string
	for _, n := range t.Leaves() {
		k := key(n)
		if k == "" {
			continue
		}
		if seen[k] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicatedKey, k)
		}
		seen[k] = true
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

// Clusters returns the informative clusters of a tree
// (i.e., clusters with more than one terminal,
// and less than all terminals)
// restricted to the indexed terminals.
func clusters(t *Tree, key func(*Node) string, idx map[string]int) map[string]bool {
	size := (len(idx) + 7) / 8
	sets := make(map[*Node][]byte)
	count := make(map[*Node]int)

	cs := make(map[string]bool)
	for _, n := range t.PostOrder() {
		set := make([]byte, size)
		c := 0
		if n.IsLeaf() {
			if i, ok := idx[key(n)]; ok {
				set[i/8] |= 1 << (i % 8)
				c = 1
			}
		}
		for _, x := range n.children {
			for i, b := range sets[x] {
				set[i] |= b
			}
			c += count[x]
			delete(sets, x)
			delete(count, x)
		}
		sets[n] = set
		count[n] = c

		if c > 1 && c < len(idx) {
			cs[string(set)] = true
		}
	}
	return cs
}
