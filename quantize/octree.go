package quantize

import (
	"cmp"
	"container/heap"
	"errors"
	"slices"

	"picpal/palette"
)

const (
	leafLevel = 7
	noNode    = -1
)

type octreeNode struct {
	parent   int32
	children [8]int32
	level    int8
	leaf     bool
	count    int
	sum      [3]int
}

// Tree is an octree over the RGB bit planes. Nodes live in a flat arena and
// refer to each other by index, so merging only rewrites indices.
// Colors are inserted down to level 7; the lowest bit of each channel is
// not used for addressing.
type Tree struct {
	nodes  []octreeNode
	leaves int
}

func NewTree() *Tree {
	t := &Tree{}
	t.newNode(noNode, 0)
	return t
}

func (t *Tree) newNode(parent int32, level int8) int32 {
	n := octreeNode{parent: parent, level: level}
	for i := range n.children {
		n.children[i] = noNode
	}
	t.nodes = append(t.nodes, n)
	return int32(len(t.nodes) - 1)
}

func childIndex(c palette.Color, level int8) int {
	mask := uint8(0x80) >> level
	idx := 0
	if c.R&mask != 0 {
		idx |= 4
	}
	if c.G&mask != 0 {
		idx |= 2
	}
	if c.B&mask != 0 {
		idx |= 1
	}
	return idx
}

// Insert adds one pixel of color c.
func (t *Tree) Insert(c palette.Color) {
	var cur int32
	for !t.nodes[cur].leaf && t.nodes[cur].level < leafLevel {
		idx := childIndex(c, t.nodes[cur].level)
		next := t.nodes[cur].children[idx]
		if next == noNode {
			next = t.newNode(cur, t.nodes[cur].level+1)
			t.nodes[cur].children[idx] = next
		}
		cur = next
	}

	n := &t.nodes[cur]
	n.count++
	n.sum[0] += int(c.R)
	n.sum[1] += int(c.G)
	n.sum[2] += int(c.B)
	if !n.leaf {
		n.leaf = true
		t.leaves++
	}
}

// Leaves returns the current number of leaves.
func (t *Tree) Leaves() int {
	return t.leaves
}

func (t *Tree) Clone() *Tree {
	return &Tree{
		nodes:  slices.Clone(t.nodes),
		leaves: t.leaves,
	}
}

// Colors returns the mean color of every leaf in arena order.
func (t *Tree) Colors() []palette.Color {
	res := make([]palette.Color, 0, t.leaves)
	for _, n := range t.nodes {
		if !n.leaf {
			continue
		}
		res = append(res, palette.Color{
			R: uint8(n.sum[0] / n.count),
			G: uint8(n.sum[1] / n.count),
			B: uint8(n.sum[2] / n.count),
		})
	}
	return res
}

// Reduce merges leaves until at most k remain and returns the leaf colors.
// Each step takes the least populated leaf (lowest arena index on ties) and
// folds its parent's whole subtree into the parent, which becomes a leaf.
// One step can remove up to seven leaves, so fewer than k may remain.
func (t *Tree) Reduce(k int) []palette.Color {
	h := &leafHeap{tree: t}
	for i, n := range t.nodes {
		if n.leaf {
			h.idx = append(h.idx, int32(i))
		}
	}
	heap.Init(h)

	for t.leaves > k && h.Len() > 0 {
		i := heap.Pop(h).(int32)
		if !t.nodes[i].leaf {
			continue
		}
		parent := t.nodes[i].parent
		if parent == noNode {
			break
		}
		t.leaves -= t.fold(parent, parent)
		t.nodes[parent].leaf = true
		t.leaves++
		heap.Push(h, parent)
	}

	return t.Colors()
}

// fold moves the totals of every leaf below node into dst, detaches the
// subtree and returns how many leaves were removed.
func (t *Tree) fold(dst, node int32) int {
	removed := 0
	for idx, child := range t.nodes[node].children {
		if child == noNode {
			continue
		}
		c := &t.nodes[child]
		if c.leaf {
			d := &t.nodes[dst]
			d.count += c.count
			for ch := range 3 {
				d.sum[ch] += c.sum[ch]
			}
			c.leaf = false
			removed++
		} else {
			removed += t.fold(dst, child)
		}
		t.nodes[node].children[idx] = noNode
	}
	return removed
}

type leafHeap struct {
	tree *Tree
	idx  []int32
}

func (h *leafHeap) Len() int { return len(h.idx) }

func (h *leafHeap) Less(i, j int) bool {
	a, b := h.tree.nodes[h.idx[i]], h.tree.nodes[h.idx[j]]
	if a.count != b.count {
		return a.count < b.count
	}
	return h.idx[i] < h.idx[j]
}

func (h *leafHeap) Swap(i, j int) { h.idx[i], h.idx[j] = h.idx[j], h.idx[i] }

func (h *leafHeap) Push(x any) { h.idx = append(h.idx, x.(int32)) }

func (h *leafHeap) Pop() any {
	old := h.idx
	n := len(old)
	x := old[n-1]
	h.idx = old[:n-1]
	return x
}

func quantizeOctree(s palette.Sample, hist []palette.Entry, n, bits int) (palette.Palette, error) {
	tree := NewTree()
	for _, c := range s {
		tree.Insert(c)
	}

	pal, err := grow(n, n, tree.Leaves(), bits, func(k int) ([]palette.Color, error) {
		return tree.Clone().Reduce(k), nil
	})
	if !errors.Is(err, ErrConvergence) {
		return pal, err
	}

	// A leaf may hold colors that differ only in their lowest bit, and leaf
	// means can snap onto one cell. Top up with the members themselves,
	// most populated first.
	ranked := slices.Clone(hist)
	slices.SortStableFunc(ranked, func(a, b palette.Entry) int {
		return cmp.Compare(b.Count, a.Count)
	})
	candidates := tree.Colors()
	for _, e := range ranked {
		candidates = append(candidates, e.Color)
	}
	if uniq := palette.GridQuantize(candidates, bits); len(uniq) >= n {
		return uniq[:n], nil
	}
	return nil, err
}
