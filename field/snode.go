// Package field models typed, shaped storage regions declared over virtual
// axes and placed into a storage-layout tree of nested dense levels. The
// tree fixes the physical memory order once at placement; everything after
// that (introspection, addressing, reads/writes) is a pure function of the
// finalized declaration.
package field

import (
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
)

// Axis is a virtual indexing dimension as seen by user code.
type Axis int

// Conventional axis names, matching the order user code indexes with.
const (
	AxisI Axis = 0
	AxisJ Axis = 1
	AxisK Axis = 2
	AxisL Axis = 3
)

// MaxAxes bounds the number of distinct virtual axes a tree may use.
const MaxAxes = 8

// NodeID is an opaque handle to a node in a storage tree, unique across all
// trees in the process. Consumers treat it as an identity token only.
type NodeID int64

var nodeIDCounter atomic.Int64

func newNodeID() NodeID {
	return NodeID(nodeIDCounter.Add(1))
}

// Single canonical errors used across the package.
var (
	ErrNotPlaced     = errors.New("field has not been placed into a storage tree")
	ErrAlreadyPlaced = errors.New("field is already placed")
)

type axisExtent struct {
	axis   Axis
	extent int
}

// Tree owns a storage-layout declaration. Nodes are created fluently from
// Root() and finalized per field at Place; a Tree is never restructured
// afterwards.
type Tree struct {
	root *SNode
}

// NewTree creates an empty storage tree with just a root node.
func NewTree() *Tree {
	t := &Tree{}
	t.root = &SNode{tree: t, id: newNodeID()}
	return t
}

// Root returns the tree's root node.
func (t *Tree) Root() *SNode { return t.root }

// SNode is one node in a storage-layout tree. Each dense node declares an
// ordered run of (axis, extent) pairs, outermost first; nesting a node inside
// another appends to the physical ordering.
type SNode struct {
	tree   *Tree
	parent *SNode
	id     NodeID
	levels []axisExtent
	err    error // first construction error along the chain, surfaced at Place
}

// ID returns the node's opaque handle.
func (n *SNode) ID() NodeID { return n.id }

// Dense declares a child node over a single axis with the given extent.
// Construction errors are deferred and reported by Place.
func (n *SNode) Dense(axis Axis, extent int) *SNode {
	return n.DenseAxes([]Axis{axis}, []int{extent})
}

// DenseAxes declares a child node over several axes at once. Within the
// level, the listed order is the physical nesting order (first listed is
// outermost).
func (n *SNode) DenseAxes(axes []Axis, extents []int) *SNode {
	child := &SNode{tree: n.tree, parent: n, id: newNodeID(), err: n.err}
	if child.err != nil {
		return child
	}
	if len(axes) == 0 {
		child.err = errors.New("dense node declares no axes")
		return child
	}
	if len(axes) != len(extents) {
		child.err = fmt.Errorf("dense node declares %d axes but %d extents", len(axes), len(extents))
		return child
	}
	for i, ax := range axes {
		if ax < 0 || int(ax) >= MaxAxes {
			child.err = fmt.Errorf("axis %d out of range [0, %d)", int(ax), MaxAxes)
			return child
		}
		if extents[i] < 1 {
			child.err = fmt.Errorf("axis %d has non-positive extent %d", int(ax), extents[i])
			return child
		}
		child.levels = append(child.levels, axisExtent{axis: ax, extent: extents[i]})
	}
	return child
}

// chain flattens the declarations from the root down to n, outermost first.
func (n *SNode) chain() []axisExtent {
	var nodes []*SNode
	for p := n; p != nil; p = p.parent {
		nodes = append(nodes, p)
	}
	var out []axisExtent
	for i := len(nodes) - 1; i >= 0; i-- {
		out = append(out, nodes[i].levels...)
	}
	return out
}

// PhysicalIndexPosition maps each virtual axis id used along this node's
// chain to its physical index slot. Slots are assigned by ascending axis id,
// independent of nesting order and of extents: two chains over the same axis
// set produce identical mappings even when their memory layouts differ.
func (n *SNode) PhysicalIndexPosition() map[int]int {
	seen := map[Axis]bool{}
	for _, lv := range n.chain() {
		seen[lv.axis] = true
	}
	axes := make([]int, 0, len(seen))
	for ax := range seen {
		axes = append(axes, int(ax))
	}
	sort.Ints(axes)
	out := make(map[int]int, len(axes))
	for slot, ax := range axes {
		out[ax] = slot
	}
	return out
}

// Place finalizes the chain ending at n, binds f to it, and allocates the
// field's backing storage. Any deferred construction error surfaces here.
func (n *SNode) Place(f *Field) error {
	if n.err != nil {
		return n.err
	}
	if f == nil {
		return errors.New("cannot place a nil field")
	}
	if f.placed {
		return fmt.Errorf("%w: %s", ErrAlreadyPlaced, f.name)
	}
	levels := n.chain()
	if len(levels) == 0 {
		return errors.New("cannot place a field directly under the root")
	}
	return f.bind(n, levels)
}
