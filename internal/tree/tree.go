package tree

import (
	"errors"
	"fmt"

	"github.com/lmburns/lwm/internal/geometry"
)

var (
	ErrNotLeaf  = errors.New("node is not a leaf")
	ErrNotSplit = errors.New("node is not a split")
	ErrNoNode   = errors.New("no such node")
	ErrRatio    = errors.New("ratio must be strictly between 0 and 1")
	ErrBadAngle = errors.New("rotation must be 90, 180 or 270 degrees")
)

// Settings are the insertion and removal policies of a tree.
type Settings struct {
	SplitRatio        float64
	Scheme            Scheme
	Polarity          Polarity
	RemovalAdjustment bool
}

func DefaultSettings() Settings {
	return Settings{
		SplitRatio:        0.5,
		Scheme:            LongestSide,
		Polarity:          SecondChild,
		RemovalAdjustment: true,
	}
}

// Tree is owned by one desktop and is not safe for concurrent use.
type Tree struct {
	nodes    []Node
	free     []NodeID
	root     NodeID
	settings Settings
	spiral   int
}

func New(s Settings) *Tree {
	return &Tree{root: NoNode, settings: s}
}

func (t *Tree) Settings() Settings { return t.settings }

// SetSettings replaces the policies used by later insertions and removals.
func (t *Tree) SetSettings(s Settings) { t.settings = s }

func (t *Tree) Root() NodeID { return t.root }

func (t *Tree) IsEmpty() bool { return t.root == NoNode }

func (t *Tree) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes) && t.nodes[id].live
}

// Node returns a copy of the node at id.
func (t *Tree) Node(id NodeID) (Node, bool) {
	if !t.valid(id) {
		return Node{}, false
	}
	n := t.nodes[id]
	if n.Presel != nil {
		p := *n.Presel
		n.Presel = &p
	}
	return n, true
}

func (t *Tree) IsLeaf(id NodeID) bool {
	return t.valid(id) && t.nodes[id].IsLeaf()
}

// Sibling returns the other child of id's parent.
func (t *Tree) Sibling(id NodeID) NodeID {
	if !t.valid(id) {
		return NoNode
	}
	p := t.nodes[id].Parent
	if p == NoNode {
		return NoNode
	}
	if t.nodes[p].First == id {
		return t.nodes[p].Second
	}
	return t.nodes[p].First
}

func (t *Tree) isFirstChild(id NodeID) bool {
	p := t.nodes[id].Parent
	return p != NoNode && t.nodes[p].First == id
}

// Leaves returns leaf IDs in order, first children before second children.
func (t *Tree) Leaves() []NodeID {
	var out []NodeID
	t.walk(t.root, 0, func(n *Node, _ int) {
		if n.IsLeaf() {
			out = append(out, n.ID)
		}
	})
	return out
}

// Len is the number of leaves.
func (t *Tree) Len() int {
	return len(t.Leaves())
}

// Walk visits every node in pre-order with its depth.
func (t *Tree) Walk(fn func(n Node, depth int)) {
	t.walk(t.root, 0, func(n *Node, depth int) {
		c, _ := t.Node(n.ID)
		fn(c, depth)
	})
}

func (t *Tree) walk(id NodeID, depth int, fn func(n *Node, depth int)) {
	if id == NoNode {
		return
	}
	fn(&t.nodes[id], depth)
	t.walk(t.nodes[id].First, depth+1, fn)
	t.walk(t.nodes[id].Second, depth+1, fn)
}

// LeafOf finds the leaf holding win.
func (t *Tree) LeafOf(win uint32) NodeID {
	for _, id := range t.Leaves() {
		if t.nodes[id].Window == win {
			return id
		}
	}
	return NoNode
}

func (t *Tree) firstLeaf(id NodeID) NodeID {
	for id != NoNode && !t.nodes[id].IsLeaf() {
		id = t.nodes[id].First
	}
	return id
}

func (t *Tree) alloc(n Node) NodeID {
	n.live = true
	if k := len(t.free); k > 0 {
		id := t.free[k-1]
		t.free = t.free[:k-1]
		n.ID = id
		t.nodes[id] = n
		return id
	}
	n.ID = NodeID(len(t.nodes))
	t.nodes = append(t.nodes, n)
	return n.ID
}

func (t *Tree) release(id NodeID) {
	t.nodes[id] = Node{ID: id, Parent: NoNode, First: NoNode, Second: NoNode}
	t.free = append(t.free, id)
}

func (t *Tree) replaceChild(parent, old, repl NodeID) {
	if parent == NoNode {
		t.root = repl
		return
	}
	if t.nodes[parent].First == old {
		t.nodes[parent].First = repl
	} else {
		t.nodes[parent].Second = repl
	}
}

// Insert adds win next to target and returns the new leaf.
//
// The first window becomes the root. Afterwards target (or the first leaf
// when target is not a leaf) turns into a split whose children are the old
// leaf and the new one. A presel on target decides the orientation, side
// and ratio and is consumed; otherwise the automatic scheme and polarity do.
func (t *Tree) Insert(target NodeID, win uint32) NodeID {
	leaf := t.alloc(Node{Parent: NoNode, First: NoNode, Second: NoNode, Window: win})
	if t.root == NoNode {
		t.root = leaf
		return leaf
	}
	if !t.IsLeaf(target) || target == leaf {
		target = t.firstLeaf(t.root)
	}

	var (
		split    SplitType
		newFirst bool
		ratio    = t.settings.SplitRatio
	)
	if p := t.nodes[target].Presel; p != nil {
		split, newFirst = sideOf(p.Dir)
		ratio = p.Ratio
		t.nodes[target].Presel = nil
	} else {
		split, newFirst = t.automatic(target)
	}

	parent := t.nodes[target].Parent
	s := t.alloc(Node{
		Parent:     parent,
		First:      target,
		Second:     leaf,
		SplitType:  split,
		SplitRatio: ratio,
		Rect:       t.nodes[target].Rect,
	})
	if newFirst {
		t.nodes[s].First, t.nodes[s].Second = leaf, target
	}
	t.replaceChild(parent, target, s)
	t.nodes[target].Parent = s
	t.nodes[leaf].Parent = s
	t.nodes[leaf].Rect = t.nodes[target].Rect

	t.refreshVacancy(s)
	return leaf
}

// sideOf maps a presel direction to the split orientation and whether the
// new window becomes the first child.
func sideOf(d geometry.Direction) (SplitType, bool) {
	switch d {
	case geometry.West:
		return Vertical, true
	case geometry.North:
		return Horizontal, true
	case geometry.South:
		return Horizontal, false
	default:
		return Vertical, false
	}
}

var spiralOrder = [...]geometry.Direction{geometry.East, geometry.South, geometry.West, geometry.North}

func (t *Tree) automatic(target NodeID) (SplitType, bool) {
	newFirst := t.settings.Polarity == FirstChild
	switch t.settings.Scheme {
	case Alternate:
		if p := t.nodes[target].Parent; p != NoNode {
			return t.nodes[p].SplitType.opposite(), newFirst
		}
	case Spiral:
		d := spiralOrder[t.spiral%len(spiralOrder)]
		t.spiral++
		return sideOf(d)
	}
	return longestSide(t.nodes[target].Rect), newFirst
}

func longestSide(r geometry.Rectangle) SplitType {
	if r.W > r.H {
		return Vertical
	}
	return Horizontal
}

// Remove deletes a leaf. Its sibling takes the place of their parent, and
// with removal adjustment enabled the promoted subtree is re-oriented to
// suit the larger area it now covers.
func (t *Tree) Remove(id NodeID) error {
	if !t.valid(id) {
		return ErrNoNode
	}
	if !t.nodes[id].IsLeaf() {
		return ErrNotLeaf
	}

	p := t.nodes[id].Parent
	if p == NoNode {
		t.root = NoNode
		t.release(id)
		return nil
	}

	wasFirst := t.isFirstChild(id)
	sib := t.Sibling(id)
	if sib == NoNode {
		panic(fmt.Sprintf("tree: split %d has no sibling for leaf %d", p, id))
	}
	g := t.nodes[p].Parent
	parentRect := t.nodes[p].Rect

	t.nodes[sib].Parent = g
	t.replaceChild(g, p, sib)
	t.nodes[sib].Rect = parentRect

	if t.settings.RemovalAdjustment && !t.nodes[sib].IsLeaf() {
		switch {
		case t.settings.Scheme == Spiral:
			if wasFirst {
				t.rotate(sib, 270)
			} else {
				t.rotate(sib, 90)
			}
		case t.settings.Scheme == LongestSide || g == NoNode:
			t.nodes[sib].SplitType = longestSide(parentRect)
		case t.settings.Scheme == Alternate:
			t.nodes[sib].SplitType = t.nodes[g].SplitType.opposite()
		}
	}

	t.release(id)
	t.release(p)
	if g != NoNode {
		t.refreshVacancy(g)
	}
	return nil
}

// SetPresel records a presel on a leaf. An existing feedback window is kept.
func (t *Tree) SetPresel(id NodeID, p Presel) error {
	if !t.IsLeaf(id) {
		return ErrNotLeaf
	}
	if p.Ratio <= 0 || p.Ratio >= 1 {
		return ErrRatio
	}
	if old := t.nodes[id].Presel; old != nil && p.Feedback == 0 {
		p.Feedback = old.Feedback
	}
	t.nodes[id].Presel = &p
	return nil
}

// CancelPresel clears the presel on id and returns its feedback window.
func (t *Tree) CancelPresel(id NodeID) (uint32, bool) {
	if !t.valid(id) || t.nodes[id].Presel == nil {
		return 0, false
	}
	fb := t.nodes[id].Presel.Feedback
	t.nodes[id].Presel = nil
	return fb, true
}

// SetPreselFeedback attaches the overlay window drawn for a presel.
func (t *Tree) SetPreselFeedback(id NodeID, win uint32) {
	if t.valid(id) && t.nodes[id].Presel != nil {
		t.nodes[id].Presel.Feedback = win
	}
}

// PreselArea is the part of the leaf the next window would occupy.
func (t *Tree) PreselArea(id NodeID) (geometry.Rectangle, bool) {
	if !t.valid(id) || t.nodes[id].Presel == nil {
		return geometry.Rectangle{}, false
	}
	n := t.nodes[id]
	p := n.Presel
	switch p.Dir {
	case geometry.East:
		_, r := n.Rect.SplitAtWidth(uint(float64(n.Rect.W) * p.Ratio))
		return r, true
	case geometry.West:
		l, _ := n.Rect.SplitAtWidth(uint(float64(n.Rect.W) * p.Ratio))
		return l, true
	case geometry.South:
		_, b := n.Rect.SplitAtHeight(uint(float64(n.Rect.H) * p.Ratio))
		return b, true
	default:
		top, _ := n.Rect.SplitAtHeight(uint(float64(n.Rect.H) * p.Ratio))
		return top, true
	}
}

// SetRatio changes the ratio of a split. Passing a leaf adjusts its parent.
func (t *Tree) SetRatio(id NodeID, ratio float64) error {
	if !t.valid(id) {
		return ErrNoNode
	}
	if ratio <= 0 || ratio >= 1 {
		return ErrRatio
	}
	if t.nodes[id].IsLeaf() {
		id = t.nodes[id].Parent
		if id == NoNode {
			return ErrNotSplit
		}
	}
	t.nodes[id].SplitRatio = ratio
	return nil
}

// SetConstraints sets the minimum size of a leaf's window.
func (t *Tree) SetConstraints(id NodeID, c Constraints) {
	if t.IsLeaf(id) {
		t.nodes[id].Constraints = c
	}
}

// SetFlag sets a user flag. Hiding a leaf makes it vacant.
func (t *Tree) SetFlag(id NodeID, flag Flag, v bool) error {
	if !t.valid(id) {
		return ErrNoNode
	}
	p := t.nodes[id].Flags.ptr(flag)
	if p == nil {
		return fmt.Errorf("unknown flag %d", flag)
	}
	*p = v
	if flag == FlagHidden {
		t.refreshVacancy(id)
	}
	return nil
}

// SetDetached marks a leaf whose window does not take tiling space, such
// as a floating or fullscreen client.
func (t *Tree) SetDetached(id NodeID, v bool) {
	if !t.IsLeaf(id) {
		return
	}
	t.nodes[id].detached = v
	t.refreshVacancy(id)
}

// refreshVacancy recomputes vacancy from id up to the root.
func (t *Tree) refreshVacancy(id NodeID) {
	for id != NoNode {
		n := &t.nodes[id]
		if n.IsLeaf() {
			n.Vacant = n.detached || n.Hidden
		} else {
			n.Vacant = t.nodes[n.First].Vacant && t.nodes[n.Second].Vacant
		}
		id = n.Parent
	}
}

// SwapLeaves exchanges the windows, and their per-window state, of two
// leaves.
func (t *Tree) SwapLeaves(a, b NodeID) error {
	if !t.IsLeaf(a) || !t.IsLeaf(b) {
		return ErrNotLeaf
	}
	na, nb := &t.nodes[a], &t.nodes[b]
	na.Window, nb.Window = nb.Window, na.Window
	na.Flags, nb.Flags = nb.Flags, na.Flags
	na.Constraints, nb.Constraints = nb.Constraints, na.Constraints
	na.detached, nb.detached = nb.detached, na.detached
	t.refreshVacancy(a)
	t.refreshVacancy(b)
	return nil
}
