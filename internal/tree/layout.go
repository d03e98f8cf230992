package tree

import (
	"github.com/lmburns/lwm/internal/geometry"
)

// UpdateConstraints recomputes split constraints from the leaves up.
// Side-by-side children add their minimum widths, stacked children add
// their minimum heights. Vacant children contribute nothing.
func (t *Tree) UpdateConstraints() {
	t.constraints(t.root)
}

func (t *Tree) constraints(id NodeID) Constraints {
	if id == NoNode {
		return Constraints{}
	}
	n := &t.nodes[id]
	if n.Vacant {
		return Constraints{}
	}
	if n.IsLeaf() {
		return n.Constraints
	}
	c1 := t.constraints(n.First)
	c2 := t.constraints(n.Second)
	var c Constraints
	if n.SplitType == Vertical {
		c = Constraints{MinW: c1.MinW + c2.MinW, MinH: max(c1.MinH, c2.MinH)}
	} else {
		c = Constraints{MinW: max(c1.MinW, c2.MinW), MinH: c1.MinH + c2.MinH}
	}
	n.Constraints = c
	return c
}

// Layout assigns a rectangle to every node inside area and returns the
// placements of the leaves that occupy space. Sibling windows are
// separated by gap; the outer gap is the caller's business.
func (t *Tree) Layout(area geometry.Rectangle, gap uint) []Placement {
	if t.root == NoNode {
		return nil
	}
	t.UpdateConstraints()
	var out []Placement
	t.layout(t.root, area, gap, &out)
	return out
}

func (t *Tree) layout(id NodeID, rect geometry.Rectangle, gap uint, out *[]Placement) {
	n := &t.nodes[id]
	n.Rect = rect
	if n.IsLeaf() {
		if !n.Vacant {
			*out = append(*out, Placement{Node: id, Window: n.Window, Rect: rect})
		}
		return
	}

	first, second := n.First, n.Second
	// A vacant child gives up its share; both keep the full rectangle so a
	// child that becomes occupied again starts from sensible geometry.
	r1, r2 := rect, rect
	if !t.nodes[first].Vacant && !t.nodes[second].Vacant {
		r1, r2 = t.splitRect(n, rect, gap)
	}
	t.layout(first, r1, gap, out)
	t.layout(second, r2, gap, out)
}

// splitRect divides rect at the split's fence, keeping each side at least
// as large as its constraints when the rectangle allows it.
func (t *Tree) splitRect(n *Node, rect geometry.Rectangle, gap uint) (geometry.Rectangle, geometry.Rectangle) {
	half := gap / 2
	rest := gap - half
	c1 := t.nodes[n.First].Constraints
	c2 := t.nodes[n.Second].Constraints

	if n.SplitType == Vertical {
		fence := clampFence(uint(float64(rect.W)*n.SplitRatio), rect.W, c1.MinW+half, c2.MinW+rest)
		l, r := rect.SplitAtWidth(fence)
		return l.Sub(geometry.Padding{Right: half}), r.Sub(geometry.Padding{Left: rest})
	}
	fence := clampFence(uint(float64(rect.H)*n.SplitRatio), rect.H, c1.MinH+half, c2.MinH+rest)
	top, bottom := rect.SplitAtHeight(fence)
	return top.Sub(geometry.Padding{Bottom: half}), bottom.Sub(geometry.Padding{Top: rest})
}

func clampFence(fence, total, lo, reserve uint) uint {
	if reserve > total {
		return fence
	}
	hi := total - reserve
	if lo > hi {
		return fence
	}
	return min(max(fence, lo), hi)
}

// Monocle gives every occupied leaf the whole area.
func (t *Tree) Monocle(area geometry.Rectangle) []Placement {
	var out []Placement
	t.walk(t.root, 0, func(n *Node, _ int) {
		n.Rect = area
		if n.IsLeaf() && !n.Vacant {
			out = append(out, Placement{Node: n.ID, Window: n.Window, Rect: area})
		}
	})
	return out
}

// Directional returns the occupied leaf nearest to from in direction dir,
// using the rectangles of the last layout. Ties on distance go to the
// candidate ordered first by RectCmp.
func (t *Tree) Directional(from NodeID, dir geometry.Direction, tight geometry.Tightness) NodeID {
	if !t.IsLeaf(from) {
		return NoNode
	}
	src := t.nodes[from].Rect
	best := NoNode
	var bestDist uint
	for _, id := range t.Leaves() {
		n := t.nodes[id]
		if id == from || n.Vacant {
			continue
		}
		if !src.OnDirSide(n.Rect, dir, tight) {
			continue
		}
		d := src.BoundaryDistance(n.Rect, dir)
		switch {
		case best == NoNode, d < bestDist:
			best, bestDist = id, d
		case d == bestDist && n.Rect.RectCmp(t.nodes[best].Rect) < 0:
			best = id
		}
	}
	return best
}
