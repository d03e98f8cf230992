package tree

// Rotate turns the subtree at id by deg degrees clockwise. deg must be 90,
// 180 or 270.
func (t *Tree) Rotate(id NodeID, deg int) error {
	if !t.valid(id) {
		return ErrNoNode
	}
	switch deg {
	case 90, 180, 270:
	default:
		return ErrBadAngle
	}
	t.rotate(id, deg)
	return nil
}

func (t *Tree) rotate(id NodeID, deg int) {
	if id == NoNode {
		return
	}
	n := &t.nodes[id]
	if n.IsLeaf() {
		return
	}
	if (deg == 90 && n.SplitType == Horizontal) ||
		(deg == 270 && n.SplitType == Vertical) ||
		deg == 180 {
		t.swapChildren(n)
	}
	if deg != 180 {
		n.SplitType = n.SplitType.opposite()
	}
	t.rotate(n.First, deg)
	t.rotate(n.Second, deg)
}

func (t *Tree) swapChildren(n *Node) {
	n.First, n.Second = n.Second, n.First
	n.SplitRatio = 1 - n.SplitRatio
}

// Flip mirrors the subtree at id.
func (t *Tree) Flip(id NodeID, f Flip) error {
	if !t.valid(id) {
		return ErrNoNode
	}
	t.flip(id, f)
	return nil
}

func (t *Tree) flip(id NodeID, f Flip) {
	if id == NoNode {
		return
	}
	n := &t.nodes[id]
	if n.IsLeaf() {
		return
	}
	if (f == FlipHorizontal && n.SplitType == Horizontal) ||
		(f == FlipVertical && n.SplitType == Vertical) {
		t.swapChildren(n)
	}
	t.flip(n.First, f)
	t.flip(n.Second, f)
}

// Equalize resets every split ratio under id to the default ratio.
func (t *Tree) Equalize(id NodeID) error {
	if !t.valid(id) {
		return ErrNoNode
	}
	t.walk(id, 0, func(n *Node, _ int) {
		if !n.IsLeaf() {
			n.SplitRatio = t.settings.SplitRatio
		}
	})
	return nil
}

// Balance sets ratios so every occupied leaf under id gets an equal share
// along the split axis.
func (t *Tree) Balance(id NodeID) error {
	if !t.valid(id) {
		return ErrNoNode
	}
	t.balance(id)
	return nil
}

func (t *Tree) balance(id NodeID) int {
	n := &t.nodes[id]
	if n.IsLeaf() {
		if n.Vacant {
			return 0
		}
		return 1
	}
	b1 := t.balance(n.First)
	b2 := t.balance(n.Second)
	n = &t.nodes[id]
	if b1 > 0 && b2 > 0 {
		n.SplitRatio = float64(b1) / float64(b1+b2)
	}
	return b1 + b2
}
