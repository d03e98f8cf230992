// Package ring implements an ordered, focus-tracking collection used for
// monitors, desktops and the clients of a desktop.
//
// A Ring keeps a map from element ID to position in sync with the element
// slice after every operation, tracks a single focused position, and can
// remember up to MaxHistory previously focused IDs so that removing the
// focused element restores a sensible focus.
//
// Lookups never fail loudly: a selector that resolves to nothing yields the
// zero value and false. An empty Ring is a normal state.
package ring

import (
	"fmt"
	"slices"
)

// MaxHistory bounds the unwind stack.
const MaxHistory = 16

// Element is anything with a stable identity.
type Element interface {
	ID() uint32
}

// Ring is not safe for concurrent use. The window manager owns every Ring
// from a single event loop goroutine.
type Ring[T Element] struct {
	elements   []T
	indices    map[uint32]int
	focused    int
	unwindable bool
	stack      []uint32
}

// New builds a Ring from elems with focus on the last element. Elements
// whose ID repeats an earlier one are dropped.
func New[T Element](elems []T, unwindable bool) *Ring[T] {
	r := &Ring[T]{
		elements:   make([]T, 0, len(elems)),
		indices:    make(map[uint32]int, len(elems)),
		unwindable: unwindable,
	}
	for _, e := range elems {
		if _, dup := r.indices[e.ID()]; dup {
			continue
		}
		r.indices[e.ID()] = len(r.elements)
		r.elements = append(r.elements, e)
	}
	if n := len(r.elements); n > 0 {
		r.focused = n - 1
	}
	r.assertSynced()
	return r
}

func (r *Ring[T]) Len() int { return len(r.elements) }

func (r *Ring[T]) IsEmpty() bool { return len(r.elements) == 0 }

// Unwindable reports whether focus changes are recorded in history.
func (r *Ring[T]) Unwindable() bool { return r.unwindable }

// Elements returns a copy of the elements in ring order.
func (r *Ring[T]) Elements() []T {
	return slices.Clone(r.elements)
}

// IDs returns the element IDs in ring order.
func (r *Ring[T]) IDs() []uint32 {
	ids := make([]uint32, len(r.elements))
	for i, e := range r.elements {
		ids[i] = e.ID()
	}
	return ids
}

// History returns the unwind stack, oldest first.
func (r *Ring[T]) History() []uint32 {
	return slices.Clone(r.stack)
}

// Each calls fn for every element in order.
func (r *Ring[T]) Each(fn func(i int, e T)) {
	for i, e := range r.elements {
		fn(i, e)
	}
}

// Focused returns the focused element.
func (r *Ring[T]) Focused() (T, bool) {
	return r.GetFor(Focused)
}

// FocusedIndex returns the focused position, or false when the Ring is empty.
func (r *Ring[T]) FocusedIndex() (int, bool) {
	if r.focused < len(r.elements) {
		return r.focused, true
	}
	return 0, false
}

// IndexFor resolves sel to a position.
func (r *Ring[T]) IndexFor(sel Selector) (int, bool) {
	n := len(r.elements)
	if n == 0 {
		return 0, false
	}

	switch sel.kind {
	case selAny, selFocused:
		if r.focused < n {
			return r.focused, true
		}
	case selFirst:
		return 0, true
	case selLast:
		return n - 1, true
	case selIndex:
		if sel.index >= 0 && sel.index < n {
			return sel.index, true
		}
	case selIdent:
		idx, ok := r.indices[sel.ident]
		return idx, ok
	case selCondition:
		for i, e := range r.elements {
			if matches(e, sel.query) {
				return i, true
			}
		}
	}
	return 0, false
}

func matches[T Element](e T, q Query) bool {
	m, ok := any(e).(Matcher)
	return ok && m.Match(q)
}

// Contains reports whether sel resolves to an element.
func (r *Ring[T]) Contains(sel Selector) bool {
	_, ok := r.IndexFor(sel)
	return ok
}

// GetFor returns the element sel resolves to.
func (r *Ring[T]) GetFor(sel Selector) (T, bool) {
	idx, ok := r.IndexFor(sel)
	if !ok {
		var zero T
		return zero, false
	}
	return r.elements[idx], true
}

// GetAllFor returns every element sel matches. Any matches the whole Ring
// and Condition returns all matching elements; the other selectors yield at
// most one element.
func (r *Ring[T]) GetAllFor(sel Selector) []T {
	switch sel.kind {
	case selAny:
		return r.Elements()
	case selCondition:
		var out []T
		for _, e := range r.elements {
			if matches(e, sel.query) {
				out = append(out, e)
			}
		}
		return out
	}
	if e, ok := r.GetFor(sel); ok {
		return []T{e}
	}
	return nil
}

// ApplyFor calls fn on every element GetAllFor(sel) returns and reports how
// many were visited.
func (r *Ring[T]) ApplyFor(sel Selector, fn func(T)) int {
	all := r.GetAllFor(sel)
	for _, e := range all {
		fn(e)
	}
	return len(all)
}

// FocusFor moves focus to the element sel resolves to. The previously
// focused ID is recorded in history when the Ring is unwindable.
func (r *Ring[T]) FocusFor(sel Selector) (T, bool) {
	idx, ok := r.IndexFor(sel)
	if !ok {
		var zero T
		return zero, false
	}
	if idx != r.focused {
		r.pushFocused()
		r.focused = idx
	}
	r.assertSynced()
	return r.elements[idx], true
}

// Unwind pops history until an ID that is still present and not already
// focused turns up, then focuses it without recording the change.
func (r *Ring[T]) Unwind() (T, bool) {
	for len(r.stack) > 0 {
		id := r.stack[len(r.stack)-1]
		r.stack = r.stack[:len(r.stack)-1]
		if idx, ok := r.indices[id]; ok && idx != r.focused {
			r.focused = idx
			return r.elements[idx], true
		}
	}
	var zero T
	return zero, false
}

// RemoveFor removes the element sel resolves to and returns it.
//
// Positions after the removed one shift down. If the focused element was
// removed, focus goes to the most recent history entry that still exists,
// or to the last element. Removing before the focus keeps the same element
// focused; removing after it changes nothing.
func (r *Ring[T]) RemoveFor(sel Selector) (T, bool) {
	idx, ok := r.IndexFor(sel)
	if !ok {
		var zero T
		return zero, false
	}

	elem := r.elements[idx]
	id := elem.ID()
	r.elements = slices.Delete(r.elements, idx, idx+1)
	delete(r.indices, id)
	r.dropFromStack(id)
	r.reindexFrom(idx)

	n := len(r.elements)
	switch {
	case n == 0:
		r.focused = 0
	case idx == r.focused:
		r.focused = n - 1
		for len(r.stack) > 0 {
			last := r.stack[len(r.stack)-1]
			r.stack = r.stack[:len(r.stack)-1]
			if j, ok := r.indices[last]; ok {
				r.focused = j
				break
			}
		}
	case idx < r.focused:
		r.focused--
	}

	r.assertSynced()
	return elem, true
}

// InsertAt places elem at the given point and focuses it. It reports false,
// leaving the Ring untouched, when elem's ID is already present or an Ident
// anchor does not resolve. Index anchors past the end append.
func (r *Ring[T]) InsertAt(at InsertPoint, elem T) bool {
	if _, dup := r.indices[elem.ID()]; dup {
		return false
	}

	n := len(r.elements)
	var pos int
	switch at.kind {
	case insFront:
		pos = 0
	case insBack:
		pos = n
	case insBeforeFocused:
		pos = min(r.focused, n)
	case insAfterFocused:
		pos = min(r.focused+1, n)
	case insBeforeIndex:
		pos = clamp(at.index, 0, n)
	case insAfterIndex:
		pos = clamp(at.index+1, 0, n)
	case insBeforeIdent, insAfterIdent:
		idx, ok := r.indices[at.ident]
		if !ok {
			return false
		}
		pos = idx
		if at.kind == insAfterIdent {
			pos++
		}
	default:
		panic(fmt.Sprintf("ring: unknown insert point %d", at.kind))
	}

	r.pushFocused()
	r.elements = slices.Insert(r.elements, pos, elem)
	r.reindexFrom(pos)
	r.focused = pos
	r.assertSynced()
	return true
}

func (r *Ring[T]) PushFront(elem T) bool { return r.InsertAt(Front, elem) }

func (r *Ring[T]) PushBack(elem T) bool { return r.InsertAt(Back, elem) }

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// WillWrapFrom reports whether stepping from idx in dir passes an end.
func (r *Ring[T]) WillWrapFrom(idx int, dir Direction) bool {
	if dir == Forward {
		return idx >= len(r.elements)-1
	}
	return idx <= 0
}

// NextIndexFrom is the position one step from idx in dir, wrapping.
func (r *Ring[T]) NextIndexFrom(idx int, dir Direction) int {
	if len(r.elements) == 0 {
		return 0
	}
	if r.WillWrapFrom(idx, dir) {
		if dir == Forward {
			return 0
		}
		return len(r.elements) - 1
	}
	if dir == Forward {
		return idx + 1
	}
	return idx - 1
}

// NextIndex is NextIndexFrom the focused position.
func (r *Ring[T]) NextIndex(dir Direction) int {
	return r.NextIndexFrom(r.focused, dir)
}

// NextElement returns the element one step from focus without moving it.
func (r *Ring[T]) NextElement(dir Direction) (T, bool) {
	return r.GetFor(Index(r.NextIndex(dir)))
}

// CycleFocused moves focus one step in dir. Element order is unchanged.
func (r *Ring[T]) CycleFocused(dir Direction) (T, bool) {
	if len(r.elements) == 0 {
		var zero T
		return zero, false
	}
	next := r.NextIndex(dir)
	if next != r.focused {
		r.pushFocused()
		r.focused = next
	}
	r.assertSynced()
	return r.elements[r.focused], true
}

// Rotate shifts every element one step in dir, wrapping at the ends. The
// focused element stays focused; its position moves with it.
func (r *Ring[T]) Rotate(dir Direction) {
	r.RotateBy(1, dir)
}

// RotateBy rotates by step positions. A negative step rotates against dir.
func (r *Ring[T]) RotateBy(step int, dir Direction) {
	n := len(r.elements)
	if n < 2 {
		return
	}
	step = (step%n + n) % n
	if step == 0 {
		return
	}
	r.rotateElements(step, dir)
	if dir == Forward {
		r.focused = (r.focused + step) % n
	} else {
		r.focused = (r.focused - step + n) % n
	}
	r.assertSynced()
}

// rotateElements moves elements only. Forward moves the last element to
// the front.
func (r *Ring[T]) rotateElements(step int, dir Direction) {
	n := len(r.elements)
	if dir == Forward {
		step = n - step
	}
	rotated := make([]T, 0, n)
	rotated = append(rotated, r.elements[step:]...)
	rotated = append(rotated, r.elements[:step]...)
	r.elements = rotated
	r.reindexFrom(0)
}

// DragFocused moves the focused element one slot in dir and keeps it
// focused. At the boundary the whole Ring rotates instead, so the element
// wraps to the other end and every other element keeps its relative order.
func (r *Ring[T]) DragFocused(dir Direction) (T, bool) {
	n := len(r.elements)
	if n == 0 {
		var zero T
		return zero, false
	}
	if n == 1 {
		return r.elements[0], true
	}

	next := r.NextIndex(dir)
	if (r.focused == 0 && dir == Backward) || (next == 0 && dir == Forward) {
		id := r.elements[r.focused].ID()
		r.rotateElements(1, dir)
		r.focused = r.indices[id]
	} else {
		r.swapIndices(r.focused, next)
		r.focused = next
	}
	r.assertSynced()
	return r.elements[r.focused], true
}

// Swap exchanges the positions of the elements a and b resolve to. Focus
// follows the element it was on.
func (r *Ring[T]) Swap(a, b Selector) bool {
	i, ok := r.IndexFor(a)
	if !ok {
		return false
	}
	j, ok := r.IndexFor(b)
	if !ok {
		return false
	}
	if i == j {
		return true
	}
	r.swapIndices(i, j)
	switch r.focused {
	case i:
		r.focused = j
	case j:
		r.focused = i
	}
	r.assertSynced()
	return true
}

func (r *Ring[T]) swapIndices(i, j int) {
	r.elements[i], r.elements[j] = r.elements[j], r.elements[i]
	r.indices[r.elements[i].ID()] = i
	r.indices[r.elements[j].ID()] = j
}

// StackAfterFocus returns every ID in ring order with the focused ID moved
// to the end, which is the order windows are raised in.
func (r *Ring[T]) StackAfterFocus() []uint32 {
	ids := r.IDs()
	if r.focused >= len(ids) {
		return ids
	}
	f := ids[r.focused]
	ids = slices.Delete(ids, r.focused, r.focused+1)
	return append(ids, f)
}

// Clear empties the Ring and its history.
func (r *Ring[T]) Clear() {
	r.elements = r.elements[:0]
	clear(r.indices)
	r.stack = r.stack[:0]
	r.focused = 0
}

// ClearHistory forgets every previously focused ID.
func (r *Ring[T]) ClearHistory() {
	r.stack = r.stack[:0]
}

func (r *Ring[T]) pushFocused() {
	if !r.unwindable || r.focused >= len(r.elements) {
		return
	}
	id := r.elements[r.focused].ID()
	r.dropFromStack(id)
	r.stack = append(r.stack, id)
	if len(r.stack) > MaxHistory {
		r.stack = slices.Delete(r.stack, 0, len(r.stack)-MaxHistory)
	}
}

func (r *Ring[T]) dropFromStack(id uint32) {
	r.stack = slices.DeleteFunc(r.stack, func(v uint32) bool { return v == id })
}

func (r *Ring[T]) reindexFrom(pos int) {
	for i := pos; i < len(r.elements); i++ {
		r.indices[r.elements[i].ID()] = i
	}
}

// Synced reports whether the index map agrees with element positions.
func (r *Ring[T]) Synced() error {
	if len(r.indices) != len(r.elements) {
		return fmt.Errorf("ring: %d indices for %d elements", len(r.indices), len(r.elements))
	}
	for i, e := range r.elements {
		if got, ok := r.indices[e.ID()]; !ok || got != i {
			return fmt.Errorf("ring: element %#x at %d indexed as %d (present=%v)", e.ID(), i, got, ok)
		}
	}
	return nil
}

func (r *Ring[T]) assertSynced() {
	if !debugChecks {
		return
	}
	if err := r.Synced(); err != nil {
		panic(err)
	}
}
