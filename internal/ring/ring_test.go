package ring

import (
	"math/rand"
	"slices"
	"strconv"
	"testing"
)

type item uint32

func (i item) ID() uint32 { return uint32(i) }

func (i item) Match(q Query) bool {
	switch q.Field {
	case "even":
		return (i%2 == 0) == (q.Value == "true")
	case "gt":
		n, err := strconv.Atoi(q.Value)
		return err == nil && int(i) > n
	}
	return false
}

func items(ids ...uint32) []item {
	out := make([]item, len(ids))
	for i, id := range ids {
		out[i] = item(id)
	}
	return out
}

func mustSync(t *testing.T, r *Ring[item]) {
	t.Helper()
	if err := r.Synced(); err != nil {
		t.Fatalf("ring out of sync: %v", err)
	}
}

func focusedID(t *testing.T, r *Ring[item]) uint32 {
	t.Helper()
	f, ok := r.Focused()
	if !ok {
		t.Fatalf("ring has no focus")
	}
	return f.ID()
}

func TestNewFocusesLast(t *testing.T) {
	r := New(items(1, 2, 3), false)
	if idx, ok := r.FocusedIndex(); !ok || idx != 2 {
		t.Fatalf("FocusedIndex() = %d, %v, want 2, true", idx, ok)
	}

	empty := New[item](nil, false)
	if _, ok := empty.Focused(); ok {
		t.Fatalf("empty ring should have no focus")
	}
	if _, ok := empty.CycleFocused(Forward); ok {
		t.Fatalf("cycling an empty ring should report false")
	}
}

func TestNewDropsDuplicates(t *testing.T) {
	r := New(items(1, 2, 1, 3), false)
	if got, want := r.IDs(), []uint32{1, 2, 3}; !slices.Equal(got, want) {
		t.Fatalf("IDs() = %v, want %v", got, want)
	}
	mustSync(t, r)
}

func TestGetFor(t *testing.T) {
	r := New(items(1, 2, 3, 4), false)
	tests := []struct {
		sel  Selector
		want uint32
		ok   bool
	}{
		{Any, 4, true},
		{Focused, 4, true},
		{First, 1, true},
		{Last, 4, true},
		{Index(1), 2, true},
		{Index(9), 0, false},
		{Index(-1), 0, false},
		{Ident(3), 3, true},
		{Ident(99), 0, false},
		{Condition(Query{Field: "gt", Value: "1"}), 2, true},
		{Condition(Query{Field: "gt", Value: "10"}), 0, false},
		{Condition(Query{Field: "unknown"}), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.sel.String(), func(t *testing.T) {
			got, ok := r.GetFor(tt.sel)
			if ok != tt.ok || uint32(got) != tt.want {
				t.Errorf("GetFor(%v) = %d, %v, want %d, %v", tt.sel, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestGetAllForAnyMatchesEverything(t *testing.T) {
	r := New(items(1, 2, 3, 4), false)

	if got := r.GetAllFor(Any); len(got) != 4 {
		t.Errorf("GetAllFor(Any) returned %d elements, want 4", len(got))
	}
	if got := r.GetAllFor(Focused); len(got) != 1 || got[0] != 4 {
		t.Errorf("GetAllFor(Focused) = %v, want [4]", got)
	}
	evens := r.GetAllFor(Condition(Query{Field: "even", Value: "true"}))
	if !slices.Equal(evens, items(2, 4)) {
		t.Errorf("GetAllFor(even) = %v, want [2 4]", evens)
	}
	if got := r.GetAllFor(Ident(42)); got != nil {
		t.Errorf("GetAllFor(missing) = %v, want nil", got)
	}

	var seen []item
	if n := r.ApplyFor(Any, func(e item) { seen = append(seen, e) }); n != 4 || len(seen) != 4 {
		t.Errorf("ApplyFor(Any) visited %d", n)
	}
}

func TestFocusForRecordsHistory(t *testing.T) {
	r := New(items(1, 2, 3, 4), true)

	r.FocusFor(Ident(1))
	r.FocusFor(Ident(2))
	r.FocusFor(Ident(1))
	if got, want := r.History(), []uint32{4, 1, 2}; !slices.Equal(got, want) {
		t.Fatalf("History() = %v, want %v", got, want)
	}

	r.FocusFor(Ident(4))
	if got, want := r.History(), []uint32{4, 2, 1}; !slices.Equal(got, want) {
		t.Fatalf("History() after refocus = %v, want %v", got, want)
	}

	if f, ok := r.FocusFor(Focused); !ok || f != 4 {
		t.Fatalf("FocusFor(Focused) = %d, %v", f, ok)
	}
	if _, ok := r.FocusFor(Ident(77)); ok {
		t.Fatalf("FocusFor(missing) should fail")
	}
	if focusedID(t, r) != 4 {
		t.Fatalf("failed focus changed the focused element")
	}

	r.ClearHistory()
	if h := r.History(); len(h) != 0 {
		t.Fatalf("ClearHistory left %v", h)
	}
	if _, ok := r.Unwind(); ok {
		t.Fatalf("Unwind after ClearHistory should fail")
	}

	plain := New(items(1, 2, 3), false)
	plain.FocusFor(First)
	if h := plain.History(); len(h) != 0 {
		t.Fatalf("non-unwindable ring recorded history %v", h)
	}
}

func TestHistoryIsBounded(t *testing.T) {
	var ids []uint32
	for i := uint32(1); i <= 40; i++ {
		ids = append(ids, i)
	}
	r := New(items(ids...), true)
	for i := range ids {
		r.FocusFor(Index(i))
	}
	if got := len(r.History()); got != MaxHistory {
		t.Fatalf("len(History()) = %d, want %d", got, MaxHistory)
	}
}

func TestRemoveFocusedRestoresFromHistory(t *testing.T) {
	r := New(items(1, 2, 3, 4), true)
	r.FocusFor(Ident(2))

	removed, ok := r.RemoveFor(Focused)
	if !ok || removed != 2 {
		t.Fatalf("RemoveFor(Focused) = %d, %v", removed, ok)
	}
	if got := focusedID(t, r); got != 4 {
		t.Fatalf("focus after removal = %d, want 4", got)
	}
	mustSync(t, r)

	plain := New(items(1, 2, 3, 4), false)
	plain.FocusFor(Ident(2))
	plain.RemoveFor(Focused)
	if got := focusedID(t, plain); got != 4 {
		t.Fatalf("non-unwindable focus after removal = %d, want last (4)", got)
	}
}

func TestRemoveAroundFocus(t *testing.T) {
	r := New(items(1, 2, 3, 4), false)
	r.FocusFor(Index(1))

	r.RemoveFor(Index(3))
	if got := focusedID(t, r); got != 2 {
		t.Fatalf("removing after focus moved it to %d", got)
	}
	r.RemoveFor(Index(0))
	if idx, _ := r.FocusedIndex(); idx != 0 || focusedID(t, r) != 2 {
		t.Fatalf("removing before focus: index %d, element %d", idx, focusedID(t, r))
	}
	r.RemoveFor(Focused)
	r.RemoveFor(Focused)
	if !r.IsEmpty() {
		t.Fatalf("ring should be empty, has %v", r.IDs())
	}
	if _, ok := r.RemoveFor(Any); ok {
		t.Fatalf("removing from an empty ring should fail")
	}
}

func TestRemoveRepeatedIndexDecrementsFocus(t *testing.T) {
	r := New(items(0, 10, 20, 30, 40, 50, 60), false)

	prev, _ := r.FocusedIndex()
	if prev != 6 {
		t.Fatalf("initial focus = %d, want 6", prev)
	}

	var removed []item
	for {
		e, ok := r.RemoveFor(Index(2))
		if !ok {
			break
		}
		removed = append(removed, e)
		idx, _ := r.FocusedIndex()
		if idx != prev-1 {
			t.Fatalf("after removing %d focus = %d, want %d", e, idx, prev-1)
		}
		prev = idx
		mustSync(t, r)
	}

	if want := items(20, 30, 40, 50, 60); !slices.Equal(removed, want) {
		t.Fatalf("removed %v, want %v", removed, want)
	}
	for _, e := range removed {
		if _, ok := r.IndexFor(Ident(e.ID())); ok {
			t.Errorf("removed id %d still indexed", e)
		}
	}
}

func TestInsertAt(t *testing.T) {
	tests := []struct {
		name string
		at   InsertPoint
		want []uint32
	}{
		{"front", Front, []uint32{9, 1, 2, 3}},
		{"back", Back, []uint32{1, 2, 3, 9}},
		{"before focused", BeforeFocused, []uint32{1, 2, 9, 3}},
		{"after focused", AfterFocused, []uint32{1, 2, 3, 9}},
		{"before index", BeforeIndex(1), []uint32{1, 9, 2, 3}},
		{"after index", AfterIndex(0), []uint32{1, 9, 2, 3}},
		{"after index past end", AfterIndex(10), []uint32{1, 2, 3, 9}},
		{"before ident", BeforeIdent(1), []uint32{9, 1, 2, 3}},
		{"after ident", AfterIdent(2), []uint32{1, 2, 9, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(items(1, 2, 3), false)
			if !r.InsertAt(tt.at, 9) {
				t.Fatalf("InsertAt failed")
			}
			if got := r.IDs(); !slices.Equal(got, tt.want) {
				t.Fatalf("IDs() = %v, want %v", got, tt.want)
			}
			if got := focusedID(t, r); got != 9 {
				t.Fatalf("focus = %d, want the inserted element", got)
			}
			mustSync(t, r)
		})
	}

	r := New(items(1, 2, 3), false)
	if r.InsertAt(AfterIdent(42), 9) {
		t.Errorf("insert after a missing ident should fail")
	}
	if r.InsertAt(Back, 2) {
		t.Errorf("inserting a duplicate id should fail")
	}
	if got := r.IDs(); !slices.Equal(got, []uint32{1, 2, 3}) {
		t.Errorf("failed inserts changed the ring: %v", got)
	}
}

// Insert focuses the new element, so removing it again only restores the old
// focus through history. The ring has to be unwindable for the roundtrip.
func TestInsertRemoveRoundtrip(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.Intn(10)
		ids := make([]uint32, n)
		for i := range ids {
			ids[i] = uint32(i + 1)
		}
		r := New(items(ids...), true)
		r.FocusFor(Index(rng.Intn(n)))
		before := r.IDs()
		beforeFocus := focusedID(t, r)

		i := rng.Intn(n)
		if !r.InsertAt(AfterIndex(i), 1000) {
			t.Fatalf("insert failed")
		}
		got, ok := r.RemoveFor(Index(i + 1))
		if !ok || got != 1000 {
			t.Fatalf("RemoveFor(Index(%d)) = %d, %v, want 1000", i+1, got, ok)
		}
		if after := r.IDs(); !slices.Equal(after, before) {
			t.Fatalf("sequence %v, want %v", after, before)
		}
		if f := focusedID(t, r); f != beforeFocus {
			t.Fatalf("focus %d, want %d", f, beforeFocus)
		}
	}
}

func TestRemoveInsertedWithoutHistoryFocusesLast(t *testing.T) {
	r := New(items(1, 2, 3, 4), false)
	r.FocusFor(Index(1))
	if !r.InsertAt(AfterIndex(0), 9) {
		t.Fatalf("insert failed")
	}
	if _, ok := r.RemoveFor(Index(1)); !ok {
		t.Fatalf("remove failed")
	}
	if got := r.IDs(); !slices.Equal(got, []uint32{1, 2, 3, 4}) {
		t.Fatalf("sequence %v, want [1 2 3 4]", got)
	}
	if f := focusedID(t, r); f != 4 {
		t.Fatalf("focus %d, want 4 (last element, no history)", f)
	}
	mustSync(t, r)
}

func TestRotateKeepsFocusedElement(t *testing.T) {
	r := New(items(1, 2, 3, 4), false)

	r.Rotate(Forward)
	if got := r.IDs(); !slices.Equal(got, []uint32{4, 1, 2, 3}) {
		t.Fatalf("Rotate(Forward) = %v", got)
	}
	if idx, _ := r.FocusedIndex(); idx != 0 || focusedID(t, r) != 4 {
		t.Fatalf("focus after forward rotation: index %d element %d", idx, focusedID(t, r))
	}

	r.Rotate(Backward)
	if got := r.IDs(); !slices.Equal(got, []uint32{1, 2, 3, 4}) {
		t.Fatalf("Rotate(Backward) = %v", got)
	}
	if focusedID(t, r) != 4 {
		t.Fatalf("focus after backward rotation = %d", focusedID(t, r))
	}

	r.RotateBy(6, Forward)
	if got := r.IDs(); !slices.Equal(got, []uint32{3, 4, 1, 2}) {
		t.Fatalf("RotateBy(6, Forward) = %v", got)
	}
	mustSync(t, r)
}

func TestRotateByNormalizesStep(t *testing.T) {
	tests := []struct {
		name string
		step int
		dir  Direction
		want []uint32
	}{
		{"negative forward", -1, Forward, []uint32{2, 3, 1}},
		{"negative backward", -1, Backward, []uint32{3, 1, 2}},
		{"larger than len", 4, Forward, []uint32{3, 1, 2}},
		{"negative larger than len", -5, Forward, []uint32{3, 1, 2}},
		{"multiple of len", -3, Backward, []uint32{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(items(1, 2, 3), false)
			r.RotateBy(tt.step, tt.dir)
			if got := r.IDs(); !slices.Equal(got, tt.want) {
				t.Fatalf("RotateBy(%d, %v) = %v, want %v", tt.step, tt.dir, got, tt.want)
			}
			if f := focusedID(t, r); f != 3 {
				t.Fatalf("focus %d, want 3", f)
			}
			mustSync(t, r)
		})
	}
}

func TestRotateIsPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for trial := 0; trial < 100; trial++ {
		n := 1 + rng.Intn(8)
		ids := make([]uint32, n)
		for i := range ids {
			ids[i] = uint32(rng.Intn(1000)*10 + i)
		}
		r := New(items(ids...), false)
		r.FocusFor(Index(rng.Intn(n)))
		before, focus := r.IDs(), focusedID(t, r)

		r.Rotate(Forward)
		r.Rotate(Backward)
		if got := r.IDs(); !slices.Equal(got, before) {
			t.Fatalf("rotate forward+backward = %v, want %v", got, before)
		}
		if focusedID(t, r) != focus {
			t.Fatalf("focus moved from %d to %d", focus, focusedID(t, r))
		}
	}
}

func TestCycleFocused(t *testing.T) {
	r := New(items(1, 2, 3), true)

	if e, _ := r.CycleFocused(Forward); e != 1 {
		t.Fatalf("cycle forward from last = %d, want 1 (wrap)", e)
	}
	if e, _ := r.CycleFocused(Backward); e != 3 {
		t.Fatalf("cycle backward from first = %d, want 3 (wrap)", e)
	}
	if e, _ := r.CycleFocused(Backward); e != 2 {
		t.Fatalf("cycle backward = %d, want 2", e)
	}
	if got := r.IDs(); !slices.Equal(got, []uint32{1, 2, 3}) {
		t.Fatalf("cycling reordered elements: %v", got)
	}
	if got, want := r.History(), []uint32{1, 3}; !slices.Equal(got, want) {
		t.Fatalf("History() = %v, want %v", got, want)
	}

	if e, ok := r.Unwind(); !ok || e != 3 {
		t.Fatalf("Unwind() = %d, %v, want 3", e, ok)
	}
}

func TestDragFocusedForwardFullCircle(t *testing.T) {
	r := New(items(1, 2, 3, 4), false)
	steps := [][]uint32{
		{4, 1, 2, 3},
		{1, 4, 2, 3},
		{1, 2, 4, 3},
		{1, 2, 3, 4},
	}
	for i, want := range steps {
		e, ok := r.DragFocused(Forward)
		if !ok || e != 4 {
			t.Fatalf("step %d: DragFocused returned %d, %v", i, e, ok)
		}
		if got := r.IDs(); !slices.Equal(got, want) {
			t.Fatalf("step %d: %v, want %v", i, got, want)
		}
		if focusedID(t, r) != 4 {
			t.Fatalf("step %d: focus on %d", i, focusedID(t, r))
		}
		mustSync(t, r)
	}
}

func TestDragFocusedBackwardFullCircle(t *testing.T) {
	r := New(items(1, 2, 3, 4), false)
	steps := [][]uint32{
		{1, 2, 4, 3},
		{1, 4, 2, 3},
		{4, 1, 2, 3},
		{1, 2, 3, 4},
	}
	for i, want := range steps {
		r.DragFocused(Backward)
		if got := r.IDs(); !slices.Equal(got, want) {
			t.Fatalf("step %d: %v, want %v", i, got, want)
		}
		if focusedID(t, r) != 4 {
			t.Fatalf("step %d: focus on %d", i, focusedID(t, r))
		}
	}
}

func TestWillWrapFrom(t *testing.T) {
	r := New(items(1, 2, 3, 4), false)
	tests := []struct {
		idx  int
		dir  Direction
		want bool
	}{
		{3, Forward, true},
		{2, Forward, false},
		{0, Backward, true},
		{1, Backward, false},
	}
	for _, tt := range tests {
		if got := r.WillWrapFrom(tt.idx, tt.dir); got != tt.want {
			t.Errorf("WillWrapFrom(%d, %v) = %v, want %v", tt.idx, tt.dir, got, tt.want)
		}
	}
	if e, _ := r.NextElement(Forward); e != 1 {
		t.Errorf("NextElement(Forward) = %d, want 1", e)
	}
}

func TestStackAfterFocusAndSwap(t *testing.T) {
	r := New(items(1, 2, 3, 4), false)
	r.FocusFor(Index(1))
	if got, want := r.StackAfterFocus(), []uint32{1, 3, 4, 2}; !slices.Equal(got, want) {
		t.Fatalf("StackAfterFocus() = %v, want %v", got, want)
	}

	if !r.Swap(Focused, Last) {
		t.Fatalf("Swap failed")
	}
	if got := r.IDs(); !slices.Equal(got, []uint32{1, 4, 3, 2}) {
		t.Fatalf("after swap %v", got)
	}
	if focusedID(t, r) != 2 {
		t.Fatalf("focus should follow the swapped element, got %d", focusedID(t, r))
	}
	if r.Swap(Ident(9), First) {
		t.Fatalf("swap with a missing element should fail")
	}

	r.Clear()
	if !r.IsEmpty() || len(r.History()) != 0 {
		t.Fatalf("Clear left %v", r.IDs())
	}
}

func TestSyncInvariantUnderRandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	r := New(items(1, 2, 3), true)
	next := uint32(100)
	points := []func() InsertPoint{
		func() InsertPoint { return Front },
		func() InsertPoint { return Back },
		func() InsertPoint { return BeforeFocused },
		func() InsertPoint { return AfterFocused },
		func() InsertPoint { return BeforeIndex(rng.Intn(8)) },
		func() InsertPoint { return AfterIndex(rng.Intn(8)) },
	}
	dir := func() Direction { return Direction(rng.Intn(2)) }

	for step := 0; step < 2000; step++ {
		switch rng.Intn(7) {
		case 0, 1:
			r.InsertAt(points[rng.Intn(len(points))](), item(next))
			next++
		case 2:
			r.RemoveFor(Index(rng.Intn(r.Len() + 1)))
		case 3:
			r.Rotate(dir())
		case 4:
			r.DragFocused(dir())
		case 5:
			r.CycleFocused(dir())
		case 6:
			r.Swap(Index(rng.Intn(r.Len()+1)), Focused)
		}
		mustSync(t, r)
		if idx, ok := r.FocusedIndex(); r.Len() > 0 && (!ok || idx >= r.Len()) {
			t.Fatalf("step %d: focus %d out of range for %d elements", step, idx, r.Len())
		}
	}
}
