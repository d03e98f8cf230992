package ring

import "fmt"

// Direction is the step direction for cycling, rotating and dragging.
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// ParseDirection accepts next/prev as well as forward/backward.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "forward", "next":
		return Forward, nil
	case "backward", "prev":
		return Backward, nil
	}
	return Forward, fmt.Errorf("invalid cycle direction %q", s)
}

// Query describes a condition without capturing any state. Elements that
// implement Matcher decide what a Field/Value pair means for them.
type Query struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (q Query) String() string {
	return q.Field + "=" + q.Value
}

// Matcher is implemented by elements that can be selected by Condition.
type Matcher interface {
	Match(q Query) bool
}

type selectorKind uint8

const (
	selAny selectorKind = iota
	selFocused
	selFirst
	selLast
	selIndex
	selIdent
	selCondition
)

// Selector names one element, or a set of elements, of a Ring.
//
// Any and Focused resolve to the same element for single-result queries,
// but Any matches every element in GetAllFor.
type Selector struct {
	kind  selectorKind
	index int
	ident uint32
	query Query
}

var (
	Any     = Selector{kind: selAny}
	Focused = Selector{kind: selFocused}
	First   = Selector{kind: selFirst}
	Last    = Selector{kind: selLast}
)

// Index selects the element at position i.
func Index(i int) Selector {
	return Selector{kind: selIndex, index: i}
}

// Ident selects the element whose ID is id.
func Ident(id uint32) Selector {
	return Selector{kind: selIdent, ident: id}
}

// Condition selects the first element, in ring order, matching q.
func Condition(q Query) Selector {
	return Selector{kind: selCondition, query: q}
}

func (s Selector) String() string {
	switch s.kind {
	case selAny:
		return "any"
	case selFocused:
		return "focused"
	case selFirst:
		return "first"
	case selLast:
		return "last"
	case selIndex:
		return fmt.Sprintf("index(%d)", s.index)
	case selIdent:
		return fmt.Sprintf("ident(%#x)", s.ident)
	case selCondition:
		return fmt.Sprintf("condition(%s)", s.query)
	}
	return "?"
}

type insertKind uint8

const (
	insFront insertKind = iota
	insBack
	insBeforeFocused
	insAfterFocused
	insBeforeIndex
	insAfterIndex
	insBeforeIdent
	insAfterIdent
)

// InsertPoint tells InsertAt where a new element goes.
type InsertPoint struct {
	kind  insertKind
	index int
	ident uint32
}

var (
	Front         = InsertPoint{kind: insFront}
	Back          = InsertPoint{kind: insBack}
	BeforeFocused = InsertPoint{kind: insBeforeFocused}
	AfterFocused  = InsertPoint{kind: insAfterFocused}
)

func BeforeIndex(i int) InsertPoint {
	return InsertPoint{kind: insBeforeIndex, index: i}
}

func AfterIndex(i int) InsertPoint {
	return InsertPoint{kind: insAfterIndex, index: i}
}

func BeforeIdent(id uint32) InsertPoint {
	return InsertPoint{kind: insBeforeIdent, ident: id}
}

func AfterIdent(id uint32) InsertPoint {
	return InsertPoint{kind: insAfterIdent, ident: id}
}
