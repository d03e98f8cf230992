// Package tree implements the binary space partitioning tree that divides
// a desktop between its tiled windows.
//
// Nodes live in an arena and refer to each other by NodeID, so parent and
// child links never form reference cycles and relinking on removal is a
// constant-time operation. A node is either a leaf holding one window or a
// split with exactly two children.
package tree

import (
	"fmt"
	"strings"

	"github.com/lmburns/lwm/internal/geometry"
)

// NodeID is a slot in the arena. IDs of removed nodes are reused.
type NodeID int

// NoNode marks a missing link.
const NoNode NodeID = -1

// SplitType is the orientation of the boundary between two children.
type SplitType int

const (
	// Horizontal boundaries stack the children top and bottom.
	Horizontal SplitType = iota
	// Vertical boundaries place the children side by side.
	Vertical
)

func (s SplitType) String() string {
	if s == Vertical {
		return "vertical"
	}
	return "horizontal"
}

func (s SplitType) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *SplitType) UnmarshalText(b []byte) error {
	switch string(b) {
	case "horizontal":
		*s = Horizontal
	case "vertical":
		*s = Vertical
	default:
		return fmt.Errorf("invalid split type %q", b)
	}
	return nil
}

func (s SplitType) opposite() SplitType {
	if s == Vertical {
		return Horizontal
	}
	return Vertical
}

// Polarity picks the child a new window becomes when no presel exists.
type Polarity int

const (
	FirstChild Polarity = iota
	SecondChild
)

func (p Polarity) String() string {
	if p == FirstChild {
		return "first"
	}
	return "second"
}

func ParsePolarity(s string) (Polarity, error) {
	switch strings.ToLower(s) {
	case "first", "first_child":
		return FirstChild, nil
	case "second", "second_child":
		return SecondChild, nil
	}
	return SecondChild, fmt.Errorf("invalid polarity %q (want first or second)", s)
}

// Scheme chooses the split for insertions without a presel.
type Scheme int

const (
	LongestSide Scheme = iota
	Alternate
	Spiral
)

func (s Scheme) String() string {
	switch s {
	case Alternate:
		return "alternate"
	case Spiral:
		return "spiral"
	}
	return "longest_side"
}

func ParseScheme(s string) (Scheme, error) {
	switch strings.ToLower(s) {
	case "longest_side", "longest-side", "longestside":
		return LongestSide, nil
	case "alternate":
		return Alternate, nil
	case "spiral":
		return Spiral, nil
	}
	return LongestSide, fmt.Errorf("invalid automatic scheme %q", s)
}

// Flip mirrors a subtree across one axis.
type Flip int

const (
	FlipHorizontal Flip = iota
	FlipVertical
)

// Flag is one of the boolean node attributes toggled by the user.
type Flag int

const (
	FlagHidden Flag = iota
	FlagSticky
	FlagPrivate
	FlagLocked
	FlagMarked
)

var flagNames = map[string]Flag{
	"hidden":  FlagHidden,
	"sticky":  FlagSticky,
	"private": FlagPrivate,
	"locked":  FlagLocked,
	"marked":  FlagMarked,
}

func ParseFlag(s string) (Flag, error) {
	f, ok := flagNames[strings.ToLower(s)]
	if !ok {
		return FlagHidden, fmt.Errorf("unknown node flag %q", s)
	}
	return f, nil
}

func (f Flag) String() string {
	for name, v := range flagNames {
		if v == f {
			return name
		}
	}
	return fmt.Sprintf("Flag(%d)", int(f))
}

type Flags struct {
	Hidden  bool `json:"hidden"`
	Sticky  bool `json:"sticky"`
	Private bool `json:"private"`
	Locked  bool `json:"locked"`
	Marked  bool `json:"marked"`
}

func (f *Flags) ptr(flag Flag) *bool {
	switch flag {
	case FlagHidden:
		return &f.Hidden
	case FlagSticky:
		return &f.Sticky
	case FlagPrivate:
		return &f.Private
	case FlagLocked:
		return &f.Locked
	case FlagMarked:
		return &f.Marked
	}
	return nil
}

// Get returns the value of flag.
func (f Flags) Get(flag Flag) bool {
	if p := f.ptr(flag); p != nil {
		return *p
	}
	return false
}

// Constraints is the smallest size a node can be laid out at.
type Constraints struct {
	MinW uint `json:"min_width"`
	MinH uint `json:"min_height"`
}

// Presel is a pending split on a leaf, consumed by the next insertion.
type Presel struct {
	Ratio    float64            `json:"ratio"`
	Dir      geometry.Direction `json:"direction"`
	Feedback uint32             `json:"feedback,omitempty"`
}

func DefaultPresel() Presel {
	return Presel{Ratio: 0.5, Dir: geometry.East}
}

// Node is a copy of one arena slot. Mutate the tree through Tree methods.
type Node struct {
	ID          NodeID             `json:"id"`
	Parent      NodeID             `json:"parent"`
	First       NodeID             `json:"first_child"`
	Second      NodeID             `json:"second_child"`
	SplitType   SplitType          `json:"split_type"`
	SplitRatio  float64            `json:"split_ratio"`
	Presel      *Presel            `json:"presel,omitempty"`
	Rect        geometry.Rectangle `json:"rectangle"`
	Constraints Constraints        `json:"constraints"`
	Vacant      bool               `json:"vacant"`
	Flags
	Window uint32 `json:"window,omitempty"`

	detached bool
	live     bool
}

// IsLeaf reports whether the node holds a window rather than two children.
func (n Node) IsLeaf() bool {
	return n.First == NoNode && n.Second == NoNode
}

// Placement is a leaf's target geometry after a layout pass.
type Placement struct {
	Node   NodeID
	Window uint32
	Rect   geometry.Rectangle
}
