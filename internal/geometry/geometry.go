// Package geometry holds the rectangle arithmetic and the directional
// predicates the tiling layer uses to place and navigate windows.
package geometry

import "fmt"

// Point is a position in root window coordinates.
type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Dimension is a width and height in pixels.
type Dimension struct {
	W uint `json:"width" yaml:"width"`
	H uint `json:"height" yaml:"height"`
}

// Rectangle is a top-left corner plus a size.
type Rectangle struct {
	Point
	Dimension
}

// Rect builds a Rectangle from its four components.
func Rect(x, y int, w, h uint) Rectangle {
	return Rectangle{Point: Point{X: x, Y: y}, Dimension: Dimension{W: w, H: h}}
}

func (r Rectangle) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.W, r.H, r.X, r.Y)
}

// Area returns w*h.
func (r Rectangle) Area() uint {
	return r.W * r.H
}

// IsZero reports whether the rectangle has no area.
func (r Rectangle) IsZero() bool {
	return r.W == 0 || r.H == 0
}

// Equivalent reports whether both rectangles share position and size.
func (r Rectangle) Equivalent(o Rectangle) bool {
	return r.Point == o.Point && r.Dimension == o.Dimension
}

func (r Rectangle) TopRight() Point {
	return Point{X: r.X + int(r.W), Y: r.Y}
}

func (r Rectangle) BottomLeft() Point {
	return Point{X: r.X, Y: r.Y + int(r.H)}
}

func (r Rectangle) BottomRight() Point {
	return Point{X: r.X + int(r.W), Y: r.Y + int(r.H)}
}

// Center returns the midpoint, rounded toward the top-left.
func (r Rectangle) Center() Point {
	return Point{X: r.X + int(r.W/2), Y: r.Y + int(r.H/2)}
}

// maxCorner is the last pixel covered by the rectangle.
func (r Rectangle) maxCorner() Point {
	return Point{X: r.X + int(r.W) - 1, Y: r.Y + int(r.H) - 1}
}

// IsInside reports whether p lies within r. Both upper bounds are inclusive,
// so a point on the right or bottom edge counts as inside.
func (r Rectangle) IsInside(p Point) bool {
	return p.X >= r.X && p.X <= r.X+int(r.W) &&
		p.Y >= r.Y && p.Y <= r.Y+int(r.H)
}

// Contains reports whether o lies entirely within r.
func (r Rectangle) Contains(o Rectangle) bool {
	return r.IsInside(o.Point) && r.IsInside(o.BottomRight())
}

// Occludes is a cheap overlap test: either top-left corner lies inside the
// other rectangle. It misses crossing rectangles whose corners are outside.
func (r Rectangle) Occludes(o Rectangle) bool {
	return r.IsInside(o.Point) || o.IsInside(r.Point)
}

// SplitAtWidth cuts r at a horizontal offset into a left and right part.
// Offsets past the right edge are clamped.
func (r Rectangle) SplitAtWidth(width uint) (Rectangle, Rectangle) {
	if width > r.W {
		width = r.W
	}
	left := Rectangle{Point: r.Point, Dimension: Dimension{W: width, H: r.H}}
	right := Rect(r.X+int(width), r.Y, r.W-width, r.H)
	return left, right
}

// SplitAtHeight cuts r at a vertical offset into a top and bottom part.
func (r Rectangle) SplitAtHeight(height uint) (Rectangle, Rectangle) {
	if height > r.H {
		height = r.H
	}
	top := Rectangle{Point: r.Point, Dimension: Dimension{W: r.W, H: height}}
	bottom := Rect(r.X, r.Y+int(height), r.W, r.H-height)
	return top, bottom
}

// Clamp grows r so that it is at least floor in both dimensions.
func (r Rectangle) Clamp(floor Dimension) Rectangle {
	if r.W < floor.W {
		r.W = floor.W
	}
	if r.H < floor.H {
		r.H = floor.H
	}
	return r
}

// Add outsets r by p on every side.
func (r Rectangle) Add(p Padding) Rectangle {
	return Rect(
		r.X-int(p.Left),
		r.Y-int(p.Top),
		r.W+p.Left+p.Right,
		r.H+p.Top+p.Bottom,
	)
}

// Sub insets r by p on every side. Sizes saturate at zero.
func (r Rectangle) Sub(p Padding) Rectangle {
	return Rect(
		r.X+int(p.Left),
		r.Y+int(p.Top),
		satSub(r.W, p.Left+p.Right),
		satSub(r.H, p.Top+p.Bottom),
	)
}

func satSub(a, b uint) uint {
	if b >= a {
		return 0
	}
	return a - b
}

// Padding is an amount to add around or remove from each edge of a
// rectangle. Window frames and borders use it as extents.
type Padding struct {
	Top    uint `json:"top" yaml:"top"`
	Right  uint `json:"right" yaml:"right"`
	Bottom uint `json:"bottom" yaml:"bottom"`
	Left   uint `json:"left" yaml:"left"`
}

// Extents is the name X uses for frame padding.
type Extents = Padding

// Uniform returns a Padding of n on every side.
func Uniform(n uint) Padding {
	return Padding{Top: n, Right: n, Bottom: n, Left: n}
}

// Add sums two paddings edge by edge.
func (p Padding) Add(o Padding) Padding {
	return Padding{
		Top:    p.Top + o.Top,
		Right:  p.Right + o.Right,
		Bottom: p.Bottom + o.Bottom,
		Left:   p.Left + o.Left,
	}
}

// Horizontal is the combined left and right padding.
func (p Padding) Horizontal() uint { return p.Left + p.Right }

// Vertical is the combined top and bottom padding.
func (p Padding) Vertical() uint { return p.Top + p.Bottom }
