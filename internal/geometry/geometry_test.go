package geometry

import (
	"math/rand"
	"testing"
)

func TestIsInsideInclusiveEdges(t *testing.T) {
	r := Rect(10, 10, 20, 20)
	tests := []struct {
		p    Point
		want bool
	}{
		{Point{10, 10}, true},
		{Point{30, 30}, true},
		{Point{30, 10}, true},
		{Point{31, 10}, false},
		{Point{9, 15}, false},
		{Point{15, 31}, false},
	}
	for _, tt := range tests {
		if got := r.IsInside(tt.p); got != tt.want {
			t.Errorf("IsInside(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestContainsAndOccludes(t *testing.T) {
	outer := Rect(0, 0, 100, 100)
	inner := Rect(10, 10, 20, 20)
	crossing := Rect(90, 90, 50, 50)
	apart := Rect(200, 200, 10, 10)

	if !outer.Contains(inner) {
		t.Errorf("outer should contain inner")
	}
	if outer.Contains(crossing) {
		t.Errorf("outer should not contain crossing")
	}
	if !outer.Occludes(crossing) || !crossing.Occludes(outer) {
		t.Errorf("crossing rectangles should occlude each other")
	}
	if outer.Occludes(apart) {
		t.Errorf("disjoint rectangles should not occlude")
	}
}

func TestCorners(t *testing.T) {
	r := Rect(5, 7, 10, 20)
	if got, want := r.TopRight(), (Point{15, 7}); got != want {
		t.Errorf("TopRight = %v, want %v", got, want)
	}
	if got, want := r.BottomLeft(), (Point{5, 27}); got != want {
		t.Errorf("BottomLeft = %v, want %v", got, want)
	}
	if got, want := r.BottomRight(), (Point{15, 27}); got != want {
		t.Errorf("BottomRight = %v, want %v", got, want)
	}
	if got := r.Area(); got != 200 {
		t.Errorf("Area = %d, want 200", got)
	}
	if !Rect(1, 1, 0, 4).IsZero() {
		t.Errorf("zero width should be zero")
	}
}

func TestBoundaryDistance(t *testing.T) {
	self := Rect(100, 100, 100, 100)
	tests := []struct {
		name  string
		other Rectangle
		dir   Direction
		want  uint
	}{
		{"adjacent north", Rect(100, 0, 100, 100), North, 1},
		{"adjacent east", Rect(200, 100, 100, 100), East, 1},
		{"gap south", Rect(100, 300, 100, 100), South, 101},
		{"gap west", Rect(0, 100, 50, 100), West, 51},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := self.BoundaryDistance(tt.other, tt.dir); got != tt.want {
				t.Errorf("BoundaryDistance(%v, %v) = %d, want %d", tt.other, tt.dir, got, tt.want)
			}
		})
	}
}

func TestOnDirSide(t *testing.T) {
	self := Rect(100, 100, 100, 100)
	tests := []struct {
		name  string
		other Rectangle
		dir   Direction
		low   bool
		high  bool
	}{
		{"above", Rect(100, 0, 100, 100), North, true, true},
		{"above is not south", Rect(100, 0, 100, 100), South, false, false},
		{"right", Rect(200, 100, 100, 100), East, true, true},
		{"right is not west", Rect(200, 100, 100, 100), West, false, false},
		{"overlapping above", Rect(150, 50, 100, 100), North, true, true},
		{"overlapping below only low", Rect(100, 150, 100, 100), North, true, false},
		{"no horizontal overlap", Rect(300, 0, 50, 50), North, false, false},
		{"wide rectangle encloses span", Rect(0, 0, 500, 50), North, true, true},
		{"below", Rect(120, 250, 10, 10), South, true, true},
		{"left", Rect(0, 120, 50, 10), West, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := self.OnDirSide(tt.other, tt.dir, Low); got != tt.low {
				t.Errorf("OnDirSide(%v, %v, low) = %v, want %v", tt.other, tt.dir, got, tt.low)
			}
			if got := self.OnDirSide(tt.other, tt.dir, High); got != tt.high {
				t.Errorf("OnDirSide(%v, %v, high) = %v, want %v", tt.other, tt.dir, got, tt.high)
			}
		})
	}
}

func TestOnDirSideHighImpliesLow(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	randRect := func() Rectangle {
		return Rect(rng.Intn(400)-100, rng.Intn(400)-100, uint(rng.Intn(200)), uint(rng.Intn(200)))
	}
	for i := 0; i < 5000; i++ {
		a, b := randRect(), randRect()
		for _, dir := range []Direction{North, South, East, West} {
			if a.OnDirSide(b, dir, High) && !a.OnDirSide(b, dir, Low) {
				t.Fatalf("%v.OnDirSide(%v, %v): high accepted but low rejected", a, b, dir)
			}
		}
	}
}

func TestRectCmp(t *testing.T) {
	a := Rect(0, 0, 10, 10)
	below := Rect(0, 20, 10, 10)
	right := Rect(20, 0, 10, 10)
	big := Rect(5, 5, 20, 20)

	if got := a.RectCmp(below); got != -1 {
		t.Errorf("a.RectCmp(below) = %d, want -1", got)
	}
	if got := below.RectCmp(a); got != 1 {
		t.Errorf("below.RectCmp(a) = %d, want 1", got)
	}
	if got := a.RectCmp(right); got != -1 {
		t.Errorf("a.RectCmp(right) = %d, want -1", got)
	}
	if got := a.RectCmp(big); got != 300 {
		t.Errorf("a.RectCmp(big) = %d, want 300", got)
	}
}

func TestSplitAtWidth(t *testing.T) {
	r := Rect(10, 20, 100, 50)
	left, right := r.SplitAtWidth(30)
	if want := Rect(10, 20, 30, 50); !left.Equivalent(want) {
		t.Errorf("left = %v, want %v", left, want)
	}
	if want := Rect(40, 20, 70, 50); !right.Equivalent(want) {
		t.Errorf("right = %v, want %v", right, want)
	}

	left, right = r.SplitAtWidth(500)
	if left.W != 100 || right.W != 0 {
		t.Errorf("oversized split = %v, %v", left, right)
	}

	top, bottom := r.SplitAtHeight(20)
	if want := Rect(10, 40, 100, 30); !bottom.Equivalent(want) || top.H != 20 {
		t.Errorf("SplitAtHeight = %v, %v", top, bottom)
	}
}

func TestPaddingArithmetic(t *testing.T) {
	r := Rect(10, 10, 100, 100)
	p := Padding{Top: 1, Right: 2, Bottom: 3, Left: 4}

	out := r.Add(p)
	if want := Rect(6, 9, 106, 104); !out.Equivalent(want) {
		t.Errorf("Add = %v, want %v", out, want)
	}
	if back := out.Sub(p); !back.Equivalent(r) {
		t.Errorf("Sub(Add(r)) = %v, want %v", back, r)
	}

	small := Rect(0, 0, 10, 10).Sub(Uniform(8))
	if small.W != 0 || small.H != 0 {
		t.Errorf("oversized inset should saturate, got %v", small)
	}
}

func TestParseDirection(t *testing.T) {
	for _, s := range []string{"north", "South", " east ", "w"} {
		if _, err := ParseDirection(s); err != nil {
			t.Errorf("ParseDirection(%q): %v", s, err)
		}
	}
	if _, err := ParseDirection("sideways"); err == nil {
		t.Errorf("expected error for invalid direction")
	}
	for _, d := range []Direction{North, South, East, West} {
		if d.Opposite().Opposite() != d {
			t.Errorf("Opposite not involutive for %v", d)
		}
	}
}
