package geometry

// BoundaryDistance is the gap between the edge of r facing dir and the
// opposite edge of o, measured on the axis dir runs along.
func (r Rectangle) BoundaryDistance(o Rectangle, dir Direction) uint {
	r1max := r.maxCorner()
	r2max := o.maxCorner()

	var d int
	switch dir {
	case North:
		d = r2max.Y - r.Y
	case West:
		d = r2max.X - r.X
	case South:
		d = o.Y - r1max.Y
	case East:
		d = o.X - r1max.X
	}
	if d < 0 {
		d = -d
	}
	return uint(d)
}

// OnDirSide reports whether o sits in direction dir of r.
//
// The primary axis is checked first. Low only rejects o when it lies
// entirely on the wrong side of r; High also requires o's leading edge to be
// strictly past r's corresponding edge. Every pair accepted by High is
// accepted by Low. The perpendicular spans must then overlap or nest.
func (r Rectangle) OnDirSide(o Rectangle, dir Direction, t Tightness) bool {
	r1max := r.maxCorner()
	r2max := o.maxCorner()

	switch dir {
	case North:
		if o.Y > r1max.Y {
			return false
		}
	case West:
		if o.X > r1max.X {
			return false
		}
	case South:
		if r2max.Y < r.Y {
			return false
		}
	case East:
		if r2max.X < r.X {
			return false
		}
	}

	if t == High {
		switch dir {
		case North:
			if o.Y >= r.Y {
				return false
			}
		case West:
			if o.X >= r.X {
				return false
			}
		case South:
			if r2max.Y <= r1max.Y {
				return false
			}
		case East:
			if r2max.X <= r1max.X {
				return false
			}
		}
	}

	switch dir {
	case North, South:
		return spansMeet(r.X, r1max.X, o.X, r2max.X)
	default:
		return spansMeet(r.Y, r1max.Y, o.Y, r2max.Y)
	}
}

// spansMeet reports whether [oLo, oHi] overlaps, sits inside, or encloses
// [lo, hi].
func spansMeet(lo, hi, oLo, oHi int) bool {
	return (oLo >= lo && oLo <= hi) ||
		(oHi >= lo && oHi <= hi) ||
		(lo > oLo && lo < oHi)
}

// RectCmp orders candidates. Rectangles that do not share a row compare by
// vertical position, then by horizontal position; overlapping ones compare
// by area, larger first.
func (r Rectangle) RectCmp(o Rectangle) int {
	switch {
	case r.Y >= o.Y+int(o.H):
		return 1
	case o.Y >= r.Y+int(r.H):
		return -1
	case r.X >= o.X+int(o.W):
		return 1
	case o.X >= r.X+int(r.W):
		return -1
	}
	return int(o.Area()) - int(r.Area())
}
