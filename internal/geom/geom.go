// Package geom holds the axis-aligned rectangle primitives used by the
// packing engine. Coordinates are millimeters with the origin at the sheet's
// lower-left corner: x runs along the sheet length, y along its width.
package geom

import "math"

// Epsilon is the tolerance used for every dimensional comparison.
const Epsilon = 0.001

// Rect is an axis-aligned rectangle anchored at its lower-left corner.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
}

func (r Rect) Area() float64  { return r.Length * r.Width }
func (r Rect) Right() float64 { return r.X + r.Length }
func (r Rect) Top() float64   { return r.Y + r.Width }

// Fits reports whether a length x width rectangle fits inside r without rotation.
func (r Rect) Fits(length, width float64) bool {
	return length <= r.Length+Epsilon && width <= r.Width+Epsilon
}

// Degenerate reports whether r has no usable area.
func (r Rect) Degenerate() bool {
	return r.Length <= Epsilon || r.Width <= Epsilon
}

// Overlaps reports whether a and b share a positive-area region.
// Rectangles that only touch along an edge or a corner do not overlap.
func Overlaps(a, b Rect) bool {
	return a.X < b.Right()-Epsilon && b.X < a.Right()-Epsilon &&
		a.Y < b.Top()-Epsilon && b.Y < a.Top()-Epsilon
}

// Contains reports whether inner lies entirely within outer.
func Contains(outer, inner Rect) bool {
	return inner.X >= outer.X-Epsilon && inner.Y >= outer.Y-Epsilon &&
		inner.Right() <= outer.Right()+Epsilon && inner.Top() <= outer.Top()+Epsilon
}

// IntersectionArea returns the area shared by a and b, zero when disjoint.
func IntersectionArea(a, b Rect) float64 {
	dx := math.Min(a.Right(), b.Right()) - math.Max(a.X, b.X)
	dy := math.Min(a.Top(), b.Top()) - math.Max(a.Y, b.Y)
	if dx <= 0 || dy <= 0 {
		return 0
	}
	return dx * dy
}

// SplitRule chooses the direction of the guillotine cut that separates the
// two residuals left after a placement.
type SplitRule string

const (
	// SplitMaxArea keeps the larger residual as large as possible.
	SplitMaxArea SplitRule = "max-area"
	// SplitShorterLeftover cuts along the shorter leftover axis.
	SplitShorterLeftover SplitRule = "shorter-leftover"
	// SplitLongerLeftover cuts along the longer leftover axis.
	SplitLongerLeftover SplitRule = "longer-leftover"
)

// Valid reports whether s names a known split rule.
func (s SplitRule) Valid() bool {
	switch s {
	case SplitMaxArea, SplitShorterLeftover, SplitLongerLeftover:
		return true
	}
	return false
}

// Subtract removes a length x width rectangle anchored at region's lower-left
// corner and returns the zero to two residual rectangles, right residual
// first. The residuals and the removed rectangle tile region exactly.
func Subtract(region Rect, length, width float64, rule SplitRule) []Rect {
	length = math.Min(length, region.Length)
	width = math.Min(width, region.Width)
	leftoverL := region.Length - length
	leftoverW := region.Width - width

	var horizontal bool
	switch rule {
	case SplitShorterLeftover:
		horizontal = leftoverL <= leftoverW
	case SplitLongerLeftover:
		horizontal = leftoverL > leftoverW
	default:
		horizontal = length*leftoverW > leftoverL*width
	}

	var right, top Rect
	if horizontal {
		// Cut spans the full length: the top residual keeps the whole length.
		right = Rect{X: region.X + length, Y: region.Y, Length: leftoverL, Width: width}
		top = Rect{X: region.X, Y: region.Y + width, Length: region.Length, Width: leftoverW}
	} else {
		right = Rect{X: region.X + length, Y: region.Y, Length: leftoverL, Width: region.Width}
		top = Rect{X: region.X, Y: region.Y + width, Length: length, Width: leftoverW}
	}

	out := make([]Rect, 0, 2)
	for _, r := range []Rect{right, top} {
		if !r.Degenerate() {
			out = append(out, r)
		}
	}
	return out
}

// Merge joins a and b when they are adjacent and share one full edge.
func Merge(a, b Rect) (Rect, bool) {
	near := func(p, q float64) bool { return math.Abs(p-q) <= Epsilon }

	if near(a.Y, b.Y) && near(a.Width, b.Width) {
		switch {
		case near(a.Right(), b.X):
			return Rect{X: a.X, Y: a.Y, Length: a.Length + b.Length, Width: a.Width}, true
		case near(b.Right(), a.X):
			return Rect{X: b.X, Y: a.Y, Length: a.Length + b.Length, Width: a.Width}, true
		}
	}
	if near(a.X, b.X) && near(a.Length, b.Length) {
		switch {
		case near(a.Top(), b.Y):
			return Rect{X: a.X, Y: a.Y, Length: a.Length, Width: a.Width + b.Width}, true
		case near(b.Top(), a.Y):
			return Rect{X: a.X, Y: b.Y, Length: a.Length, Width: a.Width + b.Width}, true
		}
	}
	return Rect{}, false
}
