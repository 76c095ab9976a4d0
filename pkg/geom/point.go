// Package geom provides the geometric primitives shared by the layout engine:
// points, axis-aligned bounding boxes with self and content extents, and the
// cubic Bézier helpers used to place slurs, ties and phrases.
//
// All coordinates are drawing units. X grows to the right and Y grows upward,
// so a curve bulging "above" a note has larger Y values than the note.
package geom

import "math"

// Point is a position in drawing units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p translated by (dx, dy).
func (p Point) Add(dx, dy float64) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Lerp interpolates linearly between p (t=0) and q (t=1).
func (p Point) Lerp(q Point, t float64) Point {
	return Point{X: p.X + (q.X-p.X)*t, Y: p.Y + (q.Y-p.Y)*t}
}

// CalcPositionAfterRotation rotates p around center by angle radians
// (counter-clockwise).
func CalcPositionAfterRotation(p Point, angle float64, center Point) Point {
	if angle == 0 {
		return p
	}
	s, c := math.Sincos(angle)
	dx := p.X - center.X
	dy := p.Y - center.Y
	return Point{
		X: center.X + dx*c - dy*s,
		Y: center.Y + dx*s + dy*c,
	}
}

// CalcSlope returns the slope of the line p1-p2. Horizontal and vertical
// lines both report zero.
func CalcSlope(p1, p2 Point) float64 {
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	if dx == 0 || dy == 0 {
		return 0
	}
	return dy / dx
}

// CalcDistance returns the euclidean distance between p1 and p2.
func CalcDistance(p1, p2 Point) float64 {
	return math.Hypot(p2.X-p1.X, p2.Y-p1.Y)
}

// ArePointsClose reports whether both coordinates differ by at most margin.
func ArePointsClose(p1, p2 Point, margin float64) bool {
	return math.Abs(p1.X-p2.X) <= margin && math.Abs(p1.Y-p2.Y) <= margin
}
