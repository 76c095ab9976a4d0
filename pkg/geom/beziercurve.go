package geom

import "math"

// BezierCurve is a cubic curve P1-C1-C2-P2 together with a parametrisation of
// its control points relative to the end points: a horizontal offset and a
// height on the side the control point lies on.
//
// The parametrisation is only meaningful once the curve has been rotated so
// that its chord is horizontal; AdjustSlurShape and the vertical shift code
// rely on that.
type BezierCurve struct {
	P1 Point `json:"p1"`
	C1 Point `json:"c1"`
	C2 Point `json:"c2"`
	P2 Point `json:"p2"`

	leftAbove   bool
	rightAbove  bool
	leftOffset  float64
	rightOffset float64
	leftHeight  float64
	rightHeight float64
}

// NewBezierCurve builds a curve from its four points.
func NewBezierCurve(points [4]Point) BezierCurve {
	return BezierCurve{P1: points[0], C1: points[1], C2: points[2], P2: points[3]}
}

// Points returns P1, C1, C2, P2.
func (b *BezierCurve) Points() [4]Point {
	return [4]Point{b.P1, b.C1, b.C2, b.P2}
}

// SetPoints overwrites all four points. The control point parameters are
// not updated.
func (b *BezierCurve) SetPoints(points [4]Point) {
	b.P1, b.C1, b.C2, b.P2 = points[0], points[1], points[2], points[3]
}

// SetControlSides records on which side of the chord each control point
// lies.
func (b *BezierCurve) SetControlSides(leftAbove, rightAbove bool) {
	b.leftAbove = leftAbove
	b.rightAbove = rightAbove
}

func (b *BezierCurve) IsLeftControlAbove() bool  { return b.leftAbove }
func (b *BezierCurve) IsRightControlAbove() bool { return b.rightAbove }

func (b *BezierCurve) LeftControlOffset() float64  { return b.leftOffset }
func (b *BezierCurve) RightControlOffset() float64 { return b.rightOffset }
func (b *BezierCurve) LeftControlHeight() float64  { return b.leftHeight }
func (b *BezierCurve) RightControlHeight() float64 { return b.rightHeight }

func (b *BezierCurve) SetLeftControlOffset(v float64)  { b.leftOffset = v }
func (b *BezierCurve) SetRightControlOffset(v float64) { b.rightOffset = v }
func (b *BezierCurve) SetLeftControlHeight(v float64)  { b.leftHeight = v }
func (b *BezierCurve) SetRightControlHeight(v float64) { b.rightHeight = v }

func sideSign(above bool) float64 {
	if above {
		return 1
	}
	return -1
}

// UpdateControlPointParams derives offsets and heights from the current
// points. Heights are signed: positive means towards the recorded side.
func (b *BezierCurve) UpdateControlPointParams() {
	b.leftOffset = b.C1.X - b.P1.X
	b.rightOffset = b.P2.X - b.C2.X
	b.leftHeight = (b.C1.Y - b.P1.Y) * sideSign(b.leftAbove)
	b.rightHeight = (b.C2.Y - b.P2.Y) * sideSign(b.rightAbove)
}

// UpdateControlPoints is the inverse of UpdateControlPointParams.
func (b *BezierCurve) UpdateControlPoints() {
	b.C1 = Point{X: b.P1.X + b.leftOffset, Y: b.P1.Y + sideSign(b.leftAbove)*b.leftHeight}
	b.C2 = Point{X: b.P2.X - b.rightOffset, Y: b.P2.Y + sideSign(b.rightAbove)*b.rightHeight}
}

// Rotate turns all four points around center by angle radians.
func (b *BezierCurve) Rotate(angle float64, center Point) {
	b.P1 = CalcPositionAfterRotation(b.P1, angle, center)
	b.C1 = CalcPositionAfterRotation(b.C1, angle, center)
	b.C2 = CalcPositionAfterRotation(b.C2, angle, center)
	b.P2 = CalcPositionAfterRotation(b.P2, angle, center)
}

// Angle returns the chord angle in radians.
func (b *BezierCurve) Angle() float64 {
	return math.Atan2(b.P2.Y-b.P1.Y, b.P2.X-b.P1.X)
}

// EstimateCurveParamForControlPoints estimates the curve parameters closest
// to C1 and C2 from the lengths of the control polygon.
func (b *BezierCurve) EstimateCurveParamForControlPoints() (float64, float64) {
	d1 := CalcDistance(b.P1, b.C1)
	d2 := CalcDistance(b.C1, b.C2)
	d3 := CalcDistance(b.C2, b.P2)
	total := d1 + d2 + d3
	if total < 1e-9 {
		return 1.0 / 3, 2.0 / 3
	}
	return d1 / total, (d1 + d2) / total
}
