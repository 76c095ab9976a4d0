package geom

import "math"

// bezierBisectSteps bounds the parameter search in CalcBezierParamAtPosition.
// 52 halvings exhaust float64 precision on [0, 1].
const bezierBisectSteps = 52

// CalcPointAtBezier evaluates the cubic Bézier with control polygon points at
// parameter t.
func CalcPointAtBezier(points [4]Point, t float64) Point {
	mt := 1 - t
	a := mt * mt * mt
	b := 3 * mt * mt * t
	c := 3 * mt * t * t
	d := t * t * t
	return Point{
		X: a*points[0].X + b*points[1].X + c*points[2].X + d*points[3].X,
		Y: a*points[0].Y + b*points[1].Y + c*points[2].Y + d*points[3].Y,
	}
}

// CalcBezierParamAtPosition returns the parameter t at which the curve reaches
// the horizontal position x. Positions outside the end points clamp to 0 or 1.
// The curve is assumed to be x-monotone, which AdjustSlurShape guarantees by
// keeping p1.x <= c1.x <= c2.x <= p2.x.
func CalcBezierParamAtPosition(points [4]Point, x float64) float64 {
	x0 := points[0].X
	x3 := points[3].X
	if x0 == x3 {
		return 0
	}
	increasing := x3 > x0
	if (increasing && x <= x0) || (!increasing && x >= x0) {
		return 0
	}
	if (increasing && x >= x3) || (!increasing && x <= x3) {
		return 1
	}
	lo, hi := 0.0, 1.0
	for i := 0; i < bezierBisectSteps; i++ {
		mid := (lo + hi) / 2
		px := CalcPointAtBezier(points, mid).X
		if (px < x) == increasing {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// CalcBezierAtPosition returns the curve's y value at horizontal position x.
func CalcBezierAtPosition(points [4]Point, x float64) float64 {
	return CalcPointAtBezier(points, CalcBezierParamAtPosition(points, x)).Y
}

// CalcThickBezier derives the two outlines of a curve drawn with the given
// thickness. The end points are shared; the control points are offset by half
// the thickness perpendicular to the chord, whose angle is given in radians.
func CalcThickBezier(points [4]Point, thickness, angle float64) (top, bottom [4]Point) {
	s, c := math.Sincos(angle)
	dx := -s * thickness / 2
	dy := c * thickness / 2
	top = points
	bottom = points
	for i := 1; i <= 2; i++ {
		top[i] = points[i].Add(dx, dy)
		bottom[i] = points[i].Add(-dx, -dy)
	}
	return top, bottom
}

// ApproximateBezierBoundingBox returns the tight bounding box of the curve,
// taking the interior extrema of both coordinates into account.
func ApproximateBezierBoundingBox(points [4]Point) Rect {
	r := EmptyRect()
	for _, t := range bezierExtremaParams(points) {
		p := CalcPointAtBezier(points, t)
		r.updateX(p.X, p.X)
		r.updateY(p.Y, p.Y)
	}
	return r
}

// bezierExtremaParams lists 0, 1 and every parameter in (0, 1) where either
// coordinate has a vanishing derivative.
func bezierExtremaParams(points [4]Point) []float64 {
	ts := []float64{0, 1}
	for _, coords := range [2][4]float64{
		{points[0].X, points[1].X, points[2].X, points[3].X},
		{points[0].Y, points[1].Y, points[2].Y, points[3].Y},
	} {
		// derivative / 3 = a t^2 + b t + c
		a := -coords[0] + 3*coords[1] - 3*coords[2] + coords[3]
		b := 2 * (coords[0] - 2*coords[1] + coords[2])
		c := coords[1] - coords[0]
		for _, t := range solveQuadratic(a, b, c) {
			if t > 0 && t < 1 {
				ts = append(ts, t)
			}
		}
	}
	return ts
}

func solveQuadratic(a, b, c float64) []float64 {
	const eps = 1e-12
	if math.Abs(a) < eps {
		if math.Abs(b) < eps {
			return nil
		}
		return []float64{-c / b}
	}
	disc := b*b - 4*a*c
	if disc < 0 {
		return nil
	}
	sq := math.Sqrt(disc)
	return []float64{(-b + sq) / (2 * a), (-b - sq) / (2 * a)}
}

// CurveTopBetween returns the highest y of the curve over [x1, x2], sampled at
// the range ends and at every interior extremum.
func CurveTopBetween(points [4]Point, x1, x2 float64) float64 {
	return curveExtremeBetween(points, x1, x2, math.Max, math.Inf(-1))
}

// CurveBottomBetween returns the lowest y of the curve over [x1, x2].
func CurveBottomBetween(points [4]Point, x1, x2 float64) float64 {
	return curveExtremeBetween(points, x1, x2, math.Min, math.Inf(1))
}

func curveExtremeBetween(points [4]Point, x1, x2 float64, pick func(a, b float64) float64, init float64) float64 {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	x1 = math.Max(x1, math.Min(points[0].X, points[3].X))
	x2 = math.Min(x2, math.Max(points[0].X, points[3].X))
	if x1 > x2 {
		return init
	}
	t1 := CalcBezierParamAtPosition(points, x1)
	t2 := CalcBezierParamAtPosition(points, x2)
	if t1 > t2 {
		t1, t2 = t2, t1
	}
	y := pick(init, CalcPointAtBezier(points, t1).Y)
	y = pick(y, CalcPointAtBezier(points, t2).Y)
	for _, t := range bezierExtremaParams(points) {
		if t > t1 && t < t2 {
			y = pick(y, CalcPointAtBezier(points, t).Y)
		}
	}
	return y
}
