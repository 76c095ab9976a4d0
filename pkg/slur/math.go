package slur

import (
	"math"

	"github.com/matzehuels/stavelayout/pkg/geom"
	"github.com/matzehuels/stavelayout/pkg/layout"
)

// =============================================================================
// Easing and shift radii
// =============================================================================

// CalcQuadraticInterpolation eases from 0 at zeroAt to 1 at oneAt. It
// returns exactly 0 on the zeroAt side, exactly 1 on the oneAt side and a
// quadratic ramp in between. zeroAt may be larger than oneAt.
func CalcQuadraticInterpolation(zeroAt, oneAt, arg float64) float64 {
	if zeroAt == oneAt {
		if arg >= oneAt {
			return 1
		}
		return 0
	}
	t := (arg - zeroAt) / (oneAt - zeroAt)
	switch {
	case t <= 0:
		return 0
	case t >= 1:
		return 1
	}
	return t * t
}

// ShiftRadii are relative distances from a curve end point. Obstacles
// within Full move the end point by their whole intersection, obstacles
// between Full and Partial by an eased fraction of it.
type ShiftRadii struct {
	Full    float64
	Partial float64
}

// CalcShiftRadii returns the radii for the left or right end of a curve.
// An end continuing into another system is fully flexible, the others use
// the configured endpoint flexibility.
func CalcShiftRadii(left bool, spanning layout.Spanning, flexibility float64) ShiftRadii {
	open := false
	if left {
		open = spanning == layout.SpanningMiddle || spanning == layout.SpanningEnd
	} else {
		open = spanning == layout.SpanningStart || spanning == layout.SpanningMiddle
	}
	if open {
		flexibility = 1
	}
	full := 0.05 + flexibility*0.15
	return ShiftRadii{Full: full, Partial: 3 * full}
}

// ShiftEndPoints records the end point shifts required by one obstacle
// intersecting the curve by intersection at the relative position ratio.
// An end only moves when the obstacle lies on its inner side.
func ShiftEndPoints(shiftLeft, shiftRight *float64, ratio, intersection float64, left, right ShiftRadii, innerLeft, innerRight bool) {
	if intersection <= 0 {
		return
	}
	if innerLeft && ratio < left.Partial {
		shift := intersection
		if ratio > left.Full {
			shift *= CalcQuadraticInterpolation(left.Partial, left.Full, ratio)
		}
		*shiftLeft = math.Max(*shiftLeft, shift)
	}
	if innerRight && 1-ratio < right.Partial {
		shift := intersection
		if 1-ratio > right.Full {
			shift *= CalcQuadraticInterpolation(right.Partial, right.Full, 1-ratio)
		}
		*shiftRight = math.Max(*shiftRight, shift)
	}
}

// =============================================================================
// Slopes and angles
// =============================================================================

// RotateSlope turns slope by degrees, upwards or downwards. Slopes beyond
// doublingBound in the direction of rotation are doubled instead, which
// keeps them finite near the vertical.
func RotateSlope(slope, degrees, doublingBound float64, upwards bool) float64 {
	if upwards {
		if slope >= doublingBound {
			return 2 * slope
		}
		return math.Tan(math.Atan(slope) + degrees*math.Pi/180)
	}
	if slope <= -doublingBound {
		return 2 * slope
	}
	return math.Tan(math.Atan(slope) - degrees*math.Pi/180)
}

// GetMinControlPointAngle returns, in degrees, the smallest angle the
// control points of bez may make with its chord. Steep short curves get a
// larger minimum. angle is the chord angle in radians.
func GetMinControlPointAngle(bez *geom.BezierCurve, angle, unit float64) float64 {
	const base = 30.0
	mid := (bez.P1.X + bez.P2.X) / 2
	if bez.C1.X < bez.P1.X || bez.C1.X > mid || bez.C2.X < mid || bez.C2.X > bez.P2.X {
		return base
	}
	dist := geom.CalcDistance(bez.P1, bez.P2)
	shortness := clamp(1-(dist/unit-8)/8, 0, 1)
	deg := math.Abs(angle) * 180 / math.Pi
	return base + math.Min(deg/4, 15)*shortness
}

// =============================================================================
// Constraint solver
// =============================================================================

// ControlPointConstraint requires A·x + B·y ≥ C for the shifts x and y of
// the left and right control point. Obstacle constraints carry Bernstein
// weights and are non-negative; callers may add bounds with negative
// coefficients, such as -x ≥ -limit.
type ControlPointConstraint struct {
	A, B, C float64
}

// SolveControlPointConstraints returns small non-negative shifts (x, y)
// satisfying every constraint. The direction of the solution averages the
// constraint normals, weighted by how far each constraint line lies from
// the origin, and is kept within the cone allowed by symmetry: 0 leaves it
// free, 1 forces x == y. Constraints no ray along that direction can meet
// are satisfied afterwards by raising a single coordinate. A constraint
// with A == B == 0 cannot be met and asks for the largest shift seen.
//
// When negative coefficients bound the shifts and the ray solution breaks
// one of them, the pair minimising x + y over the feasible region is
// returned instead. An infeasible set keeps the ray solution.
func SolveControlPointConstraints(constraints []ControlPointConstraint, symmetry float64) (float64, float64) {
	symmetry = clamp(symmetry, 0, 1)
	x, y := solveAlongRay(constraints, symmetry)
	if !hasUpperBound(constraints) || satisfiesAll(constraints, x, y) {
		return x, y
	}
	if ex, ey, ok := solveExact(constraints, symmetry); ok {
		return ex, ey
	}
	return x, y
}

func solveAlongRay(constraints []ControlPointConstraint, symmetry float64) (float64, float64) {
	var weightSum, angleSum, degenerate float64
	active := make([]ControlPointConstraint, 0, len(constraints))
	for _, c := range constraints {
		if c.C <= 0 || math.IsNaN(c.C) {
			continue
		}
		c.A, c.B = math.Max(c.A, 0), math.Max(c.B, 0)
		norm := math.Hypot(c.A, c.B)
		if norm == 0 {
			degenerate = math.Max(degenerate, c.C)
			continue
		}
		w := c.C / norm
		weightSum += w
		angleSum += w * math.Atan2(c.B, c.A)
		active = append(active, c)
	}

	var x, y float64
	if weightSum > 0 {
		theta := clamp(angleSum/weightSum, symmetry*math.Pi/4, (2-symmetry)*math.Pi/4)
		cos, sin := math.Cos(theta), math.Sin(theta)
		var dist float64
		for _, c := range active {
			if d := c.A*cos + c.B*sin; d > 0 {
				dist = math.Max(dist, c.C/d)
			}
		}
		x, y = dist*cos, dist*sin
	}

	for _, c := range active {
		missing := c.C - (c.A*x + c.B*y)
		if missing <= 0 {
			continue
		}
		switch {
		case symmetry >= 1:
			d := missing / (c.A + c.B)
			x += d
			y += d
		case c.B > 0:
			y += missing / c.B
		default:
			x += missing / c.A
		}
	}

	if degenerate > 0 {
		top := math.Max(degenerate, math.Max(x, y))
		x, y = top, top
	}
	if symmetry >= 1 {
		m := math.Max(x, y)
		x, y = m, m
	}
	return x, y
}

// hasUpperBound reports whether a constraint has a negative coefficient.
func hasUpperBound(constraints []ControlPointConstraint) bool {
	for _, c := range constraints {
		if c.A < 0 || c.B < 0 {
			return true
		}
	}
	return false
}

const feasibilityEps = 1e-9

func satisfiesAll(constraints []ControlPointConstraint, x, y float64) bool {
	for _, c := range constraints {
		if math.IsNaN(c.C) || c.A == 0 && c.B == 0 {
			continue
		}
		if c.A*x+c.B*y < c.C-feasibilityEps*(1+math.Abs(c.C)) {
			return false
		}
	}
	return x >= 0 && y >= 0
}

// solveExact minimises x + y over the constraints and the non-negative
// quadrant, restricted to the symmetry cone when that leaves the set
// feasible. The optimum of a two-variable linear program sits on a vertex,
// so every pairwise intersection of the boundary lines is tried.
func solveExact(constraints []ControlPointConstraint, symmetry float64) (float64, float64, bool) {
	var lines []ControlPointConstraint
	for _, c := range constraints {
		if math.IsNaN(c.C) || c.A == 0 && c.B == 0 {
			continue
		}
		lines = append(lines, c)
	}

	if symmetry >= 1 {
		lo, hi := 0.0, math.Inf(1)
		for _, c := range lines {
			switch s := c.A + c.B; {
			case s > 0:
				lo = math.Max(lo, c.C/s)
			case s < 0:
				hi = math.Min(hi, c.C/s)
			case c.C > 0:
				return 0, 0, false
			}
		}
		if lo > hi+feasibilityEps*(1+math.Abs(hi)) {
			return 0, 0, false
		}
		return lo, lo, true
	}

	if k := math.Tan(symmetry * math.Pi / 4); k > 0 {
		cone := append(lines[:len(lines):len(lines)],
			ControlPointConstraint{A: -k, B: 1}, ControlPointConstraint{A: 1, B: -k})
		if x, y, ok := lowestVertex(cone); ok {
			return x, y, true
		}
	}
	return lowestVertex(lines)
}

func lowestVertex(lines []ControlPointConstraint) (float64, float64, bool) {
	all := append(lines[:len(lines):len(lines)],
		ControlPointConstraint{A: 1}, ControlPointConstraint{B: 1})
	bestX, bestY := 0.0, 0.0
	found := false
	for i := range all {
		for j := i + 1; j < len(all); j++ {
			a, b := all[i], all[j]
			det := a.A*b.B - b.A*a.B
			if math.Abs(det) < 1e-12 {
				continue
			}
			x := (a.C*b.B - b.C*a.B) / det
			y := (a.A*b.C - b.A*a.C) / det
			if !satisfiesAll(all, x, y) {
				continue
			}
			x, y = math.Max(x, 0), math.Max(y, 0)
			if !found || x+y < bestX+bestY-feasibilityEps ||
				math.Abs(x+y-bestX-bestY) <= feasibilityEps && math.Max(x, y) < math.Max(bestX, bestY) {
				bestX, bestY, found = x, y, true
			}
		}
	}
	return bestX, bestY, found
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
