package slur

import (
	"math"
	"testing"

	"github.com/matzehuels/stavelayout/pkg/geom"
	"github.com/matzehuels/stavelayout/pkg/layout"
)

func TestCalcQuadraticInterpolation(t *testing.T) {
	tests := []struct {
		zeroAt, oneAt, arg float64
		want               float64
	}{
		{0.1, 0.5, -1, 0},
		{0.1, 0.5, 0.1, 0},
		{0.1, 0.5, 0.5, 1},
		{0.1, 0.5, 3, 1},
		{0.1, 0.5, 0.3, 0.25},
		{0.15, 0.05, 0.15, 0},
		{0.15, 0.05, 0.05, 1},
		{0.15, 0.05, 0.1, 0.25},
		{0.2, 0.2, 0.1, 0},
		{0.2, 0.2, 0.2, 1},
	}
	for _, tt := range tests {
		if got := CalcQuadraticInterpolation(tt.zeroAt, tt.oneAt, tt.arg); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("CalcQuadraticInterpolation(%v, %v, %v) = %v, want %v", tt.zeroAt, tt.oneAt, tt.arg, got, tt.want)
		}
	}

	prev := 0.0
	for arg := 0.0; arg <= 0.6; arg += 0.01 {
		v := CalcQuadraticInterpolation(0.1, 0.5, arg)
		if v < prev {
			t.Fatalf("not monotonic at %v: %v < %v", arg, v, prev)
		}
		if got := CalcQuadraticInterpolation(0.1, 0.5, 0.1+0.4*math.Sqrt(v)); math.Abs(got-v) > 1e-9 {
			t.Errorf("inverse at %v: %v, want %v", arg, got, v)
		}
		prev = v
	}
}

func TestCalcShiftRadii(t *testing.T) {
	tests := []struct {
		left        bool
		spanning    layout.Spanning
		flexibility float64
		wantFull    float64
	}{
		{true, layout.SpanningStartEnd, 0, 0.05},
		{false, layout.SpanningStartEnd, 0, 0.05},
		{true, layout.SpanningStartEnd, 1, 0.2},
		{true, layout.SpanningMiddle, 0, 0.2},
		{false, layout.SpanningMiddle, 0, 0.2},
		{true, layout.SpanningStart, 0, 0.05},
		{false, layout.SpanningStart, 0, 0.2},
		{true, layout.SpanningEnd, 0, 0.2},
		{false, layout.SpanningEnd, 0.5, 0.125},
	}
	for _, tt := range tests {
		r := CalcShiftRadii(tt.left, tt.spanning, tt.flexibility)
		if math.Abs(r.Full-tt.wantFull) > 1e-12 || math.Abs(r.Partial-3*tt.wantFull) > 1e-12 {
			t.Errorf("CalcShiftRadii(%v, %v, %v) = %+v, want full %v", tt.left, tt.spanning, tt.flexibility, r, tt.wantFull)
		}
	}
}

func TestShiftEndPoints(t *testing.T) {
	r := CalcShiftRadii(true, layout.SpanningStartEnd, 0)
	tests := []struct {
		name                  string
		ratio, intersection   float64
		innerLeft, innerRight bool
		wantLeft, wantRight   float64
	}{
		{"full at start", 0.02, 10, true, true, 10, 0},
		{"eased at start", 0.1, 10, true, true, 2.5, 0},
		{"outside radius", 0.5, 10, true, true, 0, 0},
		{"other side", 0.02, 10, false, true, 0, 0},
		{"full at end", 0.98, 8, true, true, 0, 8},
		{"no intersection", 0.02, -3, true, true, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var left, right float64
			ShiftEndPoints(&left, &right, tt.ratio, tt.intersection, r, r, tt.innerLeft, tt.innerRight)
			if math.Abs(left-tt.wantLeft) > 1e-9 || math.Abs(right-tt.wantRight) > 1e-9 {
				t.Errorf("shifts = (%v, %v), want (%v, %v)", left, right, tt.wantLeft, tt.wantRight)
			}
		})
	}

	// shifts only grow
	left, right := 20.0, 0.0
	ShiftEndPoints(&left, &right, 0.01, 5, r, r, true, true)
	if left != 20 {
		t.Errorf("smaller intersection lowered the shift to %v", left)
	}
}

func TestRotateSlopeBoundaryAgreement(t *testing.T) {
	for _, tt := range []struct{ bound, degrees float64 }{{2.5, 10}, {10, 3}} {
		rotated := math.Tan(math.Atan(tt.bound) + tt.degrees*math.Pi/180)
		doubled := RotateSlope(tt.bound, tt.degrees, tt.bound, true)
		if doubled != 2*tt.bound {
			t.Errorf("RotateSlope(%v) at the bound = %v, want doubling", tt.bound, doubled)
		}
		if math.Abs(rotated-doubled)/doubled > 0.1 {
			t.Errorf("bound %v, %v°: rotation %v and doubling %v disagree", tt.bound, tt.degrees, rotated, doubled)
		}

		down := RotateSlope(-tt.bound, tt.degrees, tt.bound, false)
		if math.Abs(down+2*tt.bound) > 1e-12 {
			t.Errorf("downwards at the bound = %v, want %v", down, -2*tt.bound)
		}
	}

	if got, want := RotateSlope(0, 45, 1, true), 1.0; math.Abs(got-want) > 1e-12 {
		t.Errorf("RotateSlope(0, 45°) = %v, want %v", got, want)
	}
	if got, want := RotateSlope(0, 45, 1, false), -1.0; math.Abs(got-want) > 1e-12 {
		t.Errorf("RotateSlope(0, -45°) = %v, want %v", got, want)
	}
}

func TestGetMinControlPointAngle(t *testing.T) {
	unit := 9.0
	flat := geom.NewBezierCurve([4]geom.Point{{X: 0, Y: 0}, {X: 40, Y: 20}, {X: 160, Y: 20}, {X: 200, Y: 0}})
	if got := GetMinControlPointAngle(&flat, 0, unit); got != 30 {
		t.Errorf("long flat curve = %v, want 30", got)
	}

	steep := geom.NewBezierCurve([4]geom.Point{{X: 0, Y: 0}, {X: 10, Y: 5}, {X: 40, Y: 15}, {X: 50, Y: 20}})
	angle := math.Atan2(20, 50)
	want := 30 + angle*180/math.Pi/4
	if got := GetMinControlPointAngle(&steep, angle, unit); math.Abs(got-want) > 1e-9 {
		t.Errorf("short steep curve = %v, want %v", got, want)
	}

	degenerate := steep
	degenerate.C1.X = 30
	if got := GetMinControlPointAngle(&degenerate, angle, unit); got != 30 {
		t.Errorf("degenerate control points = %v, want 30", got)
	}
}

func satisfies(t *testing.T, cs []ControlPointConstraint, x, y float64) {
	t.Helper()
	if x < 0 || y < 0 || math.IsNaN(x) || math.IsNaN(y) {
		t.Fatalf("solution (%v, %v) is not a non-negative number", x, y)
	}
	for _, c := range cs {
		if c.A*x+c.B*y < c.C-1e-9 {
			t.Errorf("%+v violated by (%v, %v)", c, x, y)
		}
	}
}

func TestSolveControlPointConstraintsFeasibility(t *testing.T) {
	sets := [][]ControlPointConstraint{
		{{A: 0.4, B: 0.1, C: 10}},
		{{A: 0.1, B: 0.4, C: 10}},
		{{A: 0.44, B: 0.22, C: 12}, {A: 0.22, B: 0.44, C: 3}},
		{{A: 1, B: 0, C: 5}, {A: 0, B: 1, C: 7}},
		{{A: 0.05, B: 0.001, C: 2}, {A: 0.001, B: 0.05, C: 2}, {A: 0.375, B: 0.375, C: 9}},
		{{A: 0.3, B: 0.3, C: 4}, {A: 0.1, B: 0.02, C: 6}},
	}
	for i, cs := range sets {
		for _, sym := range []float64{0, 0.3, 0.7, 1} {
			x, y := SolveControlPointConstraints(cs, sym)
			satisfies(t, cs, x, y)
			if sym == 1 && x != y {
				t.Errorf("set %d: symmetric solution (%v, %v) not equal", i, x, y)
			}
		}
	}
}

func TestSolveControlPointConstraintsUpperBounds(t *testing.T) {
	tests := []struct {
		name string
		cs   []ControlPointConstraint
		syms []float64
	}{
		{"negative left weight", []ControlPointConstraint{{A: -1, B: 2, C: 1}}, []float64{0, 0.5, 1}},
		{"left bounded", []ControlPointConstraint{{A: -1, B: 0, C: -1}, {A: 1, B: 1, C: 4}}, []float64{0, 0.5}},
		{"both bounded", []ControlPointConstraint{{A: -1, B: 0, C: -3}, {A: 0, B: -1, C: -3}, {A: 0.4, B: 0.1, C: 1}}, []float64{0, 0.3, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, sym := range tt.syms {
				x, y := SolveControlPointConstraints(tt.cs, sym)
				if x < 0 || y < 0 {
					t.Errorf("symmetry %v: negative shift (%v, %v)", sym, x, y)
				}
				satisfies(t, tt.cs, x, y)
				if sym == 1 && x != y {
					t.Errorf("symmetric solution (%v, %v) not equal", x, y)
				}
			}
		})
	}

	// x ≤ 1 keeps the left shift small and moves the rest to the right
	x, y := SolveControlPointConstraints([]ControlPointConstraint{{A: -1, C: -1}, {A: 1, B: 1, C: 4}}, 0)
	if math.Abs(x-1) > 1e-9 || math.Abs(y-3) > 1e-9 {
		t.Errorf("bounded set = (%v, %v), want (1, 3)", x, y)
	}
}

func TestSolveControlPointConstraintsEdgeCases(t *testing.T) {
	if x, y := SolveControlPointConstraints(nil, 0); x != 0 || y != 0 {
		t.Errorf("no constraints = (%v, %v), want zero", x, y)
	}
	if x, y := SolveControlPointConstraints([]ControlPointConstraint{{A: 1, B: 1, C: -4}}, 0); x != 0 || y != 0 {
		t.Errorf("satisfied constraint = (%v, %v), want zero", x, y)
	}

	cs := []ControlPointConstraint{{A: 0, B: 0, C: 5}, {A: 1, B: 0, C: 3}}
	x, y := SolveControlPointConstraints(cs, 0)
	if x != 5 || y != 5 {
		t.Errorf("degenerate set = (%v, %v), want (5, 5)", x, y)
	}

	cs = []ControlPointConstraint{{A: 1, B: 0, C: 8}, {A: 0, B: 0, C: 5}}
	x, y = SolveControlPointConstraints(cs, 0)
	if x < 8 || y < 8 {
		t.Errorf("degenerate set below the largest shift = (%v, %v)", x, y)
	}

	// the solution leans towards the heavier side
	x, y = SolveControlPointConstraints([]ControlPointConstraint{{A: 0.44, B: 0.05, C: 10}}, 0)
	if x <= y {
		t.Errorf("left-heavy constraint solved as (%v, %v)", x, y)
	}
}
