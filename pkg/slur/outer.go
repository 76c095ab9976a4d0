package slur

import (
	"math"
	"sort"

	"github.com/matzehuels/stavelayout/pkg/geom"
	"github.com/matzehuels/stavelayout/pkg/layout"
)

// adjustNested separates curves of one staff that share a note and fits
// every outer slur over the slurs nested in it, innermost first.
func adjustNested(ctx *layout.Context, sa *layout.SystemAligner, handles []int) {
	var slurs []int
	for _, ph := range handles {
		p := sa.Positioner(ph)
		if !p.Class.IsTieLike() && p.Curve.Adjusted {
			slurs = append(slurs, ph)
		}
	}
	if len(slurs) < 2 {
		return
	}
	separateSharedEndPoints(ctx, sa, slurs)

	sort.SliceStable(slurs, func(i, j int) bool {
		return span(sa, slurs[i]) < span(sa, slurs[j])
	})
	for _, outer := range slurs {
		var inner []int
		for _, ph := range slurs {
			if ph != outer && isInner(sa, ph, outer) {
				inner = append(inner, ph)
			}
		}
		if len(inner) > 0 {
			AdjustOuterSlur(ctx, sa, outer, inner)
		}
	}
}

func span(sa *layout.SystemAligner, ph int) float64 {
	pts := sa.Positioner(ph).Curve.Points
	return pts[3].X - pts[0].X
}

// isInner reports whether the curve inner lies strictly inside the note
// range of outer, on the same side.
func isInner(sa *layout.SystemAligner, inner, outer int) bool {
	pi, po := sa.Positioner(inner), sa.Positioner(outer)
	if pi.Spanning != layout.SpanningStartEnd || pi.Curve.Dir != po.Curve.Dir || pi.Curve.Dir == layout.CurveDirMixed {
		return false
	}
	is, ie := sa.Element(pi.Curve.Start), sa.Element(pi.Curve.End)
	os, oe := sa.Element(po.Curve.Start), sa.Element(po.Curve.End)
	return os.SelfLeft() < is.SelfLeft() && ie.SelfRight() < oe.SelfRight()
}

// separateSharedEndPoints moves curves apart where they meet on one note:
// a curve ending where the next one starts leaves a gap of one unit, and of
// two curves starting or ending on the same note the longer one moves a
// unit further out.
func separateSharedEndPoints(ctx *layout.Context, sa *layout.SystemAligner, slurs []int) {
	for _, i := range slurs {
		pi := sa.Positioner(i)
		ci := pi.Curve
		unit := sa.Staff(pi.Staff).Unit(ctx.Options)
		for _, j := range slurs {
			if i == j {
				continue
			}
			cj := sa.Positioner(j).Curve
			changed := false

			if ci.End == cj.Start && geom.ArePointsClose(ci.Points[3], cj.Points[0], unit) {
				ci.MoveBackHorizontal(-unit / 2)
				cj.MoveFrontHorizontal(unit / 2)
				refresh(sa, j)
				changed = true
			}
			if ci.Dir == cj.Dir && ci.Dir != layout.CurveDirMixed && ci.Points[3].X > cj.Points[3].X+unit/2 && ci.Start == cj.Start {
				d := cj.Points[0].Y - ci.Points[0].Y + sign(ci.IsAbove())*unit
				if d*sign(ci.IsAbove()) > 0 {
					ci.MoveFrontVertical(d)
					changed = true
				}
			}
			if ci.Dir == cj.Dir && ci.Dir != layout.CurveDirMixed && ci.Points[0].X < cj.Points[0].X-unit/2 && ci.End == cj.End {
				d := cj.Points[3].Y - ci.Points[3].Y + sign(ci.IsAbove())*unit
				if d*sign(ci.IsAbove()) > 0 {
					ci.MoveBackVertical(d)
					changed = true
				}
			}
			if changed {
				refresh(sa, i)
				ctx.Logger.Debug("separated curves", "first", pi.ID, "second", sa.Positioner(j).ID)
			}
		}
	}
}

// refresh recomputes the box of a curve whose points were moved.
func refresh(sa *layout.SystemAligner, ph int) {
	p := sa.Positioner(ph)
	c := p.Curve
	b := geom.NewBezierCurve(c.Points)
	p.UpdateCurvePosition(c.Points, b.Angle(), c.Thickness, c.Dir)
}

// AdjustOuterSlur lifts the outer slur ph clear of the already solved
// slurs nested in it. Their end points, mid points and control points are
// obstacles: those close to an end move the end point, the others are
// cleared by raising the control points.
func AdjustOuterSlur(ctx *layout.Context, sa *layout.SystemAligner, ph int, inner []int) {
	o := ctx.Options
	p := sa.Positioner(ph)
	c := p.Curve
	unit := sa.Staff(p.Staff).Unit(o)
	margin := o.Slur.Margin * unit
	d := Direction{Dir: c.Dir, StartAbove: c.StartAbove}
	sg := sign(c.IsAbove())

	b := geom.NewBezierCurve(c.Points)
	b.SetControlSides(d.leftAbove(), d.rightAbove())
	b.UpdateControlPointParams()
	width := b.P2.X - b.P1.X
	if width <= 0 {
		return
	}
	ratio := func(x float64) float64 { return (x - b.P1.X) / width }

	// end points
	left := CalcShiftRadii(true, p.Spanning, o.Slur.EndpointFlexibility)
	right := CalcShiftRadii(false, p.Spanning, o.Slur.EndpointFlexibility)
	var shiftLeft, shiftRight float64
	for _, ih := range inner {
		pts := sa.Positioner(ih).Curve.Points
		for _, q := range []geom.Point{pts[0], geom.CalcPointAtBezier(pts, 0.5), pts[3]} {
			y := geom.CalcBezierAtPosition(b.Points(), q.X)
			intersection := (q.Y-y)*sg + 1.5*margin
			ShiftEndPoints(&shiftLeft, &shiftRight, ratio(q.X), intersection, left, right, true, true)
		}
	}
	if shiftLeft > 0 || shiftRight > 0 {
		l1, l2 := b.EstimateCurveParamForControlPoints()
		b.P1.Y += sg * shiftLeft
		b.P2.Y += sg * shiftRight
		b.C1.Y += sg * ((1-l1)*shiftLeft + l1*shiftRight)
		b.C2.Y += sg * ((1-l2)*shiftLeft + l2*shiftRight)
		b.UpdateControlPointParams()
	}

	// control points
	pts := b.Points()
	var constraints []ControlPointConstraint
	for _, ih := range inner {
		ipts := sa.Positioner(ih).Curve.Points
		samples := []geom.Point{ipts[1], ipts[2]}
		for _, t := range []float64{0, 0.25, 0.5, 0.75, 1} {
			samples = append(samples, geom.CalcPointAtBezier(ipts, t))
		}
		for _, q := range samples {
			if math.Abs(0.5-ratio(q.X)) >= 0.45 {
				continue
			}
			intersection := (q.Y-geom.CalcBezierAtPosition(pts, q.X))*sg + margin
			if intersection <= 0 {
				continue
			}
			t := geom.CalcBezierParamAtPosition(pts, q.X)
			constraints = append(constraints, ControlPointConstraint{
				A: 3 * (1 - t) * (1 - t) * t,
				B: 3 * (1 - t) * t * t,
				C: intersection,
			})
		}
	}
	x, y := SolveControlPointConstraints(constraints, o.Slur.Symmetry)
	b.SetLeftControlHeight(b.LeftControlHeight() + x)
	b.SetRightControlHeight(b.RightControlHeight() + y)
	b.UpdateControlPoints()
	adjustShape(&b, d, unit)

	p.UpdateCurvePosition(b.Points(), b.Angle(), c.Thickness, c.Dir)
	ctx.Logger.Debug("fitted outer slur", "id", p.ID, "inner", len(inner), "shift", []float64{x, y})
}
