// Package slur shapes the curves of slurs, ties, l.v. and phrases so that
// they clear the notes they span.
//
// Each curve starts from a default shape next to its start and end notes.
// The end points are then moved away from obstacles close to them and the
// control points are raised by the smallest amount that clears the
// remaining obstacles, found by solving a small set of linear constraints.
// A final shape pass keeps the curve from becoming flat or concave. Slurs
// nested in other slurs are solved first and then treated as obstacles of
// their outer slur.
//
// All geometry is relative to the staff of the curve positioner, y up.
package slur

import (
	"math"

	"github.com/matzehuels/stavelayout/pkg/geom"
	"github.com/matzehuels/stavelayout/pkg/layout"
	"github.com/matzehuels/stavelayout/pkg/score"
)

// Adjuster implements layout.CurveAdjuster.
type Adjuster struct{}

var _ layout.CurveAdjuster = Adjuster{}

// AdjustCurves solves every curve of the system staff by staff, then
// separates curves sharing a note and fits outer slurs over inner ones.
// Curves mirrored on a second staff copy the solution of their primary.
func (Adjuster) AdjustCurves(ctx *layout.Context, sa *layout.SystemAligner) {
	for h := 0; h < sa.NumStaves()-1; h++ {
		handles := sa.CurvePositioners(h)
		for _, ph := range handles {
			adjustCurve(ctx, sa, ph)
		}
		adjustNested(ctx, sa, handles)
	}
	syncMirrors(sa)
}

// adjustCurve places the initial curve of ph and, for slurs and phrases,
// adjusts it to its spanned elements.
func adjustCurve(ctx *layout.Context, sa *layout.SystemAligner, ph int) {
	o := ctx.Options
	p := sa.Positioner(ph)
	c := p.Curve
	unit := sa.Staff(p.Staff).Unit(o)

	d := CalcDirection(ctx, sa, ph)
	c.StartAbove = d.StartAbove
	points := CalcInitialCurve(ctx, sa, ph, d)
	thickness := o.Slur.Thickness * unit
	if p.Class.IsTieLike() {
		thickness = o.Tie.Thickness * unit
	}
	bez := geom.NewBezierCurve(points)
	p.UpdateCurvePosition(points, bez.Angle(), thickness, d.Dir)

	if !p.Class.IsTieLike() && points[3].X > points[0].X {
		s := newSolver(ctx, sa, ph, d)
		s.adjustSlur()
		p.UpdateCurvePosition(s.bez.Points(), s.bez.Angle(), thickness, d.Dir)
		c.RequestedStaffSpace = s.requestedStaffSpace
		c.Spanned = s.record()
	}
	c.Adjusted = true
	ctx.Logger.Debug("placed curve", "id", p.ID, "dir", d.Dir, "points", c.Points)
}

// syncMirrors copies the geometry of cross-staff curves to their positioner
// on the other staff.
func syncMirrors(sa *layout.SystemAligner) {
	for ph := 0; ph < sa.NumPositioners(); ph++ {
		m := sa.Positioner(ph)
		if m.Curve == nil || m.Curve.Primary < 0 {
			continue
		}
		p := sa.Positioner(m.Curve.Primary)
		pc := p.Curve
		if !pc.Adjusted {
			continue
		}
		dy := sa.StaffOffset(p.Staff, m.Staff)
		pts := pc.Points
		for i := range pts {
			pts[i].Y += dy
		}
		m.UpdateCurvePosition(pts, pc.Angle, pc.Thickness, pc.Dir)
		m.Curve.StartAbove = pc.StartAbove
		m.Curve.Adjusted = true
	}
}

// =============================================================================
// Solver state
// =============================================================================

// obstacle is a layer element under a curve, its box relative to the curve
// staff.
type obstacle struct {
	handle    int
	box       geom.BoundingBox
	kind      string
	layer     int
	below     bool
	discarded bool
}

type solver struct {
	ctx *layout.Context
	sa  *layout.SystemAligner
	p   *layout.Positioner
	c   *layout.Curve
	dir Direction

	unit   float64
	margin float64
	bez    geom.BezierCurve

	obstacles           []obstacle
	requestedStaffSpace float64
}

func newSolver(ctx *layout.Context, sa *layout.SystemAligner, ph int, d Direction) *solver {
	o := ctx.Options
	p := sa.Positioner(ph)
	s := &solver{
		ctx:  ctx,
		sa:   sa,
		p:    p,
		c:    p.Curve,
		dir:  d,
		unit: sa.Staff(p.Staff).Unit(o),
		bez:  geom.NewBezierCurve(p.Curve.Points),
	}
	s.margin = o.Slur.Margin * s.unit
	s.bez.SetControlSides(d.leftAbove(), d.rightAbove())
	s.bez.UpdateControlPointParams()
	s.collectObstacles()
	return s
}

// sync writes the working curve back to the positioner so that the curve
// queries of the layout package see it.
func (s *solver) sync() {
	s.c.Points = s.bez.Points()
	s.c.Angle = s.bez.Angle()
}

// collectObstacles gathers the layer elements of the staves of the curve,
// leaving out its start and end notes and their stems.
func (s *solver) collectObstacles() {
	sa := s.sa
	skip := map[int]bool{s.c.Start: true, s.c.End: true}
	for _, h := range []int{s.c.Start, s.c.End} {
		if stem := sa.Element(h).Stem; stem >= 0 {
			skip[stem] = true
		}
	}
	other := -1
	if s.c.CrossStaff {
		other = s.c.OtherStaff
	}
	for h := 0; h < sa.NumElements(); h++ {
		el := sa.Element(h)
		if skip[h] || el.ScoreDef || !el.HasSelfBB() {
			continue
		}
		if el.Staff != s.p.Staff && el.Staff != other {
			continue
		}
		switch el.Kind {
		case score.KindSyl, score.KindFigure, score.KindClef, score.KindKeySig, score.KindMeterSig:
			continue
		}
		s.obstacles = append(s.obstacles, obstacle{
			handle: h,
			box:    elementBox(sa, h, s.p.Staff),
			kind:   el.Kind,
			layer:  el.Layer,
		})
	}
	s.classifySides()
}

// classifySides decides for every obstacle whether it lies below the curve.
// Mixed curves compare the obstacle centre with the chord.
func (s *solver) classifySides() {
	for i := range s.obstacles {
		ob := &s.obstacles[i]
		switch s.dir.Dir {
		case layout.CurveDirAbove:
			ob.below = true
		case layout.CurveDirBelow:
			ob.below = false
		default:
			x := (ob.box.SelfLeft() + ob.box.SelfRight()) / 2
			y := (ob.box.SelfTop() + ob.box.SelfBottom()) / 2
			ob.below = y < s.chordY(x)
		}
	}
}

func (s *solver) chordY(x float64) float64 {
	p1, p2 := s.bez.P1, s.bez.P2
	if p2.X == p1.X {
		return p1.Y
	}
	return p1.Y + (x-p1.X)*(p2.Y-p1.Y)/(p2.X-p1.X)
}

func (s *solver) ratio(x float64) float64 {
	return (x - s.bez.P1.X) / (s.bez.P2.X - s.bez.P1.X)
}

// intersections returns how far the curve must move at the left and right
// edge of ob to clear it by the margin.
func (s *solver) intersections(ob *obstacle) (float64, float64, bool) {
	return s.c.CalcLeftRightAdjustment(ob.box, ob.below, s.margin)
}

func (s *solver) record() []layout.SpannedElement {
	out := make([]layout.SpannedElement, 0, len(s.obstacles))
	for _, ob := range s.obstacles {
		out = append(out, layout.SpannedElement{Element: ob.handle, IsBelow: ob.below, Discarded: ob.discarded})
	}
	return out
}

// =============================================================================
// Adjustment
// =============================================================================

// adjustSlur runs the adjustment steps on the working curve.
func (s *solver) adjustSlur() {
	o := s.ctx.Options
	s.sync()
	s.FilterSpannedElements()

	near := s.DetectCollisionsNearEnd()
	if near.MetricAtStart > 0.5 || near.MetricAtEnd > 0.5 {
		s.useSecondaryEndPoints(near.MetricAtStart > 0.5, near.MetricAtEnd > 0.5)
	}

	left, right := s.CalcEndPointShift()
	s.ApplyEndPointShift(left, right)

	if s.applyBulge() {
		return
	}

	if geom.CalcDistance(s.bez.P1, s.bez.P2) > o.Slur.Symmetry*40*s.unit {
		s.CalcControlPointOffset()
	}

	adj := s.CalcControlPointVerticalShift()
	s.applyVerticalShift(adj)
	s.requestedStaffSpace = adj.RequestedStaffSpace
	s.AdjustSlurShape()
}

// FilterSpannedElements discards obstacles outside the horizontal range of
// the curve and tuplet numbers. Obstacles cutting deep into the curve next
// to an end point are dropped when they belong to another layer than the
// note at that end: the curve is not meant to go around them.
func (s *solver) FilterSpannedElements() {
	sa := s.sa
	startLayer := sa.Element(s.c.Start).Layer
	endLayer := sa.Element(s.c.End).Layer
	p1, p2 := s.bez.P1, s.bez.P2
	for i := range s.obstacles {
		ob := &s.obstacles[i]
		if ob.box.ContentRight() < p1.X-s.margin || ob.box.ContentLeft() > p2.X+s.margin {
			ob.discarded = true
			continue
		}
		if ob.kind == score.KindTupletNum {
			ob.discarded = true
			continue
		}
		shift, out := s.c.CalcDirectionalAdjustment(ob.box, ob.below, s.margin)
		if out {
			ob.discarded = true
			continue
		}
		height := ob.box.SelfTop() - ob.box.SelfBottom()
		if shift <= height+4*s.margin {
			continue
		}
		ratio := s.ratio((ob.box.SelfLeft() + ob.box.SelfRight()) / 2)
		switch {
		case ratio < 0.05 && ob.layer != startLayer:
			ob.discarded = true
		case ratio > 0.95 && ob.layer != endLayer:
			ob.discarded = true
		}
	}
}

// NearEndCollision measures how hard obstacles press on each end point:
// the largest intersection divided by the distance from the end point.
type NearEndCollision struct {
	MetricAtStart float64
	MetricAtEnd   float64
}

// DetectCollisionsNearEnd evaluates the obstacles against both end points.
func (s *solver) DetectCollisionsNearEnd() NearEndCollision {
	var nc NearEndCollision
	for i := range s.obstacles {
		ob := &s.obstacles[i]
		if ob.discarded {
			continue
		}
		l, r, out := s.intersections(ob)
		if out || (l <= 0 && r <= 0) {
			continue
		}
		y := ob.box.SelfTop()
		if !ob.below {
			y = ob.box.SelfBottom()
		}
		dl := math.Max(geom.CalcDistance(s.bez.P1, geom.Pt(ob.box.SelfLeft(), y)), 1)
		dr := math.Max(geom.CalcDistance(s.bez.P2, geom.Pt(ob.box.SelfRight(), y)), 1)
		nc.MetricAtStart = math.Max(nc.MetricAtStart, l/dl)
		nc.MetricAtEnd = math.Max(nc.MetricAtEnd, r/dr)
	}
	return nc
}

// useSecondaryEndPoints moves crowded end points from the note head to the
// tip of its stem when the stem points to the curve side.
func (s *solver) useSecondaryEndPoints(atStart, atEnd bool) {
	move := func(h int, above bool) (geom.Point, bool) {
		el := s.sa.Element(h)
		if el.Stem < 0 {
			return geom.Point{}, false
		}
		stem := elementBox(s.sa, el.Stem, s.p.Staff)
		note := elementBox(s.sa, h, s.p.Staff)
		x := (stem.SelfLeft() + stem.SelfRight()) / 2
		if above && stem.SelfTop() > note.SelfTop() {
			return geom.Pt(x, stem.SelfTop()+s.unit), true
		}
		if !above && stem.SelfBottom() < note.SelfBottom() {
			return geom.Pt(x, stem.SelfBottom()-s.unit), true
		}
		return geom.Point{}, false
	}
	if atStart {
		if pt, ok := move(s.c.Start, s.dir.leftAbove()); ok {
			s.c.MoveFrontHorizontal(pt.X - s.bez.P1.X)
			s.c.MoveFrontVertical(pt.Y - s.bez.P1.Y)
		}
	}
	if atEnd {
		if pt, ok := move(s.c.End, s.dir.rightAbove()); ok {
			s.c.MoveBackHorizontal(pt.X - s.bez.P2.X)
			s.c.MoveBackVertical(pt.Y - s.bez.P2.Y)
		}
	}
	s.bez.SetPoints(s.c.Points)
	s.bez.UpdateControlPointParams()
	s.sync()
}

// CalcEndPointShift returns how far each end point moves away from the
// obstacles close to it.
func (s *solver) CalcEndPointShift() (float64, float64) {
	o := s.ctx.Options
	left := CalcShiftRadii(true, s.p.Spanning, o.Slur.EndpointFlexibility)
	right := CalcShiftRadii(false, s.p.Spanning, o.Slur.EndpointFlexibility)
	la, ra := s.dir.leftAbove(), s.dir.rightAbove()

	var shiftLeft, shiftRight float64
	for i := range s.obstacles {
		ob := &s.obstacles[i]
		if ob.discarded {
			continue
		}
		l, r, out := s.intersections(ob)
		if out {
			continue
		}
		innerLeft, innerRight := ob.below == la, ob.below == ra
		ShiftEndPoints(&shiftLeft, &shiftRight, s.ratio(ob.box.SelfLeft()), l, left, right, innerLeft, innerRight)
		ShiftEndPoints(&shiftLeft, &shiftRight, s.ratio(ob.box.SelfRight()), r, left, right, innerLeft, innerRight)
	}
	return shiftLeft, shiftRight
}

// ApplyEndPointShift moves the end points away from the notes and drags
// the control points along in proportion to their curve parameter.
func (s *solver) ApplyEndPointShift(shiftLeft, shiftRight float64) {
	if shiftLeft == 0 && shiftRight == 0 {
		return
	}
	b := &s.bez
	signL, signR := sign(s.dir.leftAbove()), sign(s.dir.rightAbove())
	l1, l2 := b.EstimateCurveParamForControlPoints()
	b.P1.Y += signL * shiftLeft
	b.P2.Y += signR * shiftRight
	b.C1.Y += signL*(1-l1)*shiftLeft + signR*l1*shiftRight
	b.C2.Y += signL*(1-l2)*shiftLeft + signR*l2*shiftRight
	b.UpdateControlPointParams()
	s.sync()
}

// applyBulge shapes the curve to requested distances from its chord and
// reports whether the curve had any.
func (s *solver) applyBulge() bool {
	var bulge []score.BulgePoint
	for _, bp := range s.c.Bulge {
		if bp.Distance > 0 && bp.Position > 0 && bp.Position < 100 {
			bulge = append(bulge, bp)
		}
	}
	if len(bulge) == 0 {
		return false
	}

	b := &s.bez
	angle := b.Angle()
	origin := b.P1
	b.Rotate(-angle, origin)
	b.UpdateControlPointParams()

	lmin, lmax := 0.66, 0.33
	for _, bp := range bulge {
		t := bp.Position / 100
		lmin = math.Min(lmin, t)
		lmax = math.Max(lmax, t)
	}
	lmin /= 2
	lmax = 1 - (1-lmax)/2
	width := b.P2.X - b.P1.X
	b.SetLeftControlOffset(lmin * width)
	b.SetRightControlOffset((1 - lmax) * width)
	b.UpdateControlPoints()

	constraints := make([]ControlPointConstraint, 0, len(bulge))
	for _, bp := range bulge {
		t := bp.Position / 100
		a, c := 3*(1-t)*(1-t)*t, 3*(1-t)*t*t
		have := a*b.LeftControlHeight() + c*b.RightControlHeight()
		constraints = append(constraints, ControlPointConstraint{A: a, B: c, C: bp.Distance*s.unit - have})
	}
	x, y := SolveControlPointConstraints(constraints, s.ctx.Options.Slur.Symmetry)
	b.SetLeftControlHeight(b.LeftControlHeight() + x)
	b.SetRightControlHeight(b.RightControlHeight() + y)
	b.UpdateControlPoints()
	b.Rotate(angle, origin)
	b.UpdateControlPointParams()
	s.sync()
	s.AdjustSlurShape()
	return true
}

// CalcControlPointOffset pulls the control points towards the end points
// when obstacles close to an end would need a steeper start than the
// current control polygon gives. It reports false when the curve has a flat
// end and is left alone.
func (s *solver) CalcControlPointOffset() bool {
	b := &s.bez
	b.UpdateControlPointParams()
	if b.LeftControlOffset() <= 0 || b.RightControlOffset() <= 0 {
		return false
	}
	leftSlope := math.Abs(geom.CalcSlope(b.P1, b.C1))
	rightSlope := math.Abs(geom.CalcSlope(b.C2, b.P2))
	if leftSlope == 0 || rightSlope == 0 {
		return false
	}
	la, ra := s.dir.leftAbove(), s.dir.rightAbove()

	leftMax, rightMax := leftSlope, rightSlope
	for i := range s.obstacles {
		ob := &s.obstacles[i]
		if ob.discarded {
			continue
		}
		l, r, out := s.intersections(ob)
		if out || (l <= 0 && r <= 0) {
			continue
		}
		y := ob.box.SelfTop() + s.margin
		if !ob.below {
			y = ob.box.SelfBottom() - s.margin
		}
		if x := ob.box.SelfLeft(); x > b.P1.X && ob.below == la {
			if h := (y - b.P1.Y) * sign(la); h > 0 {
				leftMax = math.Max(leftMax, RotateSlope(h/(x-b.P1.X), 10, 2.5, true))
			}
		}
		if x := ob.box.SelfRight(); x < b.P2.X && ob.below == ra {
			if h := (y - b.P2.Y) * sign(ra); h > 0 {
				rightMax = math.Max(rightMax, RotateSlope(h/(b.P2.X-x), 10, 2.5, true))
			}
		}
	}

	minOffset := (b.P2.X - b.P1.X) / 20
	if leftMax > leftSlope {
		b.SetLeftControlOffset(math.Max(minOffset, math.Abs(b.LeftControlHeight())/leftMax))
	}
	if rightMax > rightSlope {
		b.SetRightControlOffset(math.Max(minOffset, math.Abs(b.RightControlHeight())/rightMax))
	}
	b.UpdateControlPoints()
	s.sync()
	return true
}

// ControlPointAdjustment is the vertical move of both control points.
// RequestedStaffSpace is the room a mixed curve needs between its staves.
type ControlPointAdjustment struct {
	LeftShift           float64
	RightShift          float64
	MoveUpwards         bool
	RequestedStaffSpace float64
}

// CalcControlPointVerticalShift builds one constraint per obstacle edge in
// the inner part of the curve and solves the side with the larger demand.
func (s *solver) CalcControlPointVerticalShift() ControlPointAdjustment {
	pts := s.bez.Points()
	var above, below []ControlPointConstraint
	var maxAbove, maxBelow float64
	for i := range s.obstacles {
		ob := &s.obstacles[i]
		if ob.discarded {
			continue
		}
		l, r, out := s.intersections(ob)
		if out {
			continue
		}
		for _, edge := range [2][2]float64{{ob.box.SelfLeft(), l}, {ob.box.SelfRight(), r}} {
			x, intersection := edge[0], edge[1]
			if intersection <= 0 || math.Abs(0.5-s.ratio(x)) >= 0.45 {
				continue
			}
			t := geom.CalcBezierParamAtPosition(pts, x)
			con := ControlPointConstraint{A: 3 * (1 - t) * (1 - t) * t, B: 3 * (1 - t) * t * t, C: intersection}
			if ob.below {
				below = append(below, con)
				maxBelow = math.Max(maxBelow, intersection)
			} else {
				above = append(above, con)
				maxAbove = math.Max(maxAbove, intersection)
			}
		}
	}

	symmetry := s.ctx.Options.Slur.Symmetry
	var adj ControlPointAdjustment
	if maxAbove > maxBelow {
		adj.LeftShift, adj.RightShift = SolveControlPointConstraints(above, symmetry)
	} else {
		adj.MoveUpwards = true
		adj.LeftShift, adj.RightShift = SolveControlPointConstraints(below, symmetry)
	}

	if s.dir.Dir == layout.CurveDirMixed {
		la, ra := s.dir.leftAbove(), s.dir.rightAbove()
		switch {
		case la && !ra:
			adj.RequestedStaffSpace = math.Max(s.bez.P1.Y-s.bez.P2.Y+6*s.margin, 0)
		case !la && ra:
			adj.RequestedStaffSpace = math.Max(s.bez.P2.Y-s.bez.P1.Y+6*s.margin, 0)
		}
		if maxAbove > 0 && maxBelow > 0 {
			adj.RequestedStaffSpace = math.Max(adj.RequestedStaffSpace, maxAbove+maxBelow)
		}
	}
	return adj
}

func (s *solver) applyVerticalShift(adj ControlPointAdjustment) {
	b := &s.bez
	b.UpdateControlPointParams()
	leftSign, rightSign := -1.0, -1.0
	if s.dir.leftAbove() == adj.MoveUpwards {
		leftSign = 1
	}
	if s.dir.rightAbove() == adj.MoveUpwards {
		rightSign = 1
	}
	b.SetLeftControlHeight(b.LeftControlHeight() + leftSign*adj.LeftShift)
	b.SetRightControlHeight(b.RightControlHeight() + rightSign*adj.RightShift)
	b.UpdateControlPoints()
	s.sync()
}

// AdjustSlurShape keeps the control points of a one-sided curve steep
// enough to avoid flat curves and keeps the curve convex. The control
// points are finally kept in order along x.
func (s *solver) AdjustSlurShape() {
	adjustShape(&s.bez, s.dir, s.unit)
	s.sync()
}

func adjustShape(b *geom.BezierCurve, d Direction, unit float64) {
	if d.Dir != layout.CurveDirMixed {
		angle := b.Angle()
		origin := b.P1
		b.Rotate(-angle, origin)
		b.UpdateControlPointParams()

		above := d.Dir == layout.CurveDirAbove
		sg := sign(above)
		minAngle := GetMinControlPointAngle(b, angle, unit)
		mid := geom.Pt((b.P1.X+b.P2.X)/2, (b.P1.Y+b.P2.Y)/2+sg*6*unit)
		ignoreLeft := b.C1.X <= b.P1.X
		ignoreRight := b.C2.X >= b.P2.X

		slopeLeft := geom.CalcSlope(b.P1, b.C1)
		slopeRight := geom.CalcSlope(b.C2, b.P2)
		if above {
			slopeLeft = math.Max(slopeLeft, math.Min(RotateSlope(0, minAngle, 1, true), geom.CalcSlope(b.P1, mid)))
			slopeRight = math.Min(slopeRight, math.Max(RotateSlope(0, minAngle, 1, false), geom.CalcSlope(mid, b.P2)))
		} else {
			slopeLeft = math.Min(slopeLeft, math.Max(RotateSlope(0, minAngle, 1, false), geom.CalcSlope(b.P1, mid)))
			slopeRight = math.Max(slopeRight, math.Min(RotateSlope(0, minAngle, 1, true), geom.CalcSlope(mid, b.P2)))
		}
		if !ignoreLeft {
			b.SetLeftControlHeight(slopeLeft * sg * b.LeftControlOffset())
		}
		if !ignoreRight {
			b.SetRightControlHeight(slopeRight * -sg * b.RightControlOffset())
		}
		b.UpdateControlPoints()

		// convexity
		if !ignoreLeft {
			limit := RotateSlope(geom.CalcSlope(b.P1, b.C2), 3, 10, above)
			if cur := geom.CalcSlope(b.P1, b.C1); (above && cur < limit) || (!above && cur > limit) {
				b.SetLeftControlHeight(limit * sg * b.LeftControlOffset())
			}
		}
		if !ignoreRight {
			limit := RotateSlope(geom.CalcSlope(b.C1, b.P2), 3, 10, !above)
			if cur := geom.CalcSlope(b.C2, b.P2); (above && cur > limit) || (!above && cur < limit) {
				b.SetRightControlHeight(limit * -sg * b.RightControlOffset())
			}
		}
		b.UpdateControlPoints()
		b.Rotate(angle, origin)
	}

	b.C1.X = clamp(b.C1.X, b.P1.X, b.P2.X)
	b.C2.X = clamp(b.C2.X, b.C1.X, b.P2.X)
	b.UpdateControlPointParams()
}

func sign(above bool) float64 {
	if above {
		return 1
	}
	return -1
}
