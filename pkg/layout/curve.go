package layout

import (
	"math"

	"github.com/matzehuels/stavelayout/pkg/geom"
	"github.com/matzehuels/stavelayout/pkg/score"
)

// CurveDir is the side of its notes a curve is drawn on.
type CurveDir int

const (
	CurveDirNone CurveDir = iota
	CurveDirAbove
	CurveDirBelow
	CurveDirMixed
)

func (d CurveDir) String() string {
	switch d {
	case CurveDirAbove:
		return score.CurveAbove
	case CurveDirBelow:
		return score.CurveBelow
	case CurveDirMixed:
		return score.CurveMixed
	}
	return "none"
}

// SpannedElement is a layer element lying under a curve.
type SpannedElement struct {
	Element   int  // element handle
	IsBelow   bool // the element lies below the curve
	Discarded bool
}

// Curve is the geometric capability of a slur, tie, l.v. or phrase
// positioner. Points are relative to the positioner's staff.
type Curve struct {
	Points    [4]geom.Point
	Angle     float64
	Thickness float64
	Dir       CurveDir
	// StartAbove tells, for mixed curves, whether the start point lies above
	// the notes.
	StartAbove bool

	Spanned             []SpannedElement
	RequestedStaffSpace float64

	Start int // element handle, -1 when unresolved
	End   int

	// CrossStaff is set when start and end lie on different staves.
	// OtherStaff is the staff handle of the far end.
	CrossStaff bool
	OtherStaff int
	// Primary is the positioner carrying the solved geometry when this
	// positioner mirrors a cross-staff curve on its other staff, or -1.
	Primary int

	Bulge    []score.BulgePoint
	DirAttr  string
	Skip     bool
	Adjusted bool
}

func newCurve(ev *score.Event) *Curve {
	return &Curve{
		Start:      -1,
		End:        -1,
		OtherStaff: -1,
		Primary:    -1,
		Bulge:      ev.Bulge,
		DirAttr:    ev.CurveDir,
	}
}

// IsAbove reports whether the curve lies above its notes at both ends.
func (c *Curve) IsAbove() bool { return c.Dir == CurveDirAbove }

// ThickCurves returns the upper and lower outline of the drawn curve.
func (c *Curve) ThickCurves() (top, bottom [4]geom.Point) {
	top, bottom = geom.CalcThickBezier(c.Points, c.Thickness, c.Angle)
	if top[1].Y < bottom[1].Y {
		top, bottom = bottom, top
	}
	return top, bottom
}

// UpdateCurvePosition stores a solved curve and recomputes the positioner's
// content box from the thick outline.
func (p *Positioner) UpdateCurvePosition(points [4]geom.Point, angle, thickness float64, dir CurveDir) {
	c := p.Curve
	c.Points = points
	c.Angle = angle
	c.Thickness = thickness
	c.Dir = dir
	top, bottom := c.ThickCurves()
	r := geom.ApproximateBezierBoundingBox(top).Union(geom.ApproximateBezierBoundingBox(bottom))
	p.bbox = geom.NewBoundingBox()
	p.bbox.UpdateContentBBoxX(r.Left, r.Right)
	p.bbox.UpdateContentBBoxY(r.Bottom, r.Top)
	p.drawingYRel = 0
}

// CalcRequestedStaffSpace returns the extra room (above, below) the curve
// asks for at the edges of al. It is zero unless the curve requested space
// and protrudes past the overflow al already has on that side.
func (p *Positioner) CalcRequestedStaffSpace(al *StaffAlignment) (float64, float64) {
	c := p.Curve
	if c == nil || c.RequestedStaffSpace <= 0 || !p.HasContentBB() {
		return 0, 0
	}
	req := c.RequestedStaffSpace
	protrudesAbove := al.CalcOverflowAbove(p.bbox, false) > al.OverflowAbove()
	protrudesBelow := al.CalcOverflowBelow(p.bbox, false) > al.OverflowBelow()

	switch c.Dir {
	case CurveDirAbove:
		if protrudesAbove {
			return req, 0
		}
	case CurveDirBelow:
		if protrudesBelow {
			return 0, req
		}
	case CurveDirMixed:
		if c.CrossStaff && c.OtherStaff >= 0 {
			if c.OtherStaff > p.Staff {
				if protrudesBelow {
					return 0, req
				}
				return 0, 0
			}
			if protrudesAbove {
				return req, 0
			}
			return 0, 0
		}
		if protrudesAbove || protrudesBelow {
			return req / 2, req / 2
		}
	}
	return 0, 0
}

// CrossStaffOverflows tells which edges of staff a cross-staff curve must
// leave alone: the side facing the other staff is spanned space, not
// overflow.
func (c *Curve) CrossStaffOverflows(staff int) (skipAbove, skipBelow bool) {
	if !c.CrossStaff || c.OtherStaff < 0 {
		return false, false
	}
	if c.OtherStaff > staff {
		return false, true
	}
	return true, false
}

// CalcLeftRightAdjustment returns how far the curve would have to move at
// the left and right edge of box to clear it by margin. discard is set when
// the content of box lies outside the horizontal range of the curve.
func (c *Curve) CalcLeftRightAdjustment(box geom.BoundingBox, curveAbove bool, margin float64) (left, right float64, discard bool) {
	p1, p2 := c.Points[0], c.Points[3]
	if !box.HasSelfBB() || box.ContentRight() < p1.X-margin || box.ContentLeft() > p2.X+margin {
		return 0, 0, true
	}
	top, bottom := c.ThickCurves()
	yAt := func(pts [4]geom.Point, x float64) float64 {
		switch {
		case x <= p1.X:
			return pts[0].Y
		case x >= p2.X:
			return pts[3].Y
		}
		return geom.CalcBezierAtPosition(pts, x)
	}
	if curveAbove {
		yLeft := yAt(bottom, box.SelfLeft())
		yRight := yAt(bottom, box.SelfRight())
		left = math.Max(box.SelfTop()-yLeft+margin, 0)
		right = math.Max(box.SelfTop()-yRight+margin, 0)
	} else {
		yLeft := yAt(top, box.SelfLeft())
		yRight := yAt(top, box.SelfRight())
		left = math.Max(yLeft-box.SelfBottom()+margin, 0)
		right = math.Max(yRight-box.SelfBottom()+margin, 0)
	}
	return left, right, false
}

// CalcDirectionalAdjustment is the larger of the two adjustments of
// CalcLeftRightAdjustment.
func (c *Curve) CalcDirectionalAdjustment(box geom.BoundingBox, curveAbove bool, margin float64) (float64, bool) {
	left, right, discard := c.CalcLeftRightAdjustment(box, curveAbove, margin)
	return math.Max(left, right), discard
}

// MoveFrontHorizontal shifts the start point and first control point.
func (c *Curve) MoveFrontHorizontal(d float64) {
	c.Points[0].X += d
	c.Points[1].X += d
}

// MoveBackHorizontal shifts the end point and second control point.
func (c *Curve) MoveBackHorizontal(d float64) {
	c.Points[2].X += d
	c.Points[3].X += d
}

// MoveFrontVertical lifts the start point and first control point.
func (c *Curve) MoveFrontVertical(d float64) {
	c.Points[0].Y += d
	c.Points[1].Y += d
}

// MoveBackVertical lifts the end point and second control point.
func (c *Curve) MoveBackVertical(d float64) {
	c.Points[2].Y += d
	c.Points[3].Y += d
}

// intersectsCurve returns the vertical shift that clears the staff-relative
// box of p from the curve positioner cp by margin, or zero when they do not
// collide.
func (p *Positioner) intersectsCurve(cp *Positioner, margin float64) float64 {
	c := cp.Curve
	box := p.Box()
	if !box.HasContentBB() {
		return 0
	}
	left, right := box.ContentLeft(), box.ContentRight()
	if right < c.Points[0].X || left > c.Points[3].X {
		return 0
	}
	top, bottom := c.ThickCurves()
	if p.Place == PlaceAbove {
		y := geom.CurveTopBetween(top, left, right)
		if box.ContentBottom() < y+margin {
			return y + margin - box.ContentBottom()
		}
		return 0
	}
	y := geom.CurveBottomBetween(bottom, left, right)
	if box.ContentTop() > y-margin {
		return y - margin - box.ContentTop()
	}
	return 0
}
