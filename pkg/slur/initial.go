package slur

import (
	"math"

	"github.com/matzehuels/stavelayout/pkg/geom"
	"github.com/matzehuels/stavelayout/pkg/layout"
)

// elementBox returns the box of element h relative to staff.
func elementBox(sa *layout.SystemAligner, h, staff int) geom.BoundingBox {
	el := sa.Element(h)
	b := el.BoundingBox
	if el.Staff != staff {
		dy := sa.StaffOffset(el.Staff, staff)
		b.Self = b.Self.Translate(0, dy)
		b.Content = b.Content.Translate(0, dy)
	}
	return b
}

func sideY(b geom.BoundingBox, above bool, gap float64) float64 {
	if above {
		return b.SelfTop() + gap
	}
	return b.SelfBottom() - gap
}

// CalcInitialCurve returns the unadjusted curve of positioner ph: end points
// a unit off the start and end notes on the curve side and control points
// at the default height. Ties and l.v. run flat between the note heads.
func CalcInitialCurve(ctx *layout.Context, sa *layout.SystemAligner, ph int, d Direction) [4]geom.Point {
	o := ctx.Options
	p := sa.Positioner(ph)
	c := p.Curve
	unit := sa.Staff(p.Staff).Unit(o)
	start := elementBox(sa, c.Start, p.Staff)
	end := elementBox(sa, c.End, p.Staff)
	la, ra := d.leftAbove(), d.rightAbove()

	if p.Class.IsTieLike() {
		p1 := geom.Pt(start.SelfRight(), sideY(start, la, unit/2))
		p2 := geom.Pt(end.SelfLeft(), sideY(end, ra, unit/2))
		if c.Start == c.End || p2.X-p1.X < unit {
			p2 = geom.Pt(p1.X+4*unit, p1.Y)
		}
		dist := p2.X - p1.X
		return controlPoints(p1, p2, clamp(dist/10, unit/2, 1.5*unit), dist/4, la, ra)
	}

	p1 := geom.Pt((start.SelfLeft()+start.SelfRight())/2, sideY(start, la, unit))
	p2 := geom.Pt((end.SelfLeft()+end.SelfRight())/2, sideY(end, ra, unit))
	if d.Dir != layout.CurveDirMixed {
		p1, p2 = limitSlope(p1, p2, d.Dir == layout.CurveDirAbove, o.Slur.MaxSlope)
	}
	dist := geom.CalcDistance(p1, p2)
	height := clamp(o.Slur.CurveFactor*dist/10, o.Slur.MinHeight*unit, o.Slur.MaxHeight*unit) * 4 / 3
	offset := math.Min(dist/4, 8*unit)
	return controlPoints(p1, p2, height, offset, la, ra)
}

// limitSlope moves the end point nearer to the notes away from them until
// the chord is no steeper than maxDegrees.
func limitSlope(p1, p2 geom.Point, above bool, maxDegrees float64) (geom.Point, geom.Point) {
	dx := p2.X - p1.X
	if dx <= 0 || maxDegrees <= 0 || maxDegrees >= 90 {
		return p1, p2
	}
	limit := math.Tan(maxDegrees*math.Pi/180) * dx
	dy := p2.Y - p1.Y
	if math.Abs(dy) <= limit {
		return p1, p2
	}
	switch {
	case above && dy > 0:
		p1.Y = p2.Y - limit
	case above:
		p2.Y = p1.Y - limit
	case dy > 0:
		p2.Y = p1.Y + limit
	default:
		p1.Y = p2.Y + limit
	}
	return p1, p2
}

// controlPoints builds the curve p1-p2 with both control points offset
// along the chord and raised perpendicular to it.
func controlPoints(p1, p2 geom.Point, height, offset float64, leftAbove, rightAbove bool) [4]geom.Point {
	bez := geom.NewBezierCurve([4]geom.Point{p1, p1, p2, p2})
	angle := bez.Angle()
	bez.Rotate(-angle, p1)
	bez.SetControlSides(leftAbove, rightAbove)
	bez.SetLeftControlOffset(offset)
	bez.SetRightControlOffset(offset)
	bez.SetLeftControlHeight(height)
	bez.SetRightControlHeight(height)
	bez.UpdateControlPoints()
	bez.Rotate(angle, p1)
	return bez.Points()
}
