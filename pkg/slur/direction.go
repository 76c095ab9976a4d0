package slur

import (
	"github.com/matzehuels/stavelayout/pkg/layout"
	"github.com/matzehuels/stavelayout/pkg/score"
)

// Direction is the side a curve is drawn on. For mixed curves StartAbove
// tells on which side of its notes the start point lies; the end point lies
// on the other side.
type Direction struct {
	Dir        layout.CurveDir
	StartAbove bool
}

// leftAbove and rightAbove return the side of each end point.
func (d Direction) leftAbove() bool {
	if d.Dir == layout.CurveDirMixed {
		return d.StartAbove
	}
	return d.Dir == layout.CurveDirAbove
}

func (d Direction) rightAbove() bool {
	if d.Dir == layout.CurveDirMixed {
		return !d.StartAbove
	}
	return d.Dir == layout.CurveDirAbove
}

// CalcDirection chooses the side of the curve positioner ph:
//
//  1. an explicit above or below curvedir wins;
//  2. mixed is honoured for cross-staff curves only, starting below the
//     upper staff and ending above the lower one;
//  3. notes with mixed stem directions under the curve put it above, or
//     below for a cross-staff curve;
//  4. otherwise the curve goes opposite the stem of its start note, and
//     stemless start notes decide by their side of the staff centre.
func CalcDirection(ctx *layout.Context, sa *layout.SystemAligner, ph int) Direction {
	p := sa.Positioner(ph)
	c := p.Curve
	start, end := sa.Element(c.Start), sa.Element(c.End)

	switch c.DirAttr {
	case score.CurveAbove:
		return Direction{Dir: layout.CurveDirAbove}
	case score.CurveBelow:
		return Direction{Dir: layout.CurveDirBelow}
	case score.CurveMixed:
		if c.CrossStaff {
			return Direction{Dir: layout.CurveDirMixed, StartAbove: start.Staff > end.Staff}
		}
		ctx.Logger.Warn("mixed curve direction needs two staves", "id", p.ID)
	}

	if up, down := stemDirections(sa, c); up && down {
		if c.CrossStaff {
			return Direction{Dir: layout.CurveDirBelow}
		}
		return Direction{Dir: layout.CurveDirAbove}
	}

	switch start.StemDir {
	case score.StemUp:
		return Direction{Dir: layout.CurveDirBelow}
	case score.StemDown:
		return Direction{Dir: layout.CurveDirAbove}
	}
	centre := -sa.Staff(start.Staff).StaffHeight() / 2
	if (start.SelfTop()+start.SelfBottom())/2 > centre {
		return Direction{Dir: layout.CurveDirAbove}
	}
	return Direction{Dir: layout.CurveDirBelow}
}

// stemDirections reports which stem directions occur among the notes from
// the start to the end of the curve.
func stemDirections(sa *layout.SystemAligner, c *layout.Curve) (up, down bool) {
	start, end := sa.Element(c.Start), sa.Element(c.End)
	left, right := start.SelfLeft(), end.SelfRight()
	for h := 0; h < sa.NumElements(); h++ {
		el := sa.Element(h)
		if el.Staff != start.Staff && el.Staff != end.Staff {
			continue
		}
		if el.SelfLeft() < left || el.SelfRight() > right {
			continue
		}
		switch el.StemDir {
		case score.StemUp:
			up = true
		case score.StemDown:
			down = true
		}
	}
	return up, down
}
