package layout

import (
	"math"

	"github.com/matzehuels/stavelayout/pkg/geom"
	"github.com/matzehuels/stavelayout/pkg/score"
)

// AdjustStaffOverlap computes, for every staff, the overlap with the staff
// above it: the extra distance needed beyond the larger of the two facing
// overflows because boxes of both staves share the same horizontal range.
// It also applies the clef and bracket floors and records the spacing
// requested by curves.
func (sa *SystemAligner) AdjustStaffOverlap(ctx *Context) {
	o := ctx.Options
	for i := 1; i < len(sa.staves); i++ {
		prev, cur := &sa.staves[i-1], &sa.staves[i]
		spacing := math.Max(prev.overflowBelow, cur.overflowAbove)

		if clef := prev.clefOverflowBelow + cur.clefOverflowAbove; clef > spacing {
			cur.SetOverlap(clef - spacing)
		}
		cur.AdjustBracketGroupSpacing(prev, o, spacing)

		dist := prev.yRel - prev.staffHeight - cur.yRel
		if req := math.Max(cur.requestedSpaceAbove, prev.requestedSpaceBelow); req > 0 {
			cur.SetRequestedSpacing(dist + req)
		}

		if cur.isSentinel {
			continue
		}

		unit := prev.Unit(o)
		for _, pr := range prev.belowBoxes {
			pb, pself := sa.refBox(pr)
			ob := prev.CalcOverflowBelow(pb, pself)
			for _, cr := range cur.aboveBoxes {
				cb, cself := sa.refBox(cr)
				margin := 0.0
				if sa.isExtenderRef(pr) || sa.isExtenderRef(cr) {
					margin = 4 * unit
				}
				if !horizontalOverlap(pb, pself, cb, cself, margin) {
					continue
				}
				oa := cur.CalcOverflowAbove(cb, cself)
				minSpace := 0.0
				if sa.needsArticSpace(pr, cr) {
					minSpace = unit
				}
				if need := ob + oa + minSpace; spacing < need {
					cur.SetOverlap(need - spacing)
				}
			}
		}
	}
}

func horizontalOverlap(a geom.BoundingBox, aself bool, b geom.BoundingBox, bself bool, margin float64) bool {
	if aself && bself {
		return a.HorizontalSelfOverlap(b, margin)
	}
	return a.HorizontalContentOverlap(b, margin)
}

func (sa *SystemAligner) isExtenderRef(r BoxRef) bool {
	return !r.IsElement() && sa.positioners[r.Positioner].isExtenderLine()
}

// needsArticSpace reports whether two facing boxes are an articulation and
// another articulation or a note, which are kept a unit apart.
func (sa *SystemAligner) needsArticSpace(a, b BoxRef) bool {
	if !a.IsElement() || !b.IsElement() {
		return false
	}
	ka, kb := sa.elements[a.Element].Kind, sa.elements[b.Element].Kind
	if ka != score.KindArtic {
		ka, kb = kb, ka
	}
	return ka == score.KindArtic && (kb == score.KindArtic || kb == score.KindNote)
}
