package layout

import (
	"github.com/matzehuels/stavelayout/pkg/score"
)

// CalcBBoxOverflows feeds the self boxes of the layer elements into the
// overflow of their staff. Elements reaching past a staff edge by more than
// half a staff line are added to that edge's box list. Clefs of the system
// score definition only count towards the clef overflow.
func (sa *SystemAligner) CalcBBoxOverflows(ctx *Context) {
	o := ctx.Options
	for h := range sa.elements {
		el := &sa.elements[h]
		if el.Kind == score.KindSyl || el.Kind == score.KindFigure || !el.HasSelfBB() {
			continue
		}
		al := &sa.staves[el.Staff]
		above := al.CalcOverflowAbove(el.BoundingBox, true)
		below := al.CalcOverflowBelow(el.BoundingBox, true)

		if el.ScoreDef && el.Kind == score.KindClef {
			al.SetClefOverflowAbove(above)
			al.SetClefOverflowBelow(below)
			continue
		}

		threshold := o.StaffLineWidth / 2 * al.Unit(o)
		if above > threshold {
			al.SetOverflowAbove(above)
			al.addAbove(elementRef(h))
		}
		if below > threshold {
			al.SetOverflowBelow(below)
			al.addBelow(elementRef(h))
		}
	}
}
