package layout

import "math"

// AlignVertically gives every staff its initial position: each staff sits
// its minimum spacing below the bottom line of the staff above.
func (sa *SystemAligner) AlignVertically(ctx *Context) {
	o := ctx.Options
	var cum float64
	for i := range sa.staves {
		al := &sa.staves[i]
		cum += al.GetMinimumSpacing(o)
		al.SetYRel(-cum)
		cum += al.staffHeight
	}
}

// AdjustYPos pushes the staves down by the spacing their content requires
// beyond the minimum spacing. Shifts accumulate towards the bottom of the
// system.
func (sa *SystemAligner) AdjustYPos(ctx *Context) {
	o := ctx.Options
	var cum float64
	for i := range sa.staves {
		al := &sa.staves[i]
		var prev *StaffAlignment
		if i > 0 {
			prev = &sa.staves[i-1]
		}
		minSpacing := al.GetMinimumSpacing(o)
		required := math.Max(al.requestedSpacing, al.CalcMinimumRequiredSpacing(prev, o))
		if required > minSpacing {
			cum += required - minSpacing
		}
		al.SetYRel(al.yRel - cum)
	}
}
