package layout

// CurveAdjuster solves the geometry of the curve positioners of a system.
// It runs after the layer element overflows are known and before the
// floating objects are placed, so that they can avoid the curves.
type CurveAdjuster interface {
	AdjustCurves(ctx *Context, sa *SystemAligner)
}

// Run lays out one system: vertical alignment, overflows, curves, floating
// objects and staff spacing. Systems with cross-staff curves are laid out
// a second time, with the curves drawn against the staff positions of the
// first run; this happens once at most. Objects placed between staves are
// centred last.
func Run(ctx *Context, sa *SystemAligner, curves CurveAdjuster) {
	sa.runPasses(ctx, curves)
	if curves != nil && sa.HasCrossStaffCurves() {
		ctx.Logger.Debug("redrawing cross-staff curves")
		sa.frozen = make([]float64, len(sa.staves))
		for i := range sa.staves {
			sa.frozen[i] = sa.staves[i].yRel
		}
		sa.runPasses(ctx, curves)
		sa.frozen = nil
	}
	sa.AdjustFloatingPositionersBetween(ctx)
}

func (sa *SystemAligner) runPasses(ctx *Context, curves CurveAdjuster) {
	sa.Reset()
	sa.AlignVertically(ctx)
	sa.CalcBBoxOverflows(ctx)
	if curves != nil {
		curves.AdjustCurves(ctx, sa)
	}
	sa.AdjustFloatingPositioners(ctx)
	sa.AdjustStaffOverlap(ctx)
	sa.AdjustYPos(ctx)
}

// HasCrossStaffCurves reports whether a curve of the system joins two
// staves.
func (sa *SystemAligner) HasCrossStaffCurves() bool {
	for i := range sa.positioners {
		if c := sa.positioners[i].Curve; c != nil && c.CrossStaff && !c.Skip {
			return true
		}
	}
	return false
}

// StaffOffset returns what to add to a y coordinate relative to staff from
// to make it relative to staff to. While cross-staff curves are redrawn it
// uses the staff positions of the first run.
func (sa *SystemAligner) StaffOffset(from, to int) float64 {
	if sa.frozen != nil {
		return sa.frozen[from] - sa.frozen[to]
	}
	return sa.staves[from].yRel - sa.staves[to].yRel
}
