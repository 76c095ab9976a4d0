package layout

import (
	"github.com/matzehuels/stavelayout/pkg/geom"
)

// =============================================================================
// Output types
// =============================================================================

// Page is the laid out document. All y coordinates grow upwards; systems
// are placed below the page top at y = 0.
type Page struct {
	Title   string         `json:"title,omitempty"`
	Height  float64        `json:"height"`
	Systems []SystemLayout `json:"systems"`
	Skipped []Skipped      `json:"skipped,omitempty"`
}

// SystemLayout is one laid out system.
type SystemLayout struct {
	YRel          float64       `json:"y_rel"`
	Height        float64       `json:"height"`
	OverflowAbove float64       `json:"overflow_above"`
	OverflowBelow float64       `json:"overflow_below"`
	Staves        []StaffLayout `json:"staves"`
}

// StaffLayout is the final position of a staff and of everything floating
// around it. YRel is relative to the system.
type StaffLayout struct {
	N             int              `json:"n"`
	YRel          float64          `json:"y_rel"`
	Lines         int              `json:"lines"`
	StaffHeight   float64          `json:"staff_height"`
	Spacing       string           `json:"spacing"`
	OverflowAbove float64          `json:"overflow_above"`
	OverflowBelow float64          `json:"overflow_below"`
	Overlap       float64          `json:"overlap"`
	Floating      []FloatingLayout `json:"floating,omitempty"`
	Curves        []CurveLayout    `json:"curves,omitempty"`
}

// FloatingLayout is the placement of a floating object on one staff. Box is
// relative to the staff.
type FloatingLayout struct {
	ID          string    `json:"id"`
	Class       string    `json:"class"`
	Place       string    `json:"place"`
	DrawingYRel float64   `json:"drawing_y_rel"`
	Box         geom.Rect `json:"box"`
}

// CurveLayout is the final geometry of a curve on one staff. Points are
// relative to the staff.
type CurveLayout struct {
	ID         string        `json:"id"`
	Class      string        `json:"class"`
	Dir        string        `json:"dir"`
	Points     [4]geom.Point `json:"points"`
	Angle      float64       `json:"angle"`
	Thickness  float64       `json:"thickness"`
	CrossStaff bool          `json:"cross_staff,omitempty"`
}

// =============================================================================
// Page assembly
// =============================================================================

// StackSystems places the systems one below the other, spacing.system apart,
// and returns the height of the content.
func StackSystems(ctx *Context, systems []*SystemAligner) float64 {
	o := ctx.Options
	var y float64
	for i, sa := range systems {
		if i > 0 {
			y -= o.Spacing.System * o.Unit
		}
		sa.SetYRel(y)
		y -= sa.Height()
	}
	return -y
}

// JustifyY distributes the space left on a page of the given height over
// the gaps between systems and staves, in proportion to their justification
// factors. It does nothing when the content already fills the page.
func JustifyY(ctx *Context, systems []*SystemAligner, pageHeight, contentHeight float64) {
	o := ctx.Options
	space := pageHeight - contentHeight
	if space <= 0 || len(systems) == 0 {
		return
	}
	sum := o.Justification.System * float64(len(systems)-1)
	for _, sa := range systems {
		sum += sa.JustificationSum()
	}
	if sum <= 0 {
		return
	}
	unit := space / sum

	var shift float64
	for i, sa := range systems {
		if i > 0 {
			shift += o.Justification.System * unit
		}
		sa.SetYRel(sa.YRel() - shift)

		var inner float64
		for j := range sa.staves {
			al := &sa.staves[j]
			inner += al.JustificationFactor(o) * unit
			al.shiftYRel(-inner)
		}
		shift += inner
	}
	ctx.Logger.Debug("justified page", "space", space, "unit", unit)
}

// NewPage stacks and, when enabled, justifies the systems and collects their
// final geometry.
func NewPage(ctx *Context, title string, systems []*SystemAligner) *Page {
	o := ctx.Options
	height := StackSystems(ctx, systems)
	if o.Justification.Vertical && o.Justification.PageHeight > 0 {
		JustifyY(ctx, systems, o.Justification.PageHeight, height)
		height = o.Justification.PageHeight
	}

	page := &Page{Title: title, Height: height, Skipped: ctx.SkippedEvents()}
	for _, sa := range systems {
		page.Systems = append(page.Systems, sa.Layout())
	}
	return page
}

// Layout returns the final geometry of the system.
func (sa *SystemAligner) Layout() SystemLayout {
	out := SystemLayout{
		YRel:          sa.yRel,
		Height:        sa.Height(),
		OverflowAbove: sa.OverflowAbove(),
		OverflowBelow: sa.OverflowBelow(),
	}
	for h := 0; h < len(sa.staves)-1; h++ {
		al := &sa.staves[h]
		st := StaffLayout{
			N:             al.N,
			YRel:          al.yRel,
			Lines:         al.lines,
			StaffHeight:   al.staffHeight,
			Spacing:       al.spacingType.String(),
			OverflowAbove: al.overflowAbove,
			OverflowBelow: al.overflowBelow,
			Overlap:       al.overlap,
		}
		for _, ph := range al.positioners {
			p := &sa.positioners[ph]
			if p.Curve != nil {
				if p.Curve.Skip || !p.HasContentBB() {
					continue
				}
				st.Curves = append(st.Curves, CurveLayout{
					ID:         p.ID,
					Class:      p.Class.String(),
					Dir:        p.Curve.Dir.String(),
					Points:     p.Curve.Points,
					Angle:      p.Curve.Angle,
					Thickness:  p.Curve.Thickness,
					CrossStaff: p.Curve.CrossStaff,
				})
				continue
			}
			if !p.HasContentBB() {
				continue
			}
			st.Floating = append(st.Floating, FloatingLayout{
				ID:          p.ID,
				Class:       p.Class.String(),
				Place:       p.Place.String(),
				DrawingYRel: p.drawingYRel,
				Box:         p.Box().Content,
			})
		}
		out.Staves = append(out.Staves, st)
	}
	return out
}
