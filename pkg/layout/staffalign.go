package layout

import (
	"math"
	"sort"

	"github.com/matzehuels/stavelayout/pkg/config"
	"github.com/matzehuels/stavelayout/pkg/geom"
)

// SpacingType classifies the space above a staff.
type SpacingType int

const (
	SpacingNone SpacingType = iota
	SpacingSystem
	SpacingStaff
	SpacingBrace
	SpacingBracket
)

func (s SpacingType) String() string {
	switch s {
	case SpacingSystem:
		return "system"
	case SpacingStaff:
		return "staff"
	case SpacingBrace:
		return "brace"
	case SpacingBracket:
		return "bracket"
	}
	return "none"
}

// BoxRef points at an entry of a staff edge list: either a layer element or
// a positioner of the same system.
type BoxRef struct {
	Element    int // element handle, or -1
	Positioner int // positioner handle, or -1
}

func elementRef(h int) BoxRef    { return BoxRef{Element: h, Positioner: -1} }
func positionerRef(h int) BoxRef { return BoxRef{Element: -1, Positioner: h} }

// IsElement reports whether the ref points at a layer element.
func (r BoxRef) IsElement() bool { return r.Element >= 0 }

// groupEdge records the staff group a staff opens or closes.
type groupEdge struct {
	group     int
	symbol    string
	isFirst   bool
	isLast    bool
	bracketed bool
}

// StaffAlignment holds the vertical state of one staff in a system. The last
// alignment of every system is a sentinel without a staff that marks the
// bottom of the system.
type StaffAlignment struct {
	N          int // staff number, 0 for the sentinel
	isSentinel bool
	bound      bool

	lines       int
	staffHeight float64
	staffSize   float64

	yRel float64

	overflowAbove     float64
	overflowBelow     float64
	clefOverflowAbove float64
	clefOverflowBelow float64
	overlap           float64

	requestedSpaceAbove float64
	requestedSpaceBelow float64
	requestedSpacing    float64

	versesAbove map[int]struct{}
	versesBelow map[int]struct{}

	spacingType   SpacingType
	spacing       *float64
	justification *float64
	group         groupEdge

	aboveBoxes []BoxRef
	belowBoxes []BoxRef

	positioners []int
	sorted      bool
}

func newStaffAlignment() StaffAlignment {
	return StaffAlignment{
		versesAbove: make(map[int]struct{}),
		versesBelow: make(map[int]struct{}),
	}
}

func newSentinel() StaffAlignment {
	al := newStaffAlignment()
	al.isSentinel = true
	al.bound = true
	return al
}

// SetStaff binds the alignment to a staff with the given number of lines
// and size (percent). It may be called once.
func (a *StaffAlignment) SetStaff(n, lines int, size float64, o *config.Options, spacingType SpacingType) {
	if a.bound {
		panic("layout: staff alignment bound twice")
	}
	a.bound = true
	a.N = n
	a.lines = lines
	a.staffSize = size
	a.staffHeight = float64(lines-1) * o.DoubleUnit(size)
	a.spacingType = spacingType
}

func (a *StaffAlignment) mustBeBound() {
	if !a.bound {
		panic("layout: staff alignment used before SetStaff")
	}
}

// IsSentinel reports whether the alignment is the bottom sentinel.
func (a *StaffAlignment) IsSentinel() bool { return a.isSentinel }

func (a *StaffAlignment) StaffHeight() float64      { return a.staffHeight }
func (a *StaffAlignment) StaffSize() float64        { return a.staffSize }
func (a *StaffAlignment) YRel() float64             { return a.yRel }
func (a *StaffAlignment) OverflowAbove() float64    { return a.overflowAbove }
func (a *StaffAlignment) OverflowBelow() float64    { return a.overflowBelow }
func (a *StaffAlignment) Overlap() float64          { return a.overlap }
func (a *StaffAlignment) RequestedSpacing() float64 { return a.requestedSpacing }
func (a *StaffAlignment) SpacingType() SpacingType  { return a.spacingType }

func (a *StaffAlignment) ClefOverflowAbove() float64 { return a.clefOverflowAbove }
func (a *StaffAlignment) ClefOverflowBelow() float64 { return a.clefOverflowBelow }

func (a *StaffAlignment) RequestedSpaceAbove() float64 { return a.requestedSpaceAbove }
func (a *StaffAlignment) RequestedSpaceBelow() float64 { return a.requestedSpaceBelow }

// Unit returns the drawing unit scaled to the staff size.
func (a *StaffAlignment) Unit(o *config.Options) float64 { return o.UnitAt(a.staffSize) }

// SetYRel only ever lowers the staff.
func (a *StaffAlignment) SetYRel(y float64) {
	if y < a.yRel {
		a.yRel = y
	}
}

// shiftYRel moves the staff unconditionally; used by vertical justification.
func (a *StaffAlignment) shiftYRel(dy float64) { a.yRel += dy }

// SetOverflowAbove keeps the maximum value seen.
func (a *StaffAlignment) SetOverflowAbove(v float64) {
	if v > a.overflowAbove {
		a.overflowAbove = v
	}
}

// SetOverflowBelow keeps the maximum value seen.
func (a *StaffAlignment) SetOverflowBelow(v float64) {
	if v > a.overflowBelow {
		a.overflowBelow = v
	}
}

func (a *StaffAlignment) SetClefOverflowAbove(v float64) {
	if v > a.clefOverflowAbove {
		a.clefOverflowAbove = v
	}
}

func (a *StaffAlignment) SetClefOverflowBelow(v float64) {
	if v > a.clefOverflowBelow {
		a.clefOverflowBelow = v
	}
}

// SetOverlap keeps the maximum value seen.
func (a *StaffAlignment) SetOverlap(v float64) {
	if v > a.overlap {
		a.overlap = v
	}
}

func (a *StaffAlignment) SetRequestedSpaceAbove(v float64) {
	if v > a.requestedSpaceAbove {
		a.requestedSpaceAbove = v
	}
}

func (a *StaffAlignment) SetRequestedSpaceBelow(v float64) {
	if v > a.requestedSpaceBelow {
		a.requestedSpaceBelow = v
	}
}

func (a *StaffAlignment) SetRequestedSpacing(v float64) {
	if v > a.requestedSpacing {
		a.requestedSpacing = v
	}
}

// CalcOverflowAbove returns how far box reaches above the top staff line.
// Layer elements are measured by their self box, floating objects by their
// content box.
func (a *StaffAlignment) CalcOverflowAbove(box geom.BoundingBox, self bool) float64 {
	if self {
		return box.SelfTop()
	}
	return box.ContentTop()
}

// CalcOverflowBelow returns how far box reaches below the bottom staff line.
func (a *StaffAlignment) CalcOverflowBelow(box geom.BoundingBox, self bool) float64 {
	if self {
		return -(box.SelfBottom() + a.staffHeight)
	}
	return -(box.ContentBottom() + a.staffHeight)
}

// AddVerseN records a verse drawn with the staff.
func (a *StaffAlignment) AddVerseN(n int, place Place) {
	if place == PlaceAbove {
		a.versesAbove[n] = struct{}{}
		return
	}
	a.versesBelow[n] = struct{}{}
}

func verseCount(verses map[int]struct{}, collapse bool) int {
	if collapse {
		return len(verses)
	}
	highest := 0
	for n := range verses {
		if n > highest {
			highest = n
		}
	}
	return highest
}

// VerseCountAbove returns the number of verse lines above the staff. With
// collapse, missing verse numbers take no space.
func (a *StaffAlignment) VerseCountAbove(collapse bool) int {
	return verseCount(a.versesAbove, collapse)
}

// VerseCountBelow is VerseCountAbove for verses under the staff.
func (a *StaffAlignment) VerseCountBelow(collapse bool) int {
	return verseCount(a.versesBelow, collapse)
}

// HasVersesBelow reports whether lyrics are drawn under the staff.
func (a *StaffAlignment) HasVersesBelow() bool { return len(a.versesBelow) > 0 }

// GetMinimumSpacing returns the configured minimal distance between the top
// line of the staff and the bottom line of the staff above.
func (a *StaffAlignment) GetMinimumSpacing(o *config.Options) float64 {
	a.mustBeBound()
	unit := o.Unit
	if a.spacing != nil {
		return *a.spacing * unit
	}
	staff := o.Spacing.Staff * unit
	switch a.spacingType {
	case SpacingSystem:
		return staff / 2
	case SpacingStaff:
		return staff
	case SpacingBrace:
		if o.Spacing.BraceGroup < 0 {
			return staff
		}
		return o.Spacing.BraceGroup * unit
	case SpacingBracket:
		if o.Spacing.BracketGroup < 0 {
			return staff
		}
		return o.Spacing.BracketGroup * unit
	}
	return staff / 2
}

// CalcMinimumRequiredSpacing returns the distance the content of this staff
// and of the staff above (prev, nil for the first staff) needs.
func (a *StaffAlignment) CalcMinimumRequiredSpacing(prev *StaffAlignment, o *config.Options) float64 {
	a.mustBeBound()
	if prev == nil {
		return math.Max(a.overflowAbove, a.clefOverflowAbove) + a.overlap
	}
	var spacing float64
	if prev.HasVersesBelow() {
		spacing = prev.overflowBelow + a.overflowAbove
	} else {
		spacing = math.Max(prev.overflowBelow, a.overflowAbove) + a.overlap
	}
	if !a.isSentinel {
		spacing += o.Margins.StaffBottom * o.Unit
	}
	return spacing
}

// AdjustBracketGroupSpacing raises the overlap so that the bracket glyphs
// closing the group above and opening the group of this staff do not
// collide.
func (a *StaffAlignment) AdjustBracketGroupSpacing(prev *StaffAlignment, o *config.Options, spacing float64) {
	if prev == nil || a.isSentinel {
		return
	}
	if !prev.group.isLast || !a.group.isFirst || prev.group.group == a.group.group {
		return
	}
	if !prev.group.bracketed && !a.group.bracketed {
		return
	}
	unit := o.Unit
	floor := o.Glyphs.BracketThickness * unit
	if prev.group.bracketed {
		floor += o.Glyphs.BracketBottom * unit
	}
	if a.group.bracketed {
		floor += o.Glyphs.BracketTop * unit
	}
	if spacing < floor {
		a.SetOverlap(floor - spacing)
	}
}

// JustificationFactor returns the weight of the space above the staff for
// vertical justification.
func (a *StaffAlignment) JustificationFactor(o *config.Options) float64 {
	if a.justification != nil {
		return *a.justification
	}
	switch a.spacingType {
	case SpacingStaff:
		return o.Justification.Staff
	case SpacingBrace:
		return o.Justification.Brace
	case SpacingBracket:
		return o.Justification.Bracket
	}
	return 0
}

// Positioners returns the handles of the positioners attached to the staff.
func (a *StaffAlignment) Positioners() []int { return a.positioners }

// AboveBoxes returns the edge list of objects placed above the staff.
func (a *StaffAlignment) AboveBoxes() []BoxRef { return a.aboveBoxes }

// BelowBoxes returns the edge list of objects placed below the staff.
func (a *StaffAlignment) BelowBoxes() []BoxRef { return a.belowBoxes }

func (a *StaffAlignment) addAbove(r BoxRef) { a.aboveBoxes = append(a.aboveBoxes, r) }
func (a *StaffAlignment) addBelow(r BoxRef) { a.belowBoxes = append(a.belowBoxes, r) }

// SortPositioners orders the staff's positioners by class, then placement,
// then by how far their content reaches from the staff when resting on it.
// The sort is stable and happens once.
func (a *StaffAlignment) SortPositioners(positioners []Positioner, o *config.Options) {
	if a.sorted {
		return
	}
	sort.SliceStable(a.positioners, func(i, j int) bool {
		pi, pj := &positioners[a.positioners[i]], &positioners[a.positioners[j]]
		if pi.Class != pj.Class {
			return pi.Class < pj.Class
		}
		if pi.Place != pj.Place {
			return pi.Place < pj.Place
		}
		return restingReach(pi, o) < restingReach(pj, o)
	})
	a.sorted = true
}

// restingReach is the distance from the staff to the far edge of p's
// content when p sits at its default offset.
func restingReach(p *Positioner, o *config.Options) float64 {
	if p.Curve != nil || !p.HasContentBB() {
		return 0
	}
	var margin float64
	if p.Place == PlaceAbove {
		margin = math.Max(p.Class.BottomMargin(o), p.Class.StaffDistance(o))
	} else {
		margin = math.Max(p.Class.TopMargin(o), p.Class.StaffDistance(o))
	}
	return margin + p.bbox.Content.Height()
}

// ResetState clears everything computed by the layout passes. The staff
// binding, verses and positioner handles survive.
func (a *StaffAlignment) ResetState() {
	a.yRel = 0
	a.overflowAbove = 0
	a.overflowBelow = 0
	a.clefOverflowAbove = 0
	a.clefOverflowBelow = 0
	a.overlap = 0
	a.requestedSpaceAbove = 0
	a.requestedSpaceBelow = 0
	a.requestedSpacing = 0
	a.aboveBoxes = a.aboveBoxes[:0]
	a.belowBoxes = a.belowBoxes[:0]
}
