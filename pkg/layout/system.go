package layout

import (
	"fmt"

	"github.com/matzehuels/stavelayout/pkg/config"
	"github.com/matzehuels/stavelayout/pkg/geom"
	"github.com/matzehuels/stavelayout/pkg/score"
)

// SystemAligner owns every staff alignment, positioner and layer element of
// one system. All cross references are integer handles into its slices; the
// slices do not grow once Build returns.
type SystemAligner struct {
	opts *config.Options

	staves      []StaffAlignment
	positioners []Positioner
	elements    []Element
	byID        map[string]int
	staffByN    map[int]int

	spacingTypes map[int]SpacingType
	groupEdges   map[int]groupEdge

	yRel float64
	// frozen holds the staff positions cross-staff curves are drawn against
	// during the second run.
	frozen []float64
}

// NewSystemAligner returns an aligner holding only the bottom sentinel.
func NewSystemAligner(o *config.Options) *SystemAligner {
	return &SystemAligner{
		opts:         o,
		staves:       []StaffAlignment{newSentinel()},
		byID:         make(map[string]int),
		staffByN:     make(map[int]int),
		spacingTypes: make(map[int]SpacingType),
		groupEdges:   make(map[int]groupEdge),
	}
}

// =============================================================================
// Staff alignments
// =============================================================================

// GetStaffAlignment returns the alignment at idx, creating and binding it to
// def when it does not exist yet. The sentinel always stays last.
func (sa *SystemAligner) GetStaffAlignment(idx int, def *score.StaffDef) *StaffAlignment {
	if idx < len(sa.staves)-1 {
		return &sa.staves[idx]
	}
	if idx != len(sa.staves)-1 {
		panic(fmt.Sprintf("layout: staff alignment %d requested out of order", idx))
	}
	al := newStaffAlignment()
	al.SetStaff(def.N, def.Lines, def.Size, sa.opts, sa.CalculateSpacingAbove(def))
	al.spacing = def.Spacing
	al.justification = def.JustificationFactor
	al.group = sa.groupEdges[def.N]

	sentinel := sa.staves[len(sa.staves)-1]
	sa.staves[len(sa.staves)-1] = al
	sa.staves = append(sa.staves, sentinel)
	sa.staffByN[def.N] = idx
	return &sa.staves[idx]
}

// NumStaves returns the number of alignments including the sentinel.
func (sa *SystemAligner) NumStaves() int { return len(sa.staves) }

// Staff returns the alignment with handle h.
func (sa *SystemAligner) Staff(h int) *StaffAlignment { return &sa.staves[h] }

// StaffByN returns the handle of staff n.
func (sa *SystemAligner) StaffByN(n int) (int, bool) {
	h, ok := sa.staffByN[n]
	return h, ok
}

// Bottom returns the sentinel.
func (sa *SystemAligner) Bottom() *StaffAlignment { return &sa.staves[len(sa.staves)-1] }

// OverflowAbove returns the overflow above the first staff.
func (sa *SystemAligner) OverflowAbove() float64 {
	if len(sa.staves) < 2 {
		return 0
	}
	return sa.staves[0].overflowAbove
}

// OverflowBelow returns the overflow below the last staff.
func (sa *SystemAligner) OverflowBelow() float64 {
	if len(sa.staves) < 2 {
		return 0
	}
	return sa.staves[len(sa.staves)-2].overflowBelow
}

// JustificationSum returns the total justification weight of the staves.
func (sa *SystemAligner) JustificationSum() float64 {
	var sum float64
	for i := range sa.staves {
		sum += sa.staves[i].JustificationFactor(sa.opts)
	}
	return sum
}

// Height returns the distance from the system top to its bottom sentinel.
func (sa *SystemAligner) Height() float64 { return -sa.Bottom().yRel }

// YRel returns the offset of the system from the page top.
func (sa *SystemAligner) YRel() float64 { return sa.yRel }

// SetYRel places the system on the page.
func (sa *SystemAligner) SetYRel(y float64) { sa.yRel = y }

// Options returns the options the aligner was built with.
func (sa *SystemAligner) Options() *config.Options { return sa.opts }

// =============================================================================
// Spacing types
// =============================================================================

// SetSpacing derives the spacing type and bracket group edges of every staff
// from the staff-group tree.
func (sa *SystemAligner) SetSpacing(root *score.StaffGroup) {
	defs := root.StaffDefs()
	for i, def := range defs {
		if i == 0 {
			sa.spacingTypes[def.N] = SpacingSystem
			continue
		}
		sa.spacingTypes[def.N] = spacingFromGroups(groupChain(root, def.N), def.N)
	}

	groupID := 0
	var walk func(g *score.StaffGroup, isRoot bool)
	walk = func(g *score.StaffGroup, isRoot bool) {
		groupID++
		id := groupID
		members := g.StaffDefs()
		for _, m := range g.Members {
			if m.Group != nil {
				walk(m.Group, false)
				continue
			}
			n := m.Staff.N
			if isRoot && (g.Symbol == "" || g.Symbol == score.SymbolNone) {
				groupID++
				sa.groupEdges[n] = groupEdge{group: groupID, isFirst: true, isLast: true}
				continue
			}
			sa.groupEdges[n] = groupEdge{
				group:     id,
				symbol:    g.Symbol,
				isFirst:   members[0].N == n,
				isLast:    members[len(members)-1].N == n,
				bracketed: g.Symbol == score.SymbolBracket,
			}
		}
	}
	walk(root, true)
}

// CalculateSpacingAbove classifies the space above the staff of def.
func (sa *SystemAligner) CalculateSpacingAbove(def *score.StaffDef) SpacingType {
	if t, ok := sa.spacingTypes[def.N]; ok {
		return t
	}
	return SpacingStaff
}

// groupChain returns the groups containing staff n, innermost first.
func groupChain(g *score.StaffGroup, n int) []*score.StaffGroup {
	for _, m := range g.Members {
		if m.Staff != nil && m.Staff.N == n {
			return []*score.StaffGroup{g}
		}
		if m.Group != nil {
			if chain := groupChain(m.Group, n); chain != nil {
				return append(chain, g)
			}
		}
	}
	return nil
}

// spacingFromGroups climbs the chain of staff n; the first group in which
// the staff is not the first member decides.
func spacingFromGroups(chain []*score.StaffGroup, n int) SpacingType {
	for _, g := range chain {
		defs := g.StaffDefs()
		if len(defs) == 0 || defs[0].N == n {
			continue
		}
		switch g.Symbol {
		case score.SymbolBrace:
			return SpacingBrace
		case score.SymbolBracket:
			return SpacingBracket
		}
		return SpacingStaff
	}
	return SpacingStaff
}

// =============================================================================
// Arena access
// =============================================================================

// NumPositioners returns the number of positioners.
func (sa *SystemAligner) NumPositioners() int { return len(sa.positioners) }

// Positioner returns the positioner with handle h.
func (sa *SystemAligner) Positioner(h int) *Positioner { return &sa.positioners[h] }

// NumElements returns the number of layer elements.
func (sa *SystemAligner) NumElements() int { return len(sa.elements) }

// Element returns the element with handle h.
func (sa *SystemAligner) Element(h int) *Element { return &sa.elements[h] }

// ElementByID returns the handle of the element with the given id.
func (sa *SystemAligner) ElementByID(id string) (int, bool) {
	h, ok := sa.byID[id]
	return h, ok
}

// ElementsOnStaff returns the handles of the elements of staff h in document
// order.
func (sa *SystemAligner) ElementsOnStaff(h int) []int {
	var out []int
	for i := range sa.elements {
		if sa.elements[i].Staff == h {
			out = append(out, i)
		}
	}
	return out
}

// CurvePositioners returns the handles of the curve positioners of staff h
// that carry their own geometry, in document order.
func (sa *SystemAligner) CurvePositioners(h int) []int {
	var out []int
	for _, ph := range sa.staves[h].positioners {
		p := &sa.positioners[ph]
		if p.Curve != nil && p.Curve.Primary < 0 {
			out = append(out, ph)
		}
	}
	return out
}

// refBox returns the staff-relative box of an edge-list entry and whether it
// is measured by its self box.
func (sa *SystemAligner) refBox(r BoxRef) (geom.BoundingBox, bool) {
	if r.IsElement() {
		return sa.elements[r.Element].BoundingBox, true
	}
	return sa.positioners[r.Positioner].Box(), false
}

// Reset clears the state of every alignment and positioner. Passes always
// start from a reset aligner.
func (sa *SystemAligner) Reset() {
	for i := range sa.staves {
		sa.staves[i].ResetState()
	}
	for i := range sa.positioners {
		sa.positioners[i].ResetPositioner()
		if c := sa.positioners[i].Curve; c != nil {
			c.Adjusted = false
			c.Spanned = nil
			c.RequestedStaffSpace = 0
		}
	}
}
