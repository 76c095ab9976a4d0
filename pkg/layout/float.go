package layout

import (
	"fmt"
	"math"
	"sort"

	"github.com/matzehuels/stavelayout/pkg/config"
	"github.com/matzehuels/stavelayout/pkg/geom"
	"github.com/matzehuels/stavelayout/pkg/score"
)

// Blocker is an already placed box a positioner has to clear.
type Blocker struct {
	Box  geom.BoundingBox // staff relative
	Self bool             // layer element, measured by its self box
	Kind string           // element kind, empty for positioners
	// Curve is set when the blocker is a curve positioner; its outline is
	// used instead of the box.
	Curve *Positioner
}

func (sa *SystemAligner) blocker(r BoxRef) Blocker {
	if r.IsElement() {
		el := &sa.elements[r.Element]
		return Blocker{Box: el.BoundingBox, Self: true, Kind: el.Kind}
	}
	p := &sa.positioners[r.Positioner]
	b := Blocker{Box: p.Box()}
	if p.Curve != nil {
		b.Curve = p
	}
	return b
}

// CalcDrawingYRel places p on al. A nil blocker sets the resting offset
// for its side. Otherwise p is moved away from the staff until it clears
// the blocker by the class margin. It reports whether p moved.
func (p *Positioner) CalcDrawingYRel(ctx *Context, al *StaffAlignment, b *Blocker) bool {
	o := ctx.Options
	unit := al.Unit(o)
	before := p.drawingYRel

	if b == nil {
		switch p.Place {
		case PlaceAbove:
			dist := math.Max(p.Class.BottomMargin(o), p.Class.StaffDistance(o)) * unit
			p.SetDrawingYRel(dist-p.ContentY1(), true)
		case PlaceBelow, PlaceBetween:
			dist := math.Max(p.Class.TopMargin(o), p.Class.StaffDistance(o)) * unit
			p.SetDrawingYRel(-al.StaffHeight()-dist-p.ContentY2(), true)
		default:
			p.SetDrawingYRel(0, true)
		}
		p.mergeExtender(ctx, al)
		return true
	}

	switch {
	case b.Curve != nil:
		shift := p.intersectsCurve(b.Curve, unit)
		if shift == 0 {
			return false
		}
		p.SetDrawingYRel(p.drawingYRel+shift, false)
	case p.Class == ClassDynam && b.Kind == score.KindBeam:
		return false
	default:
		if !b.Self && !p.Box().VerticalContentOverlap(b.Box, 0) {
			return false
		}
		top, bottom := b.Box.ContentTop(), b.Box.ContentBottom()
		if b.Self {
			top, bottom = b.Box.SelfTop(), b.Box.SelfBottom()
		}
		if p.Place == PlaceAbove {
			p.SetDrawingYRel(top+p.Class.BottomMargin(o)*unit-p.ContentY1(), false)
		} else {
			p.SetDrawingYRel(bottom-p.Class.TopMargin(o)*unit-p.ContentY2(), false)
		}
	}
	p.mergeExtender(ctx, al)
	return p.drawingYRel != before
}

// mergeExtender keeps continuation lines of one object at the same
// distance in every system.
func (p *Positioner) mergeExtender(ctx *Context, al *StaffAlignment) {
	if !p.isExtenderLine() {
		return
	}
	key := fmt.Sprintf("%s/%d", p.ID, al.N)
	y := ctx.extenderYRel(key, p.drawingYRel, p.Place == PlaceAbove)
	p.SetDrawingYRel(y, false)
}

// =============================================================================
// Collision pass
// =============================================================================

type floatStep struct {
	classes  []ClassID
	groups   bool
	between  bool
	monotone bool
}

func step(c ClassID) floatStep          { return floatStep{classes: []ClassID{c}} }
func groupStep(cs ...ClassID) floatStep { return floatStep{classes: cs, groups: true} }

// floatingOrder is the order in which classes claim space around a staff.
var floatingOrder = []floatStep{
	step(ClassLv), step(ClassTie), step(ClassSlur), step(ClassPhrase),
	step(ClassMordent), step(ClassTurn), step(ClassTrill), step(ClassOrnam),
	step(ClassFing), step(ClassDynam), step(ClassHairpin),
	groupStep(ClassDynam, ClassHairpin),
	step(ClassBracketSpan), step(ClassOctave), step(ClassBreath), step(ClassFermata),
	step(ClassDir), groupStep(ClassDir),
	step(ClassCpMark), step(ClassRepeatMark), step(ClassTempo),
	step(ClassPedal), groupStep(ClassPedal),
	step(ClassHarm), {classes: []ClassID{ClassHarm}, groups: true, monotone: true},
	step(ClassEnding), groupStep(ClassEnding),
	step(ClassReh), step(ClassCaesura), step(ClassAnnotScore),
	step(ClassSyl),
	{between: true},
	{classes: []ClassID{ClassDynam, ClassHairpin}, groups: true, between: true},
}

// AdjustFloatingPositioners places every floating object of the system,
// class by class, against the boxes already placed on its staff edge.
func (sa *SystemAligner) AdjustFloatingPositioners(ctx *Context) {
	for _, st := range floatingOrder {
		switch {
		case st.groups:
			sa.AdjustFloatingPositionerGrps(ctx, st.classes, st.between, st.monotone)
		case st.between:
			for h := 0; h < len(sa.staves)-1; h++ {
				sa.adjustStaff(ctx, h, ClassNone, true)
			}
		case st.classes[0] == ClassSyl:
			for h := 0; h < len(sa.staves)-1; h++ {
				sa.adjustVerses(ctx, h)
			}
		default:
			for h := 0; h < len(sa.staves)-1; h++ {
				sa.adjustStaff(ctx, h, st.classes[0], false)
			}
		}
	}
}

func (sa *SystemAligner) adjustStaff(ctx *Context, h int, class ClassID, between bool) {
	o := ctx.Options
	al := &sa.staves[h]
	al.mustBeBound()
	al.SortPositioners(sa.positioners, o)
	unit := al.Unit(o)

	for _, ph := range al.positioners {
		p := &sa.positioners[ph]
		if between {
			if p.Place != PlaceBetween || p.Curve != nil {
				continue
			}
		} else if p.Class != class || p.Place == PlaceBetween {
			continue
		}

		if p.Curve != nil {
			sa.addCurveOverflow(ctx, al, ph)
			continue
		}
		if !p.HasContentBB() {
			continue
		}
		p.CalcDrawingYRel(ctx, al, nil)
		if p.Place == PlaceWithin {
			continue
		}

		margin := 0.0
		if p.isExtenderLine() {
			margin = 4 * unit
		}
		above := p.Place == PlaceAbove
		list := al.belowBoxes
		if above {
			list = al.aboveBoxes
		}
		// Every push moves p away from the staff; the list is swept until a
		// full sweep moves nothing, at most once per entry.
		for sweep := 0; sweep <= len(list); sweep++ {
			moved := false
			for _, r := range list {
				b := sa.blocker(r)
				if !p.Box().HorizontalContentOverlap(b.Box, margin) {
					continue
				}
				if p.CalcDrawingYRel(ctx, al, &b) {
					moved = true
				}
			}
			if !moved {
				break
			}
		}

		box := p.Box()
		if above {
			al.addAbove(positionerRef(ph))
			al.SetOverflowAbove(al.CalcOverflowAbove(box, false))
		} else {
			al.addBelow(positionerRef(ph))
			al.SetOverflowBelow(al.CalcOverflowBelow(box, false))
		}
	}
}

// addCurveOverflow lets a solved curve claim overflow and requested space.
// Curves are never moved here.
func (sa *SystemAligner) addCurveOverflow(ctx *Context, al *StaffAlignment, ph int) {
	p := &sa.positioners[ph]
	c := p.Curve
	if c.Skip || !p.HasContentBB() {
		return
	}
	o := ctx.Options
	threshold := o.StaffLineWidth / 2 * al.Unit(o)
	skipAbove, skipBelow := c.CrossStaffOverflows(p.Staff)

	reqAbove, reqBelow := p.CalcRequestedStaffSpace(al)
	if !skipAbove {
		al.SetRequestedSpaceAbove(reqAbove)
	}
	if !skipBelow {
		al.SetRequestedSpaceBelow(reqBelow)
	}

	box := p.Box()
	if above := al.CalcOverflowAbove(box, false); !skipAbove && above > threshold {
		al.SetOverflowAbove(above)
		al.addAbove(positionerRef(ph))
	}
	if below := al.CalcOverflowBelow(box, false); !skipBelow && below > threshold {
		al.SetOverflowBelow(below)
		al.addBelow(positionerRef(ph))
	}
}

// adjustVerses reserves the lyric lines of staff h. The boxes placed so far
// on that edge are covered by the verses and no longer take part in
// collisions.
func (sa *SystemAligner) adjustVerses(ctx *Context, h int) {
	o := ctx.Options
	al := &sa.staves[h]
	unit := al.Unit(o)
	collapse := o.Lyric.VerseCollapse
	verseHeight := (o.Glyphs.LyricCapHeight - o.Glyphs.LyricDescender) * unit * o.Lyric.HeightFactor
	margin := o.Margins.BottomDefault * unit
	topMargin := o.Lyric.TopMinMargin * unit

	if n := al.VerseCountBelow(collapse); n > 0 {
		al.SetOverflowBelow(math.Max(topMargin, al.overflowBelow) + float64(n)*(verseHeight+margin))
		al.belowBoxes = al.belowBoxes[:0]
	}
	if n := al.VerseCountAbove(collapse); n > 0 {
		al.SetOverflowAbove(math.Max(topMargin, al.overflowAbove) + float64(n)*(verseHeight+margin))
		al.aboveBoxes = al.aboveBoxes[:0]
	}
}

// =============================================================================
// Groups
// =============================================================================

type groupKey struct {
	id    int
	place Place
}

// AdjustFloatingPositionerGrps aligns the members of every group of the
// given classes on each staff: above the staff at the highest member,
// below at the lowest. Monotone groups are additionally stacked in group id
// order so that a later group never sits closer to the staff than an
// earlier one.
func (sa *SystemAligner) AdjustFloatingPositionerGrps(ctx *Context, classes []ClassID, between, monotone bool) {
	o := ctx.Options
	for h := 0; h < len(sa.staves)-1; h++ {
		al := &sa.staves[h]
		unit := al.Unit(o)

		groups := make(map[groupKey][]int)
		for _, ph := range al.positioners {
			p := &sa.positioners[ph]
			if p.GroupID <= 0 || p.Curve != nil || !p.HasContentBB() || !hasClass(classes, p.Class) {
				continue
			}
			if between != (p.Place == PlaceBetween) || p.Place == PlaceWithin {
				continue
			}
			k := groupKey{p.GroupID, p.Place}
			groups[k] = append(groups[k], ph)
		}
		if len(groups) == 0 {
			continue
		}
		keys := make([]groupKey, 0, len(groups))
		for k := range groups {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			if keys[i].place != keys[j].place {
				return keys[i].place < keys[j].place
			}
			return keys[i].id < keys[j].id
		})

		var prevEdge float64
		prevPlace := PlaceNone
		for _, k := range keys {
			members := groups[k]
			above := k.place == PlaceAbove
			target := sa.positioners[members[0]].drawingYRel
			for _, ph := range members[1:] {
				y := sa.positioners[ph].drawingYRel
				if above && y > target || !above && y < target {
					target = y
				}
			}

			if monotone && prevPlace == k.place {
				if above {
					lowest := math.Inf(1)
					for _, ph := range members {
						lowest = math.Min(lowest, sa.positioners[ph].ContentY1())
					}
					target = math.Max(target, prevEdge+k.place.groupMargin(o, classes[0])*unit-lowest)
				} else {
					highest := math.Inf(-1)
					for _, ph := range members {
						highest = math.Max(highest, sa.positioners[ph].ContentY2())
					}
					target = math.Min(target, prevEdge-k.place.groupMargin(o, classes[0])*unit-highest)
				}
			}

			for _, ph := range members {
				sa.positioners[ph].SetDrawingYRel(target, false)
			}
			sa.clearGroup(ctx, al, members, above)

			edge := math.Inf(-1)
			if !above {
				edge = math.Inf(1)
			}
			for _, ph := range members {
				box := sa.positioners[ph].Box()
				if above {
					edge = math.Max(edge, box.ContentTop())
					al.SetOverflowAbove(al.CalcOverflowAbove(box, false))
				} else {
					edge = math.Min(edge, box.ContentBottom())
					al.SetOverflowBelow(al.CalcOverflowBelow(box, false))
				}
			}
			prevEdge = edge
			prevPlace = k.place
		}
	}
}

// clearGroup pushes the aligned members of a group away from the staff
// until none of them collides with a box on the edge that is not part of
// the group. The members keep a common offset.
func (sa *SystemAligner) clearGroup(ctx *Context, al *StaffAlignment, members []int, above bool) {
	unit := al.Unit(ctx.Options)
	inGroup := make(map[int]bool, len(members))
	for _, ph := range members {
		inGroup[ph] = true
	}
	list := al.belowBoxes
	if above {
		list = al.aboveBoxes
	}
	for sweep := 0; sweep <= len(list); sweep++ {
		moved := false
		for _, r := range list {
			if !r.IsElement() && inGroup[r.Positioner] {
				continue
			}
			b := sa.blocker(r)
			for _, ph := range members {
				p := &sa.positioners[ph]
				margin := 0.0
				if p.isExtenderLine() {
					margin = 4 * unit
				}
				if !p.Box().HorizontalContentOverlap(b.Box, margin) {
					continue
				}
				if !p.CalcDrawingYRel(ctx, al, &b) {
					continue
				}
				moved = true
				y := p.drawingYRel
				for _, other := range members {
					sa.positioners[other].SetDrawingYRel(y, false)
				}
			}
		}
		if !moved {
			break
		}
	}
}

func (pl Place) groupMargin(o *config.Options, c ClassID) float64 {
	if pl == PlaceAbove {
		return c.BottomMargin(o)
	}
	return c.TopMargin(o)
}

func hasClass(classes []ClassID, c ClassID) bool {
	for _, x := range classes {
		if x == c {
			return true
		}
	}
	return false
}

// =============================================================================
// Between staves
// =============================================================================

// AdjustFloatingPositionersBetween moves objects placed between two staves
// towards the middle of the gap once the staves are in their final
// position. An object only moves down, and never closer to the boxes above
// the next staff than its margin.
func (sa *SystemAligner) AdjustFloatingPositionersBetween(ctx *Context) {
	o := ctx.Options
	for h := 0; h+1 < len(sa.staves)-1; h++ {
		prev, cur := &sa.staves[h], &sa.staves[h+1]
		unit := prev.Unit(o)
		dist := prev.yRel - cur.yRel - prev.staffHeight
		center := -(prev.staffHeight + dist/2)

		for _, ph := range prev.positioners {
			p := &sa.positioners[ph]
			if p.Place != PlaceBetween || p.Curve != nil || !p.HasContentBB() {
				continue
			}
			box := p.Box()
			target := p.drawingYRel + center - (box.ContentTop()+box.ContentBottom())/2
			if target >= p.drawingYRel {
				continue
			}
			margin := p.Class.BottomMargin(o) * unit
			space := math.Inf(1)
			for _, r := range cur.aboveBoxes {
				b := sa.blocker(r)
				if !box.HorizontalContentOverlap(b.Box, 0) {
					continue
				}
				top := b.Box.ContentTop()
				if b.Self {
					top = b.Box.SelfTop()
				}
				space = math.Min(space, p.GetSpaceBelow(top+cur.yRel-prev.yRel, margin))
			}
			if !math.IsInf(space, 1) {
				target = math.Max(target, p.drawingYRel-math.Max(space, 0))
			}
			p.SetDrawingYRel(target, true)
		}
	}
}
