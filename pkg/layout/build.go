package layout

import (
	"sort"

	"github.com/matzehuels/stavelayout/pkg/score"
)

// Build creates the aligner of one system: one staff alignment per staff
// definition, the layer elements, and one positioner per event and staff.
// Events that cannot be resolved are reported through ctx.Skip.
func Build(ctx *Context, sys *score.System) *SystemAligner {
	sa := NewSystemAligner(ctx.Options)
	sa.SetSpacing(&sys.ScoreDef)

	for i, def := range sys.ScoreDef.StaffDefs() {
		sa.GetStaffAlignment(i, def)
	}

	sa.addElements(sys)

	vgrps := make(map[int]int)
	for i := range sys.Events {
		sa.addEvent(ctx, &sys.Events[i], vgrps)
	}
	sa.chainGroups(ctx)

	ctx.Logger.Debug("system built",
		"staves", sa.NumStaves()-1,
		"elements", len(sa.elements),
		"positioners", len(sa.positioners))
	return sa
}

func (sa *SystemAligner) addElements(sys *score.System) {
	stems := make(map[int]string)
	for _, st := range sys.Staves {
		h, ok := sa.staffByN[st.N]
		if !ok {
			continue
		}
		al := &sa.staves[h]
		for _, v := range st.Verses {
			al.AddVerseN(v.N, placeFromName(v.Place))
		}
		for i := range st.Elements {
			el := &st.Elements[i]
			handle := len(sa.elements)
			sa.elements = append(sa.elements, Element{
				BoundingBox: el.Bounds(),
				ID:          el.ID,
				Kind:        el.Kind,
				Staff:       h,
				Layer:       el.Layer,
				Stem:        -1,
				StemDir:     el.StemDir,
				ScoreDef:    el.ScoreDef,
			})
			sa.byID[el.ID] = handle
			if el.Stem != "" {
				stems[handle] = el.Stem
			}
		}
	}
	for h, id := range stems {
		if stem, ok := sa.byID[id]; ok {
			sa.elements[h].Stem = stem
		}
	}
}

func (sa *SystemAligner) appendPositioner(p Positioner) int {
	h := len(sa.positioners)
	sa.positioners = append(sa.positioners, p)
	al := &sa.staves[p.Staff]
	al.positioners = append(al.positioners, h)
	al.sorted = false
	return h
}

func (sa *SystemAligner) addEvent(ctx *Context, ev *score.Event, vgrps map[int]int) {
	class := ClassFromName(ev.Class)
	if class == ClassNone {
		ctx.Skip(ev.ID, "unsupported class "+ev.Class)
		return
	}
	if class.IsCurve() {
		sa.addCurve(ctx, ev, class)
		return
	}

	groupID := 0
	if ev.Vgrp > 0 {
		id, ok := vgrps[ev.Vgrp]
		if !ok {
			id = ctx.NewGroupID()
			vgrps[ev.Vgrp] = id
		}
		groupID = id
	}

	place := placeFromName(ev.Place)
	if place == PlaceNone {
		place = class.DefaultPlace(ev.Displacement)
	}

	for _, n := range ev.Staff {
		h, ok := sa.staffByN[n]
		if !ok {
			ctx.Skip(ev.ID, "staff not in system")
			continue
		}
		staffPlace := place
		// the last staff has no neighbour below to share the space with
		if staffPlace == PlaceBetween && h == len(sa.staves)-2 {
			staffPlace = PlaceBelow
		}
		p := newPositioner(ev, class, h, staffPlace)
		p.GroupID = groupID
		sa.appendPositioner(p)
	}
}

func (sa *SystemAligner) addCurve(ctx *Context, ev *score.Event, class ClassID) {
	if class.IsTieLike() && ev.Spanning != "" && ev.Spanning != score.SpanStartEnd {
		ctx.Skip(ev.ID, class.String()+" across systems is not supported")
		return
	}
	start, okStart := sa.byID[ev.Start]
	end, okEnd := sa.byID[ev.End]
	if !okStart || !okEnd {
		ctx.Skip(ev.ID, "start or end cannot be resolved")
		return
	}
	startStaff := sa.elements[start].Staff
	endStaff := sa.elements[end].Staff
	if class.IsTieLike() && startStaff != endStaff {
		ctx.Skip(ev.ID, class.String()+" across staves is not supported")
		return
	}
	if sa.elements[end].SelfRight() < sa.elements[start].SelfLeft() {
		ctx.Skip(ev.ID, "end lies before start")
		return
	}

	p := newPositioner(ev, class, startStaff, placeFromName(ev.Place))
	p.Curve = newCurve(ev)
	p.Curve.Start = start
	p.Curve.End = end
	if startStaff != endStaff {
		p.Curve.CrossStaff = true
		p.Curve.OtherStaff = endStaff
	}
	primary := sa.appendPositioner(p)

	if startStaff != endStaff {
		mirror := newPositioner(ev, class, endStaff, placeFromName(ev.Place))
		mirror.Curve = newCurve(ev)
		mirror.Curve.Start = start
		mirror.Curve.End = end
		mirror.Curve.CrossStaff = true
		mirror.Curve.OtherStaff = startStaff
		mirror.Curve.Primary = primary
		sa.appendPositioner(mirror)
	}
}

// chainGroups puts dynamics and hairpins that share a start or end element
// on the same staff and side into one group so that they line up.
func (sa *SystemAligner) chainGroups(ctx *Context) {
	parent := make(map[int]int)
	var find func(int) int
	find = func(h int) int {
		for parent[h] != h {
			h = parent[h]
		}
		return h
	}
	var members []int
	for h := range sa.positioners {
		p := &sa.positioners[h]
		if p.Class == ClassDynam || p.Class == ClassHairpin {
			parent[h] = h
			members = append(members, h)
		}
	}
	for i, a := range members {
		for _, b := range members[i+1:] {
			pa, pb := &sa.positioners[a], &sa.positioners[b]
			if pa.Staff != pb.Staff || pa.Place != pb.Place {
				continue
			}
			if !sharesEndpoint(pa, pb) {
				continue
			}
			ra, rb := find(a), find(b)
			if ra != rb {
				if ra < rb {
					parent[rb] = ra
				} else {
					parent[ra] = rb
				}
			}
		}
	}

	chains := make(map[int][]int)
	for _, h := range members {
		r := find(h)
		chains[r] = append(chains[r], h)
	}
	roots := make([]int, 0, len(chains))
	for r, hs := range chains {
		if len(hs) > 1 {
			roots = append(roots, r)
		}
	}
	sort.Ints(roots)
	for _, r := range roots {
		id := 0
		for _, h := range chains[r] {
			if g := sa.positioners[h].GroupID; g > 0 {
				id = g
				break
			}
		}
		if id == 0 {
			id = ctx.NewGroupID()
		}
		for _, h := range chains[r] {
			sa.positioners[h].GroupID = id
		}
	}
}

func sharesEndpoint(a, b *Positioner) bool {
	if a.Class == ClassHairpin && b.Class == ClassHairpin {
		return a.EndID != "" && (a.EndID == b.StartID || a.StartID == b.EndID)
	}
	if a.Class == ClassDynam && b.Class == ClassDynam {
		return false
	}
	hp, dy := a, b
	if a.Class == ClassDynam {
		hp, dy = b, a
	}
	return dy.StartID != "" && (dy.StartID == hp.StartID || dy.StartID == hp.EndID)
}
