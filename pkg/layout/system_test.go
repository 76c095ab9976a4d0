package layout

import (
	"math"
	"testing"

	"github.com/matzehuels/stavelayout/pkg/config"
	"github.com/matzehuels/stavelayout/pkg/geom"
	"github.com/matzehuels/stavelayout/pkg/score"
)

func staffMember(n int) score.GroupMember {
	return score.GroupMember{Staff: &score.StaffDef{N: n, Lines: 5, Size: 100}}
}

func groupMember(symbol string, members ...score.GroupMember) score.GroupMember {
	return score.GroupMember{Group: &score.StaffGroup{Symbol: symbol, Members: members}}
}

func rect(left, right, bottom, top float64) *geom.Rect {
	r := geom.R(left, right, bottom, top)
	return &r
}

func element(id, kind string, left, right, bottom, top float64) score.Element {
	return score.Element{ID: id, Kind: kind, Box: geom.R(left, right, bottom, top)}
}

func newTestContext(mutate func(*config.Options)) *Context {
	o := config.Default()
	if mutate != nil {
		mutate(&o)
	}
	return NewContext(&o, nil)
}

func TestSetSpacing(t *testing.T) {
	sys := &score.System{ScoreDef: score.StaffGroup{
		Symbol: score.SymbolNone,
		Members: []score.GroupMember{
			groupMember(score.SymbolBrace, staffMember(1), staffMember(2)),
			groupMember(score.SymbolBracket, staffMember(3), staffMember(4),
				groupMember(score.SymbolBrace, staffMember(5), staffMember(6))),
			staffMember(7),
		},
	}}
	sa := Build(newTestContext(nil), sys)

	want := map[int]SpacingType{
		1: SpacingSystem,
		2: SpacingBrace,
		3: SpacingStaff,
		4: SpacingBracket,
		5: SpacingBracket,
		6: SpacingBrace,
		7: SpacingStaff,
	}
	for n, w := range want {
		h, ok := sa.StaffByN(n)
		if !ok {
			t.Fatalf("staff %d missing", n)
		}
		if got := sa.Staff(h).SpacingType(); got != w {
			t.Errorf("staff %d spacing = %v, want %v", n, got, w)
		}
	}
	if sa.NumStaves() != 8 || !sa.Bottom().IsSentinel() {
		t.Errorf("want 7 staves and a trailing sentinel, got %d", sa.NumStaves())
	}
}

func TestGroupEdges(t *testing.T) {
	sys := &score.System{ScoreDef: score.StaffGroup{
		Members: []score.GroupMember{
			staffMember(1),
			groupMember(score.SymbolBracket, staffMember(2), staffMember(3)),
		},
	}}
	sa := Build(newTestContext(nil), sys)

	e1, e2, e3 := sa.staves[0].group, sa.staves[1].group, sa.staves[2].group
	if !e1.isFirst || !e1.isLast || e1.bracketed {
		t.Errorf("staff 1 edge = %+v, want singleton group", e1)
	}
	if !e2.isFirst || e2.isLast || !e2.bracketed {
		t.Errorf("staff 2 edge = %+v, want bracket start", e2)
	}
	if e3.isFirst || !e3.isLast || e3.group != e2.group {
		t.Errorf("staff 3 edge = %+v, want bracket end", e3)
	}
	if e1.group == e2.group {
		t.Error("singleton staff shares a group with the bracket")
	}
}

func TestBuildSkipsUnresolvedEvents(t *testing.T) {
	sys := &score.System{
		ScoreDef: score.StaffGroup{Members: []score.GroupMember{staffMember(1), staffMember(2)}},
		Staves: []score.Staff{
			{N: 1, Elements: []score.Element{element("n1", score.KindNote, 0, 4, -40, -36)}},
			{N: 2, Elements: []score.Element{element("n2", score.KindNote, 20, 24, -40, -36)}},
		},
		Events: []score.Event{
			{ID: "s1", Class: score.ClassSlur, Staff: []int{1}, Start: "n1", End: "missing"},
			{ID: "t1", Class: score.ClassTie, Staff: []int{1}, Start: "n1", End: "n2"},
			{ID: "s2", Class: score.ClassSlur, Staff: []int{1}, Start: "n1", End: "n2"},
			{ID: "d1", Class: score.ClassDynam, Staff: []int{3}, Box: rect(0, 5, 0, 4)},
		},
	}
	ctx := newTestContext(nil)
	sa := Build(ctx, sys)

	skipped := ctx.SkippedEvents()
	if len(skipped) != 3 {
		t.Fatalf("skipped = %+v, want s1, t1 and d1", skipped)
	}
	for i, id := range []string{"s1", "t1", "d1"} {
		if skipped[i].ID != id {
			t.Errorf("skipped[%d] = %q, want %q", i, skipped[i].ID, id)
		}
	}

	// the cross-staff slur gets a primary and a mirror
	if sa.NumPositioners() != 2 {
		t.Fatalf("positioners = %d, want 2", sa.NumPositioners())
	}
	primary, mirror := sa.Positioner(0), sa.Positioner(1)
	if primary.Staff != 0 || !primary.Curve.CrossStaff || primary.Curve.OtherStaff != 1 {
		t.Errorf("primary = %+v", primary.Curve)
	}
	if mirror.Staff != 1 || mirror.Curve.Primary != 0 {
		t.Errorf("mirror = %+v", mirror.Curve)
	}
	if got := sa.CurvePositioners(1); len(got) != 0 {
		t.Errorf("CurvePositioners(mirror staff) = %v, want none", got)
	}
}

func TestBuildSkipsTiesAcrossSystems(t *testing.T) {
	notes := []score.Element{
		element("a", score.KindNote, 0, 10, -40, -36),
		element("b", score.KindNote, 40, 50, -40, -36),
	}
	tests := []struct {
		name     string
		ev       score.Event
		skipped  bool
		numCurve int
	}{
		{"tie start", score.Event{ID: "t", Class: score.ClassTie, Staff: []int{1}, Start: "a", End: "a", Spanning: score.SpanStart}, true, 0},
		{"tie end", score.Event{ID: "t", Class: score.ClassTie, Staff: []int{1}, Start: "b", End: "b", Spanning: score.SpanEnd}, true, 0},
		{"lv middle", score.Event{ID: "t", Class: score.ClassLv, Staff: []int{1}, Start: "a", End: "b", Spanning: score.SpanMiddle}, true, 0},
		{"tie in system", score.Event{ID: "t", Class: score.ClassTie, Staff: []int{1}, Start: "a", End: "b", Spanning: score.SpanStartEnd}, false, 1},
		{"slur start", score.Event{ID: "t", Class: score.ClassSlur, Staff: []int{1}, Start: "a", End: "b", Spanning: score.SpanStart}, false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newTestContext(nil)
			sa := Build(ctx, singleStaff(notes, tt.ev))
			if got := len(ctx.SkippedEvents()) == 1; got != tt.skipped {
				t.Errorf("skipped = %+v", ctx.SkippedEvents())
			}
			if got := len(sa.CurvePositioners(0)); got != tt.numCurve {
				t.Errorf("curves = %d, want %d", got, tt.numCurve)
			}
		})
	}
}

func TestBuildChainsDynamics(t *testing.T) {
	sys := &score.System{
		ScoreDef: score.StaffGroup{Members: []score.GroupMember{staffMember(1)}},
		Staves: []score.Staff{{N: 1, Elements: []score.Element{
			element("n1", score.KindNote, 0, 4, -40, -36),
			element("n2", score.KindNote, 20, 24, -40, -36),
			element("n3", score.KindNote, 40, 44, -40, -36),
		}}},
		Events: []score.Event{
			{ID: "p", Class: score.ClassDynam, Staff: []int{1}, Start: "n1", Box: rect(0, 5, -1, 4)},
			{ID: "cresc", Class: score.ClassHairpin, Staff: []int{1}, Start: "n1", End: "n2", Box: rect(6, 19, 0, 3)},
			{ID: "f", Class: score.ClassDynam, Staff: []int{1}, Start: "n2", Box: rect(20, 25, -1, 5)},
			{ID: "mf", Class: score.ClassDynam, Staff: []int{1}, Start: "n3", Box: rect(40, 45, -1, 4)},
		},
	}
	sa := Build(newTestContext(nil), sys)

	g := sa.Positioner(0).GroupID
	if g == 0 {
		t.Fatal("p is not grouped")
	}
	if sa.Positioner(1).GroupID != g || sa.Positioner(2).GroupID != g {
		t.Errorf("chain groups = %d %d %d", g, sa.Positioner(1).GroupID, sa.Positioner(2).GroupID)
	}
	if sa.Positioner(3).GroupID != 0 {
		t.Errorf("unrelated dynamic grouped as %d", sa.Positioner(3).GroupID)
	}

	Run(newTestContext(nil), sa, nil)
	y := sa.Positioner(0).DrawingYRel()
	for h := 1; h < 3; h++ {
		if got := sa.Positioner(h).DrawingYRel(); got != y {
			t.Errorf("chain member %s at %v, want %v", sa.Positioner(h).ID, got, y)
		}
	}
}

func TestBetweenOnLastStaffIsBelow(t *testing.T) {
	sys := &score.System{
		ScoreDef: score.StaffGroup{Members: []score.GroupMember{staffMember(1), staffMember(2)}},
		Events: []score.Event{
			{ID: "d", Class: score.ClassDynam, Staff: []int{1, 2}, Place: score.PlaceBetween, Box: rect(0, 5, 0, 4)},
		},
	}
	sa := Build(newTestContext(nil), sys)
	if got := sa.Positioner(0).Place; got != PlaceBetween {
		t.Errorf("upper staff place = %v, want between", got)
	}
	if got := sa.Positioner(1).Place; got != PlaceBelow {
		t.Errorf("last staff place = %v, want below", got)
	}
}

func TestJustificationSum(t *testing.T) {
	factor := 3.0
	sys := &score.System{ScoreDef: score.StaffGroup{Members: []score.GroupMember{
		staffMember(1),
		staffMember(2),
		{Staff: &score.StaffDef{N: 3, Lines: 5, JustificationFactor: &factor}},
	}}}
	ctx := newTestContext(nil)
	sa := Build(ctx, sys)
	want := 0 + ctx.Options.Justification.Staff + factor
	if got := sa.JustificationSum(); math.Abs(got-want) > 1e-9 {
		t.Errorf("JustificationSum() = %v, want %v", got, want)
	}
}
