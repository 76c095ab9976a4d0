package layout

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/stavelayout/pkg/config"
	"github.com/matzehuels/stavelayout/pkg/geom"
	"github.com/matzehuels/stavelayout/pkg/score"
)

func testOptions() *config.Options {
	o := config.Default()
	return &o
}

func boundStaff(t *testing.T, o *config.Options, spacing SpacingType) StaffAlignment {
	t.Helper()
	al := newStaffAlignment()
	al.SetStaff(1, 5, 100, o, spacing)
	return al
}

func TestStaffHeight(t *testing.T) {
	o := testOptions()
	tests := []struct {
		lines int
		size  float64
		want  float64
	}{
		{5, 100, 4 * 2 * config.DefaultUnit},
		{1, 100, 0},
		{5, 50, 4 * config.DefaultUnit},
		{6, 100, 5 * 2 * config.DefaultUnit},
	}
	for _, tt := range tests {
		al := newStaffAlignment()
		al.SetStaff(1, tt.lines, tt.size, o, SpacingStaff)
		if got := al.StaffHeight(); got != tt.want {
			t.Errorf("StaffHeight(%d lines, %v%%) = %v, want %v", tt.lines, tt.size, got, tt.want)
		}
	}
}

func TestSetStaffTwicePanics(t *testing.T) {
	o := testOptions()
	al := boundStaff(t, o, SpacingStaff)
	defer func() {
		if recover() == nil {
			t.Error("second SetStaff did not panic")
		}
	}()
	al.SetStaff(2, 5, 100, o, SpacingStaff)
}

func TestUnboundStaffPanics(t *testing.T) {
	al := newStaffAlignment()
	defer func() {
		if recover() == nil {
			t.Error("GetMinimumSpacing on an unbound staff did not panic")
		}
	}()
	al.GetMinimumSpacing(testOptions())
}

func TestMonotonicSetters(t *testing.T) {
	o := testOptions()
	al := boundStaff(t, o, SpacingStaff)
	values := []float64{3, 10, -4, 7, 10.5, 0, 2}

	for _, v := range values {
		al.SetOverflowAbove(v)
		al.SetOverflowBelow(v / 2)
		al.SetOverlap(v)
		al.SetYRel(-v)
	}
	if got := al.OverflowAbove(); got != 10.5 {
		t.Errorf("OverflowAbove() = %v, want 10.5", got)
	}
	if got := al.OverflowBelow(); got != 5.25 {
		t.Errorf("OverflowBelow() = %v, want 5.25", got)
	}
	if got := al.Overlap(); got != 10.5 {
		t.Errorf("Overlap() = %v, want 10.5", got)
	}
	if got := al.YRel(); got != -10.5 {
		t.Errorf("YRel() = %v, want -10.5", got)
	}

	al.ResetState()
	if al.OverflowAbove() != 0 || al.YRel() != 0 || al.Overlap() != 0 {
		t.Error("ResetState left computed state behind")
	}
}

func TestGetMinimumSpacing(t *testing.T) {
	o := testOptions()
	unit := o.Unit
	override := 3.0

	tests := []struct {
		name    string
		spacing SpacingType
		brace   float64
		bracket float64
		def     *float64
		want    float64
	}{
		{"system", SpacingSystem, config.Unset, config.Unset, nil, o.Spacing.Staff * unit / 2},
		{"staff", SpacingStaff, config.Unset, config.Unset, nil, o.Spacing.Staff * unit},
		{"brace unset", SpacingBrace, config.Unset, config.Unset, nil, o.Spacing.Staff * unit},
		{"brace set", SpacingBrace, 6, config.Unset, nil, 6 * unit},
		{"bracket set", SpacingBracket, config.Unset, 8, nil, 8 * unit},
		{"staff def override", SpacingBracket, config.Unset, 8, &override, 3 * unit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oo := *o
			oo.Spacing.BraceGroup = tt.brace
			oo.Spacing.BracketGroup = tt.bracket
			al := boundStaff(t, &oo, tt.spacing)
			al.spacing = tt.def
			if got := al.GetMinimumSpacing(&oo); got != tt.want {
				t.Errorf("GetMinimumSpacing() = %v, want %v", got, tt.want)
			}
		})
	}

	sentinel := newSentinel()
	if got, want := sentinel.GetMinimumSpacing(o), o.Spacing.Staff*unit/2; got != want {
		t.Errorf("sentinel GetMinimumSpacing() = %v, want %v", got, want)
	}
}

func TestCalcMinimumRequiredSpacing(t *testing.T) {
	o := testOptions()
	margin := o.Margins.StaffBottom * o.Unit

	first := boundStaff(t, o, SpacingSystem)
	first.SetOverflowAbove(10)
	first.SetClefOverflowAbove(14)
	first.SetOverlap(2)
	if got := first.CalcMinimumRequiredSpacing(nil, o); got != 16 {
		t.Errorf("first staff = %v, want 16", got)
	}

	prev := boundStaff(t, o, SpacingSystem)
	prev.SetOverflowBelow(20)
	cur := boundStaff(t, o, SpacingStaff)
	cur.SetOverflowAbove(12)
	cur.SetOverlap(3)
	if got, want := cur.CalcMinimumRequiredSpacing(&prev, o), 20+3+margin; got != want {
		t.Errorf("without verses = %v, want %v", got, want)
	}

	prev.AddVerseN(1, PlaceBelow)
	if got, want := cur.CalcMinimumRequiredSpacing(&prev, o), 20+12+margin; got != want {
		t.Errorf("with verses = %v, want %v", got, want)
	}

	sentinel := newSentinel()
	sentinel.SetOverlap(1)
	if got := sentinel.CalcMinimumRequiredSpacing(&prev, o); got != 20 {
		t.Errorf("sentinel = %v, want 20 (no staff margin)", got)
	}
}

func TestBracketGroupSpacingFloor(t *testing.T) {
	o := testOptions()
	unit := o.Unit
	tests := []struct {
		name        string
		prevBracket bool
		curBracket  bool
		spacing     float64
		wantOverlap float64
	}{
		{"both bracketed", true, true, 10,
			(o.Glyphs.BracketBottom+o.Glyphs.BracketTop+o.Glyphs.BracketThickness)*unit - 10},
		{"only lower bracketed", false, true, 5,
			(o.Glyphs.BracketTop+o.Glyphs.BracketThickness)*unit - 5},
		{"only upper bracketed", true, false, 0,
			(o.Glyphs.BracketBottom + o.Glyphs.BracketThickness) * unit},
		{"floor already met", true, true, 1000, 0},
		{"no brackets", false, false, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := boundStaff(t, o, SpacingStaff)
			prev.group = groupEdge{group: 1, isFirst: true, isLast: true, bracketed: tt.prevBracket}
			cur := boundStaff(t, o, SpacingStaff)
			cur.group = groupEdge{group: 2, isFirst: true, isLast: true, bracketed: tt.curBracket}
			cur.AdjustBracketGroupSpacing(&prev, o, tt.spacing)
			if math.Abs(cur.Overlap()-tt.wantOverlap) > 1e-9 {
				t.Errorf("Overlap() = %v, want %v", cur.Overlap(), tt.wantOverlap)
			}
		})
	}

	// inside one group the glyphs do not meet
	prev := boundStaff(t, o, SpacingStaff)
	prev.group = groupEdge{group: 1, isFirst: true, isLast: false, bracketed: true}
	cur := boundStaff(t, o, SpacingBracket)
	cur.group = groupEdge{group: 1, isFirst: false, isLast: true, bracketed: true}
	cur.AdjustBracketGroupSpacing(&prev, o, 0)
	if cur.Overlap() != 0 {
		t.Errorf("same group overlap = %v, want 0", cur.Overlap())
	}
}

func TestVerseCounts(t *testing.T) {
	o := testOptions()
	al := boundStaff(t, o, SpacingStaff)
	al.AddVerseN(1, PlaceBelow)
	al.AddVerseN(3, PlaceBelow)
	al.AddVerseN(3, PlaceBelow)
	al.AddVerseN(2, PlaceAbove)

	if got := al.VerseCountBelow(false); got != 3 {
		t.Errorf("VerseCountBelow(false) = %d, want 3", got)
	}
	if got := al.VerseCountBelow(true); got != 2 {
		t.Errorf("VerseCountBelow(true) = %d, want 2", got)
	}
	if got := al.VerseCountAbove(true); got != 1 {
		t.Errorf("VerseCountAbove(true) = %d, want 1", got)
	}
	if !al.HasVersesBelow() {
		t.Error("HasVersesBelow() = false")
	}
}

func TestSortPositioners(t *testing.T) {
	o := testOptions()
	al := boundStaff(t, o, SpacingStaff)
	ps := []Positioner{
		{ID: "d", Class: ClassDir, Place: PlaceBelow},
		{ID: "s", Class: ClassSlur},
		{ID: "f1", Class: ClassDynam, Place: PlaceBelow},
		{ID: "f2", Class: ClassDynam, Place: PlaceAbove},
		{ID: "t", Class: ClassTempo, Place: PlaceAbove},
		{ID: "f3", Class: ClassDynam, Place: PlaceBelow},
	}
	al.positioners = []int{0, 1, 2, 3, 4, 5}
	al.SortPositioners(ps, o)

	var got []string
	for _, h := range al.Positioners() {
		got = append(got, ps[h].ID)
	}
	want := []string{"s", "f2", "f1", "f3", "d", "t"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestSortPositionersByRestingReach(t *testing.T) {
	o := testOptions()
	al := boundStaff(t, o, SpacingStaff)
	ps := []Positioner{
		{ID: "tall", Class: ClassDynam, Place: PlaceBelow, bbox: geom.BoxFromRect(geom.R(0, 10, 0, 12))},
		{ID: "flat", Class: ClassDynam, Place: PlaceBelow, bbox: geom.BoxFromRect(geom.R(0, 10, 0, 3))},
		{ID: "mid", Class: ClassDynam, Place: PlaceBelow, bbox: geom.BoxFromRect(geom.R(20, 30, -2, 4))},
		{ID: "twin", Class: ClassDynam, Place: PlaceBelow, bbox: geom.BoxFromRect(geom.R(40, 50, 0, 3))},
	}
	al.positioners = []int{0, 1, 2, 3}
	al.SortPositioners(ps, o)

	var got []string
	for _, h := range al.Positioners() {
		got = append(got, ps[h].ID)
	}
	if diff := cmp.Diff([]string{"flat", "twin", "mid", "tall"}, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestSpacingTypeString(t *testing.T) {
	names := map[SpacingType]string{
		SpacingNone:    "none",
		SpacingSystem:  "system",
		SpacingStaff:   "staff",
		SpacingBrace:   score.SymbolBrace,
		SpacingBracket: score.SymbolBracket,
	}
	for s, want := range names {
		if got := s.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", s, got, want)
		}
	}
}
