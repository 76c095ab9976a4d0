// Package score defines the measured-score document consumed by the layout
// engine.
//
// A document is the output of an engraving front-end that has already
// resolved horizontal positions and measured every glyph: each element
// carries its bounding box in drawing units, relative to its staff (the top
// staff line is y = 0 and y grows upward). The layout engine only decides
// vertical staff positions, floating element offsets and curve shapes.
//
// Documents are YAML; JSON input is accepted as well.
//
//	systems:
//	  - score_def:
//	      members:
//	        - staff: {n: 1}
//	    staves:
//	      - n: 1
//	        elements:
//	          - {id: n1, kind: note, layer: 1, box: {left: 10, right: 20, bottom: -40, top: -30}}
//	    events:
//	      - {id: d1, class: dynam, staff: [1], start: n1, place: below,
//	         box: {left: 8, right: 22, bottom: 0, top: 14}}
package score

import "github.com/matzehuels/stavelayout/pkg/geom"

// Element kinds.
const (
	KindNote      = "note"
	KindRest      = "rest"
	KindChord     = "chord"
	KindStem      = "stem"
	KindFlag      = "flag"
	KindArtic     = "artic"
	KindAccid     = "accid"
	KindDots      = "dots"
	KindClef      = "clef"
	KindKeySig    = "keysig"
	KindMeterSig  = "metersig"
	KindBarLine   = "barline"
	KindBeam      = "beam"
	KindTupletNum = "tuplet_num"
	KindSyl       = "syl"
	KindFigure    = "fb"
)

// ElementKinds lists the accepted element kinds.
var ElementKinds = []string{
	KindNote, KindRest, KindChord, KindStem, KindFlag, KindArtic, KindAccid, KindDots,
	KindClef, KindKeySig, KindMeterSig, KindBarLine, KindBeam, KindTupletNum, KindSyl, KindFigure,
}

// Event classes.
const (
	ClassAnnotScore  = "annot_score"
	ClassBracketSpan = "bracket_span"
	ClassBreath      = "breath"
	ClassCaesura     = "caesura"
	ClassCpMark      = "cpmark"
	ClassDir         = "dir"
	ClassDynam       = "dynam"
	ClassEnding      = "ending"
	ClassFermata     = "fermata"
	ClassFing        = "fing"
	ClassHairpin     = "hairpin"
	ClassHarm        = "harm"
	ClassLv          = "lv"
	ClassMordent     = "mordent"
	ClassOctave      = "octave"
	ClassOrnam       = "ornam"
	ClassPedal       = "pedal"
	ClassPhrase      = "phrase"
	ClassReh         = "reh"
	ClassRepeatMark  = "repeat_mark"
	ClassSlur        = "slur"
	ClassTempo       = "tempo"
	ClassTie         = "tie"
	ClassTrill       = "trill"
	ClassTurn        = "turn"
)

// EventClasses lists the accepted event classes.
var EventClasses = []string{
	ClassAnnotScore, ClassBracketSpan, ClassBreath, ClassCaesura, ClassCpMark, ClassDir,
	ClassDynam, ClassEnding, ClassFermata, ClassFing, ClassHairpin, ClassHarm, ClassLv,
	ClassMordent, ClassOctave, ClassOrnam, ClassPedal, ClassPhrase, ClassReh, ClassRepeatMark,
	ClassSlur, ClassTempo, ClassTie, ClassTrill, ClassTurn,
}

// IsCurveClass reports whether events of class are drawn as Bézier curves.
func IsCurveClass(class string) bool {
	switch class {
	case ClassSlur, ClassPhrase, ClassTie, ClassLv:
		return true
	}
	return false
}

// Placement values.
const (
	PlaceAbove   = "above"
	PlaceBelow   = "below"
	PlaceBetween = "between"
	PlaceWithin  = "within"
)

// Spanning values describe how a spanning event relates to the system it is
// drawn in.
const (
	SpanStartEnd = "start_end"
	SpanStart    = "start"
	SpanEnd      = "end"
	SpanMiddle   = "middle"
)

// Curve directions.
const (
	CurveAbove = "above"
	CurveBelow = "below"
	CurveMixed = "mixed"
)

// Stem directions.
const (
	StemUp   = "up"
	StemDown = "down"
)

// Staff group symbols.
const (
	SymbolNone    = "none"
	SymbolBrace   = "brace"
	SymbolBracket = "bracket"
)

// Document is a measured score made of systems on one page.
type Document struct {
	Title   string   `yaml:"title,omitempty" json:"title,omitempty"`
	Systems []System `yaml:"systems" json:"systems"`
}

// System is one line of music.
type System struct {
	ScoreDef StaffGroup `yaml:"score_def" json:"score_def"`
	Staves   []Staff    `yaml:"staves" json:"staves"`
	Events   []Event    `yaml:"events,omitempty" json:"events,omitempty"`
}

// StaffGroup is a node of the staff-group tree.
type StaffGroup struct {
	Symbol  string        `yaml:"symbol,omitempty" json:"symbol,omitempty"`
	Members []GroupMember `yaml:"members" json:"members"`
}

// GroupMember is either a staff definition or a nested group.
type GroupMember struct {
	Staff *StaffDef   `yaml:"staff,omitempty" json:"staff,omitempty"`
	Group *StaffGroup `yaml:"group,omitempty" json:"group,omitempty"`
}

// StaffDef describes the static properties of a staff.
type StaffDef struct {
	N     int     `yaml:"n" json:"n"`
	Lines int     `yaml:"lines,omitempty" json:"lines,omitempty"`
	Size  float64 `yaml:"size,omitempty" json:"size,omitempty"`
	// Spacing overrides the minimal distance to the staff above, in units.
	Spacing *float64 `yaml:"spacing,omitempty" json:"spacing,omitempty"`
	// JustificationFactor overrides the weight of the space above the staff.
	JustificationFactor *float64 `yaml:"justification,omitempty" json:"justification,omitempty"`
}

// Staff holds the measured content of one staff in a system.
type Staff struct {
	N        int       `yaml:"n" json:"n"`
	Verses   []Verse   `yaml:"verses,omitempty" json:"verses,omitempty"`
	Elements []Element `yaml:"elements,omitempty" json:"elements,omitempty"`
}

// Verse declares a lyric line drawn with the staff.
type Verse struct {
	N     int    `yaml:"n" json:"n"`
	Place string `yaml:"place,omitempty" json:"place,omitempty"`
}

// Element is a measured layer element.
type Element struct {
	ID    string    `yaml:"id" json:"id"`
	Kind  string    `yaml:"kind" json:"kind"`
	Layer int       `yaml:"layer,omitempty" json:"layer,omitempty"`
	Box   geom.Rect `yaml:"box" json:"box"`
	// Content extends Box with attached sub-elements. Defaults to Box.
	Content *geom.Rect `yaml:"content,omitempty" json:"content,omitempty"`
	// Stem is the id of the stem element of a note.
	Stem    string `yaml:"stem,omitempty" json:"stem,omitempty"`
	StemDir string `yaml:"stem_dir,omitempty" json:"stem_dir,omitempty"`
	// ScoreDef marks clefs, key and meter signatures drawn at the system start.
	ScoreDef bool `yaml:"score_def,omitempty" json:"score_def,omitempty"`
}

// Bounds returns the self and content extents of the element.
func (e *Element) Bounds() geom.BoundingBox {
	bb := geom.BoxFromRect(e.Box)
	if e.Content != nil {
		bb.Content = bb.Content.Union(*e.Content)
	}
	return bb
}

// BulgePoint requests extra distance between a curve and the chord at a
// relative position (0-100) along the curve.
type BulgePoint struct {
	Distance float64 `yaml:"distance" json:"distance"`
	Position float64 `yaml:"position" json:"position"`
}

// Event is a control event: a floating element attached to one or more
// staves.
type Event struct {
	ID    string `yaml:"id" json:"id"`
	Class string `yaml:"class" json:"class"`
	Staff []int  `yaml:"staff" json:"staff"`
	Place string `yaml:"place,omitempty" json:"place,omitempty"`
	Start string `yaml:"start,omitempty" json:"start,omitempty"`
	End   string `yaml:"end,omitempty" json:"end,omitempty"`
	// Box is the measured extent: x is absolute within the system, y is
	// relative to the element's own anchor.
	Box      *geom.Rect   `yaml:"box,omitempty" json:"box,omitempty"`
	Text     string       `yaml:"text,omitempty" json:"text,omitempty"`
	CurveDir string       `yaml:"curvedir,omitempty" json:"curvedir,omitempty"`
	Bulge    []BulgePoint `yaml:"bulge,omitempty" json:"bulge,omitempty"`
	Spanning string       `yaml:"spanning,omitempty" json:"spanning,omitempty"`
	// Vgrp aligns events of the same class vertically.
	Vgrp     int  `yaml:"vgrp,omitempty" json:"vgrp,omitempty"`
	Extender bool `yaml:"extender,omitempty" json:"extender,omitempty"`
	// Displacement is the octave shift direction of an octave line (+1 up, -1 down).
	Displacement int `yaml:"displacement,omitempty" json:"displacement,omitempty"`
}

// StaffDefs returns the staff definitions of the group tree in drawing order.
func (g *StaffGroup) StaffDefs() []*StaffDef {
	var out []*StaffDef
	for _, m := range g.Members {
		switch {
		case m.Staff != nil:
			out = append(out, m.Staff)
		case m.Group != nil:
			out = append(out, m.Group.StaffDefs()...)
		}
	}
	return out
}

// StaffIndex returns the index of staff n in drawing order, or -1.
func (s *System) StaffIndex(n int) int {
	for i, st := range s.Staves {
		if st.N == n {
			return i
		}
	}
	return -1
}
