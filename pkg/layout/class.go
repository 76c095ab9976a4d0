package layout

import (
	"github.com/matzehuels/stavelayout/pkg/config"
	"github.com/matzehuels/stavelayout/pkg/score"
)

// ClassID identifies the kind of a floating object. The numeric order is
// the order in which SortPositioners arranges positioners of one staff.
type ClassID int

const (
	ClassNone ClassID = iota
	ClassLv
	ClassTie
	ClassSlur
	ClassPhrase
	ClassMordent
	ClassTurn
	ClassTrill
	ClassOrnam
	ClassFing
	ClassDynam
	ClassHairpin
	ClassBracketSpan
	ClassOctave
	ClassBreath
	ClassFermata
	ClassDir
	ClassCpMark
	ClassRepeatMark
	ClassTempo
	ClassPedal
	ClassHarm
	ClassEnding
	ClassReh
	ClassCaesura
	ClassAnnotScore
	ClassSyl
	ClassArtic
)

var classNames = map[string]ClassID{
	score.ClassAnnotScore:  ClassAnnotScore,
	score.ClassBracketSpan: ClassBracketSpan,
	score.ClassBreath:      ClassBreath,
	score.ClassCaesura:     ClassCaesura,
	score.ClassCpMark:      ClassCpMark,
	score.ClassDir:         ClassDir,
	score.ClassDynam:       ClassDynam,
	score.ClassEnding:      ClassEnding,
	score.ClassFermata:     ClassFermata,
	score.ClassFing:        ClassFing,
	score.ClassHairpin:     ClassHairpin,
	score.ClassHarm:        ClassHarm,
	score.ClassLv:          ClassLv,
	score.ClassMordent:     ClassMordent,
	score.ClassOctave:      ClassOctave,
	score.ClassOrnam:       ClassOrnam,
	score.ClassPedal:       ClassPedal,
	score.ClassPhrase:      ClassPhrase,
	score.ClassReh:         ClassReh,
	score.ClassRepeatMark:  ClassRepeatMark,
	score.ClassSlur:        ClassSlur,
	score.ClassTempo:       ClassTempo,
	score.ClassTie:         ClassTie,
	score.ClassTrill:       ClassTrill,
	score.ClassTurn:        ClassTurn,
}

// ClassFromName maps a document event class to its ClassID.
func ClassFromName(name string) ClassID {
	return classNames[name]
}

func (c ClassID) String() string {
	for name, id := range classNames {
		if id == c {
			return name
		}
	}
	switch c {
	case ClassSyl:
		return score.KindSyl
	case ClassArtic:
		return score.KindArtic
	}
	return "none"
}

// IsCurve reports whether objects of the class are drawn as Bézier curves.
func (c ClassID) IsCurve() bool {
	switch c {
	case ClassLv, ClassTie, ClassSlur, ClassPhrase:
		return true
	}
	return false
}

// IsTieLike reports whether the class is drawn as a flat tie that the slur
// algorithm leaves alone.
func (c ClassID) IsTieLike() bool {
	return c == ClassTie || c == ClassLv
}

// TopMargin returns the top margin of the class in units.
func (c ClassID) TopMargin(o *config.Options) float64 {
	switch c {
	case ClassArtic:
		return o.Margins.TopArtic
	case ClassHarm:
		return o.Margins.TopHarm
	}
	return o.Margins.TopDefault
}

// BottomMargin returns the bottom margin of the class in units.
func (c ClassID) BottomMargin(o *config.Options) float64 {
	switch c {
	case ClassArtic:
		return o.Margins.BottomArtic
	case ClassHarm:
		return o.Margins.BottomHarm
	case ClassOctave:
		return o.Margins.BottomOctave
	}
	return o.Margins.BottomDefault
}

// StaffDistance returns the minimal distance from the staff in units, or 0
// for classes without one.
func (c ClassID) StaffDistance(o *config.Options) float64 {
	switch c {
	case ClassDir:
		return o.StaffDistance.Dir
	case ClassDynam, ClassHairpin:
		return o.StaffDistance.Dynam
	case ClassHarm:
		return o.StaffDistance.Harm
	case ClassTempo:
		return o.StaffDistance.Tempo
	}
	return 0
}

// Place is the side of the staff a floating object is drawn on.
type Place int

const (
	PlaceNone Place = iota
	PlaceAbove
	PlaceBelow
	PlaceBetween
	PlaceWithin
)

func (p Place) String() string {
	switch p {
	case PlaceAbove:
		return score.PlaceAbove
	case PlaceBelow:
		return score.PlaceBelow
	case PlaceBetween:
		return score.PlaceBetween
	case PlaceWithin:
		return score.PlaceWithin
	}
	return "none"
}

func placeFromName(name string) Place {
	switch name {
	case score.PlaceAbove:
		return PlaceAbove
	case score.PlaceBelow:
		return PlaceBelow
	case score.PlaceBetween:
		return PlaceBetween
	case score.PlaceWithin:
		return PlaceWithin
	}
	return PlaceNone
}

// DefaultPlace returns the placement used when an event does not set one.
// Octave lines follow their displacement.
func (c ClassID) DefaultPlace(displacement int) Place {
	switch c {
	case ClassBracketSpan, ClassBreath, ClassFermata, ClassFing, ClassHarm, ClassMordent,
		ClassReh, ClassTempo, ClassTrill, ClassTurn, ClassEnding, ClassOrnam, ClassCpMark,
		ClassRepeatMark, ClassCaesura, ClassAnnotScore:
		return PlaceAbove
	case ClassDir, ClassDynam, ClassHairpin, ClassPedal:
		return PlaceBelow
	case ClassOctave:
		if displacement < 0 {
			return PlaceBelow
		}
		return PlaceAbove
	}
	return PlaceAbove
}

// Spanning tells how a spanning object relates to the system it is drawn in.
type Spanning int

const (
	SpanningStartEnd Spanning = iota
	SpanningStart
	SpanningEnd
	SpanningMiddle
)

func spanningFromName(name string) Spanning {
	switch name {
	case score.SpanStart:
		return SpanningStart
	case score.SpanEnd:
		return SpanningEnd
	case score.SpanMiddle:
		return SpanningMiddle
	}
	return SpanningStartEnd
}

func (s Spanning) String() string {
	switch s {
	case SpanningStart:
		return score.SpanStart
	case SpanningEnd:
		return score.SpanEnd
	case SpanningMiddle:
		return score.SpanMiddle
	}
	return score.SpanStartEnd
}
