// Package config holds the engraving options consumed by the layout engine.
//
// Every numeric option has a descriptor (name, default, range) in a single
// table, so defaults, validation and the CLI "options" listing never drift
// apart. Lengths are expressed in units (half a staff space) unless noted
// otherwise and are multiplied by the drawing unit at the point of use.
//
// Options are usually loaded from a TOML file:
//
//	unit = 9
//
//	[spacing]
//	staff = 12
//
//	[slur]
//	symmetry = 0.5
//
// Fields missing from the file keep their defaults.
package config

import (
	"github.com/matzehuels/stavelayout/pkg/errors"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultUnit is the size of one unit (half a staff space) in drawing units.
	DefaultUnit = 9.0

	// DefaultStaffLineWidth is the staff line thickness in units.
	DefaultStaffLineWidth = 0.15

	// DefaultStaffSpacing is the minimal distance between staves in units.
	DefaultStaffSpacing = 12.0

	// DefaultSystemSpacing is the minimal distance between systems in units.
	DefaultSystemSpacing = 12.0

	// Unset marks an optional group spacing; the staff spacing applies instead.
	Unset = -1.0
)

// =============================================================================
// Options
// =============================================================================

// Spacing groups the vertical spacing options.
type Spacing struct {
	Staff        float64 `toml:"staff" json:"staff"`
	System       float64 `toml:"system" json:"system"`
	BraceGroup   float64 `toml:"brace_group" json:"brace_group"`
	BracketGroup float64 `toml:"bracket_group" json:"bracket_group"`
}

// Justification groups the vertical justification options.
type Justification struct {
	Vertical   bool    `toml:"vertical" json:"vertical"`
	PageHeight float64 `toml:"page_height" json:"page_height"`
	System     float64 `toml:"system" json:"system"`
	Staff      float64 `toml:"staff" json:"staff"`
	Brace      float64 `toml:"brace" json:"brace"`
	Bracket    float64 `toml:"bracket" json:"bracket"`
}

// Slur groups the slur shaping options.
type Slur struct {
	Margin              float64 `toml:"margin" json:"margin"`
	EndpointFlexibility float64 `toml:"endpoint_flexibility" json:"endpoint_flexibility"`
	Symmetry            float64 `toml:"symmetry" json:"symmetry"`
	MaxSlope            float64 `toml:"max_slope" json:"max_slope"`
	MinHeight           float64 `toml:"min_height" json:"min_height"`
	MaxHeight           float64 `toml:"max_height" json:"max_height"`
	CurveFactor         float64 `toml:"curve_factor" json:"curve_factor"`
	Thickness           float64 `toml:"thickness" json:"thickness"`
}

// Tie groups the tie options.
type Tie struct {
	Thickness float64 `toml:"thickness" json:"thickness"`
}

// Lyric groups the verse spacing options.
type Lyric struct {
	TopMinMargin  float64 `toml:"top_min_margin" json:"top_min_margin"`
	HeightFactor  float64 `toml:"height_factor" json:"height_factor"`
	VerseCollapse bool    `toml:"verse_collapse" json:"verse_collapse"`
}

// Margins holds the top and bottom margins per object class.
type Margins struct {
	TopDefault    float64 `toml:"top_default" json:"top_default"`
	BottomDefault float64 `toml:"bottom_default" json:"bottom_default"`
	TopArtic      float64 `toml:"top_artic" json:"top_artic"`
	BottomArtic   float64 `toml:"bottom_artic" json:"bottom_artic"`
	TopHarm       float64 `toml:"top_harm" json:"top_harm"`
	BottomHarm    float64 `toml:"bottom_harm" json:"bottom_harm"`
	BottomOctave  float64 `toml:"bottom_octave" json:"bottom_octave"`
	StaffBottom   float64 `toml:"staff_bottom" json:"staff_bottom"`
}

// StaffDistance holds the minimal distance from the staff per object class.
type StaffDistance struct {
	Dir   float64 `toml:"dir" json:"dir"`
	Dynam float64 `toml:"dynam" json:"dynam"`
	Harm  float64 `toml:"harm" json:"harm"`
	Tempo float64 `toml:"tempo" json:"tempo"`
}

// Glyphs holds externally measured glyph dimensions in units.
type Glyphs struct {
	BracketTop       float64 `toml:"bracket_top" json:"bracket_top"`
	BracketBottom    float64 `toml:"bracket_bottom" json:"bracket_bottom"`
	BracketThickness float64 `toml:"bracket_thickness" json:"bracket_thickness"`
	LyricCapHeight   float64 `toml:"lyric_cap_height" json:"lyric_cap_height"`
	LyricDescender   float64 `toml:"lyric_descender" json:"lyric_descender"`
}

// Options contains every engraving option read by the layout passes.
type Options struct {
	Unit           float64       `toml:"unit" json:"unit"`
	StaffLineWidth float64       `toml:"staff_line_width" json:"staff_line_width"`
	Spacing        Spacing       `toml:"spacing" json:"spacing"`
	Justification  Justification `toml:"justification" json:"justification"`
	Slur           Slur          `toml:"slur" json:"slur"`
	Tie            Tie           `toml:"tie" json:"tie"`
	Lyric          Lyric         `toml:"lyric" json:"lyric"`
	Margins        Margins       `toml:"margins" json:"margins"`
	StaffDistance  StaffDistance `toml:"staff_distance" json:"staff_distance"`
	Glyphs         Glyphs        `toml:"glyphs" json:"glyphs"`
}

// Default returns the options with every field at its default value.
func Default() Options {
	var o Options
	for _, d := range Descriptors {
		*d.field(&o) = d.Default
	}
	return o
}

// Validate checks every numeric option against its range.
func (o *Options) Validate() error {
	var errs []error
	for _, d := range Descriptors {
		if err := errors.ValidateRange(d.Name, *d.field(o), d.Min, d.Max); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errors.ErrCodeInvalidOption, errs)
}

// DoubleUnit returns the staff space of a staff drawn at size percent.
func (o *Options) DoubleUnit(size float64) float64 {
	return 2 * o.UnitAt(size)
}

// UnitAt returns the unit of a staff drawn at size percent.
func (o *Options) UnitAt(size float64) float64 {
	if size <= 0 {
		size = 100
	}
	return o.Unit * size / 100
}

// Values returns every numeric option keyed by name, in descriptor order.
func (o *Options) Values() []NamedValue {
	out := make([]NamedValue, 0, len(Descriptors))
	for _, d := range Descriptors {
		out = append(out, NamedValue{Name: d.Name, Value: *d.field(o)})
	}
	return out
}

// NamedValue is one option value.
type NamedValue struct {
	Name  string
	Value float64
}
