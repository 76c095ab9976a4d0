package config

// Descriptor documents one numeric option.
type Descriptor struct {
	Name        string
	Description string
	Default     float64
	Min         float64
	Max         float64

	field func(*Options) *float64
}

// Lookup returns the descriptor for name.
func Lookup(name string) (Descriptor, bool) {
	for _, d := range Descriptors {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Set assigns the option called name. Unknown names report false.
func (o *Options) Set(name string, v float64) bool {
	d, ok := Lookup(name)
	if !ok {
		return false
	}
	*d.field(o) = v
	return true
}

// Get returns the option called name.
func (o *Options) Get(name string) (float64, bool) {
	d, ok := Lookup(name)
	if !ok {
		return 0, false
	}
	return *d.field(o), true
}

// Descriptors lists every numeric option in presentation order.
var Descriptors = []Descriptor{
	{"unit", "Size of one unit (half a staff space) in drawing units", DefaultUnit, 4, 40,
		func(o *Options) *float64 { return &o.Unit }},
	{"staff_line_width", "Staff line width", DefaultStaffLineWidth, 0.1, 0.3,
		func(o *Options) *float64 { return &o.StaffLineWidth }},

	{"spacing.staff", "Minimal distance between staves", DefaultStaffSpacing, 0, 48,
		func(o *Options) *float64 { return &o.Spacing.Staff }},
	{"spacing.system", "Minimal distance between systems", DefaultSystemSpacing, 0, 48,
		func(o *Options) *float64 { return &o.Spacing.System }},
	{"spacing.brace_group", "Minimal distance between staves of a brace group (-1 follows spacing.staff)", Unset, -1, 48,
		func(o *Options) *float64 { return &o.Spacing.BraceGroup }},
	{"spacing.bracket_group", "Minimal distance between staves of a bracket group (-1 follows spacing.staff)", Unset, -1, 48,
		func(o *Options) *float64 { return &o.Spacing.BracketGroup }},

	{"justification.page_height", "Page height available for vertical justification, in drawing units (0 disables)", 0, 0, 1e7,
		func(o *Options) *float64 { return &o.Justification.PageHeight }},
	{"justification.system", "Justification weight of the space between systems", 1, 0, 10,
		func(o *Options) *float64 { return &o.Justification.System }},
	{"justification.staff", "Justification weight of the space between staves", 1, 0, 10,
		func(o *Options) *float64 { return &o.Justification.Staff }},
	{"justification.brace", "Justification weight of the space inside brace groups", 1, 0, 10,
		func(o *Options) *float64 { return &o.Justification.Brace }},
	{"justification.bracket", "Justification weight of the space inside bracket groups", 1, 0, 10,
		func(o *Options) *float64 { return &o.Justification.Bracket }},

	{"slur.margin", "Minimal clearance between slurs and the objects they span", 1.0, 0.1, 3.0,
		func(o *Options) *float64 { return &o.Slur.Margin }},
	{"slur.endpoint_flexibility", "Willingness of slur end points to move", 0, 0, 1,
		func(o *Options) *float64 { return &o.Slur.EndpointFlexibility }},
	{"slur.symmetry", "Preference for symmetric control point shifts", 0, 0, 1,
		func(o *Options) *float64 { return &o.Slur.Symmetry }},
	{"slur.max_slope", "Maximal slur slope in degrees", 60, 30, 85,
		func(o *Options) *float64 { return &o.Slur.MaxSlope }},
	{"slur.min_height", "Minimal initial slur height", 1.2, 0.3, 2.0,
		func(o *Options) *float64 { return &o.Slur.MinHeight }},
	{"slur.max_height", "Maximal initial slur height", 3.0, 2.0, 6.0,
		func(o *Options) *float64 { return &o.Slur.MaxHeight }},
	{"slur.curve_factor", "Slur height growth with length", 1.0, 0.2, 5.0,
		func(o *Options) *float64 { return &o.Slur.CurveFactor }},
	{"slur.thickness", "Slur thickness at its middle", 0.6, 0.2, 1.2,
		func(o *Options) *float64 { return &o.Slur.Thickness }},

	{"tie.thickness", "Tie thickness at its middle", 0.5, 0.2, 1.0,
		func(o *Options) *float64 { return &o.Tie.Thickness }},

	{"lyric.top_min_margin", "Minimal margin above the first verse", 2.0, 0, 8,
		func(o *Options) *float64 { return &o.Lyric.TopMinMargin }},
	{"lyric.height_factor", "Scale applied to the verse line height", 1.0, 0, 20,
		func(o *Options) *float64 { return &o.Lyric.HeightFactor }},

	{"margins.top_default", "Default top margin", 0.5, 0, 6,
		func(o *Options) *float64 { return &o.Margins.TopDefault }},
	{"margins.bottom_default", "Default bottom margin", 0.5, 0, 5,
		func(o *Options) *float64 { return &o.Margins.BottomDefault }},
	{"margins.top_artic", "Top margin of articulations", 0.75, 0, 10,
		func(o *Options) *float64 { return &o.Margins.TopArtic }},
	{"margins.bottom_artic", "Bottom margin of articulations", 0.75, 0, 10,
		func(o *Options) *float64 { return &o.Margins.BottomArtic }},
	{"margins.top_harm", "Top margin of harmony indications", 1.0, 0, 10,
		func(o *Options) *float64 { return &o.Margins.TopHarm }},
	{"margins.bottom_harm", "Bottom margin of harmony indications", 1.0, 0, 10,
		func(o *Options) *float64 { return &o.Margins.BottomHarm }},
	{"margins.bottom_octave", "Bottom margin of octave lines", 1.0, 0, 10,
		func(o *Options) *float64 { return &o.Margins.BottomOctave }},
	{"margins.staff_bottom", "Margin added below every staff", 0.5, 0, 10,
		func(o *Options) *float64 { return &o.Margins.StaffBottom }},

	{"staff_distance.dir", "Minimal distance of directives from the staff", 1.0, 0, 16,
		func(o *Options) *float64 { return &o.StaffDistance.Dir }},
	{"staff_distance.dynam", "Minimal distance of dynamics from the staff", 1.0, 0, 16,
		func(o *Options) *float64 { return &o.StaffDistance.Dynam }},
	{"staff_distance.harm", "Minimal distance of harmony indications from the staff", 1.0, 0, 16,
		func(o *Options) *float64 { return &o.StaffDistance.Harm }},
	{"staff_distance.tempo", "Minimal distance of tempo indications from the staff", 1.0, 0, 16,
		func(o *Options) *float64 { return &o.StaffDistance.Tempo }},

	{"glyphs.bracket_top", "Height of the bracket top glyph above its staff", 1.5, 0, 10,
		func(o *Options) *float64 { return &o.Glyphs.BracketTop }},
	{"glyphs.bracket_bottom", "Depth of the bracket bottom glyph below its staff", 1.5, 0, 10,
		func(o *Options) *float64 { return &o.Glyphs.BracketBottom }},
	{"glyphs.bracket_thickness", "Extra clearance between two bracket glyphs", 1.0, 0, 10,
		func(o *Options) *float64 { return &o.Glyphs.BracketThickness }},
	{"glyphs.lyric_cap_height", "Cap height of the lyric font", 3.2, 0, 20,
		func(o *Options) *float64 { return &o.Glyphs.LyricCapHeight }},
	{"glyphs.lyric_descender", "Descender of the lyric font (negative)", -1.0, -20, 0,
		func(o *Options) *float64 { return &o.Glyphs.LyricDescender }},
}
