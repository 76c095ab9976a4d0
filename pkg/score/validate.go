package score

import (
	"github.com/matzehuels/stavelayout/pkg/errors"
)

const (
	defaultLines = 5
	defaultSize  = 100.0
)

// SetDefaults fills optional fields.
func (d *Document) SetDefaults() {
	for si := range d.Systems {
		sys := &d.Systems[si]
		for _, def := range sys.ScoreDef.StaffDefs() {
			if def.Lines == 0 {
				def.Lines = defaultLines
			}
			if def.Size == 0 {
				def.Size = defaultSize
			}
		}
		if sys.ScoreDef.Symbol == "" {
			sys.ScoreDef.Symbol = SymbolNone
		}
		for st := range sys.Staves {
			for vi := range sys.Staves[st].Verses {
				if sys.Staves[st].Verses[vi].Place == "" {
					sys.Staves[st].Verses[vi].Place = PlaceBelow
				}
			}
		}
		for ei := range sys.Events {
			if sys.Events[ei].Spanning == "" {
				sys.Events[ei].Spanning = SpanStartEnd
			}
		}
	}
}

// Validate checks the structure of the document. References from events to
// elements that do not exist are reported only when strict is set; the
// layout engine otherwise skips those events with a warning.
func (d *Document) Validate(strict bool) error {
	var errs []error
	add := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	if len(d.Systems) == 0 {
		return errors.New(errors.ErrCodeInvalidDocument, "document has no systems")
	}

	for si := range d.Systems {
		sys := &d.Systems[si]
		defs := make(map[int]bool)
		for _, def := range sys.ScoreDef.StaffDefs() {
			if def.N <= 0 {
				add(errors.New(errors.ErrCodeInvalidDocument, "system %d: staff number %d must be positive", si, def.N))
			}
			if defs[def.N] {
				add(errors.New(errors.ErrCodeInvalidDocument, "system %d: staff %d defined twice", si, def.N))
			}
			defs[def.N] = true
			if def.Lines < 1 {
				add(errors.New(errors.ErrCodeInvalidDocument, "system %d: staff %d needs at least one line", si, def.N))
			}
			if def.Size <= 0 {
				add(errors.New(errors.ErrCodeInvalidDocument, "system %d: staff %d size must be positive", si, def.N))
			}
		}
		if len(defs) == 0 {
			add(errors.New(errors.ErrCodeInvalidDocument, "system %d: score definition has no staves", si))
		}
		add(validateGroup(si, &sys.ScoreDef))

		ids := make(map[string]bool)
		seenStaff := make(map[int]bool)
		for _, st := range sys.Staves {
			if !defs[st.N] {
				add(errors.New(errors.ErrCodeInvalidDocument, "system %d: staff %d is not defined", si, st.N))
			}
			if seenStaff[st.N] {
				add(errors.New(errors.ErrCodeInvalidDocument, "system %d: staff %d listed twice", si, st.N))
			}
			seenStaff[st.N] = true
			for _, v := range st.Verses {
				if v.N < 1 {
					add(errors.New(errors.ErrCodeInvalidDocument, "system %d: staff %d has verse number %d", si, st.N, v.N))
				}
				add(errors.ValidateEnum("verse place", v.Place, PlaceAbove, PlaceBelow))
			}
			for _, el := range st.Elements {
				if err := errors.ValidateID("element", el.ID); err != nil {
					add(err)
					continue
				}
				if ids[el.ID] {
					add(errors.New(errors.ErrCodeInvalidDocument, "system %d: duplicate id %q", si, el.ID))
				}
				ids[el.ID] = true
				add(errors.ValidateEnum("element kind", el.Kind, ElementKinds...))
				if el.Kind == "" {
					add(errors.New(errors.ErrCodeInvalidDocument, "element %q has no kind", el.ID))
				}
				if !el.Box.IsSet() {
					add(errors.New(errors.ErrCodeInvalidDocument, "element %q has an empty box", el.ID))
				}
				add(errors.ValidateEnum("stem_dir", el.StemDir, StemUp, StemDown))
			}
		}

		for _, ev := range sys.Events {
			if err := errors.ValidateID("event", ev.ID); err != nil {
				add(err)
				continue
			}
			if ids[ev.ID] {
				add(errors.New(errors.ErrCodeInvalidDocument, "system %d: duplicate id %q", si, ev.ID))
			}
			ids[ev.ID] = true
			if ev.Class == "" {
				add(errors.New(errors.ErrCodeInvalidDocument, "event %q has no class", ev.ID))
			}
			add(errors.ValidateEnum("event class", ev.Class, EventClasses...))
			add(errors.ValidateEnum("place", ev.Place, PlaceAbove, PlaceBelow, PlaceBetween, PlaceWithin))
			add(errors.ValidateEnum("spanning", ev.Spanning, SpanStartEnd, SpanStart, SpanEnd, SpanMiddle))
			add(errors.ValidateEnum("curvedir", ev.CurveDir, CurveAbove, CurveBelow, CurveMixed))
			if len(ev.Staff) == 0 {
				add(errors.New(errors.ErrCodeInvalidDocument, "event %q is not attached to a staff", ev.ID))
			}
			for _, n := range ev.Staff {
				if !defs[n] {
					add(errors.New(errors.ErrCodeInvalidDocument, "event %q refers to undefined staff %d", ev.ID, n))
				}
			}
			if IsCurveClass(ev.Class) {
				if ev.Start == "" || ev.End == "" {
					add(errors.New(errors.ErrCodeInvalidDocument, "%s %q needs start and end", ev.Class, ev.ID))
				}
			} else if ev.Box == nil || !ev.Box.IsSet() {
				add(errors.New(errors.ErrCodeInvalidDocument, "event %q has no box", ev.ID))
			}
			for _, b := range ev.Bulge {
				if b.Position < 0 || b.Position > 100 {
					add(errors.New(errors.ErrCodeInvalidDocument, "event %q bulge position %g outside [0, 100]", ev.ID, b.Position))
				}
			}
		}

		if strict {
			for _, ev := range sys.Events {
				for _, ref := range []string{ev.Start, ev.End} {
					if ref != "" && !ids[ref] {
						add(errors.New(errors.ErrCodeUnresolvedReference, "event %q refers to unknown element %q", ev.ID, ref))
					}
				}
			}
		}
	}

	if len(errs) == 1 {
		return errs[0]
	}
	return errors.Join(errors.ErrCodeInvalidDocument, errs)
}

func validateGroup(si int, g *StaffGroup) error {
	if err := errors.ValidateEnum("staff group symbol", g.Symbol, SymbolNone, SymbolBrace, SymbolBracket); err != nil {
		return err
	}
	for _, m := range g.Members {
		if (m.Staff == nil) == (m.Group == nil) {
			return errors.New(errors.ErrCodeInvalidDocument, "system %d: group member must be exactly one of staff or group", si)
		}
		if m.Group != nil {
			if err := validateGroup(si, m.Group); err != nil {
				return err
			}
		}
	}
	return nil
}
