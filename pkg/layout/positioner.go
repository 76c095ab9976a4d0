package layout

import (
	"github.com/matzehuels/stavelayout/pkg/geom"
	"github.com/matzehuels/stavelayout/pkg/score"
)

// Element is a measured layer element (note, stem, articulation...). Its box
// is relative to its staff and never moves during layout.
type Element struct {
	geom.BoundingBox

	ID       string
	Kind     string
	Staff    int // staff alignment handle
	Layer    int
	Stem     int // element handle of the stem, or -1
	StemDir  string
	ScoreDef bool
}

// CenterX returns the horizontal centre of the self box.
func (e *Element) CenterX() float64 {
	return (e.SelfLeft() + e.SelfRight()) / 2
}

// Positioner is the per-staff placement record of one floating object. Its
// box holds the measured extent with x absolute within the system and y
// relative to the anchor; DrawingYRel moves the anchor relative to the
// staff's top line.
//
// Curve is set for slurs, ties, l.v. and phrases. Their box is staff
// relative and DrawingYRel stays zero.
type Positioner struct {
	ID       string
	Class    ClassID
	Staff    int // staff alignment handle
	Place    Place
	Spanning Spanning
	GroupID  int
	Extender bool
	Text     string
	StartID  string
	EndID    string

	Curve *Curve

	bbox        geom.BoundingBox
	source      geom.BoundingBox
	drawingYRel float64
}

func newPositioner(ev *score.Event, class ClassID, staff int, place Place) Positioner {
	p := Positioner{
		ID:       ev.ID,
		Class:    class,
		Staff:    staff,
		Place:    place,
		Spanning: spanningFromName(ev.Spanning),
		Extender: ev.Extender,
		Text:     ev.Text,
		StartID:  ev.Start,
		EndID:    ev.End,
		bbox:     geom.NewBoundingBox(),
		source:   geom.NewBoundingBox(),
	}
	if ev.Box != nil {
		p.source = geom.BoxFromRect(*ev.Box)
		p.bbox = p.source
	}
	return p
}

// ResetPositioner restores the measured box and clears the offset.
func (p *Positioner) ResetPositioner() {
	p.drawingYRel = 0
	p.bbox = p.source
	if p.Curve != nil {
		p.bbox = geom.NewBoundingBox()
	}
}

// DrawingYRel returns the anchor offset from the staff's top line.
func (p *Positioner) DrawingYRel() float64 { return p.drawingYRel }

// SetDrawingYRel moves the anchor. Without force it only moves away from
// the staff: above-staff objects keep the highest value, all others the
// lowest.
func (p *Positioner) SetDrawingYRel(v float64, force bool) {
	switch {
	case force:
		p.drawingYRel = v
	case p.Place == PlaceAbove:
		if v > p.drawingYRel {
			p.drawingYRel = v
		}
	default:
		if v < p.drawingYRel {
			p.drawingYRel = v
		}
	}
}

// Box returns the content and self boxes relative to the staff.
func (p *Positioner) Box() geom.BoundingBox {
	return geom.BoundingBox{
		Self:    p.bbox.Self.Translate(0, p.drawingYRel),
		Content: p.bbox.Content.Translate(0, p.drawingYRel),
	}
}

// LocalBox returns the box relative to the anchor.
func (p *Positioner) LocalBox() *geom.BoundingBox { return &p.bbox }

// HasContentBB reports whether the positioner has a measured extent.
func (p *Positioner) HasContentBB() bool { return p.bbox.HasContentBB() }

// ContentY1 returns the bottom of the content box relative to the anchor.
func (p *Positioner) ContentY1() float64 { return p.bbox.Content.Bottom }

// ContentY2 returns the top of the content box relative to the anchor.
func (p *Positioner) ContentY2() float64 { return p.bbox.Content.Top }

// isExtenderLine reports whether the positioner is a dir, dynam or tempo
// whose continuation line widens its collision footprint.
func (p *Positioner) isExtenderLine() bool {
	if !p.Extender {
		return false
	}
	switch p.Class {
	case ClassDir, ClassDynam, ClassTempo:
		return true
	}
	return false
}

// GetSpaceBelow returns how far a between-staff positioner can move down
// before its content reaches top (staff relative) plus margin. Curves never
// move.
func (p *Positioner) GetSpaceBelow(top, margin float64) float64 {
	if p.Curve != nil {
		return 0
	}
	return p.Box().ContentBottom() - top - margin
}
