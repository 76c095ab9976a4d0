package geom

import "math"

// Rect is an axis-aligned rectangle. A Rect whose Left is greater than its
// Right (the state returned by EmptyRect) is unset and extends on the first
// update.
type Rect struct {
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Top    float64 `json:"top"`
}

// EmptyRect returns an unset rectangle.
func EmptyRect() Rect {
	return Rect{
		Left:   math.Inf(1),
		Right:  math.Inf(-1),
		Bottom: math.Inf(1),
		Top:    math.Inf(-1),
	}
}

// R builds a rectangle from its horizontal and vertical ranges.
func R(left, right, bottom, top float64) Rect {
	return Rect{Left: left, Right: right, Bottom: bottom, Top: top}
}

// HasX reports whether the horizontal range is set.
func (r Rect) HasX() bool { return r.Left <= r.Right }

// HasY reports whether the vertical range is set.
func (r Rect) HasY() bool { return r.Bottom <= r.Top }

// IsSet reports whether both ranges are set.
func (r Rect) IsSet() bool { return r.HasX() && r.HasY() }

// Width returns the horizontal extent, or zero when unset.
func (r Rect) Width() float64 {
	if !r.HasX() {
		return 0
	}
	return r.Right - r.Left
}

// Height returns the vertical extent, or zero when unset.
func (r Rect) Height() float64 {
	if !r.HasY() {
		return 0
	}
	return r.Top - r.Bottom
}

// Translate returns r shifted by (dx, dy). Unset ranges stay unset.
func (r Rect) Translate(dx, dy float64) Rect {
	if r.HasX() {
		r.Left += dx
		r.Right += dx
	}
	if r.HasY() {
		r.Bottom += dy
		r.Top += dy
	}
	return r
}

// Union returns the smallest rectangle containing r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		Left:   math.Min(r.Left, o.Left),
		Right:  math.Max(r.Right, o.Right),
		Bottom: math.Min(r.Bottom, o.Bottom),
		Top:    math.Max(r.Top, o.Top),
	}
}

func (r *Rect) updateX(lo, hi float64) {
	if lo > hi {
		lo, hi = hi, lo
	}
	r.Left = math.Min(r.Left, lo)
	r.Right = math.Max(r.Right, hi)
}

func (r *Rect) updateY(lo, hi float64) {
	if lo > hi {
		lo, hi = hi, lo
	}
	r.Bottom = math.Min(r.Bottom, lo)
	r.Top = math.Max(r.Top, hi)
}

// BoundingBox holds the two nested extents of a drawable object: the self box
// covers what the object itself draws, the content box additionally covers
// attached sub-elements. The content box always contains the self box.
//
// The zero value is not usable; call NewBoundingBox or ResetBoundingBox.
type BoundingBox struct {
	Self    Rect `json:"self"`
	Content Rect `json:"content"`
}

// NewBoundingBox returns a box with both extents unset.
func NewBoundingBox() BoundingBox {
	return BoundingBox{Self: EmptyRect(), Content: EmptyRect()}
}

// BoxFromRect returns a box whose self and content extents are both r.
func BoxFromRect(r Rect) BoundingBox {
	return BoundingBox{Self: r, Content: r}
}

// ResetBoundingBox clears both extents.
func (b *BoundingBox) ResetBoundingBox() {
	b.Self = EmptyRect()
	b.Content = EmptyRect()
}

// UpdateContentBBoxX widens the content box to include [lo, hi].
func (b *BoundingBox) UpdateContentBBoxX(lo, hi float64) {
	b.Content.updateX(lo, hi)
}

// UpdateContentBBoxY widens the content box to include [lo, hi].
func (b *BoundingBox) UpdateContentBBoxY(lo, hi float64) {
	b.Content.updateY(lo, hi)
}

// UpdateSelfBBoxX widens the self box, and with it the content box, to
// include [lo, hi].
func (b *BoundingBox) UpdateSelfBBoxX(lo, hi float64) {
	b.Self.updateX(lo, hi)
	b.Content.updateX(lo, hi)
}

// UpdateSelfBBoxY widens the self box, and with it the content box, to
// include [lo, hi].
func (b *BoundingBox) UpdateSelfBBoxY(lo, hi float64) {
	b.Self.updateY(lo, hi)
	b.Content.updateY(lo, hi)
}

// HasContentBB reports whether the content box has been set.
func (b BoundingBox) HasContentBB() bool { return b.Content.IsSet() }

// HasSelfBB reports whether the self box has been set.
func (b BoundingBox) HasSelfBB() bool { return b.Self.IsSet() }

func (b BoundingBox) ContentLeft() float64   { return b.Content.Left }
func (b BoundingBox) ContentRight() float64  { return b.Content.Right }
func (b BoundingBox) ContentTop() float64    { return b.Content.Top }
func (b BoundingBox) ContentBottom() float64 { return b.Content.Bottom }
func (b BoundingBox) SelfLeft() float64      { return b.Self.Left }
func (b BoundingBox) SelfRight() float64     { return b.Self.Right }
func (b BoundingBox) SelfTop() float64       { return b.Self.Top }
func (b BoundingBox) SelfBottom() float64    { return b.Self.Bottom }

// HorizontalContentOverlap reports whether the horizontal content ranges of b
// and other intersect once other is widened by margin on both sides.
// Touching ranges do not overlap.
func (b BoundingBox) HorizontalContentOverlap(other BoundingBox, margin float64) bool {
	if !b.Content.HasX() || !other.Content.HasX() {
		return false
	}
	if b.Content.Right <= other.Content.Left-margin {
		return false
	}
	if b.Content.Left >= other.Content.Right+margin {
		return false
	}
	return true
}

// VerticalContentOverlap is the vertical counterpart of
// HorizontalContentOverlap.
func (b BoundingBox) VerticalContentOverlap(other BoundingBox, margin float64) bool {
	if !b.Content.HasY() || !other.Content.HasY() {
		return false
	}
	if b.Content.Top <= other.Content.Bottom-margin {
		return false
	}
	if b.Content.Bottom >= other.Content.Top+margin {
		return false
	}
	return true
}

// HorizontalSelfOverlap compares the self boxes horizontally.
func (b BoundingBox) HorizontalSelfOverlap(other BoundingBox, margin float64) bool {
	if !b.Self.HasX() || !other.Self.HasX() {
		return false
	}
	if b.Self.Right <= other.Self.Left-margin {
		return false
	}
	if b.Self.Left >= other.Self.Right+margin {
		return false
	}
	return true
}
