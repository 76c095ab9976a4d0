package render

import (
	"bytes"
	"fmt"
	"html"
	"math"

	"github.com/matzehuels/stavelayout/pkg/geom"
	"github.com/matzehuels/stavelayout/pkg/layout"
)

const svgStyle = `
    .staff line { stroke: #000; stroke-width: 1; }
    .float rect { fill: #4a90d9; fill-opacity: 0.15; stroke: #4a90d9; stroke-width: 0.5; }
    .float text { font: 7px sans-serif; fill: #24527a; }
    .curve { fill: none; stroke: #000; stroke-linecap: round; }
    .curve.cross { stroke: #c0392b; }
    .overflow { fill: #f5a623; fill-opacity: 0.12; }`

// SVGOption configures SVG.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	boxes bool
	scale float64
	pad   float64
}

// WithBoxes shades the overflow bands above and below every staff.
func WithBoxes() SVGOption { return func(r *svgRenderer) { r.boxes = true } }

// WithScale sets the ratio of SVG pixels to layout units.
func WithScale(s float64) SVGOption {
	return func(r *svgRenderer) {
		if s > 0 {
			r.scale = s
		}
	}
}

// SVG draws page. The y axis is flipped: layout y grows upwards.
func SVG(page *layout.Page, opts ...SVGOption) []byte {
	r := svgRenderer{scale: 1, pad: 20}
	for _, opt := range opts {
		opt(&r)
	}

	ext := pageExtent(page)
	width := ext.Width() + 2*r.pad
	height := ext.Height() + 2*r.pad
	tx := func(x float64) float64 { return x - ext.Left + r.pad }
	ty := func(y float64) float64 { return ext.Top - y + r.pad }

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width*r.scale, height*r.scale)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", svgStyle)
	if page.Title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", html.EscapeString(page.Title))
	}

	for si, sys := range page.Systems {
		fmt.Fprintf(&buf, "  <g class=\"system\" id=\"system-%d\">\n", si)
		for _, st := range sys.Staves {
			top := sys.YRel + st.YRel
			if r.boxes {
				renderOverflow(&buf, ext, st, top, tx, ty)
			}
			renderStaff(&buf, ext, st, top, tx, ty)
			for _, f := range st.Floating {
				renderFloating(&buf, f, top, tx, ty)
			}
			for _, c := range st.Curves {
				renderCurve(&buf, c, top, tx, ty)
			}
		}
		buf.WriteString("  </g>\n")
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderStaff(buf *bytes.Buffer, ext geom.Rect, st layout.StaffLayout, top float64, tx, ty func(float64) float64) {
	fmt.Fprintf(buf, "    <g class=\"staff\" data-n=\"%d\">\n", st.N)
	lines := st.Lines
	if lines < 1 {
		lines = 1
	}
	gap := 0.0
	if lines > 1 {
		gap = st.StaffHeight / float64(lines-1)
	}
	for i := 0; i < lines; i++ {
		y := ty(top - float64(i)*gap)
		fmt.Fprintf(buf, "      <line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\"/>\n", tx(ext.Left), y, tx(ext.Right), y)
	}
	buf.WriteString("    </g>\n")
}

func renderOverflow(buf *bytes.Buffer, ext geom.Rect, st layout.StaffLayout, top float64, tx, ty func(float64) float64) {
	w := ext.Width()
	if st.OverflowAbove > 0 {
		fmt.Fprintf(buf, "    <rect class=\"overflow\" x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\"/>\n",
			tx(ext.Left), ty(top+st.OverflowAbove), w, st.OverflowAbove)
	}
	if st.OverflowBelow > 0 {
		bottom := top - st.StaffHeight
		fmt.Fprintf(buf, "    <rect class=\"overflow\" x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\"/>\n",
			tx(ext.Left), ty(bottom), w, st.OverflowBelow)
	}
}

func renderFloating(buf *bytes.Buffer, f layout.FloatingLayout, top float64, tx, ty func(float64) float64) {
	b := f.Box
	fmt.Fprintf(buf, "    <g class=\"float %s\" id=\"%s\">\n", f.Class, html.EscapeString(f.ID))
	fmt.Fprintf(buf, "      <rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\"/>\n",
		tx(b.Left), ty(top+b.Top), b.Width(), b.Height())
	fmt.Fprintf(buf, "      <text x=\"%.2f\" y=\"%.2f\">%s</text>\n", tx(b.Left)+1, ty(top+b.Bottom)-1, f.Class)
	buf.WriteString("    </g>\n")
}

func renderCurve(buf *bytes.Buffer, c layout.CurveLayout, top float64, tx, ty func(float64) float64) {
	class := "curve " + c.Class
	if c.CrossStaff {
		class += " cross"
	}
	p := c.Points
	fmt.Fprintf(buf, "    <path class=\"%s\" id=\"%s\" stroke-width=\"%.2f\" d=\"M%.2f %.2f C%.2f %.2f %.2f %.2f %.2f %.2f\"/>\n",
		class, html.EscapeString(c.ID), math.Max(c.Thickness, 0.5),
		tx(p[0].X), ty(top+p[0].Y), tx(p[1].X), ty(top+p[1].Y),
		tx(p[2].X), ty(top+p[2].Y), tx(p[3].X), ty(top+p[3].Y))
}

// pageExtent returns the page bounds in page coordinates: the staff
// overflows vertically, the drawn objects horizontally.
func pageExtent(page *layout.Page) geom.Rect {
	ext := geom.EmptyRect()
	for _, sys := range page.Systems {
		for _, st := range sys.Staves {
			top := sys.YRel + st.YRel
			ext = ext.Union(geom.R(0, 0, top-st.StaffHeight-st.OverflowBelow, top+st.OverflowAbove))
			for _, f := range st.Floating {
				ext = ext.Union(f.Box.Translate(0, top))
			}
			for _, c := range st.Curves {
				for _, q := range c.Points {
					ext = ext.Union(geom.R(q.X, q.X, top+q.Y, top+q.Y))
				}
			}
		}
	}
	if !ext.IsSet() {
		return geom.R(0, 100, -100, 0)
	}
	if ext.Width() < 100 {
		ext.Right = ext.Left + 100
	}
	return ext
}
