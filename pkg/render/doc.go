// Package render turns a laid out page into output artifacts.
//
// Formats:
//
//   - json: the [layout.Page] itself, indented
//   - svg: a drawing of staff lines, floating objects and curves
//   - png, pdf: the SVG converted with rsvg-convert (librsvg)
//
// The SVG is a debugging aid rather than engraved music: floating objects
// are drawn as their boxes, labelled with their class.
//
//	svg := render.SVG(page, render.WithBoxes(), render.WithScale(1.5))
//	png, err := render.ToPNG(svg, 2)
package render
