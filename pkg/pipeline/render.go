package pipeline

import (
	"github.com/matzehuels/stavelayout/pkg/errors"
	"github.com/matzehuels/stavelayout/pkg/layout"
	"github.com/matzehuels/stavelayout/pkg/render"
)

// Render produces every format in opts.Formats from page.
func Render(page *layout.Page, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	artifacts := make(map[string][]byte, len(opts.Formats))

	var svg []byte
	drawing := func() []byte {
		if svg == nil {
			svgOpts := []render.SVGOption{render.WithScale(opts.Scale)}
			if opts.Boxes {
				svgOpts = append(svgOpts, render.WithBoxes())
			}
			svg = render.SVG(page, svgOpts...)
		}
		return svg
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatJSON:
			data, err = render.JSON(page)
		case FormatSVG:
			data = drawing()
		case FormatPNG:
			data, err = render.ToPNG(drawing(), opts.Scale)
		case FormatPDF:
			data, err = render.ToPDF(drawing())
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format)
		}
		if err != nil {
			if errors.GetCode(err) != "" {
				return nil, err
			}
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
