// Package pkg holds the libraries behind stavelayout, a vertical layout
// engine for engraved music.
//
// # Overview
//
// A measured score arrives with every note, stem, syllable and control
// event already sized and placed horizontally. stavelayout decides where
// things go vertically: the shape of slurs and ties, how far dynamics,
// directives and lyrics sit from their staff, and how far apart the staves
// and systems are.
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/stavelayout/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    DocumentPath: "duet.yaml",
//	    Formats:      []string{"json", "svg"},
//	})
//
// # Main Packages
//
// ## Layout
//
// [score] - The input document: systems, staff groups, measured elements
// and control events. Decoded from YAML or JSON.
//
// [layout] - Staff alignments, floating positioners and the passes that
// space a system: overflow calculation, collision avoidance, staff overlap
// and vertical justification.
//
// [slur] - Slur and tie shaping: initial control points, obstacle
// clearance, endpoint adjustment and nested curves.
//
// [geom] - Rectangles, points and cubic Bézier helpers shared by the above.
//
// ## Infrastructure
//
// [config] - Engraving options (TOML) with a single descriptor table for
// defaults and ranges.
//
// [cache] - Layout and artifact cache with file, Redis and null backends.
//
// [pipeline] - Decode → layout → render orchestration used by the CLI and
// the HTTP service.
//
// [render] - JSON and SVG output, with PNG and PDF conversion.
//
// [observability] - Hooks for pipeline, cache and server events.
//
// [errors] - Coded errors shared by every package.
//
// [score]: https://pkg.go.dev/github.com/matzehuels/stavelayout/pkg/score
// [layout]: https://pkg.go.dev/github.com/matzehuels/stavelayout/pkg/layout
// [slur]: https://pkg.go.dev/github.com/matzehuels/stavelayout/pkg/slur
// [geom]: https://pkg.go.dev/github.com/matzehuels/stavelayout/pkg/geom
// [config]: https://pkg.go.dev/github.com/matzehuels/stavelayout/pkg/config
// [cache]: https://pkg.go.dev/github.com/matzehuels/stavelayout/pkg/cache
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/stavelayout/pkg/pipeline
// [render]: https://pkg.go.dev/github.com/matzehuels/stavelayout/pkg/render
// [observability]: https://pkg.go.dev/github.com/matzehuels/stavelayout/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/stavelayout/pkg/errors
package pkg
