// Package pipeline runs the complete decode → layout → render sequence for
// a measured score. The CLI and the HTTP service both go through a
// [Runner], so they lay out documents the same way and share its cache.
//
// # Stages
//
//  1. Decode: read the document (YAML or JSON) and the engraving options
//  2. Layout: per system, align the staves, solve the curves, place the
//     floating objects and space the staves; then stack and justify the page
//  3. Render: produce the requested formats (json, svg, png, pdf)
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    DocumentPath: "song.yaml",
//	    Formats:      []string{"svg"},
//	})
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stavelayout/pkg/cache"
	"github.com/matzehuels/stavelayout/pkg/config"
	"github.com/matzehuels/stavelayout/pkg/errors"
	"github.com/matzehuels/stavelayout/pkg/layout"
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// DefaultScale is the default ratio of output pixels to layout units.
const DefaultScale = 1.0

// =============================================================================
// Options
// =============================================================================

// Options configures one pipeline run. It is JSON serialisable so that the
// HTTP service can accept it as a request body.
type Options struct {
	// Document is the score source. DocumentPath is read when it is empty.
	Document     string `json:"document,omitempty"`
	DocumentPath string `json:"-"`

	// Engraving holds the option values. OptionsPath is read when it is nil;
	// without either the defaults apply.
	Engraving   *config.Options `json:"options,omitempty"`
	OptionsPath string          `json:"-"`

	// Strict fails the run on references to unknown elements instead of
	// skipping the events.
	Strict bool `json:"strict,omitempty"`

	Formats []string `json:"formats,omitempty"`
	Boxes   bool     `json:"boxes,omitempty"`
	Scale   float64  `json:"scale,omitempty"`

	// Refresh bypasses cached results and overwrites them.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Page is the laid out document.
	Page *layout.Page

	// DocumentHash is the content hash of the document source.
	DocumentHash string

	// LayoutHash is the content hash of the JSON encoded page.
	LayoutHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
// Durations encode as nanoseconds.
type Stats struct {
	Systems    int           `json:"systems"`
	Staves     int           `json:"staves"`
	Curves     int           `json:"curves"`
	Floating   int           `json:"floating"`
	Skipped    int           `json:"skipped"`
	DecodeTime time.Duration `json:"decode_ns"`
	LayoutTime time.Duration `json:"layout_ns"`
	RenderTime time.Duration `json:"render_ns"`
}

// CacheInfo tracks which stages hit the cache.
type CacheInfo struct {
	LayoutHit bool `json:"layout_hit"`
	RenderHit bool `json:"render_hit"`
}

// =============================================================================
// Validation
// =============================================================================

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format %q (must be one of: json, svg, png, pdf)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are supported.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks the options and fills in defaults. Calling
// it again has no effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Document == "" && o.DocumentPath == "" {
		return errors.New(errors.ErrCodeInvalidInput, "document or document path is required")
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLayout loads the engraving options and sets the logger.
func (o *Options) ValidateForLayout() error {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	switch {
	case o.Engraving != nil:
		return o.Engraving.Validate()
	case o.OptionsPath != "":
		e, err := config.Load(o.OptionsPath)
		if err != nil {
			return err
		}
		o.Engraving = &e
	default:
		e := config.Default()
		o.Engraving = &e
	}
	return nil
}

// ValidateForRender checks the formats and sets the render defaults.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidOption, "scale must be positive, got %g", o.Scale)
	}
	return ValidateFormats(o.Formats)
}

// LayoutKeyOpts returns the cache key inputs of the layout stage.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	var engraving config.Options
	if o.Engraving != nil {
		engraving = *o.Engraving
	}
	return cache.LayoutKeyOpts{
		OptionsHash: cache.HashParts(engraving),
		Strict:      o.Strict,
	}
}

// ArtifactKeyOpts returns the cache key inputs of one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatSVG, FormatPDF:
		k.Boxes = o.Boxes
	case FormatPNG:
		k.Boxes = o.Boxes
		k.Scale = o.Scale
	}
	return k
}
