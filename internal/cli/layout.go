package cli

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stavelayout/pkg/pipeline"
)

// layoutFlags holds the command-line flags of the layout command.
type layoutFlags struct {
	output   string
	formats  string
	options  string
	strict   bool
	boxes    bool
	scale    float64
	noCache  bool
	refresh  bool
	redisURL string
	jobs     int
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var f layoutFlags

	cmd := &cobra.Command{
		Use:   "layout [score.yaml...]",
		Short: "Lay out score documents and write the results",
		Long: `Lay out one or more score documents (YAML or JSON).

Every document is written next to its input, or to --output when a single
document and format are requested. The json format is the laid out page
(<input>.layout.json) that 'inspect' browses; svg, png and pdf are debug
drawings of it.

Results are cached locally, or in Redis when --redis or $` + envRedisURL + `
is set.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args, f)
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (single document and format) or base path")
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output format(s): svg (default), json, png, pdf (comma-separated)")
	cmd.Flags().StringVar(&f.options, "options", "", "engraving options file (TOML)")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "fail on references to unknown elements")
	cmd.Flags().BoolVar(&f.boxes, "boxes", false, "shade the staff overflow bands in drawings")
	cmd.Flags().Float64Var(&f.scale, "scale", pipeline.DefaultScale, "pixels per layout unit in drawings")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached results and recompute them")
	cmd.Flags().StringVar(&f.redisURL, "redis", "", "Redis URL for a shared cache")
	cmd.Flags().IntVarP(&f.jobs, "jobs", "j", 4, "documents laid out concurrently")

	return cmd
}

// runLayout lays out every input and writes the outputs.
func (c *CLI) runLayout(ctx context.Context, inputs []string, f layoutFlags) error {
	formats := parseFormats(f.formats)
	if err := pipeline.ValidateFormats(formats); err != nil {
		return err
	}
	if f.output != "" && len(inputs) > 1 {
		return fmt.Errorf("--output needs a single input, got %d", len(inputs))
	}

	runner, err := c.newRunner(ctx, f.noCache, f.redisURL)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := make([]pipeline.Options, len(inputs))
	for i, input := range inputs {
		opts[i] = pipeline.Options{
			DocumentPath: input,
			OptionsPath:  f.options,
			Strict:       f.strict,
			Formats:      formats,
			Boxes:        f.boxes,
			Scale:        f.scale,
			Refresh:      f.refresh,
		}
	}

	prog := newProgress(c.Logger)
	spinner := newSpinner(ctx, fmt.Sprintf("Laying out %d %s...", len(inputs), plural(len(inputs), "document")))
	spinner.Start()
	results, err := runner.ExecuteBatch(ctx, opts, f.jobs)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}

	single := len(formats) == 1
	for i, res := range results {
		paths, err := writeArtifacts(inputs[i], f.output, res.Artifacts, single)
		if err != nil {
			return err
		}
		printSuccess("%s", inputs[i])
		for _, p := range paths {
			printFile(p)
		}
		printStats(res.Stats, res.CacheInfo.LayoutHit)
		for _, s := range res.Page.Skipped {
			printWarning("skipped %s", s.ID)
			printDetail("%s", s.Reason)
		}
	}
	prog.done(fmt.Sprintf("Laid out %d %s", len(results), plural(len(results), "document")))

	if _, ok := results[0].Artifacts[pipeline.FormatJSON]; ok {
		printNewline()
		printNextStep("Browse", appName+" inspect "+outputPath(inputs[0], f.output, pipeline.FormatJSON, single))
	}
	return nil
}

// writeArtifacts writes every artifact of one document and returns the
// paths in format order.
func writeArtifacts(input, output string, artifacts map[string][]byte, single bool) ([]string, error) {
	formats := make([]string, 0, len(artifacts))
	for format := range artifacts {
		formats = append(formats, format)
	}
	sort.Strings(formats)

	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		path := outputPath(input, output, format, single)
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
