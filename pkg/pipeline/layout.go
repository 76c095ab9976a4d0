package pipeline

import (
	"context"

	"github.com/matzehuels/stavelayout/pkg/errors"
	"github.com/matzehuels/stavelayout/pkg/layout"
	"github.com/matzehuels/stavelayout/pkg/score"
	"github.com/matzehuels/stavelayout/pkg/slur"
)

// Layout lays out every system of doc and assembles the page. Systems are
// laid out one after the other with one shared context, so that extender
// lines keep their distance across systems.
func Layout(ctx context.Context, doc *score.Document, opts Options) (*layout.Page, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}
	lctx := layout.NewContext(opts.Engraving, opts.Logger)

	systems := make([]*layout.SystemAligner, 0, len(doc.Systems))
	for i := range doc.Systems {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sa := layout.Build(lctx, &doc.Systems[i])
		layout.Run(lctx, sa, slur.Adjuster{})
		opts.Logger.Debug("laid out system", "index", i, "staves", sa.NumStaves()-1, "height", sa.Height())
		systems = append(systems, sa)
	}

	page := layout.NewPage(lctx, doc.Title, systems)
	if opts.Strict && len(page.Skipped) > 0 {
		s := page.Skipped[0]
		return nil, errors.New(errors.ErrCodeUnresolvedReference, "%d events skipped, first %q: %s", len(page.Skipped), s.ID, s.Reason)
	}
	return page, nil
}

// pageStats counts what a page contains.
func pageStats(page *layout.Page) Stats {
	st := Stats{Systems: len(page.Systems), Skipped: len(page.Skipped)}
	for _, sys := range page.Systems {
		st.Staves += len(sys.Staves)
		for _, staff := range sys.Staves {
			st.Curves += len(staff.Curves)
			st.Floating += len(staff.Floating)
		}
	}
	return st
}
