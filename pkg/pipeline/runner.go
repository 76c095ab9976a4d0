package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/stavelayout/pkg/cache"
	"github.com/matzehuels/stavelayout/pkg/errors"
	"github.com/matzehuels/stavelayout/pkg/layout"
	"github.com/matzehuels/stavelayout/pkg/observability"
	"github.com/matzehuels/stavelayout/pkg/render"
)

// Runner executes the pipeline with caching.
//
// A Runner holds no per-run state: several goroutines may share one Runner
// with different options. Every run lays out its document on its own
// goroutine.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner returns a runner. A nil keyer uses the DefaultKeyer, a nil
// cache disables caching.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs decode, layout and render for one document.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	result := &Result{}

	data, err := ReadSource(opts)
	if err != nil {
		return nil, err
	}
	result.DocumentHash = cache.Hash(data)

	page, hit, err := r.LayoutWithCacheInfo(ctx, data, opts, &result.Stats)
	if err != nil {
		return nil, err
	}
	result.Page = page
	result.CacheInfo.LayoutHit = hit
	stats := pageStats(page)
	stats.DecodeTime, stats.LayoutTime = result.Stats.DecodeTime, result.Stats.LayoutTime
	result.Stats = stats

	opts.Logger.Info("laid out document",
		"systems", stats.Systems,
		"curves", stats.Curves,
		"skipped", stats.Skipped,
		"cached", hit,
		"duration", stats.LayoutTime)

	renderStart := time.Now()
	hooks.OnRenderStart(ctx, opts.Formats)
	artifacts, layoutHash, renderHit, err := r.RenderWithCacheInfo(ctx, page, opts)
	result.Stats.RenderTime = time.Since(renderStart)
	hooks.OnRenderComplete(ctx, opts.Formats, result.Stats.RenderTime, err)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.LayoutHash = layoutHash
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LayoutWithCacheInfo returns the page for the document source data and
// whether it came from the cache. Decode and layout times are recorded in
// stats when it is not nil.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, data []byte, opts Options, stats *Stats) (*layout.Page, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}
	if stats == nil {
		stats = &Stats{}
	}
	hooks := observability.Pipeline()
	key := r.Keyer.LayoutKey(cache.Hash(data), opts.LayoutKeyOpts())

	if !opts.Refresh {
		if cached, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if page, err := render.ReadJSON(cached); err == nil {
				observability.Cache().OnCacheHit(ctx, cache.KeyTypeLayout)
				return page, true, nil
			}
		} else if err != nil {
			opts.Logger.Warn("cache read failed", "error", err)
		}
		observability.Cache().OnCacheMiss(ctx, cache.KeyTypeLayout)
	}

	decodeStart := time.Now()
	hooks.OnDecodeStart(ctx, len(data))
	doc, err := Decode(data, opts)
	stats.DecodeTime = time.Since(decodeStart)
	if err != nil {
		hooks.OnDecodeComplete(ctx, 0, stats.DecodeTime, err)
		return nil, false, err
	}
	hooks.OnDecodeComplete(ctx, len(doc.Systems), stats.DecodeTime, nil)

	layoutStart := time.Now()
	hooks.OnLayoutStart(ctx, len(doc.Systems))
	page, err := Layout(ctx, doc, opts)
	stats.LayoutTime = time.Since(layoutStart)
	if err != nil {
		hooks.OnLayoutComplete(ctx, len(doc.Systems), 0, stats.LayoutTime, err)
		return nil, false, err
	}
	hooks.OnLayoutComplete(ctx, len(page.Systems), len(page.Skipped), stats.LayoutTime, nil)

	if encoded, err := render.JSON(page); err == nil {
		r.store(ctx, key, cache.KeyTypeLayout, encoded, cache.TTLLayout, opts.Logger)
	}
	return page, false, nil
}

// RenderWithCacheInfo renders page in every requested format. It returns
// the artifacts, the layout hash they are keyed under and whether all of
// them came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, page *layout.Page, opts Options) (map[string][]byte, string, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, "", false, err
	}
	encoded, err := render.JSON(page)
	if err != nil {
		return nil, "", false, errors.Wrap(errors.ErrCodeInternal, err, "encode layout")
	}
	layoutHash := cache.Hash(encoded)

	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, cache.KeyTypeArtifact)
			return artifacts, layoutHash, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, cache.KeyTypeArtifact)
	}

	artifacts, err := Render(page, opts)
	if err != nil {
		return nil, "", false, err
	}
	for format, data := range artifacts {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		r.store(ctx, key, cache.KeyTypeArtifact, data, cache.TTLArtifact, opts.Logger)
	}
	return artifacts, layoutHash, false, nil
}

// ExecuteBatch runs several documents concurrently, at most limit at a time
// (no limit when limit <= 0). Results are in the order of opts. The first
// failure cancels the runs that have not finished.
func (r *Runner) ExecuteBatch(ctx context.Context, opts []Options, limit int) ([]*Result, error) {
	results := make([]*Result, len(opts))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := range opts {
		i := i
		g.Go(func() error {
			res, err := r.Execute(ctx, opts[i])
			if err != nil {
				name := opts[i].DocumentPath
				if name == "" {
					name = "document"
				}
				code := errors.GetCode(err)
				if code == "" {
					code = errors.ErrCodeInternal
				}
				return errors.Wrap(code, err, "%s (#%d)", name, i)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Runner) store(ctx context.Context, key, keyType string, data []byte, ttl time.Duration, logger *log.Logger) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		logger.Warn("cache write failed", "type", keyType, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
