package pipeline

import (
	"bytes"
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/matzehuels/stavelayout/pkg/cache"
	"github.com/matzehuels/stavelayout/pkg/errors"
	"github.com/matzehuels/stavelayout/pkg/observability"
)

const (
	duetPath   = "testdata/duet.yaml"
	brokenPath = "testdata/broken.yaml"
)

func newTestRunner(t *testing.T, c cache.Cache) *Runner {
	t.Helper()
	r := NewRunner(c, nil, nil)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestExecute(t *testing.T) {
	r := newTestRunner(t, nil)
	res, err := r.Execute(context.Background(), Options{
		DocumentPath: duetPath,
		Formats:      []string{FormatJSON, FormatSVG},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if res.Page.Title != "Duet" {
		t.Errorf("title = %q", res.Page.Title)
	}
	if res.Stats.Systems != 2 || res.Stats.Staves != 4 {
		t.Errorf("stats = %+v, want 2 systems with 4 staves", res.Stats)
	}
	if res.Stats.Skipped != 0 {
		t.Errorf("%d events skipped: %+v", res.Stats.Skipped, res.Page.Skipped)
	}
	if res.Stats.Curves < 5 || res.Stats.Floating < 5 {
		t.Errorf("stats = %+v, want at least 5 curves and 5 floating objects", res.Stats)
	}
	if len(res.Artifacts) != 2 {
		t.Fatalf("artifacts = %d, want 2", len(res.Artifacts))
	}
	if !bytes.HasPrefix(res.Artifacts[FormatSVG], []byte("<svg ")) {
		t.Error("svg artifact is not an svg document")
	}
	if !bytes.Contains(res.Artifacts[FormatJSON], []byte(`"title": "Duet"`)) {
		t.Error("json artifact lacks the title")
	}
	if len(res.DocumentHash) != 64 || len(res.LayoutHash) != 64 {
		t.Errorf("hashes = %q, %q", res.DocumentHash, res.LayoutHash)
	}
	if res.CacheInfo.LayoutHit || res.CacheInfo.RenderHit {
		t.Error("null cache reported a hit")
	}

	// systems are stacked downwards and staves inside each system too
	sys := res.Page.Systems
	if sys[1].YRel >= sys[0].YRel {
		t.Errorf("second system at %v, first at %v", sys[1].YRel, sys[0].YRel)
	}
	for i, s := range sys {
		if s.Staves[1].YRel >= s.Staves[0].YRel {
			t.Errorf("system %d: staff 2 at %v, staff 1 at %v", i, s.Staves[1].YRel, s.Staves[0].YRel)
		}
	}
}

func TestExecuteIsDeterministic(t *testing.T) {
	r := newTestRunner(t, nil)
	data, err := os.ReadFile(duetPath)
	if err != nil {
		t.Fatal(err)
	}
	opts := Options{Document: string(data), Formats: []string{FormatJSON, FormatSVG}}

	first, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if diff := cmp.Diff(first.Page, second.Page); diff != "" {
		t.Errorf("layouts differ (-first +second):\n%s", diff)
	}
	for f := range first.Artifacts {
		if !bytes.Equal(first.Artifacts[f], second.Artifacts[f]) {
			t.Errorf("%s artifacts differ", f)
		}
	}
	if first.LayoutHash != second.LayoutHash {
		t.Error("layout hashes differ")
	}
}

func TestExecuteUsesCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := newTestRunner(t, fc)
	ctx := context.Background()
	opts := Options{DocumentPath: duetPath, Formats: []string{FormatJSON, FormatSVG}}

	cold, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("cold run: %v", err)
	}
	warm, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("warm run: %v", err)
	}
	if !warm.CacheInfo.LayoutHit || !warm.CacheInfo.RenderHit {
		t.Errorf("warm run cache info = %+v", warm.CacheInfo)
	}
	if diff := cmp.Diff(cold.Page, warm.Page, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("cached layout differs (-cold +warm):\n%s", diff)
	}
	if !bytes.Equal(cold.Artifacts[FormatSVG], warm.Artifacts[FormatSVG]) {
		t.Error("cached svg differs")
	}

	opts.Refresh = true
	fresh, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("refresh run: %v", err)
	}
	if fresh.CacheInfo.LayoutHit || fresh.CacheInfo.RenderHit {
		t.Error("refresh run read the cache")
	}

	// other option values miss
	opts.Refresh = false
	opts.Boxes = true
	boxed, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !boxed.CacheInfo.LayoutHit || boxed.CacheInfo.RenderHit {
		t.Errorf("boxes changed the wrong stage: %+v", boxed.CacheInfo)
	}
}

func TestExecuteSkipsUnresolvedReferences(t *testing.T) {
	r := newTestRunner(t, nil)
	ctx := context.Background()

	res, err := r.Execute(ctx, Options{DocumentPath: brokenPath})
	if err != nil {
		t.Fatalf("lenient run: %v", err)
	}
	if res.Stats.Skipped != 1 || res.Page.Skipped[0].ID != "sl1" {
		t.Errorf("skipped = %+v", res.Page.Skipped)
	}

	_, err = r.Execute(ctx, Options{DocumentPath: brokenPath, Strict: true})
	if !errors.Is(err, errors.ErrCodeUnresolvedReference) {
		t.Errorf("strict run error = %v, want UNRESOLVED_REFERENCE", err)
	}
}

func TestExecuteErrors(t *testing.T) {
	r := newTestRunner(t, nil)
	ctx := context.Background()
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"missing file", Options{DocumentPath: "testdata/none.yaml"}, errors.ErrCodeFileNotFound},
		{"not yaml", Options{Document: "systems: [unclosed"}, errors.ErrCodeInvalidFormat},
		{"no systems", Options{Document: "title: empty\nsystems: []\n"}, errors.ErrCodeInvalidDocument},
		{"unknown field", Options{Document: "systemz: []\n"}, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Execute(ctx, tt.opts)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestExecuteCancelled(t *testing.T) {
	r := newTestRunner(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Execute(ctx, Options{DocumentPath: duetPath}); err != context.Canceled {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestExecuteBatch(t *testing.T) {
	r := newTestRunner(t, nil)
	ctx := context.Background()
	data, err := os.ReadFile(duetPath)
	if err != nil {
		t.Fatal(err)
	}

	results, err := r.ExecuteBatch(ctx, []Options{
		{DocumentPath: duetPath},
		{DocumentPath: brokenPath},
		{Document: string(data)},
	}, 2)
	if err != nil {
		t.Fatalf("ExecuteBatch: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("%d results, want 3", len(results))
	}
	if results[0].Page.Title != "Duet" || results[1].Stats.Skipped != 1 {
		t.Error("results are out of order")
	}
	if diff := cmp.Diff(results[0].Page, results[2].Page); diff != "" {
		t.Errorf("same document laid out differently in one batch:\n%s", diff)
	}

	_, err = r.ExecuteBatch(ctx, []Options{
		{DocumentPath: duetPath},
		{DocumentPath: brokenPath, Strict: true},
	}, 0)
	if !errors.Is(err, errors.ErrCodeUnresolvedReference) {
		t.Errorf("batch error = %v", err)
	}
	if err != nil && !strings.Contains(err.Error(), brokenPath) {
		t.Errorf("batch error does not name the document: %v", err)
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu      sync.Mutex
	systems int
	formats []string
}

func (h *recordingHooks) OnLayoutComplete(_ context.Context, systems, _ int, _ time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err == nil {
		h.systems += systems
	}
}

func (h *recordingHooks) OnRenderStart(_ context.Context, formats []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.formats = append(h.formats, formats...)
}

func TestExecuteReportsToHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	r := newTestRunner(t, nil)
	if _, err := r.Execute(context.Background(), Options{DocumentPath: duetPath, Formats: []string{FormatSVG}}); err != nil {
		t.Fatal(err)
	}
	if hooks.systems != 2 {
		t.Errorf("hooks saw %d systems, want 2", hooks.systems)
	}
	if len(hooks.formats) != 1 || hooks.formats[0] != FormatSVG {
		t.Errorf("hooks saw formats %v", hooks.formats)
	}
}
