package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/stavelayout/pkg/config"
	"github.com/matzehuels/stavelayout/pkg/pipeline"
	"github.com/matzehuels/stavelayout/pkg/render"
)

const duetPath = "../../pkg/pipeline/testdata/duet.yaml"

// run executes the root command with args and returns what it wrote to
// the command output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv(envRedisURL, "")

	var out bytes.Buffer
	c := New(io.Discard, LogInfo)
	c.out = &out
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLayoutCommand(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "duet")
	if _, err := run(t, "layout", duetPath, "-f", "json,svg", "-o", base, "--no-cache"); err != nil {
		t.Fatalf("layout: %v", err)
	}

	data, err := os.ReadFile(base + ".layout.json")
	if err != nil {
		t.Fatal(err)
	}
	page, err := render.ReadJSON(data)
	if err != nil {
		t.Fatal(err)
	}
	if page.Title != "Duet" || len(page.Systems) != 2 {
		t.Errorf("page = %q with %d systems", page.Title, len(page.Systems))
	}
	svg, err := os.ReadFile(base + ".svg")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(svg, []byte("<svg ")) {
		t.Error("svg output is not an svg document")
	}

	out, err := run(t, "inspect", "--plain", base+".layout.json")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if strings.Count(out, "system ") != 4 {
		t.Errorf("inspect listed %d staves, want 4:\n%s", strings.Count(out, "system "), out)
	}
	for _, id := range []string{"sl1", "x1", "d1", "tempo1"} {
		if !strings.Contains(out, id) {
			t.Errorf("inspect output lacks %s", id)
		}
	}
}

func TestLayoutCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no input", []string{"layout"}, "requires at least 1 arg"},
		{"bad format", []string{"layout", duetPath, "-f", "gif", "--no-cache"}, "gif"},
		{"output with many inputs", []string{"layout", duetPath, duetPath, "-o", "x.svg", "--no-cache"}, "single input"},
		{"missing file", []string{"layout", "missing.yaml", "--no-cache"}, "missing.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestOptionsCommand(t *testing.T) {
	out, err := run(t, "options")
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range config.Descriptors {
		if !strings.Contains(out, d.Name) {
			t.Errorf("options listing lacks %s", d.Name)
		}
	}

	path := filepath.Join(t.TempDir(), "engraving.toml")
	if _, err := run(t, "options", "init", path); err != nil {
		t.Fatalf("options init: %v", err)
	}
	opts, err := config.Load(path)
	if err != nil {
		t.Fatalf("written options do not load: %v", err)
	}
	if opts != config.Default() {
		t.Error("written options differ from the defaults")
	}
	if _, err := run(t, "options", "init", path); err == nil {
		t.Error("init overwrote an existing file without --force")
	}
	if _, err := run(t, "options", "init", "--force", path); err != nil {
		t.Errorf("init --force: %v", err)
	}

	if _, err := run(t, "options", "--options", filepath.Join(t.TempDir(), "none.toml")); err == nil {
		t.Error("missing options file accepted")
	}
}

func TestCachePathCommand(t *testing.T) {
	out, err := run(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), appName) {
		t.Errorf("cache path = %q", out)
	}
}

func TestCacheClearCommand(t *testing.T) {
	if _, err := run(t, "cache", "clear"); err != nil {
		t.Fatalf("clear on an empty cache: %v", err)
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		input, output, format string
		single                bool
		want                  string
	}{
		{"song.yaml", "", pipeline.FormatSVG, true, "song.svg"},
		{"song.yaml", "", pipeline.FormatJSON, false, "song.layout.json"},
		{"song.yaml", "out.svg", pipeline.FormatSVG, true, "out.svg"},
		{"song.yaml", "out/page.svg", pipeline.FormatPNG, false, "out/page.png"},
		{"dir/song.json", "", pipeline.FormatPDF, true, "dir/song.pdf"},
	}
	for _, tt := range tests {
		if got := outputPath(tt.input, tt.output, tt.format, tt.single); got != tt.want {
			t.Errorf("outputPath(%q, %q, %q, %v) = %q, want %q",
				tt.input, tt.output, tt.format, tt.single, got, tt.want)
		}
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"svg"}},
		{"json", []string{"json"}},
		{"svg, png,", []string{"svg", "png"}},
	}
	for _, tt := range tests {
		got := parseFormats(tt.in)
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStatsLine(t *testing.T) {
	line := statsLine(pipeline.Stats{Systems: 1, Staves: 2, Curves: 5}, true)
	for _, want := range []string{"1 system", "2 staves", "5 curves", iconCached} {
		if !strings.Contains(line, want) {
			t.Errorf("stats line %q lacks %q", line, want)
		}
	}
	if strings.Contains(line, "object") {
		t.Errorf("stats line %q mentions zero counts", line)
	}
}
