package render

import (
	"bytes"
	"os/exec"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/stavelayout/pkg/errors"
	"github.com/matzehuels/stavelayout/pkg/geom"
	"github.com/matzehuels/stavelayout/pkg/layout"
)

func testPage() *layout.Page {
	return &layout.Page{
		Title:  "Lied <1>",
		Height: 200,
		Systems: []layout.SystemLayout{{
			YRel:   0,
			Height: 200,
			Staves: []layout.StaffLayout{
				{
					N: 1, YRel: -20, Lines: 5, StaffHeight: 72, Spacing: "system",
					OverflowAbove: 30, OverflowBelow: 12,
					Floating: []layout.FloatingLayout{{
						ID: "d1", Class: "dynam", Place: "below", DrawingYRel: -90,
						Box: geom.R(10, 40, -100, -84),
					}},
					Curves: []layout.CurveLayout{{
						ID: "s1", Class: "slur", Dir: "above",
						Points:    [4]geom.Point{{X: 5, Y: 9}, {X: 30, Y: 25}, {X: 80, Y: 25}, {X: 105, Y: 9}},
						Thickness: 5.4,
					}},
				},
				{N: 2, YRel: -150, Lines: 1, StaffHeight: 0, Spacing: "staff"},
			},
		}},
	}
}

func TestSVG(t *testing.T) {
	svg := string(SVG(testPage()))

	if !strings.HasPrefix(svg, "<svg ") || !strings.HasSuffix(svg, "</svg>\n") {
		t.Fatalf("not an svg document:\n%s", svg)
	}
	if got := strings.Count(svg, "<line "); got != 6 {
		t.Errorf("%d staff lines, want 6", got)
	}
	for _, want := range []string{
		`<title>Lied &lt;1&gt;</title>`,
		`id="s1"`,
		`class="curve slur"`,
		`class="float dynam"`,
		`stroke-width="5.40"`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("svg lacks %s", want)
		}
	}
	if strings.Contains(svg, `class="overflow"`) {
		t.Error("overflow bands drawn without WithBoxes")
	}
}

func TestSVGOptions(t *testing.T) {
	svg := string(SVG(testPage(), WithBoxes(), WithScale(2)))
	if got := strings.Count(svg, `class="overflow"`); got != 2 {
		t.Errorf("%d overflow bands, want 2", got)
	}

	plain := string(SVG(testPage()))
	if plain == svg {
		t.Error("options had no effect")
	}
	if !bytes.Equal(SVG(testPage()), SVG(testPage())) {
		t.Error("SVG output is not deterministic")
	}
}

func TestSVGEmptyPage(t *testing.T) {
	svg := string(SVG(&layout.Page{}))
	if !strings.Contains(svg, `viewBox="0 0 140.0 140.0"`) {
		t.Errorf("empty page viewBox:\n%s", svg)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	page := testPage()
	data, err := JSON(page)
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	got, err := ReadJSON(data)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if diff := cmp.Diff(page, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	if _, err := ReadJSON([]byte("{")); err == nil {
		t.Error("truncated JSON accepted")
	}
}

func TestToPNG(t *testing.T) {
	if _, err := exec.LookPath("rsvg-convert"); err != nil {
		t.Skip("rsvg-convert not installed")
	}
	png, err := ToPNG(SVG(testPage()), 1)
	if err != nil {
		t.Fatalf("ToPNG: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}
}

func TestConvertWithoutRsvg(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	_, err := ToPDF(SVG(testPage()))
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Fatalf("error = %v, want %s", err, errors.ErrCodeUnsupported)
	}
	if !strings.Contains(err.Error(), "librsvg") {
		t.Errorf("error %q does not name the missing tool", err)
	}
}
