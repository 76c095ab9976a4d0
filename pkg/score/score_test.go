package score

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/stavelayout/pkg/errors"
)

const minimal = `
title: Minimal
systems:
  - score_def:
      symbol: bracket
      members:
        - staff: {n: 1}
        - group:
            symbol: brace
            members:
              - staff: {n: 2, lines: 1, size: 75}
    staves:
      - n: 1
        verses: [{n: 1}]
        elements:
          - {id: n1, kind: note, box: {left: 0, right: 10, bottom: -40, top: -32}, stem: s1}
          - {id: s1, kind: stem, box: {left: 9, right: 10, bottom: -32, top: 0}}
          - {id: n2, kind: note, box: {left: 40, right: 50, bottom: -36, top: -28}}
      - n: 2
        elements:
          - {id: m1, kind: note, box: {left: 0, right: 10, bottom: -4, top: 4}}
    events:
      - {id: sl1, class: slur, staff: [1], start: n1, end: n2}
      - {id: d1, class: dynam, staff: [2], start: m1, place: below, box: {left: 0, right: 14, bottom: 0, top: 10}}
`

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(minimal))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Title != "Minimal" || len(doc.Systems) != 1 {
		t.Fatalf("doc = %+v", doc)
	}
	sys := doc.Systems[0]

	defs := sys.ScoreDef.StaffDefs()
	if len(defs) != 2 || defs[0].N != 1 || defs[1].N != 2 {
		t.Fatalf("staff defs = %+v", defs)
	}
	if defs[0].Lines != 5 || defs[0].Size != 100 {
		t.Errorf("staff 1 defaults = %+v", defs[0])
	}
	if defs[1].Lines != 1 || defs[1].Size != 75 {
		t.Errorf("staff 2 explicit values lost: %+v", defs[1])
	}
	if sys.Staves[0].Verses[0].Place != PlaceBelow {
		t.Errorf("verse place = %q", sys.Staves[0].Verses[0].Place)
	}
	if sys.Events[0].Spanning != SpanStartEnd {
		t.Errorf("spanning = %q", sys.Events[0].Spanning)
	}
	if got := sys.StaffIndex(2); got != 1 {
		t.Errorf("StaffIndex(2) = %d", got)
	}
	if got := sys.StaffIndex(7); got != -1 {
		t.Errorf("StaffIndex(7) = %d", got)
	}
}

func TestParseJSON(t *testing.T) {
	src := `{"systems": [{"score_def": {"members": [{"staff": {"n": 1}}]},
	  "staves": [{"n": 1, "elements": [{"id": "r1", "kind": "rest", "box": {"left": 0, "right": 8, "bottom": -30, "top": -10}}]}]}]}`
	doc, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Systems[0].ScoreDef.Symbol != SymbolNone {
		t.Errorf("symbol = %q", doc.Systems[0].ScoreDef.Symbol)
	}
}

func TestParseErrors(t *testing.T) {
	withEvent := func(ev string) string {
		return strings.Replace(minimal, "      - {id: sl1,", ev+"\n      - {id: sl1,", 1)
	}
	tests := []struct {
		name string
		src  string
		code errors.Code
		want string
	}{
		{"empty", "", errors.ErrCodeInvalidDocument, "empty"},
		{"no systems", "systems: []", errors.ErrCodeInvalidDocument, "no systems"},
		{"syntax", "systems: [", errors.ErrCodeInvalidFormat, ""},
		{"unknown field", minimal + "colour: red\n", errors.ErrCodeInvalidFormat, "colour"},
		{"undefined staff", strings.Replace(minimal, "      - n: 2\n", "      - n: 3\n", 1), errors.ErrCodeInvalidDocument, "staff 3"},
		{"duplicate id", strings.Replace(minimal, "id: n2", "id: n1", 1), errors.ErrCodeInvalidDocument, "duplicate"},
		{"bad kind", strings.Replace(minimal, "kind: stem", "kind: stalk", 1), errors.ErrCodeInvalidDocument, "stalk"},
		{"bad class", withEvent("      - {id: e1, class: glissando, staff: [1], box: {left: 0, right: 1, bottom: 0, top: 1}}"), errors.ErrCodeInvalidDocument, "glissando"},
		{"slur without end", withEvent("      - {id: e1, class: slur, staff: [1], start: n1}"), errors.ErrCodeInvalidDocument, "start and end"},
		{"dynam without box", withEvent("      - {id: e1, class: dynam, staff: [1], start: n1}"), errors.ErrCodeInvalidDocument, "no box"},
		{"bulge out of range", withEvent("      - {id: e1, class: slur, staff: [1], start: n1, end: n2, bulge: [{distance: 2, position: 140}]}"), errors.ErrCodeInvalidDocument, "bulge"},
		{"bad group", strings.Replace(minimal, "symbol: brace", "symbol: curly", 1), errors.ErrCodeInvalidDocument, "curly"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			if !errors.Is(err, tt.code) {
				t.Fatalf("error = %v, want %s", err, tt.code)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestValidateStrict(t *testing.T) {
	src := strings.Replace(minimal, "end: n2", "end: ghost", 1)
	doc, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("lenient parse rejected an unresolved reference: %v", err)
	}
	err = doc.Validate(true)
	if !errors.Is(err, errors.ErrCodeUnresolvedReference) {
		t.Fatalf("strict error = %v", err)
	}
	if !strings.Contains(err.Error(), "ghost") {
		t.Errorf("error %q does not name the reference", err)
	}
}

func TestValidateCollectsProblems(t *testing.T) {
	src := strings.Replace(minimal, "kind: stem", "kind: stalk", 1)
	src = strings.Replace(src, "symbol: brace", "symbol: curly", 1)
	_, err := Parse([]byte(src))
	if err == nil {
		t.Fatal("accepted")
	}
	for _, want := range []string{"2 problems", "stalk", "curly"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q lacks %q", err, want)
		}
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	doc, err := Parse([]byte(minimal))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := doc.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	again, err := Parse(buf.Bytes())
	if err != nil {
		t.Fatalf("re-parse: %v\n%s", err, buf.String())
	}
	if diff := cmp.Diff(doc, again); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestElementBounds(t *testing.T) {
	doc, err := Parse([]byte(minimal))
	if err != nil {
		t.Fatal(err)
	}
	el := doc.Systems[0].Staves[0].Elements[0]
	bb := el.Bounds()
	if bb.Self != el.Box || bb.Content != el.Box {
		t.Errorf("bounds = %+v", bb)
	}
}

func TestIsCurveClass(t *testing.T) {
	for _, c := range []string{ClassSlur, ClassPhrase, ClassTie, ClassLv} {
		if !IsCurveClass(c) {
			t.Errorf("%s is a curve", c)
		}
	}
	for _, c := range []string{ClassDynam, ClassHairpin, ""} {
		if IsCurveClass(c) {
			t.Errorf("%q is not a curve", c)
		}
	}
}
