package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/stavelayout/pkg/errors"
)

func TestDefaultIsValid(t *testing.T) {
	o := Default()
	if err := o.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if o.Unit != DefaultUnit {
		t.Errorf("Unit = %v, want %v", o.Unit, DefaultUnit)
	}
	if o.Spacing.BraceGroup != Unset {
		t.Errorf("Spacing.BraceGroup = %v, want unset", o.Spacing.BraceGroup)
	}
}

func TestDescriptorsAreConsistent(t *testing.T) {
	seen := make(map[string]bool)
	for _, d := range Descriptors {
		if seen[d.Name] {
			t.Errorf("duplicate descriptor %s", d.Name)
		}
		seen[d.Name] = true
		if d.Default < d.Min || d.Default > d.Max {
			t.Errorf("%s: default %v outside [%v, %v]", d.Name, d.Default, d.Min, d.Max)
		}
	}
}

func TestParse(t *testing.T) {
	o, err := Parse([]byte(`
unit = 10

[spacing]
staff = 16

[slur]
symmetry = 0.5

[lyric]
verse_collapse = true
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if o.Unit != 10 || o.Spacing.Staff != 16 || o.Slur.Symmetry != 0.5 {
		t.Errorf("parsed values not applied: %+v", o)
	}
	if !o.Lyric.VerseCollapse {
		t.Error("verse_collapse not applied")
	}
	if o.Slur.MaxSlope != 60 {
		t.Errorf("missing key lost its default: max_slope = %v", o.Slur.MaxSlope)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", "unit = "},
		{"unknown key", "[slur]\nbend = 3\n"},
		{"out of range", "[slur]\nsymmetry = 2\n"},
		{"multiple problems", "[spacing]\nstaff = -1\nsystem = 100\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidOption) {
				t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidOption)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load() error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	o := Default()
	o.Slur.Symmetry = 0.25
	o.Justification.Vertical = true

	path := filepath.Join(t.TempDir(), "opts.toml")
	var buf bytes.Buffer
	if err := o.Encode(&buf); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != o {
		t.Errorf("round trip = %+v, want %+v", got, o)
	}
}

func TestSetGet(t *testing.T) {
	o := Default()
	if !o.Set("slur.margin", 2) {
		t.Fatal("Set(slur.margin) = false")
	}
	if v, _ := o.Get("slur.margin"); v != 2 {
		t.Errorf("Get(slur.margin) = %v, want 2", v)
	}
	if o.Set("nope", 1) {
		t.Error("Set(nope) = true")
	}
	if got := o.UnitAt(75); got != DefaultUnit*0.75 {
		t.Errorf("UnitAt(75) = %v", got)
	}
	if got := o.DoubleUnit(0); got != 2*DefaultUnit {
		t.Errorf("DoubleUnit(0) = %v", got)
	}
}
