package config

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stavelayout/pkg/errors"
)

// Load reads options from a TOML file on top of the defaults and validates
// them.
func Load(path string) (Options, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Options{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "options file %s", path)
		}
		return Options{}, errors.Wrap(errors.ErrCodeInvalidOption, err, "open options file %s", path)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads TOML options from r on top of the defaults. Unknown keys are
// rejected so that typos do not silently fall back to defaults.
func Decode(r io.Reader) (Options, error) {
	o := Default()
	md, err := toml.NewDecoder(r).Decode(&o)
	if err != nil {
		return Options{}, errors.Wrap(errors.ErrCodeInvalidOption, err, "parse options")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Options{}, errors.New(errors.ErrCodeInvalidOption, "unknown options: %s", strings.Join(keys, ", "))
	}
	if err := o.Validate(); err != nil {
		return Options{}, err
	}
	return o, nil
}

// Parse is Decode for an in-memory document.
func Parse(data []byte) (Options, error) {
	return Decode(bytes.NewReader(data))
}

// Encode writes o as TOML.
func (o Options) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(o)
}
