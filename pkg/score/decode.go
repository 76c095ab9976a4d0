package score

import (
	"bytes"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/stavelayout/pkg/errors"
)

// Load reads, defaults and validates the document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "document %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read document %s", path)
	}
	return Parse(data)
}

// Parse decodes a YAML or JSON document, applies defaults and validates it.
func Parse(data []byte) (*Document, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads a document from r. Unknown fields are rejected.
func Decode(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, errors.New(errors.ErrCodeInvalidDocument, "document is empty")
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode document")
	}
	doc.SetDefaults()
	if err := doc.Validate(false); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Encode writes the document as YAML.
func (d *Document) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return err
	}
	return enc.Close()
}
