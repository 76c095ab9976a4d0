package pipeline

import (
	"os"

	"github.com/matzehuels/stavelayout/pkg/errors"
	"github.com/matzehuels/stavelayout/pkg/score"
)

// ReadSource returns the document source named by opts.
func ReadSource(opts Options) ([]byte, error) {
	if opts.Document != "" {
		return []byte(opts.Document), nil
	}
	data, err := os.ReadFile(opts.DocumentPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "document %s", opts.DocumentPath)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read document %s", opts.DocumentPath)
	}
	return data, nil
}

// Decode parses and validates a document source. In strict mode references
// to unknown elements are errors.
func Decode(data []byte, opts Options) (*score.Document, error) {
	doc, err := score.Parse(data)
	if err != nil {
		return nil, err
	}
	if opts.Strict {
		if err := doc.Validate(true); err != nil {
			return nil, err
		}
	}
	return doc, nil
}
