package render

import (
	"encoding/json"

	"github.com/matzehuels/stavelayout/pkg/layout"
)

// JSON returns the indented JSON encoding of page.
func JSON(page *layout.Page) ([]byte, error) {
	return json.MarshalIndent(page, "", "  ")
}

// ReadJSON decodes a page written by JSON.
func ReadJSON(data []byte) (*layout.Page, error) {
	var page layout.Page
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
