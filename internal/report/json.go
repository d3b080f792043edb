package report

import (
	"encoding/json"
	"fmt"
	"io"
)

// WriteJSON encodes r as indented JSON.
func (r Report) WriteJSON(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(r); err != nil {
		return fmt.Errorf("encode report JSON: %w", err)
	}
	return nil
}

// ReadJSON decodes a Report previously written by WriteJSON.
func ReadJSON(rd io.Reader) (Report, error) {
	var r Report
	if err := json.NewDecoder(rd).Decode(&r); err != nil {
		return Report{}, fmt.Errorf("decode report JSON: %w", err)
	}
	return r, nil
}
