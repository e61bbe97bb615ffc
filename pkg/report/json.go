package report

import (
	"encoding/json"
	"io"
)

// JSONReporter renders the full tree and summary as indented JSON, suitable
// for piping into other tools.
type JSONReporter struct{}

func (r *JSONReporter) Format() string { return "json" }

func (r *JSONReporter) Render(w io.Writer, d Data) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}
