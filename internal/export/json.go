package export

import (
	"encoding/json"
	"io"
)

// WriteJSON writes an indented array with one object per record carrying
// only the selected fields.
func WriteJSON(w io.Writer, t Table) error {
	out := make([]map[string]any, 0, len(t.Records))
	for _, row := range t.Rows() {
		obj := make(map[string]any, len(t.Columns))
		for i, c := range t.Columns {
			obj[c.Name] = row[i]
		}
		out = append(out, obj)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
