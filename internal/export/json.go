package export

import (
	"encoding/json"
	"io"
)

// JSONExporter serializes a table as a pretty-printed JSON array of
// objects, one per row. An empty table yields a valid empty array.
type JSONExporter struct{}

// Export writes the table to w in JSON format
func (e *JSONExporter) Export(t *Table, w io.Writer) error {
	records := make([]map[string]interface{}, 0, len(t.Rows))
	for _, row := range t.Rows {
		obj := make(map[string]interface{}, len(t.Columns))
		for i, col := range t.Columns {
			var v interface{}
			if i < len(row) {
				v = row[i]
			}
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			obj[col] = v
		}
		records = append(records, obj)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(records)
}
