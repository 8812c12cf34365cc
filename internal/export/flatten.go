package export

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/szqshan/datamaster/internal"
)

// payloadColumn is the raw payload column of a session store's records
// table; Flatten expands it into one column per top-level field.
const payloadColumn = "raw_data"

// Flatten turns a records result set into a Table. When the result contains
// the raw payload column and at least one row holds a JSON object, the
// payload is expanded into one column per top-level field (union across
// rows, sorted); nested values fall back to their serialized JSON text.
// Result sets without the payload column pass through unchanged.
func Flatten(rs *internal.ResultSet) *Table {
	payloadIdx := -1
	for i, col := range rs.Columns {
		if col == payloadColumn {
			payloadIdx = i
			break
		}
	}
	if payloadIdx < 0 {
		return &Table{Columns: rs.Columns, Rows: rs.Rows}
	}

	// First pass: decode payloads and collect the field union.
	objects := make([]map[string]interface{}, len(rs.Rows))
	fieldSet := make(map[string]bool)
	expandable := false
	for i, row := range rs.Rows {
		text, ok := row[payloadIdx].(string)
		if !ok {
			continue
		}
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(text), &obj); err != nil {
			continue
		}
		objects[i] = obj
		expandable = true
		for field := range obj {
			fieldSet[field] = true
		}
	}
	if !expandable {
		return &Table{Columns: rs.Columns, Rows: rs.Rows}
	}

	fields := make([]string, 0, len(fieldSet))
	for field := range fieldSet {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	columns := make([]string, 0, len(fields)+len(rs.Columns)-1)
	columns = append(columns, fields...)
	for i, col := range rs.Columns {
		if i != payloadIdx {
			columns = append(columns, col)
		}
	}

	table := &Table{Columns: columns}
	for i, row := range rs.Rows {
		out := make([]interface{}, 0, len(columns))
		for _, field := range fields {
			if objects[i] != nil {
				out = append(out, flattenValue(objects[i][field]))
			} else {
				out = append(out, nil)
			}
		}
		for j, v := range row {
			if j != payloadIdx {
				out = append(out, v)
			}
		}
		table.Rows = append(table.Rows, out)
	}
	return table
}

// flattenValue keeps scalars as-is and serializes nested structures back to
// JSON text.
func flattenValue(v interface{}) interface{} {
	switch v.(type) {
	case nil, bool, float64, string:
		return v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}
