package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/szqshan/datamaster/internal"
)

// Engine executes a gated query against a session store and serializes the
// result into a target file. Exactly one file is produced per call; writes
// go to a temporary file in the destination directory and are renamed into
// place, so a failed export never leaves a partial file behind. An empty
// result set still produces a validly-formatted empty file.
type Engine struct {
	registry *internal.Registry
	gate     *internal.Gate
	dir      string
}

// NewEngine creates an export engine. dir is where synthesized destination
// paths are placed.
func NewEngine(registry *internal.Registry, gate *internal.Gate, dir string) *Engine {
	return &Engine{registry: registry, gate: gate, dir: dir}
}

// Export writes the (optionally filtered) records of a session to destPath
// in the given format. filter may be empty, a bare WHERE-style predicate, or
// a full SELECT statement; all three are validated by the gate. An empty
// destPath is synthesized from the session id, a timestamp, and the
// authoritative extension for the format. Returns the destination path and
// the number of exported rows.
func (e *Engine) Export(sessionID, filter string, format Format, destPath string) (string, int, error) {
	exporter, err := NewExporter(format)
	if err != nil {
		return "", 0, err
	}

	query, err := e.gate.CheckFilter(filter)
	if err != nil {
		return "", 0, err
	}

	store, err := e.registry.OpenStore(sessionID)
	if err != nil {
		return "", 0, err
	}
	defer store.Close()

	rs, err := e.collect(store, query)
	if err != nil {
		return "", 0, err
	}
	table := Flatten(rs)

	if destPath == "" {
		name := fmt.Sprintf("export_%.8s_%s%s", sessionID, time.Now().Format("20060102_150405"), format.Extension())
		destPath = filepath.Join(e.dir, name)
	}

	if err := e.write(exporter, table, destPath); err != nil {
		return "", 0, err
	}

	if err := e.registry.OperationLog().Record(sessionID, internal.OpExport, len(table.Rows),
		fmt.Sprintf("exported %d rows to %s", len(table.Rows), destPath)); err != nil {
		internal.LogWarn("operation log write failed for session %s: %v", sessionID, err)
	}

	return destPath, len(table.Rows), nil
}

// collect drains the query cursor into a result set, capped at the gate's
// row ceiling so exports never materialize unbounded data.
func (e *Engine) collect(store *internal.Store, query string) (*internal.ResultSet, error) {
	rows, err := store.QueryRows(query, nil)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, &internal.QueryError{Query: query, Err: err}
	}

	rs := &internal.ResultSet{Columns: columns}
	for rows.Next() {
		if len(rs.Rows) >= e.gate.RowLimit() {
			break
		}
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &internal.QueryError{Query: query, Err: err}
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		rs.Rows = append(rs.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, &internal.QueryError{Query: query, Err: err}
	}
	return rs, nil
}

// write serializes the table to a temp file and atomically moves it into
// place.
func (e *Engine) write(exporter Exporter, table *Table, destPath string) error {
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &internal.WriteError{Path: destPath, Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".export-*")
	if err != nil {
		return &internal.WriteError{Path: destPath, Err: err}
	}
	tmpPath := tmp.Name()

	if err := exporter.Export(table, tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &internal.WriteError{Path: destPath, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &internal.WriteError{Path: destPath, Err: err}
	}

	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return &internal.WriteError{Path: destPath, Err: err}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return &internal.WriteError{Path: destPath, Err: err}
	}
	return nil
}
