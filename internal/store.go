package internal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// storeSchema is the records table of a per-session store. The layout is a
// compatibility contract and must not change.
const storeSchema = `
CREATE TABLE IF NOT EXISTS api_data (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	data_hash TEXT UNIQUE,
	raw_data TEXT,
	processed_data TEXT,
	timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	source_params TEXT
);
`

// provisionStore creates an empty session store file with its schema.
func provisionStore(path string) error {
	db, err := OpenDatabase(path)
	if err != nil {
		return &StorageInitError{Path: path, Err: err}
	}
	defer db.Close()

	if _, err := db.Exec(storeSchema); err != nil {
		os.Remove(path)
		return &StorageInitError{Path: path, Err: err}
	}
	return nil
}

// Store is the isolated record container of one session. Records are
// immutable once inserted; duplicates (by fingerprint) are skipped, never
// updated. Mutations are serialized per session; reads may run concurrently.
type Store struct {
	db       *sql.DB
	meta     *SessionMetadata
	hasher   *Hasher
	registry *Registry
	lock     *sync.Mutex
}

// Metadata returns the session metadata this store belongs to.
func (s *Store) Metadata() *SessionMetadata {
	return s.meta
}

// Close closes the store's database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Insert stores one record. The fingerprint is computed over the canonical
// encoding of the raw payload (and, per policy, the source params); if a
// record with the same fingerprint already exists the call succeeds with
// Inserted=false and the existing row is left untouched. The uniqueness
// constraint lives in the storage engine, so concurrent inserts of the same
// content resolve to exactly one stored row.
func (s *Store) Insert(rawPayload, processedPayload, sourceParams interface{}) (*InsertResult, error) {
	fingerprint, err := s.hasher.Fingerprint(rawPayload, sourceParams)
	if err != nil {
		return nil, err
	}

	rawText, err := marshalPayload(rawPayload)
	if err != nil {
		return nil, err
	}
	processedText, err := marshalNullablePayload(processedPayload)
	if err != nil {
		return nil, err
	}
	paramsText, err := marshalNullablePayload(sourceParams)
	if err != nil {
		return nil, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	res, err := s.db.Exec(
		"INSERT OR IGNORE INTO api_data (data_hash, raw_data, processed_data, source_params) VALUES (?, ?, ?, ?)",
		fingerprint, rawText, processedText, paramsText,
	)
	if err != nil {
		return nil, &QueryError{Query: "insert api_data", Err: err}
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, &QueryError{Query: "insert api_data", Err: err}
	}
	inserted := affected > 0

	if inserted {
		if count, err := s.RowCount(); err == nil {
			s.registry.updateRecordCount(s.meta.ID, count)
		}
		if err := s.registry.oplog.Record(s.meta.ID, OpStore, 1,
			fmt.Sprintf("stored record, fingerprint: %.8s...", fingerprint)); err != nil {
			LogWarn("operation log write failed for session %s: %v", s.meta.ID, err)
		}
	} else {
		LogDebug("duplicate record skipped in session %s (fingerprint %.8s)", s.meta.ID, fingerprint)
	}

	return &InsertResult{Inserted: inserted, Fingerprint: fingerprint}, nil
}

// Query executes already-validated SQL with bind parameters and returns the
// result rows with their column names. The caller-declared rowLimit is
// enforced again after execution as defense in depth; text validation itself
// is the gate's job and must happen before this call.
func (s *Store) Query(query string, binds []interface{}, rowLimit int) (*ResultSet, error) {
	rows, err := s.db.Query(query, binds...)
	if err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}

	result := &ResultSet{Columns: columns}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &QueryError{Query: query, Err: err}
		}
		for i, v := range values {
			// modernc/sqlite hands TEXT back as []byte; strings read better.
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
		if rowLimit > 0 && len(result.Rows) > rowLimit {
			return nil, &RowLimitError{Limit: rowLimit}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}

	if err := s.registry.oplog.Record(s.meta.ID, OpQuery, result.RowCount(),
		fmt.Sprintf("query: %s", query)); err != nil {
		LogWarn("operation log write failed for session %s: %v", s.meta.ID, err)
	}

	return result, nil
}

// QueryRows executes already-validated SQL and hands back the raw cursor so
// callers can stream large result sets instead of materializing them.
func (s *Store) QueryRows(query string, binds []interface{}) (*sql.Rows, error) {
	rows, err := s.db.Query(query, binds...)
	if err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}
	return rows, nil
}

// RowCount returns the number of stored records.
func (s *Store) RowCount() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM api_data").Scan(&count); err != nil {
		return 0, &QueryError{Query: "count api_data", Err: err}
	}
	return count, nil
}

func marshalPayload(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", &SerializationError{Err: err}
	}
	return string(b), nil
}

func marshalNullablePayload(v interface{}) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	text, err := marshalPayload(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: text, Valid: true}, nil
}
