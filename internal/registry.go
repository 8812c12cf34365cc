package internal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

// registrySchema holds the session metadata and the per-session operation
// log. The storage_sessions layout is a compatibility contract and must not
// change.
const registrySchema = `
CREATE TABLE IF NOT EXISTS storage_sessions (
	session_id TEXT PRIMARY KEY,
	session_name TEXT NOT NULL,
	description TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	api_name TEXT,
	endpoint_name TEXT,
	total_records INTEGER DEFAULT 0,
	file_path TEXT,
	status TEXT DEFAULT 'active'
);

CREATE TABLE IF NOT EXISTS data_operations (
	session_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	operation_type TEXT NOT NULL,
	timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	records_affected INTEGER DEFAULT 0,
	operation_details TEXT,
	PRIMARY KEY (session_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_sessions_api
	ON storage_sessions (api_name, endpoint_name);

CREATE INDEX IF NOT EXISTS idx_operations_session
	ON data_operations (session_id, timestamp);
`

const timestampLayout = "2006-01-02 15:04:05"

// Registry is the single source of truth for session existence. It owns
// metadata.db and provisions/destroys the per-session store files living
// next to it. Create and Delete are serialized; reads may run concurrently.
type Registry struct {
	db     *sql.DB
	dir    string
	hasher *Hasher
	oplog  *OperationLog

	mu         sync.Mutex // serializes session create/delete
	storeLocks sync.Map   // session id -> *sync.Mutex
}

// OpenRegistry opens (creating if needed) the registry under cfg.StorageDir.
func OpenRegistry(cfg *Config) (*Registry, error) {
	if err := os.MkdirAll(cfg.StorageDir, 0755); err != nil {
		return nil, &StorageInitError{Path: cfg.StorageDir, Err: err}
	}

	path := filepath.Join(cfg.StorageDir, "metadata.db")
	db, err := OpenDatabase(path)
	if err != nil {
		return nil, &StorageInitError{Path: path, Err: err}
	}

	if _, err := db.Exec(registrySchema); err != nil {
		db.Close()
		return nil, &StorageInitError{Path: path, Err: err}
	}

	r := &Registry{
		db:     db,
		dir:    cfg.StorageDir,
		hasher: NewHasher(cfg.IncludeParams()),
	}
	r.oplog = NewOperationLog(db)
	return r, nil
}

// OperationLog exposes the registry's append-only operation log.
func (r *Registry) OperationLog() *OperationLog {
	return r.oplog
}

// Close closes the registry database.
func (r *Registry) Close() error {
	return r.db.Close()
}

// Create allocates a new session: provisions an empty store file, then
// inserts the metadata row. If the metadata insert fails the provisioned
// file is removed so no partial state remains.
func (r *Registry) Create(name, apiName, endpointName, description string) (*SessionMetadata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	now := time.Now().UTC()
	fileName := fmt.Sprintf("%s_%s_%s_%s.db",
		sanitizeFileComponent(apiName),
		sanitizeFileComponent(endpointName),
		now.Format("20060102_150405"),
		id[:8])
	filePath := filepath.Join(r.dir, fileName)

	if err := provisionStore(filePath); err != nil {
		return nil, err
	}

	insert := sq.Insert("storage_sessions").
		Columns("session_id", "session_name", "description", "api_name",
			"endpoint_name", "file_path", "status", "created_at", "updated_at").
		Values(id, name, description, apiName, endpointName, filePath,
			string(StatusActive), now.Format(timestampLayout), now.Format(timestampLayout))

	query, args, err := insert.ToSql()
	if err != nil {
		os.Remove(filePath)
		return nil, &StorageInitError{Path: filePath, Err: err}
	}
	if _, err := r.db.Exec(query, args...); err != nil {
		os.Remove(filePath)
		return nil, &StorageInitError{Path: filePath, Err: err}
	}

	if err := r.oplog.Record(id, OpCreate, 0, fmt.Sprintf("created storage session: %s", name)); err != nil {
		LogWarn("operation log write failed for session %s: %v", id, err)
	}

	return &SessionMetadata{
		ID:           id,
		Name:         name,
		Description:  description,
		APIName:      apiName,
		EndpointName: endpointName,
		FilePath:     filePath,
		Status:       StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Get returns the metadata for an active session, or SessionNotFoundError.
func (r *Registry) Get(sessionID string) (*SessionMetadata, error) {
	query, args, err := sq.Select(sessionColumns...).
		From("storage_sessions").
		Where(sq.Eq{"session_id": sessionID, "status": string(StatusActive)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build session query: %w", err)
	}

	meta, err := scanSession(r.db.QueryRow(query, args...))
	if err == sql.ErrNoRows {
		return nil, &SessionNotFoundError{ID: sessionID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	return meta, nil
}

// List returns active sessions, newest first, optionally filtered by exact
// api name. Results are stable across calls absent mutation.
func (r *Registry) List(apiName string) ([]*SessionMetadata, error) {
	builder := sq.Select(sessionColumns...).
		From("storage_sessions").
		Where(sq.Eq{"status": string(StatusActive)}).
		OrderBy("created_at DESC", "session_id")
	if apiName != "" {
		builder = builder.Where(sq.Eq{"api_name": apiName})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*SessionMetadata
	for rows.Next() {
		meta, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		sessions = append(sessions, meta)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return sessions, nil
}

// Delete irreversibly destroys a session: the status flip commits first so
// the session is never queryable mid-delete, then the store file is removed,
// then the metadata and operation log rows are purged. Concurrent deletes of
// the same id race on the status check; losers observe SessionNotFoundError.
func (r *Registry) Delete(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	meta, err := r.Get(sessionID)
	if err != nil {
		return err
	}

	now := time.Now().UTC().Format(timestampLayout)
	if _, err := r.db.Exec(
		"UPDATE storage_sessions SET status = ?, updated_at = ? WHERE session_id = ?",
		string(StatusDeleted), now, sessionID,
	); err != nil {
		return fmt.Errorf("failed to mark session deleted: %w", err)
	}

	if err := os.Remove(meta.FilePath); err != nil && !os.IsNotExist(err) {
		// The session is already unqueryable; surface the stranded file.
		return &WriteError{Path: meta.FilePath, Err: err}
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to purge session metadata: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM data_operations WHERE session_id = ?", sessionID); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to purge operation log: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM storage_sessions WHERE session_id = ?", sessionID); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to purge session metadata: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to purge session metadata: %w", err)
	}

	r.storeLocks.Delete(sessionID)
	LogInfo("deleted storage session %s (%s)", sessionID, meta.Name)
	return nil
}

// OpenStore opens the per-session store for an active session.
func (r *Registry) OpenStore(sessionID string) (*Store, error) {
	meta, err := r.Get(sessionID)
	if err != nil {
		return nil, err
	}

	db, err := OpenDatabase(meta.FilePath)
	if err != nil {
		return nil, &StorageInitError{Path: meta.FilePath, Err: err}
	}

	return &Store{
		db:       db,
		meta:     meta,
		hasher:   r.hasher,
		registry: r,
		lock:     r.storeLock(sessionID),
	}, nil
}

// updateRecordCount refreshes the denormalized total_records column.
func (r *Registry) updateRecordCount(sessionID string, count int) {
	now := time.Now().UTC().Format(timestampLayout)
	if _, err := r.db.Exec(
		"UPDATE storage_sessions SET total_records = ?, updated_at = ? WHERE session_id = ?",
		count, now, sessionID,
	); err != nil {
		LogWarn("failed to update record count for session %s: %v", sessionID, err)
	}
}

func (r *Registry) storeLock(sessionID string) *sync.Mutex {
	lock, _ := r.storeLocks.LoadOrStore(sessionID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

var sessionColumns = []string{
	"session_id", "session_name", "description", "api_name", "endpoint_name",
	"total_records", "file_path", "status", "created_at", "updated_at",
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*SessionMetadata, error) {
	var meta SessionMetadata
	var description, createdAt, updatedAt sql.NullString
	var status string
	if err := row.Scan(
		&meta.ID, &meta.Name, &description, &meta.APIName, &meta.EndpointName,
		&meta.TotalRecords, &meta.FilePath, &status, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}
	meta.Description = description.String
	meta.Status = SessionStatus(status)
	meta.CreatedAt = parseTimestamp(createdAt.String)
	meta.UpdatedAt = parseTimestamp(updatedAt.String)
	return &meta, nil
}

// parseTimestamp handles both the SQLite CURRENT_TIMESTAMP layout and
// RFC 3339 strings. Zero time on failure; timestamps are informational.
func parseTimestamp(s string) time.Time {
	if t, err := time.Parse(timestampLayout, s); err == nil {
		return t.UTC()
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC()
	}
	return time.Time{}
}

// sanitizeFileComponent keeps store file names portable.
func sanitizeFileComponent(s string) string {
	replacer := strings.NewReplacer("/", "-", "\\", "-", " ", "_", ":", "-")
	out := replacer.Replace(strings.TrimSpace(s))
	if out == "" {
		return "unnamed"
	}
	return out
}
