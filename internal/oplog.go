package internal

import (
	"database/sql"
	"fmt"
	"sync"
)

// OperationLog is the append-only audit trail of actions taken against
// sessions, stored in the registry database. Entries carry a monotonically
// increasing per-session sequence number and are never mutated; they only
// disappear when their whole session is deleted. Recording is diagnostic:
// callers must treat a failed Record as a warning, never as a failure of the
// operation being logged.
type OperationLog struct {
	db *sql.DB
	mu sync.Mutex
}

// NewOperationLog creates an OperationLog over the registry database.
func NewOperationLog(db *sql.DB) *OperationLog {
	return &OperationLog{db: db}
}

// Record appends one entry for the session.
func (l *OperationLog) Record(sessionID string, kind OperationKind, records int, detail string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, err := l.db.Exec(`
		INSERT INTO data_operations (session_id, seq, operation_type, records_affected, operation_details)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM data_operations WHERE session_id = ?), ?, ?, ?)`,
		sessionID, sessionID, string(kind), records, detail,
	)
	if err != nil {
		return fmt.Errorf("failed to record operation: %w", err)
	}
	return nil
}

// List returns the session's entries in insertion (sequence) order.
func (l *OperationLog) List(sessionID string) ([]*OperationEntry, error) {
	rows, err := l.db.Query(`
		SELECT seq, operation_type, records_affected, operation_details, timestamp
		FROM data_operations WHERE session_id = ? ORDER BY seq`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list operations: %w", err)
	}
	defer rows.Close()

	var entries []*OperationEntry
	for rows.Next() {
		var entry OperationEntry
		var kind string
		var detail, ts sql.NullString
		if err := rows.Scan(&entry.Seq, &kind, &entry.Records, &detail, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan operation row: %w", err)
		}
		entry.Kind = OperationKind(kind)
		entry.Detail = detail.String
		entry.Timestamp = parseTimestamp(ts.String)
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return entries, nil
}
