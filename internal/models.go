package internal

import "time"

// SessionStatus is the lifecycle status of a storage session.
type SessionStatus string

const (
	StatusActive  SessionStatus = "active"
	StatusDeleted SessionStatus = "deleted"
)

// SessionMetadata describes one storage session as recorded in the registry.
type SessionMetadata struct {
	ID           string        `json:"session_id" yaml:"session_id"`
	Name         string        `json:"session_name" yaml:"session_name"`
	Description  string        `json:"description,omitempty" yaml:"description,omitempty"`
	APIName      string        `json:"api_name" yaml:"api_name"`
	EndpointName string        `json:"endpoint_name" yaml:"endpoint_name"`
	TotalRecords int           `json:"total_records" yaml:"total_records"`
	FilePath     string        `json:"file_path" yaml:"file_path"`
	Status       SessionStatus `json:"status" yaml:"status"`
	CreatedAt    time.Time     `json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" yaml:"updated_at"`
}

// InsertResult reports the outcome of a store insert. A duplicate fingerprint
// is a normal outcome (Inserted=false), not an error.
type InsertResult struct {
	Inserted    bool   `json:"inserted"`
	Fingerprint string `json:"fingerprint"`
}

// ResultSet holds the rows of an executed query with their column names.
type ResultSet struct {
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

// RowCount returns the number of rows in the result set.
func (rs *ResultSet) RowCount() int {
	return len(rs.Rows)
}

// OperationKind identifies the type of a logged operation.
type OperationKind string

const (
	OpCreate OperationKind = "create"
	OpStore  OperationKind = "store"
	OpQuery  OperationKind = "query"
	OpExport OperationKind = "export"
	OpDelete OperationKind = "delete"
)

// OperationEntry is one append-only operation log record. Seq increases
// monotonically per session.
type OperationEntry struct {
	Seq       int64         `json:"seq"`
	Kind      OperationKind `json:"kind"`
	Records   int           `json:"records_affected"`
	Detail    string        `json:"detail"`
	Timestamp time.Time     `json:"timestamp"`
}
