package internal

import (
	"fmt"
	"regexp"
	"strings"
)

// Gate validates caller-supplied SQL before it may reach a session store.
// Only single read-only statements pass: SELECT queries and PRAGMA
// table_info introspection. Accepted statements without an explicit LIMIT
// are rewritten to carry the configured row ceiling, which is not caller
// controlled. JSON field extraction (json_extract and friends) passes
// through as ordinary SELECT expressions. Bind parameters never touch the
// statement text; they go down the parameterized execution path untouched.
type Gate struct {
	rowLimit int
}

// NewGate creates a Gate with the given row ceiling.
func NewGate(rowLimit int) *Gate {
	if rowLimit <= 0 {
		rowLimit = DefaultRowLimit
	}
	return &Gate{rowLimit: rowLimit}
}

// RowLimit returns the configured ceiling.
func (g *Gate) RowLimit() int {
	return g.rowLimit
}

var (
	forbiddenKeyword = regexp.MustCompile(`(?i)\b(DROP|DELETE|UPDATE|INSERT|ALTER|ATTACH|DETACH|CREATE|TRUNCATE)\b`)
	limitClause      = regexp.MustCompile(`(?i)\bLIMIT\b`)
	pragmaTableInfo  = regexp.MustCompile(`(?i)^PRAGMA\s+table_info\s*\(`)
	selectPrefix     = regexp.MustCompile(`(?i)^SELECT\b`)
)

// Check decides whether query may run and returns the possibly rewritten
// statement text. Rejections are *RejectedError with a verbatim reason.
func (g *Gate) Check(query string) (string, error) {
	q := strings.TrimSpace(query)
	q = strings.TrimSuffix(q, ";")
	q = strings.TrimSpace(q)

	if q == "" {
		return "", &RejectedError{Reason: "empty statement"}
	}
	if strings.Contains(q, ";") {
		return "", &RejectedError{Reason: "multiple statements are not allowed"}
	}
	if strings.Contains(q, "--") || strings.Contains(q, "/*") {
		return "", &RejectedError{Reason: "SQL comments are not allowed"}
	}

	if m := forbiddenKeyword.FindString(q); m != "" {
		return "", &RejectedError{Reason: fmt.Sprintf("%s statements are not allowed, only SELECT queries are supported", strings.ToUpper(m))}
	}

	switch {
	case pragmaTableInfo.MatchString(q):
		// Introspection only; no row ceiling applies.
		return q, nil
	case selectPrefix.MatchString(q):
		if !limitClause.MatchString(q) {
			q = fmt.Sprintf("%s LIMIT %d", q, g.rowLimit)
		}
		return q, nil
	default:
		return "", &RejectedError{Reason: "only SELECT queries and PRAGMA table_info are allowed"}
	}
}

// CheckFilter validates an export filter, which may be a full SELECT
// statement or a bare WHERE-style predicate over the records table. Bare
// predicates are wrapped into the canonical select before validation.
func (g *Gate) CheckFilter(filter string) (string, error) {
	f := strings.TrimSpace(filter)
	if f == "" {
		return g.Check(RecordSelect)
	}
	if selectPrefix.MatchString(f) || pragmaTableInfo.MatchString(f) {
		return g.Check(f)
	}
	return g.Check(fmt.Sprintf("%s WHERE %s", RecordSelect, f))
}

// RecordSelect is the canonical projection over a session store's records
// table, used when no explicit query is supplied.
const RecordSelect = "SELECT data_hash, raw_data, processed_data, source_params, timestamp FROM api_data"
