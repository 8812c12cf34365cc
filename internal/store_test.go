package internal

import (
	"errors"
	"sync"
	"testing"
)

func newTestStore(t *testing.T, r *Registry) *Store {
	t.Helper()
	meta, err := r.Create("store-test", "demo", "users", "")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	store, err := r.OpenStore(meta.ID)
	if err != nil {
		t.Fatalf("OpenStore() error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_InsertAndDedup(t *testing.T) {
	r := newTestRegistry(t)
	store := newTestStore(t, r)

	payload := decodeJSON(t, `{"id":1,"name":"a"}`)
	params := decodeJSON(t, `{"page":1}`)

	first, err := store.Insert(payload, nil, params)
	if err != nil {
		t.Fatalf("Insert() error: %v", err)
	}
	if !first.Inserted {
		t.Error("first Insert() should report inserted=true")
	}

	second, err := store.Insert(payload, nil, params)
	if err != nil {
		t.Fatalf("duplicate Insert() error: %v", err)
	}
	if second.Inserted {
		t.Error("duplicate Insert() should report inserted=false")
	}
	if first.Fingerprint != second.Fingerprint {
		t.Errorf("fingerprints differ: %s vs %s", first.Fingerprint, second.Fingerprint)
	}

	count, err := store.RowCount()
	if err != nil {
		t.Fatalf("RowCount() error: %v", err)
	}
	if count != 1 {
		t.Errorf("RowCount() = %d, want 1", count)
	}
}

func TestStore_ConcurrentDuplicateInserts(t *testing.T) {
	r := newTestRegistry(t)
	store := newTestStore(t, r)

	payload := decodeJSON(t, `{"id":42}`)

	const callers = 8
	results := make([]*InsertResult, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := store.Insert(payload, nil, nil)
			if err != nil {
				t.Errorf("Insert() error: %v", err)
				return
			}
			results[i] = res
		}(i)
	}
	wg.Wait()

	inserted := 0
	for _, res := range results {
		if res != nil && res.Inserted {
			inserted++
		}
	}
	if inserted != 1 {
		t.Errorf("%d inserts reported inserted=true, want exactly 1", inserted)
	}

	count, err := store.RowCount()
	if err != nil {
		t.Fatalf("RowCount() error: %v", err)
	}
	if count != 1 {
		t.Errorf("RowCount() = %d, want 1", count)
	}
}

func TestStore_CrossSessionIndependence(t *testing.T) {
	r := newTestRegistry(t)
	storeA := newTestStore(t, r)
	storeB := newTestStore(t, r)

	payload := decodeJSON(t, `{"id":1}`)
	params := decodeJSON(t, `{"page":1}`)

	resA, err := storeA.Insert(payload, nil, params)
	if err != nil {
		t.Fatalf("Insert() into A error: %v", err)
	}
	resB, err := storeB.Insert(payload, nil, params)
	if err != nil {
		t.Fatalf("Insert() into B error: %v", err)
	}

	if !resA.Inserted || !resB.Inserted {
		t.Error("identical payloads in different sessions should both insert")
	}
	if resA.Fingerprint != resB.Fingerprint {
		t.Error("same content should fingerprint identically across sessions")
	}
}

func TestStore_InsertWithProcessedPayload(t *testing.T) {
	r := newTestRegistry(t)
	store := newTestStore(t, r)

	raw := decodeJSON(t, `{"id":1,"name":"a"}`)
	processed := decodeJSON(t, `{"id":1,"display_name":"A"}`)

	if _, err := store.Insert(raw, processed, nil); err != nil {
		t.Fatalf("Insert() error: %v", err)
	}

	rs, err := store.Query("SELECT raw_data, processed_data FROM api_data", nil, 10)
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if rs.RowCount() != 1 {
		t.Fatalf("Query() rows = %d, want 1", rs.RowCount())
	}
	processedText, ok := rs.Rows[0][1].(string)
	if !ok || processedText == "" {
		t.Errorf("processed_data not stored: %v", rs.Rows[0][1])
	}
}

func TestStore_InsertSerializationFailure(t *testing.T) {
	r := newTestRegistry(t)
	store := newTestStore(t, r)

	_, err := store.Insert(func() {}, nil, nil)
	if err == nil {
		t.Fatal("Insert() of non-serializable payload should fail")
	}
	var serr *SerializationError
	if !errors.As(err, &serr) {
		t.Errorf("Insert() error = %T, want *SerializationError", err)
	}

	count, err := store.RowCount()
	if err != nil {
		t.Fatalf("RowCount() error: %v", err)
	}
	if count != 0 {
		t.Errorf("failed insert left %d rows behind", count)
	}
}

func TestStore_Query(t *testing.T) {
	r := newTestRegistry(t)
	store := newTestStore(t, r)

	for _, payload := range []string{`{"id":1,"name":"a"}`, `{"id":2,"name":"b"}`} {
		if _, err := store.Insert(decodeJSON(t, payload), nil, nil); err != nil {
			t.Fatalf("Insert() error: %v", err)
		}
	}

	rs, err := store.Query("SELECT COUNT(*) AS n FROM api_data", nil, 10)
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if len(rs.Columns) != 1 || rs.Columns[0] != "n" {
		t.Errorf("Query() columns = %v, want [n]", rs.Columns)
	}
	if rs.RowCount() != 1 {
		t.Fatalf("Query() rows = %d, want 1", rs.RowCount())
	}
	if n, ok := rs.Rows[0][0].(int64); !ok || n != 2 {
		t.Errorf("COUNT(*) = %v, want 2", rs.Rows[0][0])
	}
}

func TestStore_QueryJSONExtraction(t *testing.T) {
	r := newTestRegistry(t)
	store := newTestStore(t, r)

	for _, payload := range []string{`{"id":1,"name":"a"}`, `{"id":2,"name":"b"}`} {
		if _, err := store.Insert(decodeJSON(t, payload), nil, nil); err != nil {
			t.Fatalf("Insert() error: %v", err)
		}
	}

	rs, err := store.Query(
		"SELECT json_extract(raw_data, '$.name') AS name FROM api_data WHERE json_extract(raw_data, '$.id') = ?",
		[]interface{}{2}, 10)
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if rs.RowCount() != 1 {
		t.Fatalf("Query() rows = %d, want 1", rs.RowCount())
	}
	if name, _ := rs.Rows[0][0].(string); name != "b" {
		t.Errorf("json_extract name = %v, want b", rs.Rows[0][0])
	}
}

func TestStore_QueryRowLimit(t *testing.T) {
	r := newTestRegistry(t)
	store := newTestStore(t, r)

	for i := 1; i <= 5; i++ {
		payload := map[string]interface{}{"id": i}
		if _, err := store.Insert(payload, nil, nil); err != nil {
			t.Fatalf("Insert() error: %v", err)
		}
	}

	_, err := store.Query("SELECT * FROM api_data", nil, 3)
	if err == nil {
		t.Fatal("Query() exceeding the row limit should fail")
	}
	var lerr *RowLimitError
	if !errors.As(err, &lerr) {
		t.Errorf("Query() error = %T, want *RowLimitError", err)
	}
}

func TestStore_QueryMalformedSQL(t *testing.T) {
	r := newTestRegistry(t)
	store := newTestStore(t, r)

	_, err := store.Query("SELECT FROM WHERE", nil, 10)
	if err == nil {
		t.Fatal("Query() of malformed SQL should fail")
	}
	var qerr *QueryError
	if !errors.As(err, &qerr) {
		t.Errorf("Query() error = %T, want *QueryError", err)
	}
}
