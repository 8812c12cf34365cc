package internal

import (
	"encoding/json"
	"errors"
	"testing"
)

func decodeJSON(t *testing.T, text string) interface{} {
	t.Helper()
	var v interface{}
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		t.Fatalf("failed to decode test JSON: %v", err)
	}
	return v
}

func TestHasher_Deterministic(t *testing.T) {
	h := NewHasher(true)
	payload := decodeJSON(t, `{"id":1,"name":"a"}`)
	params := decodeJSON(t, `{"page":1}`)

	first, err := h.Fingerprint(payload, params)
	if err != nil {
		t.Fatalf("Fingerprint() error: %v", err)
	}
	second, err := h.Fingerprint(payload, params)
	if err != nil {
		t.Fatalf("Fingerprint() error: %v", err)
	}

	if first != second {
		t.Errorf("Fingerprint() not deterministic: %s != %s", first, second)
	}
	if len(first) != 64 {
		t.Errorf("Fingerprint() length = %d, want 64 hex chars", len(first))
	}
}

func TestHasher_KeyOrderIndependent(t *testing.T) {
	h := NewHasher(true)
	a := decodeJSON(t, `{"id":1,"name":"a","tags":["x","y"]}`)
	b := decodeJSON(t, `{"tags":["x","y"],"name":"a","id":1}`)

	hashA, err := h.Fingerprint(a, nil)
	if err != nil {
		t.Fatalf("Fingerprint() error: %v", err)
	}
	hashB, err := h.Fingerprint(b, nil)
	if err != nil {
		t.Fatalf("Fingerprint() error: %v", err)
	}

	if hashA != hashB {
		t.Errorf("key order changed fingerprint: %s != %s", hashA, hashB)
	}
}

func TestHasher_ContentSensitivity(t *testing.T) {
	h := NewHasher(true)

	tests := []struct {
		name     string
		payloadA string
		payloadB string
	}{
		{"different value", `{"id":1}`, `{"id":2}`},
		{"different field", `{"id":1}`, `{"uid":1}`},
		{"extra field", `{"id":1}`, `{"id":1,"name":"a"}`},
		{"different type", `{"id":1}`, `{"id":"1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hashA, err := h.Fingerprint(decodeJSON(t, tt.payloadA), nil)
			if err != nil {
				t.Fatalf("Fingerprint() error: %v", err)
			}
			hashB, err := h.Fingerprint(decodeJSON(t, tt.payloadB), nil)
			if err != nil {
				t.Fatalf("Fingerprint() error: %v", err)
			}
			if hashA == hashB {
				t.Errorf("different payloads produced the same fingerprint")
			}
		})
	}
}

func TestHasher_ParamsPolicy(t *testing.T) {
	payload := decodeJSON(t, `{"id":1}`)
	page1 := decodeJSON(t, `{"page":1}`)
	page2 := decodeJSON(t, `{"page":2}`)

	withParams := NewHasher(true)
	a, _ := withParams.Fingerprint(payload, page1)
	b, _ := withParams.Fingerprint(payload, page2)
	if a == b {
		t.Error("params should participate in the fingerprint when enabled")
	}

	withoutParams := NewHasher(false)
	a, _ = withoutParams.Fingerprint(payload, page1)
	b, _ = withoutParams.Fingerprint(payload, page2)
	if a != b {
		t.Error("params should not participate in the fingerprint when disabled")
	}
}

func TestHasher_SerializationError(t *testing.T) {
	h := NewHasher(true)

	_, err := h.Fingerprint(func() {}, nil)
	if err == nil {
		t.Fatal("Fingerprint() of a function value should fail")
	}
	var serr *SerializationError
	if !errors.As(err, &serr) {
		t.Errorf("error = %T, want *SerializationError", err)
	}
}

func TestCanonicalJSON_SortsKeys(t *testing.T) {
	got, err := CanonicalJSON(decodeJSON(t, `{"b":2,"a":1}`))
	if err != nil {
		t.Fatalf("CanonicalJSON() error: %v", err)
	}
	want := `{"a":1,"b":2}`
	if string(got) != want {
		t.Errorf("CanonicalJSON() = %s, want %s", got, want)
	}
}
