package internal

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hasher computes deterministic content fingerprints for records. Two
// semantically identical payloads (same field values, independent of key
// ordering) always produce the same fingerprint.
type Hasher struct {
	includeParams bool
}

// NewHasher creates a Hasher. When includeParams is true the originating
// request parameters participate in the fingerprint, so identical payloads
// fetched with different parameters count as distinct records.
func NewHasher(includeParams bool) *Hasher {
	return &Hasher{includeParams: includeParams}
}

// Fingerprint returns the hex-encoded sha256 digest of the canonical
// encoding of the payload (and, per policy, the params). Fails with a
// SerializationError if either value is not representable as JSON.
func (h *Hasher) Fingerprint(payload, params interface{}) (string, error) {
	digest := sha256.New()

	canonical, err := CanonicalJSON(payload)
	if err != nil {
		return "", err
	}
	digest.Write(canonical)

	if h.includeParams && params != nil {
		canonical, err = CanonicalJSON(params)
		if err != nil {
			return "", err
		}
		digest.Write([]byte{0})
		digest.Write(canonical)
	}

	return hex.EncodeToString(digest.Sum(nil)), nil
}

// CanonicalJSON serializes v into a canonical JSON form: object keys are
// sorted, insignificant whitespace is absent. The value is round-tripped
// through an untyped tree so struct field order and map key order do not
// affect the output.
func CanonicalJSON(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, &SerializationError{Err: err}
	}

	// Re-marshal through interface{} so maps encode with sorted keys.
	var tree interface{}
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, &SerializationError{Err: err}
	}

	canonical, err := json.Marshal(tree)
	if err != nil {
		return nil, &SerializationError{Err: err}
	}

	return canonical, nil
}
