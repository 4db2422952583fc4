package services

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/fenilmodi00/flightme-backend/models"
)

// CanonicalJSON re-encodes a JSON document with object keys sorted and numbers preserved verbatim
func CanonicalJSON(raw []byte) ([]byte, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var value interface{}
	if err := decoder.Decode(&value); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	// encoding/json writes map keys in sorted order
	return json.Marshal(value)
}

// FingerprintJSON hashes the canonical form of a JSON document
func FingerprintJSON(raw []byte) (string, error) {
	canonical, err := CanonicalJSON(raw)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// Fingerprint is the result cache key of an analysis request
func Fingerprint(request models.AnalysisRequest) (string, error) {
	raw, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to encode analysis request: %w", err)
	}
	return FingerprintJSON(raw)
}
