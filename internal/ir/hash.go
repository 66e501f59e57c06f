package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix allows future algorithm migration.
const (
	DomainTimeline = "deafbeat/timeline/v1"
	DomainTriggers = "deafbeat/triggers/v1"
	DomainMeta     = "deafbeat/meta/v1"
)

// HashWithDomain computes SHA-256 with domain separation:
// SHA256(domain + 0x00 + data).
func HashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// MetaHash computes the content hash of a metadata object.
func MetaHash(meta Object) (string, error) {
	canonical, err := MarshalCanonical(meta)
	if err != nil {
		return "", fmt.Errorf("MetaHash: failed to marshal: %w", err)
	}
	return HashWithDomain(DomainMeta, canonical), nil
}
