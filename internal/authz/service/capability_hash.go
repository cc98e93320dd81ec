package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"slices"
	"strings"

	"golang.org/x/crypto/hkdf"

	authzDomain "github.com/gtedge/aegis/internal/authz/domain"
)

// capabilityHasher implements CapabilityHasher using HKDF-SHA256 for key
// derivation and HMAC-SHA256 over a canonical, order-independent encoding of
// the capability set.
type capabilityHasher struct {
	key []byte
}

// NewCapabilityHasher creates a CapabilityHasher keyed off the token signing
// key. The hashing key is derived via HKDF-SHA256 so the signing key and the
// integrity-hash key have separate usages.
// Info parameter: "capability-hash-v1" (versioned for future format changes).
func NewCapabilityHasher(signingKey []byte) (CapabilityHasher, error) {
	info := []byte("capability-hash-v1")
	kdf := hkdf.New(sha256.New, signingKey, nil, info)

	key := make([]byte, 32)
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("failed to derive capability hash key: %w", err)
	}

	return &capabilityHasher{key: key}, nil
}

// Hash returns the hex-encoded HMAC-SHA256 of the canonical encoding.
func (h *capabilityHasher) Hash(set authzDomain.CapabilitySet) (string, error) {
	canonical, err := canonicalizeSet(set)
	if err != nil {
		return "", err
	}

	mac := hmac.New(sha256.New, h.key)
	mac.Write(canonical)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// Verify recomputes the digest and compares in constant time.
func (h *capabilityHasher) Verify(set authzDomain.CapabilitySet, hash string) bool {
	computed, err := h.Hash(set)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(computed), []byte(hash))
}

// canonicalizeSet converts a capability set to a canonical byte
// representation: each grant is normalized (actions sorted), grants are
// sorted by their encoded form, and all variable-length fields are
// length-prefixed to prevent ambiguity. List order of the input never
// affects the output.
func canonicalizeSet(set authzDomain.CapabilitySet) ([]byte, error) {
	encoded := make([][]byte, 0, len(set))
	for _, grant := range set {
		buf, err := canonicalizeGrant(grant)
		if err != nil {
			return nil, err
		}
		encoded = append(encoded, buf)
	}

	slices.SortFunc(encoded, func(a, b []byte) int {
		return strings.Compare(string(a), string(b))
	})

	// Typical set is a handful of grants (~256 bytes).
	out := make([]byte, 0, 256)
	for _, buf := range encoded {
		out = appendLengthPrefixedBytes(out, buf)
	}
	return out, nil
}

// canonicalizeGrant encodes one grant.
// Format: resource || sorted actions || constraint kind || constraint fields,
// each length-prefixed; timestamps as big-endian Unix nanoseconds.
func canonicalizeGrant(grant authzDomain.Capability) ([]byte, error) {
	buf := make([]byte, 0, 128)

	buf = appendLengthPrefixedBytes(buf, []byte(grant.Resource))

	actions := make([]string, 0, len(grant.Actions))
	for _, action := range grant.Actions {
		actions = append(actions, string(action))
	}
	slices.Sort(actions)
	// Duplicate actions carry no extra meaning.
	actions = slices.Compact(actions)

	buf = binary.BigEndian.AppendUint32(buf, uint32(len(actions)))
	for _, action := range actions {
		buf = appendLengthPrefixedBytes(buf, []byte(action))
	}

	buf = appendLengthPrefixedBytes(buf, []byte(grant.Constraint.Kind))
	switch grant.Constraint.Kind {
	case authzDomain.ConstraintValidUntil:
		buf = binary.BigEndian.AppendUint64(buf, uint64(grant.Constraint.ValidUntil.UnixNano()))
	case authzDomain.ConstraintUsageLimit:
		buf = binary.BigEndian.AppendUint64(buf, uint64(grant.Constraint.Window.Nanoseconds()))
		buf = binary.BigEndian.AppendUint64(buf, uint64(grant.Constraint.MaxRequests))
	}

	return buf, nil
}

// appendLengthPrefixedBytes adds a 4-byte big-endian length prefix followed
// by the data. Panics if data length exceeds uint32 max to prevent integer
// overflow.
func appendLengthPrefixedBytes(buf, data []byte) []byte {
	if len(data) > math.MaxUint32 {
		panic(fmt.Sprintf("data length %d exceeds uint32 max", len(data)))
	}
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(data)))
	return append(buf, data...)
}
