package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Short returns the first 12 hex characters, enough for display
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// Hasher accumulates labelled values into a single fingerprint.
// Every write is length-prefixed so that adjacent values cannot collide.
type Hasher struct {
	buf []byte
}

// NewHasher creates an empty fingerprint builder
func NewHasher() *Hasher {
	return &Hasher{}
}

// String appends a string value
func (h *Hasher) String(s string) *Hasher {
	h.buf = binary.BigEndian.AppendUint64(h.buf, uint64(len(s)))
	h.buf = append(h.buf, s...)
	return h
}

// Strings appends an ordered list of strings
func (h *Hasher) Strings(values []string) *Hasher {
	h.buf = binary.BigEndian.AppendUint64(h.buf, uint64(len(values)))
	for _, v := range values {
		h.String(v)
	}
	return h
}

// SortedKeys appends the keys of a set in sorted order
func (h *Hasher) SortedKeys(set map[string]struct{}) *Hasher {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, strings.ToLower(k))
	}
	sort.Strings(keys)
	return h.Strings(keys)
}

// Floats appends float64 values by their IEEE-754 bits
func (h *Hasher) Floats(values []float64) *Hasher {
	h.buf = binary.BigEndian.AppendUint64(h.buf, uint64(len(values)))
	for _, v := range values {
		h.buf = binary.BigEndian.AppendUint64(h.buf, math.Float64bits(v))
	}
	return h
}

// Sum returns the fingerprint of everything written so far
func (h *Hasher) Sum() Hash {
	return NewHash(h.buf)
}
