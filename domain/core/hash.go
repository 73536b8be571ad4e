package core

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
)

// Hash is a hex-encoded SHA-256 digest.
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

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// ContentHash identifies an uploaded workbook by its bytes. Re-uploads
// with an unchanged digest are skipped instead of re-ingested.
type ContentHash Hash

func NewContentHash(data []byte) ContentHash { return ContentHash(NewHash(data)) }

func (h ContentHash) String() string { return Hash(h).String() }

func (h ContentHash) Equals(other ContentHash) bool { return h == other }

// Hasher accumulates a digest from a stream, for hashing uploads while
// they are copied to storage.
type Hasher struct {
	h hash.Hash
}

// NewHasher creates an empty streaming hasher.
func NewHasher() *Hasher {
	return &Hasher{h: sha256.New()}
}

// Write feeds bytes into the digest. Never returns an error.
func (h *Hasher) Write(p []byte) (int, error) {
	return h.h.Write(p)
}

// Sum returns the digest of everything written so far.
func (h *Hasher) Sum() ContentHash {
	return ContentHash(hex.EncodeToString(h.h.Sum(nil)))
}
