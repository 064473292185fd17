package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"io"

	"golang.org/x/crypto/blake2b"
)

// HashAlgorithm represents the hashing algorithm to use
type HashAlgorithm string

const (
	BLAKE2b HashAlgorithm = "blake2b"
	SHA256  HashAlgorithm = "sha256"
)

// Hasher computes content digests for archives
type Hasher struct {
	algorithm HashAlgorithm
}

// NewHasher creates a new hasher with the specified algorithm
func NewHasher(algorithm HashAlgorithm) *Hasher {
	return &Hasher{algorithm: algorithm}
}

// DefaultHasher returns a BLAKE2b-256 hasher
func DefaultHasher() *Hasher {
	return NewHasher(BLAKE2b)
}

// Algorithm returns the configured algorithm
func (h *Hasher) Algorithm() HashAlgorithm {
	return h.algorithm
}

// Hash computes the hex digest of data
func (h *Hasher) Hash(data []byte) string {
	switch h.algorithm {
	case SHA256:
		sum := sha256.Sum256(data)
		return hex.EncodeToString(sum[:])
	default:
		sum := blake2b.Sum256(data)
		return hex.EncodeToString(sum[:])
	}
}

// HashReader computes the hex digest of everything read from r
func (h *Hasher) HashReader(r io.Reader) (string, error) {
	var w interface {
		io.Writer
		Sum([]byte) []byte
	}
	switch h.algorithm {
	case SHA256:
		w = sha256.New()
	default:
		// only fails for keys longer than 64 bytes
		w, _ = blake2b.New256(nil)
	}
	if _, err := io.Copy(w, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(w.Sum(nil)), nil
}

// Short returns the first 12 characters of a digest for display
func Short(digest string) string {
	if len(digest) < 12 {
		return digest
	}
	return digest[:12]
}
