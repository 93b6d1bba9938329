package qrcard

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// HashAlgo names a payload fingerprint algorithm.
type HashAlgo string

const (
	// HashBLAKE2b uses BLAKE2b-256.
	HashBLAKE2b HashAlgo = "blake2b"

	// HashSHA256 uses SHA-256.
	HashSHA256 HashAlgo = "sha256"
)

// Hasher produces a deterministic fingerprint of an encoded payload.
// Fingerprints identify a payload in logs without exposing its contents.
type Hasher interface {
	// Hash returns the hex-encoded digest of data.
	Hash(data []byte) string
}

type blake2bHasher struct{}

// BLAKE2bHasher returns a BLAKE2b-256 hasher.
func BLAKE2bHasher() Hasher { return blake2bHasher{} }

func (blake2bHasher) Hash(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

type sha256Hasher struct{}

// SHA256Hasher returns a SHA-256 hasher.
func SHA256Hasher() Hasher { return sha256Hasher{} }

func (sha256Hasher) Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HasherFor returns the hasher for algo.
func HasherFor(algo HashAlgo) (Hasher, bool) {
	switch algo {
	case HashBLAKE2b:
		return BLAKE2bHasher(), true
	case HashSHA256:
		return SHA256Hasher(), true
	}
	return nil, false
}
