// Package hash implements the blake2b-256 digest used throughout the
// era supervisor as the identity of eras, messages, and scheduled actions.
package hash

import (
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/blake2b"
)

// Size is the size in bytes of a Hash.
const Size = 32

// ErrMalformed is the error returned when a hash cannot be parsed.
var ErrMalformed = errors.New("hash: malformed hash")

// Hash is a cryptographic digest, used as the primary key of eras,
// messages, and scheduled actions.
type Hash [Size]byte

// IsEmpty returns true iff the hash is the empty (all-zero) digest, used
// to denote "no parent" for a genesis era.
func (h Hash) IsEmpty() bool {
	return h == Hash{}
}

// String returns the hex encoding of the hash.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// MarshalBinary encodes the hash as bytes.
func (h Hash) MarshalBinary() ([]byte, error) {
	out := make([]byte, Size)
	copy(out, h[:])
	return out, nil
}

// UnmarshalBinary decodes the hash from bytes.
func (h *Hash) UnmarshalBinary(data []byte) error {
	if len(data) != Size {
		return ErrMalformed
	}
	copy(h[:], data)
	return nil
}

// FromBytes computes the hash of the given data.
func FromBytes(data ...[]byte) Hash {
	hasher, err := blake2b.New256(nil)
	if err != nil {
		// blake2b.New256 only fails for bad keys, and we never pass one.
		panic(err)
	}
	for _, d := range data {
		_, _ = hasher.Write(d)
	}
	var h Hash
	copy(h[:], hasher.Sum(nil))
	return h
}
