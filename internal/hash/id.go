package hash

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// ID computes the xxHash64 of the given string.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}

// Key accumulates typed fields into a single xxHash64 identity.
//
// Strings are length-prefixed so that ("ab", "c") and ("a", "bc") hash
// differently. Floats are hashed by their bit pattern, so -0 and +0 differ
// and NaN payloads are preserved.
type Key struct {
	digest *xxhash.Digest
	buf    [8]byte
}

// NewKey returns an empty identity key.
func NewKey() *Key {
	return &Key{digest: xxhash.New()}
}

// String adds s to the key.
func (k *Key) String(s string) *Key {
	k.Uint64(uint64(len(s)))
	_, _ = k.digest.WriteString(s)

	return k
}

// Int adds v to the key.
func (k *Key) Int(v int) *Key {
	return k.Uint64(uint64(int64(v)))
}

// Float64 adds the bit pattern of v to the key.
func (k *Key) Float64(v float64) *Key {
	return k.Uint64(math.Float64bits(v))
}

// Uint64 adds v to the key.
func (k *Key) Uint64(v uint64) *Key {
	binary.LittleEndian.PutUint64(k.buf[:], v)
	_, _ = k.digest.Write(k.buf[:])

	return k
}

// Sum returns the identity.
func (k *Key) Sum() uint64 {
	return k.digest.Sum64()
}
