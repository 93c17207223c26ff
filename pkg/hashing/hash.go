// Package hashing wraps the BLAKE3 hash function used throughout this
// module for chunk digests and Merkle node combination.
//
// All digests produced by this package are 32 bytes. Internal Merkle
// nodes are hashed with a domain-separated key so that a leaf digest
// can never be mistaken for an internal node digest, even though both
// are 32 bytes produced by the same underlying function.
package hashing

import (
	"bytes"

	"lukechampine.com/blake3"
)

// DigestSize is the size, in bytes, of every Digest produced by this
// package.
const DigestSize = 32

// Digest is an opaque 32 byte cryptographic digest. Digests are
// totally ordered lexicographically (see Less).
type Digest [DigestSize]byte

// internalNodeContext is the BLAKE3 key-derivation context used to
// derive the key for hashing internal Merkle tree nodes. Using a
// derived key (rather than hashing unkeyed with a prefix byte) keeps
// leaf and internal-node digest spaces cryptographically separate.
const internalNodeContext = "decds/pcc/merkle/internal-node/v1"

var internalNodeKey = deriveInternalNodeKey()

func deriveInternalNodeKey() []byte {
	key := make([]byte, 32)
	blake3.DeriveKey(key, internalNodeContext, nil)
	return key
}

// Hash computes the unkeyed BLAKE3 digest of b.
func Hash(b []byte) Digest {
	return Digest(blake3.Sum256(b))
}

// Hash2 computes the domain-separated digest of an internal Merkle
// node, given its two children in left-then-right order.
func Hash2(left, right Digest) Digest {
	h := blake3.New(DigestSize, internalNodeKey)
	h.Write(left[:])
	h.Write(right[:])
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// Less reports whether d sorts before other in lexicographic byte
// order.
func (d Digest) Less(other Digest) bool {
	return bytes.Compare(d[:], other[:]) < 0
}

// IsZero reports whether d is the all-zero digest.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

func (d Digest) String() string {
	const hextable = "0123456789abcdef"
	out := make([]byte, 2*DigestSize)
	for i, b := range d {
		out[i*2] = hextable[b>>4]
		out[i*2+1] = hextable[b&0x0f]
	}
	return string(out)
}
