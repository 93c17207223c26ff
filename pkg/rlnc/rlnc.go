// Package rlnc implements the Random Linear Network Coding primitives
// used by the chunkset layer: deterministic coefficient generation,
// linear combination ("encode"), and online Gaussian elimination
// ("decode").
//
// Every payload is represented as a slice of uint64 values — the raw
// little-endian 8-byte groups of a chunk's bytes — rather than as
// field.Elem directly, to avoid inflating in-memory payload size by
// the width of the underlying 256-bit integer type. Field arithmetic
// is applied element-by-element as needed.
package rlnc

import (
	"encoding/binary"
	"math/rand"

	"github.com/lazybeaver/xorshift"
	"github.com/shardvault/pcc/pkg/field"
	"github.com/shardvault/pcc/pkg/hashing"
)

// SymbolsPerChunk is the number of field elements ("symbols") that
// make up one chunk's payload, given a chunk payload size in bytes.
func SymbolsPerChunk(chunkSizeBytes int) int {
	return chunkSizeBytes / field.ElementSizeBytes
}

// seedContext domain-separates RLNC coefficient seeding from all other
// uses of the hash function in this module.
const seedContext = "decds/rlnc/v1"

// DeriveSeed computes the deterministic RNG seed for a given chunkset,
// as a pure function of (globalSeed, chunksetID). This guarantees
// reproducibility regardless of the order in which chunksets are
// built or which worker happens to process a given chunkset.
func DeriveSeed(globalSeed []byte, chunksetID uint32) uint64 {
	buf := make([]byte, 0, len(seedContext)+len(globalSeed)+4)
	buf = append(buf, seedContext...)
	buf = append(buf, globalSeed...)
	var idBytes [4]byte
	binary.LittleEndian.PutUint32(idBytes[:], chunksetID)
	buf = append(buf, idBytes[:]...)

	digest := hashing.Hash(buf)
	return binary.LittleEndian.Uint64(digest[:8])
}

// CoefficientGenerator deterministically draws coefficient vectors for
// successive coded chunks within one chunkset.
type CoefficientGenerator struct {
	rng *rand.Rand
}

// NewCoefficientGenerator creates a generator seeded as described by
// DeriveSeed.
func NewCoefficientGenerator(seed uint64) *CoefficientGenerator {
	return &CoefficientGenerator{
		rng: rand.New(xorshift.NewXorShift64Star(seed)),
	}
}

// Next draws the next coefficient vector of the given length. Each
// entry is a nonzero 64-bit RNG draw reduced into the field by
// field.FromUint64; the draw is re-rolled on the rare output that
// reduces to zero.
func (g *CoefficientGenerator) Next(length int) []field.Elem {
	out := make([]field.Elem, length)
	for i := range out {
		e := field.FromUint64(g.rng.Uint64())
		for e.IsZero() {
			e = field.FromUint64(g.rng.Uint64())
		}
		out[i] = e
	}
	return out
}

// PackPayload converts a raw byte slice (whose length must be a
// multiple of field.ElementSizeBytes) into a slice of little-endian
// 64-bit symbols.
func PackPayload(raw []byte) []uint64 {
	out := make([]uint64, len(raw)/field.ElementSizeBytes)
	for i := range out {
		out[i] = binary.LittleEndian.Uint64(raw[i*field.ElementSizeBytes:])
	}
	return out
}

// UnpackPayload is the inverse of PackPayload.
func UnpackPayload(symbols []uint64) []byte {
	out := make([]byte, len(symbols)*field.ElementSizeBytes)
	for i, s := range symbols {
		binary.LittleEndian.PutUint64(out[i*field.ElementSizeBytes:], s)
	}
	return out
}

// Encode computes the linear combination sum(coeffs[i] * sources[i])
// over GF(p), producing one coded payload of the same symbol length as
// each source.
func Encode(coeffs []field.Elem, sources [][]uint64) []uint64 {
	symbolLen := len(sources[0])
	out := make([]uint64, symbolLen)
	for s := 0; s < symbolLen; s++ {
		acc := field.Zero
		for i, c := range coeffs {
			acc = field.MulAdd(acc, c, field.FromUint64(sources[i][s]))
		}
		out[s] = acc.Uint64()
	}
	return out
}
