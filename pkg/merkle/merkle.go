// Package merkle implements a binary Merkle tree over leaf digests,
// with inclusion-proof generation and verification.
package merkle

import (
	"encoding/binary"

	"github.com/shardvault/pcc/pkg/hashing"
	"github.com/shardvault/pcc/pkg/pccerrors"
)

// Tree is a complete binary Merkle tree, padded with duplicate-last-leaf
// to the next power of two. It holds n >= 1 logical leaves.
type Tree struct {
	// levels[0] is the (padded) leaf level; levels[len(levels)-1]
	// holds exactly one digest, the root.
	levels [][]hashing.Digest
	// n is the number of real (unpadded) leaves.
	n int
}

// New builds a Merkle tree over the given leaf digests. It returns
// EmptyInput if leaves is empty.
func New(leaves []hashing.Digest) (*Tree, error) {
	n := len(leaves)
	if n == 0 {
		return nil, pccerrors.EmptyInput("cannot build a Merkle tree over zero leaves")
	}

	m := nextPowerOfTwo(n)
	padded := make([]hashing.Digest, m)
	copy(padded, leaves)
	for i := n; i < m; i++ {
		padded[i] = leaves[n-1]
	}

	levels := [][]hashing.Digest{padded}
	for len(levels[len(levels)-1]) > 1 {
		prev := levels[len(levels)-1]
		next := make([]hashing.Digest, len(prev)/2)
		for i := range next {
			next[i] = hashing.Hash2(prev[2*i], prev[2*i+1])
		}
		levels = append(levels, next)
	}

	return &Tree{levels: levels, n: n}, nil
}

// Root returns the tree's root digest.
func (t *Tree) Root() hashing.Digest {
	top := t.levels[len(t.levels)-1]
	return top[0]
}

// Len returns the number of real (unpadded) leaves in the tree.
func (t *Tree) Len() int {
	return t.n
}

// InclusionProof authenticates a single leaf's membership in a Merkle
// tree: its index, the tree's (unpadded) leaf count, and the sibling
// digests from leaf to root.
type InclusionProof struct {
	LeafIndex uint32
	LeafCount uint32
	Path      []hashing.Digest
}

// Prove returns the inclusion proof for the leaf at index i. It
// returns IndexOutOfBounds if i is not a valid leaf index.
func (t *Tree) Prove(i int) (InclusionProof, error) {
	if i < 0 || i >= t.n {
		return InclusionProof{}, pccerrors.IndexOutOfBounds("leaf index %d out of bounds for tree with %d leaves", i, t.n)
	}

	path := make([]hashing.Digest, 0, len(t.levels)-1)
	idx := i
	for level := 0; level < len(t.levels)-1; level++ {
		siblingIdx := idx ^ 1
		path = append(path, t.levels[level][siblingIdx])
		idx >>= 1
	}

	return InclusionProof{
		LeafIndex: uint32(i),
		LeafCount: uint32(t.n),
		Path:      path,
	}, nil
}

// Verify recomputes the root implied by leaf and proof, climbing the
// tree using the bit pattern of proof.LeafIndex to decide left/right
// placement at each level, and reports whether it equals
// expectedRoot.
func Verify(leaf hashing.Digest, proof InclusionProof, expectedRoot hashing.Digest) bool {
	got, _ := ComputeRoot(leaf, proof)
	return got == expectedRoot
}

// ComputeRoot climbs from leaf to the implied root using proof's
// sibling path, returning the resulting digest. This is also used by
// two-level proof verification (pkg/chunk), where the "root" computed
// here is in turn used as a leaf one level up.
func ComputeRoot(leaf hashing.Digest, proof InclusionProof) (hashing.Digest, error) {
	current := leaf
	idx := proof.LeafIndex
	for _, sibling := range proof.Path {
		if idx&1 == 0 {
			current = hashing.Hash2(current, sibling)
		} else {
			current = hashing.Hash2(sibling, current)
		}
		idx >>= 1
	}
	return current, nil
}

// MarshaledSize returns the number of bytes Marshal will produce for a
// proof with this many path entries.
func (p InclusionProof) MarshaledSize() int {
	return 4 + 4 + 2 + len(p.Path)*hashing.DigestSize
}

// Marshal serializes the proof as:
// leaf_index: u32 (LE) || leaf_count: u32 (LE) || path_length: u16 (LE) || path.
func (p InclusionProof) Marshal() []byte {
	out := make([]byte, p.MarshaledSize())
	binary.LittleEndian.PutUint32(out[0:4], p.LeafIndex)
	binary.LittleEndian.PutUint32(out[4:8], p.LeafCount)
	binary.LittleEndian.PutUint16(out[8:10], uint16(len(p.Path)))
	off := 10
	for _, d := range p.Path {
		copy(out[off:off+hashing.DigestSize], d[:])
		off += hashing.DigestSize
	}
	return out
}

// UnmarshalInclusionProof parses a proof previously produced by
// Marshal, returning the number of bytes consumed. It returns
// MalformedChunk on any length mismatch.
func UnmarshalInclusionProof(b []byte) (InclusionProof, int, error) {
	if len(b) < 10 {
		return InclusionProof{}, 0, pccerrors.MalformedChunk("inclusion proof header truncated: got %d bytes", len(b))
	}
	leafIndex := binary.LittleEndian.Uint32(b[0:4])
	leafCount := binary.LittleEndian.Uint32(b[4:8])
	pathLen := int(binary.LittleEndian.Uint16(b[8:10]))
	need := 10 + pathLen*hashing.DigestSize
	if len(b) < need {
		return InclusionProof{}, 0, pccerrors.MalformedChunk("inclusion proof path truncated: need %d bytes, got %d", need, len(b))
	}
	path := make([]hashing.Digest, pathLen)
	off := 10
	for i := range path {
		copy(path[i][:], b[off:off+hashing.DigestSize])
		off += hashing.DigestSize
	}
	return InclusionProof{LeafIndex: leafIndex, LeafCount: leafCount, Path: path}, need, nil
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
