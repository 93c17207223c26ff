package merkle_test

import (
	"testing"

	"github.com/shardvault/pcc/pkg/hashing"
	"github.com/shardvault/pcc/pkg/merkle"
	"github.com/stretchr/testify/require"
)

func leaves(n int) []hashing.Digest {
	out := make([]hashing.Digest, n)
	for i := range out {
		out[i] = hashing.Hash([]byte{byte(i)})
	}
	return out
}

func TestNewEmptyInput(t *testing.T) {
	_, err := merkle.New(nil)
	require.Error(t, err)
}

func TestProveAndVerifyAllLeaves(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5, 7, 16, 17} {
		ls := leaves(n)
		tree, err := merkle.New(ls)
		require.NoError(t, err)
		root := tree.Root()

		for i := 0; i < n; i++ {
			proof, err := tree.Prove(i)
			require.NoError(t, err)
			require.True(t, merkle.Verify(ls[i], proof, root), "leaf %d in tree of size %d", i, n)
		}
	}
}

func TestVerifyRejectsWrongLeaf(t *testing.T) {
	ls := leaves(5)
	tree, err := merkle.New(ls)
	require.NoError(t, err)
	root := tree.Root()

	proof, err := tree.Prove(0)
	require.NoError(t, err)
	require.False(t, merkle.Verify(ls[1], proof, root))
}

func TestProveOutOfBounds(t *testing.T) {
	tree, err := merkle.New(leaves(3))
	require.NoError(t, err)
	_, err = tree.Prove(3)
	require.Error(t, err)
	_, err = tree.Prove(-1)
	require.Error(t, err)
}

func TestSingleLeafTree(t *testing.T) {
	ls := leaves(1)
	tree, err := merkle.New(ls)
	require.NoError(t, err)
	require.Equal(t, ls[0], tree.Root())

	proof, err := tree.Prove(0)
	require.NoError(t, err)
	require.Empty(t, proof.Path)
	require.True(t, merkle.Verify(ls[0], proof, tree.Root()))
}

func TestInclusionProofMarshalRoundTrip(t *testing.T) {
	tree, err := merkle.New(leaves(16))
	require.NoError(t, err)
	proof, err := tree.Prove(9)
	require.NoError(t, err)

	encoded := proof.Marshal()
	decoded, n, err := merkle.UnmarshalInclusionProof(encoded)
	require.NoError(t, err)
	require.Equal(t, len(encoded), n)
	require.Equal(t, proof, decoded)
}

func TestUnmarshalInclusionProofTruncated(t *testing.T) {
	tree, err := merkle.New(leaves(16))
	require.NoError(t, err)
	proof, err := tree.Prove(9)
	require.NoError(t, err)
	encoded := proof.Marshal()

	_, _, err = merkle.UnmarshalInclusionProof(encoded[:len(encoded)-1])
	require.Error(t, err)
	_, _, err = merkle.UnmarshalInclusionProof(encoded[:5])
	require.Error(t, err)
}

func TestDifferentTreesProduceDifferentRoots(t *testing.T) {
	a, err := merkle.New(leaves(4))
	require.NoError(t, err)
	b, err := merkle.New(leaves(5))
	require.NoError(t, err)
	require.NotEqual(t, a.Root(), b.Root())
}
