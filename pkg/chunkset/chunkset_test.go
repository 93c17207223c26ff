package chunkset_test

import (
	"testing"

	"github.com/shardvault/pcc/pkg/chunk"
	"github.com/shardvault/pcc/pkg/chunkset"
	"github.com/shardvault/pcc/pkg/merkle"
	"github.com/stretchr/testify/require"
)

func randomChunksetBytes(seed byte) []byte {
	raw := make([]byte, chunk.ChunksetSizeBytes)
	x := seed
	for i := range raw {
		x = x*31 + 7
		raw[i] = x
	}
	return raw
}

func TestBuildProducesValidSelfConsistentTree(t *testing.T) {
	raw := randomChunksetBytes(1)
	built, err := chunkset.Build(raw, []byte("global-seed"), 0)
	require.NoError(t, err)

	for i, c := range built.Chunks {
		require.True(t, merkle.Verify(c.Digest(), built.Proofs[i], built.Root))
	}
}

func TestBuildRejectsWrongSize(t *testing.T) {
	_, err := chunkset.Build(make([]byte, chunk.ChunksetSizeBytes-1), []byte("seed"), 0)
	require.Error(t, err)
}

func TestBuildDeterministic(t *testing.T) {
	raw := randomChunksetBytes(2)
	a, err := chunkset.Build(raw, []byte("seed"), 5)
	require.NoError(t, err)
	b, err := chunkset.Build(raw, []byte("seed"), 5)
	require.NoError(t, err)
	require.Equal(t, a.Root, b.Root)
	require.Equal(t, a.Chunks, b.Chunks)
}

func TestBuildVariesByChunksetID(t *testing.T) {
	raw := randomChunksetBytes(3)
	a, err := chunkset.Build(raw, []byte("seed"), 0)
	require.NoError(t, err)
	b, err := chunkset.Build(raw, []byte("seed"), 1)
	require.NoError(t, err)
	require.NotEqual(t, a.Root, b.Root)
}

func TestRepairRoundTrip(t *testing.T) {
	raw := randomChunksetBytes(4)
	built, err := chunkset.Build(raw, []byte("seed"), 9)
	require.NoError(t, err)

	r := chunkset.NewRepairing(built.Root)
	var lastOutcome chunkset.AddOutcome
	for i := 0; i < chunk.ChunksPerChunkset; i++ {
		lastOutcome = r.AddChunk(built.Chunks[i], built.Proofs[i])
	}
	require.Equal(t, chunkset.Ready, lastOutcome)
	require.True(t, r.Ready())

	repaired, err := r.Repair()
	require.NoError(t, err)
	require.Equal(t, raw, repaired)
}

func TestRepairToleratesCorruptShares(t *testing.T) {
	raw := randomChunksetBytes(5)
	built, err := chunkset.Build(raw, []byte("seed"), 3)
	require.NoError(t, err)

	r := chunkset.NewRepairing(built.Root)
	// Submit all 16 coded chunks with the payloads of the first 5
	// corrupted: those are rejected, and the 11 valid ones that remain
	// are enough to reach rank 10.
	for i := 0; i < chunk.CodedChunksPerChunkset; i++ {
		c := built.Chunks[i]
		if i < 5 {
			c.Payload = append([]byte(nil), c.Payload...)
			c.Payload[0] ^= 0xff
			require.Equal(t, chunkset.RejectedInvalidProof, r.AddChunk(c, built.Proofs[i]))
			continue
		}
		r.AddChunk(c, built.Proofs[i])
	}
	require.True(t, r.Ready())
	repaired, err := r.Repair()
	require.NoError(t, err)
	require.Equal(t, raw, repaired)
}

func TestAddChunkRejectsInvalidProof(t *testing.T) {
	raw := randomChunksetBytes(6)
	built, err := chunkset.Build(raw, []byte("seed"), 1)
	require.NoError(t, err)
	other, err := chunkset.Build(raw, []byte("other-seed"), 1)
	require.NoError(t, err)

	r := chunkset.NewRepairing(built.Root)
	outcome := r.AddChunk(other.Chunks[0], other.Proofs[0])
	require.Equal(t, chunkset.RejectedInvalidProof, outcome)
}

func TestAddChunkRejectsMalformedMetadata(t *testing.T) {
	raw := randomChunksetBytes(7)
	built, err := chunkset.Build(raw, []byte("seed"), 2)
	require.NoError(t, err)

	r := chunkset.NewRepairing(built.Root)
	bad := built.Chunks[0]
	bad.Payload = bad.Payload[:len(bad.Payload)-1]
	outcome := r.AddChunk(bad, built.Proofs[0])
	require.Equal(t, chunkset.RejectedInvalidMetadata, outcome)
}

func TestAddChunkDetectsRedundancy(t *testing.T) {
	raw := randomChunksetBytes(8)
	built, err := chunkset.Build(raw, []byte("seed"), 4)
	require.NoError(t, err)

	r := chunkset.NewRepairing(built.Root)
	first := r.AddChunk(built.Chunks[0], built.Proofs[0])
	require.Equal(t, chunkset.Accepted, first)
	second := r.AddChunk(built.Chunks[0], built.Proofs[0])
	require.Equal(t, chunkset.Redundant, second)
}

func TestRepairNotReadyBeforeRankTen(t *testing.T) {
	raw := randomChunksetBytes(9)
	built, err := chunkset.Build(raw, []byte("seed"), 6)
	require.NoError(t, err)

	r := chunkset.NewRepairing(built.Root)
	for i := 0; i < chunk.ChunksPerChunkset-1; i++ {
		r.AddChunk(built.Chunks[i], built.Proofs[i])
	}
	_, err = r.Repair()
	require.Error(t, err)
}

func TestAddChunkRejectsAfterReady(t *testing.T) {
	raw := randomChunksetBytes(10)
	built, err := chunkset.Build(raw, []byte("seed"), 8)
	require.NoError(t, err)

	r := chunkset.NewRepairing(built.Root)
	for i := 0; i < chunk.ChunksPerChunkset; i++ {
		r.AddChunk(built.Chunks[i], built.Proofs[i])
	}
	require.True(t, r.Ready())
	outcome := r.AddChunk(built.Chunks[chunk.ChunksPerChunkset], built.Proofs[chunk.ChunksPerChunkset])
	require.Equal(t, chunkset.RejectedAlreadyReady, outcome)
}
