package blob_test

import (
	"context"
	"testing"

	"github.com/shardvault/pcc/pkg/blob"
	"github.com/shardvault/pcc/pkg/chunk"
	"github.com/shardvault/pcc/pkg/chunkset"
	"github.com/stretchr/testify/require"
)

func TestRepairingFullRoundTrip(t *testing.T) {
	raw := randomBytes(chunk.ChunksetSizeBytes*2, 10)
	built, err := blob.Build(context.Background(), raw, []byte("seed"), 4)
	require.NoError(t, err)

	r := blob.NewRepairing(built.Metadata)
	for _, row := range built.PCCs {
		for _, pcc := range row {
			r.AddChunk(pcc)
		}
	}
	require.True(t, r.IsReady())

	repaired, err := r.Repair(context.Background(), 4)
	require.NoError(t, err)
	require.Equal(t, raw, repaired)
}

func TestRepairingToleratesPartialLossPerChunkset(t *testing.T) {
	raw := randomBytes(chunk.ChunksetSizeBytes, 11)
	built, err := blob.Build(context.Background(), raw, []byte("seed"), 0)
	require.NoError(t, err)

	r := blob.NewRepairing(built.Metadata)
	// Feed only 11 of 16 PCCs for the sole chunkset: above the
	// rank-10 floor, tolerating 5 missing shares.
	for _, pcc := range built.PCCs[0][:11] {
		r.AddChunk(pcc)
	}
	require.True(t, r.IsReady())

	repaired, err := r.Repair(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, raw, repaired)
}

func TestRepairingFailsBelowRankFloor(t *testing.T) {
	raw := randomBytes(chunk.ChunksetSizeBytes, 12)
	built, err := blob.Build(context.Background(), raw, []byte("seed"), 0)
	require.NoError(t, err)

	r := blob.NewRepairing(built.Metadata)
	for _, pcc := range built.PCCs[0][:9] {
		r.AddChunk(pcc)
	}
	require.False(t, r.IsReady())

	_, err = r.Repair(context.Background(), 0)
	require.Error(t, err)
}

func TestRepairingRejectsTamperedPCC(t *testing.T) {
	raw := randomBytes(chunk.ChunksetSizeBytes, 13)
	built, err := blob.Build(context.Background(), raw, []byte("seed"), 0)
	require.NoError(t, err)

	r := blob.NewRepairing(built.Metadata)
	tampered := built.PCCs[0][0]
	tampered.Chunk.Payload[0] ^= 0xff
	outcome := r.AddChunk(tampered)
	require.Equal(t, chunkset.RejectedInvalidProof, outcome)
}

func TestRepairingRejectsOutOfRangeChunksetID(t *testing.T) {
	raw := randomBytes(chunk.ChunksetSizeBytes, 14)
	built, err := blob.Build(context.Background(), raw, []byte("seed"), 0)
	require.NoError(t, err)

	r := blob.NewRepairing(built.Metadata)
	bad := built.PCCs[0][0]
	bad.ChunksetID = built.Metadata.NChunksets + 5
	outcome := r.AddChunk(bad)
	require.Equal(t, chunkset.RejectedInvalidProof, outcome)
}

func TestRepairingMultiChunksetPartialReadiness(t *testing.T) {
	raw := randomBytes(chunk.ChunksetSizeBytes*2, 15)
	built, err := blob.Build(context.Background(), raw, []byte("seed"), 0)
	require.NoError(t, err)

	r := blob.NewRepairing(built.Metadata)
	for _, pcc := range built.PCCs[0] {
		r.AddChunk(pcc)
	}
	require.False(t, r.IsReady(), "second chunkset has received nothing yet")

	for _, pcc := range built.PCCs[1] {
		r.AddChunk(pcc)
	}
	require.True(t, r.IsReady())
}
