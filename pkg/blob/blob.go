// Package blob implements the top-level build and repair pipeline:
// zero-padding and partitioning a blob into chunksets, the blob-level
// Merkle commitment over chunkset roots, and parallel orchestration of
// chunkset build/repair via errgroup.
package blob

import (
	"context"
	"encoding/binary"

	"golang.org/x/sync/errgroup"

	"github.com/shardvault/pcc/pkg/chunk"
	"github.com/shardvault/pcc/pkg/chunkset"
	"github.com/shardvault/pcc/pkg/hashing"
	"github.com/shardvault/pcc/pkg/merkle"
	"github.com/shardvault/pcc/pkg/pccerrors"
)

// currentMetadataVersion records the empty-blob policy resolution: an
// empty blob is a degenerate single all-zero chunkset, not an
// EmptyInput error. Future format changes bump this.
const currentMetadataVersion = 1

const metadataSizeBytes = hashing.DigestSize + 8 + 4 + 1

// Metadata is the blob's persisted source of truth.
type Metadata struct {
	BlobRoot    hashing.Digest
	OriginalLen uint64
	NChunksets  uint32
	Version     uint8
}

// Marshal serializes Metadata as:
// blob_root: 32 bytes || original_len: u64 (LE) || n_chunksets: u32 (LE) || version: u8.
func (m Metadata) Marshal() []byte {
	out := make([]byte, metadataSizeBytes)
	copy(out[0:hashing.DigestSize], m.BlobRoot[:])
	off := hashing.DigestSize
	binary.LittleEndian.PutUint64(out[off:], m.OriginalLen)
	off += 8
	binary.LittleEndian.PutUint32(out[off:], m.NChunksets)
	off += 4
	out[off] = m.Version
	return out
}

// UnmarshalMetadata parses a Metadata record previously produced by Marshal.
func UnmarshalMetadata(b []byte) (Metadata, error) {
	if len(b) != metadataSizeBytes {
		return Metadata{}, pccerrors.MalformedChunk("metadata record must be %d bytes, got %d", metadataSizeBytes, len(b))
	}
	var m Metadata
	copy(m.BlobRoot[:], b[0:hashing.DigestSize])
	off := hashing.DigestSize
	m.OriginalLen = binary.LittleEndian.Uint64(b[off:])
	off += 8
	m.NChunksets = binary.LittleEndian.Uint32(b[off:])
	off += 4
	m.Version = b[off]
	return m, nil
}

// Built is the full output of building a blob: its metadata and every
// PCC, grouped by chunkset.
type Built struct {
	Metadata Metadata
	// PCCs[chunksetID][chunkIndex] is the corresponding PCC.
	PCCs [][chunk.CodedChunksPerChunkset]chunk.PCC
}

func chunksetCount(originalLen int) int {
	if originalLen == 0 {
		return 1
	}
	n := originalLen / chunk.ChunksetSizeBytes
	if originalLen%chunk.ChunksetSizeBytes != 0 {
		n++
	}
	return n
}

func paddedCopy(raw []byte, totalLen int) []byte {
	out := make([]byte, totalLen)
	copy(out, raw)
	return out
}

// Build zero-pads raw to a multiple of chunk.ChunksetSizeBytes (an
// empty input is treated as one all-zero chunkset, per the resolved
// empty-blob policy), partitions it into chunksets, builds each one in
// parallel bounded by maxConcurrency (0 means unbounded), and combines
// their roots into the blob-level Merkle tree.
func Build(ctx context.Context, raw []byte, globalSeed []byte, maxConcurrency int) (Built, error) {
	nChunksets := chunksetCount(len(raw))
	padded := paddedCopy(raw, nChunksets*chunk.ChunksetSizeBytes)

	builtChunksets := make([]chunkset.Built, nChunksets)

	g, gctx := errgroup.WithContext(ctx)
	if maxConcurrency > 0 {
		g.SetLimit(maxConcurrency)
	}
	for id := 0; id < nChunksets; id++ {
		id := id
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := id * chunk.ChunksetSizeBytes
			end := start + chunk.ChunksetSizeBytes
			built, err := chunkset.Build(padded[start:end], globalSeed, uint32(id))
			if err != nil {
				return err
			}
			builtChunksets[id] = built
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Built{}, err
	}

	chunksetRoots := make([]hashing.Digest, nChunksets)
	for i, bc := range builtChunksets {
		chunksetRoots[i] = bc.Root
	}
	blobTree, err := merkle.New(chunksetRoots)
	if err != nil {
		return Built{}, err
	}
	blobRoot := blobTree.Root()

	pccs := make([][chunk.CodedChunksPerChunkset]chunk.PCC, nChunksets)
	for id, bc := range builtChunksets {
		blobProof, err := blobTree.Prove(id)
		if err != nil {
			return Built{}, err
		}
		var row [chunk.CodedChunksPerChunkset]chunk.PCC
		for ci := 0; ci < chunk.CodedChunksPerChunkset; ci++ {
			row[ci] = chunk.PCC{
				ChunksetID:    uint32(id),
				ChunkIndex:    uint8(ci),
				Chunk:         bc.Chunks[ci],
				ChunksetProof: bc.Proofs[ci],
				BlobProof:     blobProof,
			}
		}
		pccs[id] = row
	}

	return Built{
		Metadata: Metadata{
			BlobRoot:    blobRoot,
			OriginalLen: uint64(len(raw)),
			NChunksets:  uint32(nChunksets),
			Version:     currentMetadataVersion,
		},
		PCCs: pccs,
	}, nil
}
