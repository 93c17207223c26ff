// Package chunk defines the proof-carrying chunk (PCC): a coded
// symbol bundled with the two Merkle inclusion proofs that
// authenticate it against a blob root, plus its binary wire format.
package chunk

import (
	"encoding/binary"

	"github.com/shardvault/pcc/pkg/field"
	"github.com/shardvault/pcc/pkg/hashing"
	"github.com/shardvault/pcc/pkg/merkle"
	"github.com/shardvault/pcc/pkg/pccerrors"
)

const (
	// ChunksPerChunkset is the number of source symbols ("source
	// chunks") a chunkset is split into before coding.
	ChunksPerChunkset = 10
	// CodedChunksPerChunkset is the number of coded chunks produced
	// per chunkset (code rate ChunksPerChunkset/CodedChunksPerChunkset).
	CodedChunksPerChunkset = 16
	// ChunksetSizeBytes is the number of raw bytes a chunkset covers
	// before coding.
	ChunksetSizeBytes = 10 * 1024 * 1024
	// ChunkSizeBytes is the size in bytes of one source (or coded)
	// chunk's payload.
	ChunkSizeBytes = ChunksetSizeBytes / ChunksPerChunkset

	coefficientsSizeBytes = ChunksPerChunkset * field.ElementSizeBytes
)

// Chunk is one coded symbol: a coefficient vector over the source
// chunks of its chunkset, and the resulting payload.
type Chunk struct {
	Coefficients []field.Elem // length ChunksPerChunkset
	Payload      []byte       // length ChunkSizeBytes
}

// Digest returns hash(coefficients || payload), in the canonical
// little-endian coefficient encoding.
func (c Chunk) Digest() hashing.Digest {
	buf := make([]byte, 0, coefficientsSizeBytes+len(c.Payload))
	buf = appendCoefficients(buf, c.Coefficients)
	buf = append(buf, c.Payload...)
	return hashing.Hash(buf)
}

func appendCoefficients(buf []byte, coeffs []field.Elem) []byte {
	var tmp [field.ElementSizeBytes]byte
	for _, c := range coeffs {
		binary.LittleEndian.PutUint64(tmp[:], c.Uint64())
		buf = append(buf, tmp[:]...)
	}
	return buf
}

func parseCoefficients(b []byte) ([]field.Elem, error) {
	if len(b) != coefficientsSizeBytes {
		return nil, pccerrors.InvalidChunkMetadata("coefficient vector must be %d bytes, got %d", coefficientsSizeBytes, len(b))
	}
	out := make([]field.Elem, ChunksPerChunkset)
	for i := range out {
		v := binary.LittleEndian.Uint64(b[i*field.ElementSizeBytes:])
		out[i] = field.FromUint64(v)
	}
	return out, nil
}

// PCC is a proof-carrying chunk: a coded chunk plus the two inclusion
// proofs that authenticate it against a blob root.
type PCC struct {
	ChunksetID    uint32
	ChunkIndex    uint8
	Chunk         Chunk
	ChunksetProof merkle.InclusionProof
	BlobProof     merkle.InclusionProof
}

// Marshal serializes a PCC as:
// chunkset_id: u32 (LE) || chunk_index: u8 || coefficients || payload
// || chunkset_proof || blob_proof.
func (p PCC) Marshal() ([]byte, error) {
	if len(p.Chunk.Coefficients) != ChunksPerChunkset {
		return nil, pccerrors.InvalidChunkMetadata("expected %d coefficients, got %d", ChunksPerChunkset, len(p.Chunk.Coefficients))
	}
	if len(p.Chunk.Payload) != ChunkSizeBytes {
		return nil, pccerrors.InvalidChunkMetadata("expected payload of %d bytes, got %d", ChunkSizeBytes, len(p.Chunk.Payload))
	}
	if p.ChunkIndex >= CodedChunksPerChunkset {
		return nil, pccerrors.InvalidChunkMetadata("chunk index %d out of range [0,%d)", p.ChunkIndex, CodedChunksPerChunkset)
	}

	out := make([]byte, 0, 5+coefficientsSizeBytes+ChunkSizeBytes+
		p.ChunksetProof.MarshaledSize()+p.BlobProof.MarshaledSize())

	var idBuf [4]byte
	binary.LittleEndian.PutUint32(idBuf[:], p.ChunksetID)
	out = append(out, idBuf[:]...)
	out = append(out, byte(p.ChunkIndex))
	out = appendCoefficients(out, p.Chunk.Coefficients)
	out = append(out, p.Chunk.Payload...)
	out = append(out, p.ChunksetProof.Marshal()...)
	out = append(out, p.BlobProof.Marshal()...)
	return out, nil
}

// Unmarshal parses a PCC previously produced by Marshal. It returns
// MalformedChunk on any length mismatch or field-decoding failure.
func Unmarshal(b []byte) (PCC, error) {
	const headerSize = 4 + 1
	need := headerSize + coefficientsSizeBytes + ChunkSizeBytes
	if len(b) < need {
		return PCC{}, pccerrors.MalformedChunk("PCC truncated before payload: need at least %d bytes, got %d", need, len(b))
	}

	chunksetID := binary.LittleEndian.Uint32(b[0:4])
	chunkIndex := b[4]
	off := headerSize

	coeffs, err := parseCoefficients(b[off : off+coefficientsSizeBytes])
	if err != nil {
		return PCC{}, pccerrors.MalformedChunk("malformed coefficients: %v", err)
	}
	off += coefficientsSizeBytes

	payload := append([]byte(nil), b[off:off+ChunkSizeBytes]...)
	off += ChunkSizeBytes

	chunksetProof, n, err := merkle.UnmarshalInclusionProof(b[off:])
	if err != nil {
		return PCC{}, err
	}
	off += n

	blobProof, n, err := merkle.UnmarshalInclusionProof(b[off:])
	if err != nil {
		return PCC{}, err
	}
	off += n

	if off != len(b) {
		return PCC{}, pccerrors.MalformedChunk("PCC has %d trailing bytes after parsing", len(b)-off)
	}

	return PCC{
		ChunksetID:    chunksetID,
		ChunkIndex:    chunkIndex,
		Chunk:         Chunk{Coefficients: coeffs, Payload: payload},
		ChunksetProof: chunksetProof,
		BlobProof:     blobProof,
	}, nil
}

// Verify reports whether pcc's two inclusion proofs, taken together,
// authenticate it against blobRoot: the chunkset proof validates
// pcc.Chunk's digest against an implicitly-recomputed chunkset root,
// and the blob proof validates that chunkset root (treated as a leaf)
// against blobRoot.
func Verify(pcc PCC, blobRoot hashing.Digest) bool {
	chunksetRoot, err := merkle.ComputeRoot(pcc.Chunk.Digest(), pcc.ChunksetProof)
	if err != nil {
		return false
	}
	gotBlobRoot, err := merkle.ComputeRoot(chunksetRoot, pcc.BlobProof)
	if err != nil {
		return false
	}
	return gotBlobRoot == blobRoot
}
