// Package chunkset implements the RLNC encode of one CHUNKSET_SIZE
// block into CodedChunksPerChunkset coded chunks, the Merkle
// commitment over them, and the rank-gated recovery of the original
// block from a stream of accepted coded chunks.
package chunkset

import (
	"time"

	"github.com/shardvault/pcc/pkg/chunk"
	"github.com/shardvault/pcc/pkg/hashing"
	"github.com/shardvault/pcc/pkg/merkle"
	"github.com/shardvault/pcc/pkg/metrics"
	"github.com/shardvault/pcc/pkg/pccerrors"
	"github.com/shardvault/pcc/pkg/rlnc"
)

// Built is the result of building one chunkset: its coded chunks, the
// chunkset-level Merkle tree over their digests, and the root.
type Built struct {
	Root   hashing.Digest
	Chunks [chunk.CodedChunksPerChunkset]chunk.Chunk
	Proofs [chunk.CodedChunksPerChunkset]merkle.InclusionProof
}

// Build encodes exactly ChunksetSizeBytes of raw input into
// CodedChunksPerChunkset coded chunks and commits to them with a
// Merkle tree. globalSeed and chunksetID together determine the
// deterministic RLNC coefficient sequence (see rlnc.DeriveSeed).
func Build(raw []byte, globalSeed []byte, chunksetID uint32) (Built, error) {
	if len(raw) != chunk.ChunksetSizeBytes {
		return Built{}, pccerrors.InvalidChunksetSize("chunkset build requires exactly %d bytes, got %d", chunk.ChunksetSizeBytes, len(raw))
	}

	sources := make([][]uint64, chunk.ChunksPerChunkset)
	for i := range sources {
		sources[i] = rlnc.PackPayload(raw[i*chunk.ChunkSizeBytes : (i+1)*chunk.ChunkSizeBytes])
	}

	seed := rlnc.DeriveSeed(globalSeed, chunksetID)
	gen := rlnc.NewCoefficientGenerator(seed)

	var built Built
	leaves := make([]hashing.Digest, chunk.CodedChunksPerChunkset)
	for i := 0; i < chunk.CodedChunksPerChunkset; i++ {
		coeffs := gen.Next(chunk.ChunksPerChunkset)
		codedSymbols := rlnc.Encode(coeffs, sources)
		c := chunk.Chunk{
			Coefficients: coeffs,
			Payload:      rlnc.UnpackPayload(codedSymbols),
		}
		built.Chunks[i] = c
		leaves[i] = c.Digest()
	}

	tree, err := merkle.New(leaves)
	if err != nil {
		return Built{}, err
	}
	built.Root = tree.Root()
	for i := range built.Proofs {
		proof, err := tree.Prove(i)
		if err != nil {
			return Built{}, err
		}
		built.Proofs[i] = proof
	}
	return built, nil
}

// AddOutcome describes the result of submitting one chunk to a
// Repairing chunkset.
type AddOutcome int

const (
	// Accepted means the chunk's vector was linearly independent of
	// everything seen so far and has been absorbed.
	Accepted AddOutcome = iota
	// Redundant means the chunk validated but its coefficient vector
	// was linearly dependent on vectors already absorbed; it was
	// dropped without affecting decoder state.
	Redundant
	// Ready means this chunk was the one that brought the chunkset's
	// rank to ChunksPerChunkset.
	Ready
	// RejectedInvalidProof means the chunkset proof did not validate
	// the chunk's digest against the known chunkset root.
	RejectedInvalidProof
	// RejectedInvalidMetadata means the chunk's index, payload length
	// or coefficient length was malformed.
	RejectedInvalidMetadata
	// RejectedAlreadyReady means the chunkset had already reached
	// readiness when this chunk arrived.
	RejectedAlreadyReady
)

func (o AddOutcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Redundant:
		return "redundant"
	case Ready:
		return "ready"
	case RejectedInvalidProof:
		return "rejected_invalid_proof"
	case RejectedInvalidMetadata:
		return "rejected_invalid_metadata"
	case RejectedAlreadyReady:
		return "rejected_already_ready"
	default:
		return "unknown"
	}
}

// Repairing accumulates PCCs for a single chunkset until it has
// collected enough linearly independent coded chunks to invert the
// coding and recover the ChunksetSizeBytes original block.
type Repairing struct {
	chunksetRoot hashing.Digest
	decoder      *rlnc.Decoder
	ready        bool
}

// NewRepairing creates a Repairing chunkset accumulator for a chunkset
// whose Merkle root is already known (for example, recomputed from a
// PCC whose blob-level proof has been checked against the blob root).
func NewRepairing(chunksetRoot hashing.Digest) *Repairing {
	return &Repairing{
		chunksetRoot: chunksetRoot,
		decoder:      rlnc.NewDecoder(chunk.ChunksPerChunkset, rlnc.SymbolsPerChunk(chunk.ChunkSizeBytes)),
	}
}

// Ready reports whether this chunkset has reached rank
// ChunksPerChunkset and can be repaired.
func (r *Repairing) Ready() bool {
	return r.ready
}

// AddChunk validates c's chunkset inclusion proof against the known
// chunkset root, then feeds it to the RLNC decoder. Invalid or
// malformed input never returns a Go error: it is reported through the
// returned AddOutcome and otherwise ignored, so that a caller streaming
// an adversarial or partially-corrupt PCC sequence never has to treat a
// single bad chunk as fatal.
func (r *Repairing) AddChunk(c chunk.Chunk, chunksetProof merkle.InclusionProof) AddOutcome {
	if r.ready {
		metrics.ChunksRejected.WithLabelValues(metrics.ReasonAlreadyReady).Inc()
		return RejectedAlreadyReady
	}
	if len(c.Coefficients) != chunk.ChunksPerChunkset || len(c.Payload) != chunk.ChunkSizeBytes {
		metrics.ChunksRejected.WithLabelValues(metrics.ReasonInvalidMetadata).Inc()
		return RejectedInvalidMetadata
	}
	if !merkle.Verify(c.Digest(), chunksetProof, r.chunksetRoot) {
		metrics.ChunksRejected.WithLabelValues(metrics.ReasonInvalidProof).Inc()
		return RejectedInvalidProof
	}

	symbols := rlnc.PackPayload(c.Payload)
	if !r.decoder.Add(c.Coefficients, symbols) {
		metrics.ChunksRejected.WithLabelValues(metrics.ReasonRedundant).Inc()
		return Redundant
	}
	metrics.ChunksAccepted.Inc()
	if r.decoder.Ready() {
		r.ready = true
		return Ready
	}
	return Accepted
}

// Repair returns the ChunksetSizeBytes original block, or NotReady if
// the chunkset has not yet reached rank ChunksPerChunkset.
func (r *Repairing) Repair() ([]byte, error) {
	start := time.Now()
	defer func() { metrics.ChunksetRepairDuration.Observe(time.Since(start).Seconds()) }()

	sources, ok := r.decoder.Recover()
	if !ok {
		return nil, pccerrors.NotReady("chunkset has rank %d, need %d", r.decoder.Rank(), chunk.ChunksPerChunkset)
	}

	out := make([]byte, 0, chunk.ChunksetSizeBytes)
	for _, s := range sources {
		out = append(out, rlnc.UnpackPayload(s)...)
	}
	return out, nil
}
