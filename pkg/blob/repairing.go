package blob

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/shardvault/pcc/pkg/chunk"
	"github.com/shardvault/pcc/pkg/chunkset"
	"github.com/shardvault/pcc/pkg/merkle"
	"github.com/shardvault/pcc/pkg/pccerrors"
)

// Repairing accumulates PCCs across every chunkset of a blob until all
// of them are ready, then reconstructs the original bytes. It is
// constructed from a blob's Metadata alone; it never needs the
// individual chunkset roots ahead of time, since the first valid PCC
// seen for a given chunkset authenticates that chunkset's root via its
// blob-level proof (the same check every subsequent PCC for that
// chunkset must also pass).
type Repairing struct {
	metadata Metadata

	mu        []sync.Mutex
	chunksets []*chunkset.Repairing
}

// NewRepairing creates a Repairing blob accumulator from a previously
// persisted Metadata record.
func NewRepairing(metadata Metadata) *Repairing {
	n := int(metadata.NChunksets)
	return &Repairing{
		metadata:  metadata,
		mu:        make([]sync.Mutex, n),
		chunksets: make([]*chunkset.Repairing, n),
	}
}

// AddChunk verifies pcc's two inclusion proofs against the blob's known
// root (the blob proof must be for the leaf at pcc.ChunksetID) and, if
// valid, routes it to the accumulator for its chunkset,
// creating one on first contact. Access to a given chunkset's
// accumulator is serialized by its own mutex; distinct chunksets may be
// fed concurrently from multiple producers without contention.
func (r *Repairing) AddChunk(pcc chunk.PCC) chunkset.AddOutcome {
	if pcc.ChunksetID >= r.metadata.NChunksets || pcc.BlobProof.LeafIndex != pcc.ChunksetID {
		return chunkset.RejectedInvalidProof
	}

	chunksetRoot, err := merkle.ComputeRoot(pcc.Chunk.Digest(), pcc.ChunksetProof)
	if err != nil {
		return chunkset.RejectedInvalidProof
	}
	if !merkle.Verify(chunksetRoot, pcc.BlobProof, r.metadata.BlobRoot) {
		return chunkset.RejectedInvalidProof
	}
	if pcc.ChunkIndex >= chunk.CodedChunksPerChunkset {
		return chunkset.RejectedInvalidMetadata
	}

	id := pcc.ChunksetID
	r.mu[id].Lock()
	defer r.mu[id].Unlock()

	if r.chunksets[id] == nil {
		r.chunksets[id] = chunkset.NewRepairing(chunksetRoot)
	}
	return r.chunksets[id].AddChunk(pcc.Chunk, pcc.ChunksetProof)
}

// IsReady reports whether every chunkset has reached readiness.
func (r *Repairing) IsReady() bool {
	for i := range r.chunksets {
		if r.chunksets[i] == nil || !r.chunksets[i].Ready() {
			return false
		}
	}
	return true
}

// Repair reconstructs the original blob bytes, running each chunkset's
// recovery in parallel bounded by maxConcurrency (0 means unbounded).
// It fails with NotReady if any chunkset has not yet reached readiness.
func (r *Repairing) Repair(ctx context.Context, maxConcurrency int) ([]byte, error) {
	n := len(r.chunksets)
	blocks := make([][]byte, n)

	g, gctx := errgroup.WithContext(ctx)
	if maxConcurrency > 0 {
		g.SetLimit(maxConcurrency)
	}
	for id := 0; id < n; id++ {
		id := id
		if r.chunksets[id] == nil {
			return nil, pccerrors.NotReady("chunkset %d has received no valid chunks", id)
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			block, err := r.chunksets[id].Repair()
			if err != nil {
				return err
			}
			blocks[id] = block
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]byte, 0, int(r.metadata.NChunksets)*chunk.ChunksetSizeBytes)
	for _, b := range blocks {
		out = append(out, b...)
	}
	return out[:r.metadata.OriginalLen], nil
}
