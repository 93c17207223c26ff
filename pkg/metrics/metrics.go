// Package metrics registers the Prometheus collectors exported by the
// chunkset and blob build/repair paths.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ChunksAccepted counts coded chunks absorbed by a RepairingChunkset,
	// including the one that brings it to readiness.
	ChunksAccepted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pcc_chunks_accepted_total",
		Help: "Total number of coded chunks accepted into a repairing chunkset.",
	})

	// ChunksRejected counts chunks dropped during repair, labeled by reason.
	ChunksRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pcc_chunks_rejected_total",
		Help: "Total number of coded chunks rejected during repair, by reason.",
	}, []string{"reason"})

	// ChunksetRepairDuration observes the wall-clock time spent
	// Gaussian-eliminating a single chunkset's accumulated matrix.
	ChunksetRepairDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pcc_chunkset_repair_duration_seconds",
		Help:    "Time spent recovering one chunkset's source chunks.",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(ChunksAccepted, ChunksRejected, ChunksetRepairDuration)
}

// Reason label values for ChunksRejected.
const (
	ReasonInvalidProof    = "invalid_proof"
	ReasonInvalidMetadata = "invalid_metadata"
	ReasonAlreadyReady    = "already_ready"
	ReasonRedundant       = "redundant"
)
