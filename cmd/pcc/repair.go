package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"google.golang.org/grpc/codes"

	"github.com/shardvault/pcc/pkg/blob"
	"github.com/shardvault/pcc/pkg/chunk"
	"github.com/shardvault/pcc/pkg/pccerrors"
)

func runRepair(args []string) error {
	fs := flag.NewFlagSet("repair", flag.ExitOnError)
	dir := fs.String("c", "", "directory of possibly-partial PCCs (required)")
	outDir := fs.String("o", ".", "output directory")
	concurrency := fs.Int("j", runtime.GOMAXPROCS(0), "max concurrent chunksets")
	metricsAddr := fs.String("metrics-addr", "", "if set, serve Prometheus metrics on this address while running")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dir == "" {
		return fmt.Errorf("repair: -c is required")
	}
	serveMetrics(*metricsAddr)

	metadataBytes, err := os.ReadFile(metadataPath(*dir))
	if err != nil {
		return fmt.Errorf("repair: reading metadata: %w", err)
	}
	metadata, err := blob.UnmarshalMetadata(metadataBytes)
	if err != nil {
		return fmt.Errorf("repair: parsing metadata: %w", err)
	}

	repairing := blob.NewRepairing(metadata)
	for id := uint32(0); id < metadata.NChunksets; id++ {
		for ci := uint8(0); ci < chunk.CodedChunksPerChunkset; ci++ {
			path := sharePath(*dir, id, ci)
			raw, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			pcc, err := chunk.Unmarshal(raw)
			if err != nil {
				logger.Warn("skipping malformed share", "path", path, "error", err)
				continue
			}
			outcome := repairing.AddChunk(pcc)
			logger.Debug("chunk processed", "path", path, "outcome", outcome)
		}
	}

	if !repairing.IsReady() {
		return fmt.Errorf("repair: one or more chunksets did not reach readiness")
	}

	repaired, err := repairing.Repair(context.Background(), *concurrency)
	if err != nil {
		if pccerrors.Is(err, codes.FailedPrecondition) {
			return fmt.Errorf("repair: not enough valid shares to recover every chunkset: %w", err)
		}
		return fmt.Errorf("repair: %w", err)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("repair: creating %s: %w", *outDir, err)
	}
	outPath := filepath.Join(*outDir, repairedFileName)
	if err := os.WriteFile(outPath, repaired, 0o644); err != nil {
		return fmt.Errorf("repair: writing %s: %w", outPath, err)
	}

	logger.Info("repair complete", "dir", *dir, "bytes", len(repaired), "out", outPath)
	return nil
}
