package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/shardvault/pcc/pkg/blob"
	"github.com/shardvault/pcc/pkg/chunk"
)

func runBreak(args []string) error {
	fs := flag.NewFlagSet("break", flag.ExitOnError)
	blobPath := fs.String("b", "", "path to the input blob (required)")
	outDir := fs.String("o", ".", "output directory")
	seed := fs.String("seed", "pcc-default-seed", "global RLNC coefficient seed")
	concurrency := fs.Int("j", runtime.GOMAXPROCS(0), "max concurrent chunksets")
	metricsAddr := fs.String("metrics-addr", "", "if set, serve Prometheus metrics on this address while running")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *blobPath == "" {
		return fmt.Errorf("break: -b is required")
	}
	serveMetrics(*metricsAddr)

	raw, err := os.ReadFile(*blobPath)
	if err != nil {
		return fmt.Errorf("break: reading %s: %w", *blobPath, err)
	}

	built, err := blob.Build(context.Background(), raw, []byte(*seed), *concurrency)
	if err != nil {
		return fmt.Errorf("break: %w", err)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("break: creating %s: %w", *outDir, err)
	}
	if err := os.WriteFile(metadataPath(*outDir), built.Metadata.Marshal(), 0o644); err != nil {
		return fmt.Errorf("break: writing metadata: %w", err)
	}

	for id, row := range built.PCCs {
		dir := chunksetDir(*outDir, uint32(id))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("break: creating %s: %w", dir, err)
		}
		for ci, pcc := range row {
			encoded, err := pcc.Marshal()
			if err != nil {
				return fmt.Errorf("break: marshaling chunkset %d chunk %d: %w", id, ci, err)
			}
			path := sharePath(*outDir, uint32(id), uint8(ci))
			if err := os.WriteFile(path, encoded, 0o644); err != nil {
				return fmt.Errorf("break: writing %s: %w", path, err)
			}
		}
	}

	logger.Info("break complete",
		"blob", *blobPath,
		"bytes", len(raw),
		"chunksets", built.Metadata.NChunksets,
		"pccs_per_chunkset", chunk.CodedChunksPerChunkset,
		"out", *outDir,
	)
	return nil
}
