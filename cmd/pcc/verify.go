package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/shardvault/pcc/pkg/blob"
	"github.com/shardvault/pcc/pkg/chunk"
)

func runVerify(args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("verify: expected exactly one directory argument")
	}
	dir := fs.Arg(0)

	metadataBytes, err := os.ReadFile(metadataPath(dir))
	if err != nil {
		return fmt.Errorf("verify: reading metadata: %w", err)
	}
	metadata, err := blob.UnmarshalMetadata(metadataBytes)
	if err != nil {
		return fmt.Errorf("verify: parsing metadata: %w", err)
	}

	allValid := true
	checked := 0
	for id := uint32(0); id < metadata.NChunksets; id++ {
		for ci := uint8(0); ci < chunk.CodedChunksPerChunkset; ci++ {
			path := sharePath(dir, id, ci)
			raw, err := os.ReadFile(path)
			if err != nil {
				logger.Warn("missing share", "path", path, "error", err)
				allValid = false
				continue
			}
			pcc, err := chunk.Unmarshal(raw)
			if err != nil {
				logger.Warn("malformed share", "path", path, "error", err)
				allValid = false
				continue
			}
			if !chunk.Verify(pcc, metadata.BlobRoot) {
				logger.Warn("proof verification failed", "path", path)
				allValid = false
				continue
			}
			checked++
		}
	}

	logger.Info("verify complete", "dir", dir, "valid", checked, "chunksets", metadata.NChunksets)
	if !allValid {
		return fmt.Errorf("verify: one or more PCCs failed verification")
	}
	return nil
}
