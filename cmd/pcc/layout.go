package main

import (
	"fmt"
	"path/filepath"
)

const metadataFileName = "metadata.commit"
const repairedFileName = "repaired.data"

func metadataPath(dir string) string {
	return filepath.Join(dir, metadataFileName)
}

func chunksetDir(dir string, id uint32) string {
	return filepath.Join(dir, fmt.Sprintf("chunkset.%d", id))
}

func sharePath(dir string, id uint32, chunkIndex uint8) string {
	return filepath.Join(chunksetDir(dir, id), fmt.Sprintf("share%02d.data", chunkIndex))
}
