// Command pcc drives the break/verify/repair lifecycle of a blob
// stored as proof-carrying chunks: it is a thin external collaborator
// over the core packages (pkg/blob, pkg/chunk, pkg/chunkset) and
// contains no coding, hashing, or proof logic of its own.
package main

import (
	"fmt"
	"log/slog"
	"os"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "break":
		err = runBreak(os.Args[2:])
	case "verify":
		err = runVerify(os.Args[2:])
	case "repair":
		err = runRepair(os.Args[2:])
	case "-h", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  pcc break -b <file> [-o <dir>] [-seed <string>] [-j <n>] [-metrics-addr <addr>]
  pcc verify <dir>
  pcc repair -c <dir> [-o <dir>] [-j <n>] [-metrics-addr <addr>]`)
}
