// Copyright (c) 2025 Will Toth

// Package zstdio provides transparent zstd-decompression for file
// inputs, trimmed to a reader-only variant since this module has no
// WPILOG-writing feature to support a writer side.
package zstdio

import (
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// OpenReader returns an io.Reader for filename, or os.Stdin if
// filename is "-". If filename ends in ".zst" or ".zstd", or useZstd
// is true, the returned reader transparently zstd-decompresses the
// stream. The returned closer is nil for uncompressed stdin; otherwise
// the caller must call it.
func OpenReader(filename string, useZstd bool) (io.Reader, io.Closer, error) {
	var reader io.Reader
	var closer io.Closer

	if filename != "-" {
		file, err := os.Open(filename)
		if err != nil {
			return nil, nil, err
		}
		reader, closer = file, file
	} else {
		reader, closer = os.Stdin, nil
	}

	if !useZstd && !strings.HasSuffix(filename, ".zst") && !strings.HasSuffix(filename, ".zstd") {
		return reader, closer, nil
	}

	zr, err := zstd.NewReader(reader)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, nil, err
	}
	return zr.IOReadCloser(), zr.IOReadCloser(), nil
}

// ReadAll reads filename fully into memory, zstd-decompressing it
// first when the name (or forceZstd) indicates a compressed stream.
// This is the byte-range entry point the parser core consumes; file
// I/O itself stays a thin collaborator around that core.
func ReadAll(filename string, forceZstd bool) ([]byte, error) {
	r, closer, err := OpenReader(filename, forceZstd)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		defer closer.Close()
	}
	return io.ReadAll(r)
}
