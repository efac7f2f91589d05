// Copyright (c) 2025 Will Toth

// Package wpilog converts binary WPILOG robotics time-series logs into
// a columnar in-memory DataFrame. See the package's design notes for
// the framed record decoder, the packed-struct layout/deserialization
// subsystem, and the two-pass schema-discovery/accumulation driver
// that make up the core.
package wpilog

import (
	"github.com/willtoth/wpilog-go/internal/zstdio"
)

// Result is the outcome of a full conversion: the schema discovered in
// Pass 1 and the accumulated DataFrame from Pass 2.
type Result struct {
	Schema *Schema
	Frame  *DataFrame
}

// Parse runs the full two-pass conversion over data and returns the
// resulting DataFrame alongside the schema Pass 1 discovered.
func Parse(data []byte, opts ...Option) (*Result, error) {
	o := resolveOptions(opts)
	schema, frame, err := convert(data, o)
	if err != nil {
		return nil, err
	}
	return &Result{Schema: schema, Frame: frame}, nil
}

// InferSchema runs Pass 1 only, skipping Pass 2 accumulation entirely.
func InferSchema(data []byte, opts ...Option) (*Schema, error) {
	o := resolveOptions(opts)
	return inferSchema(data, o)
}

// ParseFile reads path (transparently zstd-decompressing when the name
// ends in .zst/.zstd) and runs Parse over its contents. It reads the
// file into memory rather than memory-mapping it: this module's
// dependency surface carries no mmap library, and file I/O here is a
// thin collaborator around the in-memory parser core (see DESIGN.md).
func ParseFile(path string, opts ...Option) (*Result, error) {
	data, err := readFileMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, opts...)
}

// InferSchemaFile is ParseFile's Pass-1-only counterpart.
func InferSchemaFile(path string, opts ...Option) (*Schema, error) {
	data, err := readFileMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	return InferSchema(data, opts...)
}

func readFileMaybeCompressed(path string) ([]byte, error) {
	return zstdio.ReadAll(path, false)
}
