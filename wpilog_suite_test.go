// Copyright (c) 2025 Will Toth

package wpilog_test

import (
	"encoding/binary"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// Test Launcher
func TestWpilog(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "wpilog-go suite")
}

///////////////////////////////////////////////////////////////////////////////
// Byte-level builders for synthetic WPILOG streams. Every test record uses
// a fixed descriptor byte selecting 4-byte entry ids, 4-byte sizes and
// 8-byte timestamps, which keeps the builders simple without exercising
// every width combination (frame_internal_test.go decodes the all-1-byte
// descriptor directly).

const testDescriptor = 0x7F

func leU32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func leU64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

func lenPrefixed(s string) []byte {
	out := leU32(uint32(len(s)))
	return append(out, []byte(s)...)
}

func frameRecord(entry uint32, ts uint64, payload []byte) []byte {
	out := []byte{testDescriptor}
	out = append(out, leU32(entry)...)
	out = append(out, leU32(uint32(len(payload)))...)
	out = append(out, leU64(ts)...)
	out = append(out, payload...)
	return out
}

func startRecord(ts uint64, entry uint32, name, typeStr, metadata string) []byte {
	payload := []byte{0}
	payload = append(payload, leU32(entry)...)
	payload = append(payload, lenPrefixed(name)...)
	payload = append(payload, lenPrefixed(typeStr)...)
	payload = append(payload, lenPrefixed(metadata)...)
	return frameRecord(0, ts, payload)
}

func finishRecord(ts uint64, entry uint32) []byte {
	payload := []byte{1, 0, 0, 0, 0}
	binary.LittleEndian.PutUint32(payload[1:], entry)
	return frameRecord(0, ts, payload)
}

func wpilogHeader() []byte {
	h := []byte("WPILOG")
	h = append(h, 0x00, 0x01) // version 0x0100, little-endian
	h = append(h, leU32(0)...)
	return h
}

// buildLog concatenates a header with any number of pre-built records.
func buildLog(records ...[]byte) []byte {
	out := wpilogHeader()
	for _, r := range records {
		out = append(out, r...)
	}
	return out
}
