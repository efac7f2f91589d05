// Copyright (c) 2025 Will Toth

package wpilog

import "encoding/binary"

// fileMagic is the fixed 6-byte magic every WPILOG file begins with.
const fileMagic = "WPILOG"

// minVersion is the lowest accepted file-format version, 1.0.
const minVersion = 0x0100

// Header is the fixed-format WPILOG file header: magic, version, and an
// extra-header byte range whose contents this package does not interpret.
type Header struct {
	Version     uint16
	ExtraHeader []byte
}

// parseHeader validates and decodes the file header at the start of data,
// returning the header and the byte offset where the record stream begins.
func parseHeader(data []byte) (Header, int, error) {
	if len(data) < len(fileMagic)+2+4 {
		return Header{}, 0, invalidFormatf("header shorter than expected")
	}
	if string(data[:len(fileMagic)]) != fileMagic {
		return Header{}, 0, invalidFormatf("bad magic")
	}
	off := len(fileMagic)

	version := binary.LittleEndian.Uint16(data[off : off+2])
	off += 2
	if version < minVersion {
		return Header{}, 0, invalidFormatf("version 0x%04x below minimum 0x%04x", version, minVersion)
	}

	extraLen := binary.LittleEndian.Uint32(data[off : off+4])
	off += 4
	if uint64(off)+uint64(extraLen) > uint64(len(data)) {
		return Header{}, 0, invalidFormatf("extra header length %d exceeds input", extraLen)
	}
	extra := data[off : off+int(extraLen)]
	off += int(extraLen)

	return Header{Version: version, ExtraHeader: extra}, off, nil
}

// Record is one framed WPILOG record: the entry it belongs to, its
// microsecond timestamp, and its raw payload bytes (a slice into the
// original input — callers must not mutate it and must not retain it
// past the input's lifetime).
type Record struct {
	EntryID   uint32
	Timestamp uint64
	Payload   []byte
}

// FrameScanner iterates WPILOG records from a byte range. It is
// single-pass and not restartable; callers needing a second pass must
// construct a fresh scanner over the same data.
type FrameScanner struct {
	data   []byte
	offset int
	header Header
	rec    Record
}

// NewFrameScanner validates the file header and returns a scanner
// positioned at the start of the record stream.
func NewFrameScanner(data []byte) (*FrameScanner, error) {
	header, off, err := parseHeader(data)
	if err != nil {
		return nil, err
	}
	return &FrameScanner{data: data, offset: off, header: header}, nil
}

// Header returns the parsed file header.
func (s *FrameScanner) Header() Header { return s.header }

// Next decodes the next record, returning false when the stream is
// exhausted or truncated. Truncation mid-record is not an error:
// the scanner simply stops, matching real captures of a log whose
// writer process was killed before it could flush a final record.
func (s *FrameScanner) Next() bool {
	data := s.data
	off := s.offset

	if off >= len(data) {
		return false
	}

	descriptor := data[off]
	entryLen := int(descriptor&0x3) + 1
	sizeLen := int((descriptor>>2)&0x3) + 1
	tsLen := int((descriptor>>4)&0x7) + 1
	off++

	if off+entryLen+sizeLen+tsLen > len(data) {
		return false
	}

	entryID := readLEUint(data[off : off+entryLen])
	off += entryLen
	size := readLEUint(data[off : off+sizeLen])
	off += sizeLen
	timestamp := readLEUint(data[off : off+tsLen])
	off += tsLen

	if uint64(off)+size > uint64(len(data)) {
		return false
	}

	payload := data[off : off+int(size)]
	off += int(size)

	s.rec = Record{EntryID: uint32(entryID), Timestamp: timestamp, Payload: payload}
	s.offset = off
	return true
}

// Record returns the record decoded by the most recent successful call
// to Next.
func (s *FrameScanner) Record() Record { return s.rec }

// readLEUint zero-extends a 1-8 byte little-endian field into a uint64.
func readLEUint(b []byte) uint64 {
	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		v = (v << 8) | uint64(b[i])
	}
	return v
}
