// Copyright (c) 2025 Will Toth

package wpilog

import (
	"encoding/binary"
	"unicode/utf8"
)

// controlKind identifies the first payload byte of a record on entry 0.
type controlKind byte

const (
	controlStart       controlKind = 0
	controlFinish      controlKind = 1
	controlSetMetadata controlKind = 2
)

// controlEntryID is the reserved entry id carrying control records.
const controlEntryID = 0

// startPayload is the decoded body of a Start control record.
type startPayload struct {
	Entry    uint32
	Name     string
	Type     string
	Metadata string
}

// finishPayload is the decoded body of a Finish control record.
type finishPayload struct {
	Entry uint32
}

// setMetadataPayload is the decoded body of a Set-Metadata control
// record. It has no effect on the columnar output but is parsed
// for format completeness.
type setMetadataPayload struct {
	Entry    uint32
	Metadata string
}

// decodeControlKind returns the control kind selected by a control
// record's payload, or false if the payload is empty.
func decodeControlKind(payload []byte) (controlKind, bool) {
	if len(payload) < 1 {
		return 0, false
	}
	return controlKind(payload[0]), true
}

// decodeStart decodes a Start control record payload. The
// declared entry must be nonzero.
func decodeStart(payload []byte) (startPayload, error) {
	if len(payload) < 17 {
		return startPayload{}, parseErrorf("start record payload too short: %d bytes", len(payload))
	}
	off := 1
	entry := binary.LittleEndian.Uint32(payload[off : off+4])
	off += 4
	if entry == 0 {
		return startPayload{}, parseErrorf("start record declares entry id 0")
	}

	name, off, err := readLenPrefixedString(payload, off)
	if err != nil {
		return startPayload{}, err
	}
	typeString, off, err := readLenPrefixedString(payload, off)
	if err != nil {
		return startPayload{}, err
	}
	metadata, _, err := readLenPrefixedString(payload, off)
	if err != nil {
		return startPayload{}, err
	}

	return startPayload{Entry: entry, Name: name, Type: typeString, Metadata: metadata}, nil
}

// decodeFinish decodes a Finish control record payload.
func decodeFinish(payload []byte) (finishPayload, error) {
	if len(payload) != 5 {
		return finishPayload{}, parseErrorf("finish record payload must be 5 bytes, got %d", len(payload))
	}
	return finishPayload{Entry: binary.LittleEndian.Uint32(payload[1:5])}, nil
}

// decodeSetMetadata decodes a Set-Metadata control record payload.
func decodeSetMetadata(payload []byte) (setMetadataPayload, error) {
	if len(payload) < 9 {
		return setMetadataPayload{}, parseErrorf("set-metadata record payload too short: %d bytes", len(payload))
	}
	entry := binary.LittleEndian.Uint32(payload[1:5])
	metadata, _, err := readLenPrefixedString(payload, 5)
	if err != nil {
		return setMetadataPayload{}, err
	}
	return setMetadataPayload{Entry: entry, Metadata: metadata}, nil
}

// readLenPrefixedString reads a u32-length-prefixed UTF-8 string at off,
// falling back to lossy decoding on invalid UTF-8. It returns
// the decoded string and the offset just past it.
func readLenPrefixedString(data []byte, off int) (string, int, error) {
	if off+4 > len(data) {
		return "", 0, parseErrorf("truncated string length prefix at offset %d", off)
	}
	n := int(binary.LittleEndian.Uint32(data[off : off+4]))
	off += 4
	if off+n > len(data) {
		return "", 0, parseErrorf("truncated string payload at offset %d (want %d bytes)", off, n)
	}
	raw := data[off : off+n]
	off += n
	return toUTF8Lossy(raw), off, nil
}

// toUTF8Lossy decodes raw as UTF-8, replacing invalid sequences rather
// than rejecting the input: real logs occasionally carry binary payloads
// mislabeled as string entries.
func toUTF8Lossy(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	return toValidUTF8(raw)
}

func toValidUTF8(raw []byte) string {
	var b []byte
	for len(raw) > 0 {
		r, size := utf8.DecodeRune(raw)
		if r == utf8.RuneError && size <= 1 {
			b = append(b, string(utf8.RuneError)...)
			raw = raw[1:]
			continue
		}
		b = append(b, raw[:size]...)
		raw = raw[size:]
	}
	return string(b)
}
