// Copyright (c) 2025 Will Toth

package wpilog

import "fmt"

// Sentinel errors surfaced to callers. Use errors.Is against these; the
// wrapped message carries offending-record detail.
var (
	ErrInvalidFormat = fmt.Errorf("invalid wpilog format")
	ErrParse         = fmt.Errorf("parse error")
	ErrSchema        = fmt.Errorf("schema error")
)

func invalidFormatf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidFormat, fmt.Sprintf(format, args...))
}

func parseErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrParse, fmt.Sprintf(format, args...))
}

func schemaErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSchema, fmt.Sprintf(format, args...))
}

func unexpectedPayloadLenError(entryID uint32, got int, want int) error {
	return parseErrorf("entry %d: expected %d payload bytes, got %d", entryID, want, got)
}
