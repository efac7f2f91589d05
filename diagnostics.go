// Copyright (c) 2025 Will Toth

package wpilog

import (
	"fmt"
	"os"
)

// defaultDiagnostics is the default warning sink: plain text to
// stderr, writing operational messages straight to os.Stderr rather
// than through a logging library.
func defaultDiagnostics(msg string) {
	fmt.Fprintf(os.Stderr, "wpilog: warning: %s\n", msg)
}
