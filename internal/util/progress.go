// Package util provides small progress-reporting helpers shared by the
// atomictx CLI's transaction lifecycle (begin, stream, commit/abort).
package util

import (
	"fmt"
	"io"
)

// Progress writes a progress message if w is non-nil (the CLI passes nil
// when -v wasn't given, making every call here a no-op).
func Progress(w io.Writer, format string, args ...any) {
	if w != nil {
		_, _ = fmt.Fprintf(w, format, args...)
	}
}

// ProgressStep reports a transaction step that is starting (begin,
// streaming) with a → prefix.
func ProgressStep(w io.Writer, format string, args ...any) {
	Progress(w, "→ "+format, args...)
}

// ProgressDone reports a transaction step that committed successfully,
// with a ✓ prefix.
func ProgressDone(w io.Writer, format string, args ...any) {
	Progress(w, "✓ "+format, args...)
}

// ProgressFail reports a transaction step that failed and was aborted,
// with a ✗ prefix, matching ProgressStep/ProgressDone's shape.
func ProgressFail(w io.Writer, format string, args ...any) {
	Progress(w, "✗ "+format, args...)
}
