// Package logx is a trivial level-gated sink over the standard log
// package. Debug output is silent unless enabled, either by calling
// SetDebug or by setting ATOMICTX_DEBUG in the environment; warnings
// always print.
package logx

import (
	"log"
	"os"
	"sync/atomic"
)

var debug atomic.Bool

func init() {
	log.SetOutput(os.Stderr)
	log.SetFlags(0)
	if os.Getenv("ATOMICTX_DEBUG") != "" {
		debug.Store(true)
	}
}

// SetDebug toggles whether Debugf writes.
func SetDebug(on bool) {
	debug.Store(on)
}

// Debugf logs format/args if debug output is enabled.
func Debugf(format string, args ...any) {
	if debug.Load() {
		log.Printf("debug: "+format, args...)
	}
}

// Warnf always logs format/args, prefixed so it stands out next to
// Debugf output.
func Warnf(format string, args ...any) {
	log.Printf("warning: "+format, args...)
}
