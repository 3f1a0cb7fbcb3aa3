package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/txfile/atomictx"
	"github.com/txfile/atomictx/internal/config"
	"github.com/txfile/atomictx/internal/logx"
	"github.com/txfile/atomictx/internal/util"
)

const staleAge = 24 * time.Hour

func run(cmd *cobra.Command, args []string) error {
	applyConfigDefaults()

	if flagCleanupDir != "" {
		return runCleanup(flagCleanupDir)
	}

	if len(args) != 1 {
		return fmt.Errorf("atomictx: exactly one OUTPUT argument is required")
	}
	output := args[0]

	var out io.Writer
	if flagVerbose {
		out = os.Stderr
	}

	var flags atomictx.Flags
	if flagNonBlocking {
		flags |= atomictx.NonBlocking
	}

	var src io.Reader = os.Stdin
	if flagInput != "" {
		f, err := os.Open(flagInput)
		if err != nil {
			return fmt.Errorf("open input %s: %w", flagInput, err)
		}
		defer f.Close()
		src = f
	}

	util.ProgressStep(out, "beginning transaction against %s\n", output)
	t, err := atomictx.Begin(output, flags|atomictx.Create, 0o644)
	if err != nil {
		return fmt.Errorf("begin %s: %w", output, err)
	}
	t.SetPreserveImmutable(loadedDefaults.PreserveImmutable)

	if _, err := io.Copy(t.File(), src); err != nil {
		util.ProgressFail(out, "streaming into %s failed: %v\n", output, err)
		logx.Warnf("streaming into %s failed: %v", t.TempPath(), err)
		if endErr := t.End(false); endErr != nil {
			logx.Warnf("abort after copy failure also failed: %v", endErr)
		}
		return fmt.Errorf("stream into %s: %w", output, err)
	}

	if err := t.End(true); err != nil {
		return fmt.Errorf("commit %s: %w", output, err)
	}
	util.ProgressDone(out, "wrote %s\n", output)
	return nil
}

func runCleanup(dir string) error {
	removed, err := atomictx.CleanStaleTemps(dir, staleAge)
	if err != nil {
		return fmt.Errorf("cleanup %s: %w", dir, err)
	}
	fmt.Printf("removed %d stale temporaries\n", removed)
	return nil
}

// loadedDefaults holds the CLI defaults file's contents for the fields
// that have no corresponding flag (BufferSize, PreserveImmutable) and so
// are always applied rather than overridden.
var loadedDefaults config.Defaults

func applyConfigDefaults() {
	path, err := config.DefaultPath()
	if err != nil {
		return
	}
	defaults, err := config.Load(path)
	if err != nil {
		logx.Warnf("loading defaults from %s: %v", path, err)
		return
	}
	loadedDefaults = defaults

	if !cmdFlagChanged("nonblock") {
		flagNonBlocking = defaults.NonBlocking
	}
	if !cmdFlagChanged("verbose") {
		flagVerbose = defaults.Verbose
	}
	if defaults.BufferSize > 0 {
		atomictx.SetBufferSize(defaults.BufferSize)
	}
}

func cmdFlagChanged(name string) bool {
	return rootCmd.Flags().Changed(name)
}
