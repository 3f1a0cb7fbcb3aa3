// Command atomictx streams an input into a file via a single atomic
// transaction: the target is replaced wholesale, or left untouched, and
// readers never observe a torn write.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/txfile/atomictx"
)

func main() {
	atomictx.InstallCleanupHandlers()
	os.Exit(execute())
}

// execute runs the command and returns the process exit code. It is kept
// separate from main so RunExitCleanup still runs on a failing command
// (os.Exit does not run deferred calls).
func execute() int {
	defer atomictx.RunExitCleanup()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

var (
	// Version, Commit, and Date are set at build time via ldflags
	Version = "dev"
	Commit  = ""
	Date    = ""
)

var (
	flagInput       string
	flagNonBlocking bool
	flagVerbose     bool
	flagCleanupDir  string
)

var rootCmd = &cobra.Command{
	Use:           "atomictx [-f INPUT] [-d] [-v] OUTPUT",
	Short:         "Replace a file atomically from stdin or an input file",
	Args:          cobra.MaximumNArgs(1),
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.RunE = run
	rootCmd.SetVersionTemplate(fmt.Sprintf("atomictx version %s\ncommit: %s\ndate: %s\n", Version, Commit, Date))

	rootCmd.Flags().StringVarP(&flagInput, "file", "f", "", "read from this file instead of stdin")
	rootCmd.Flags().BoolVarP(&flagNonBlocking, "nonblock", "d", false, "fail instead of waiting on contention")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "print progress to stderr")
	rootCmd.Flags().StringVar(&flagCleanupDir, "cleanup", "", "remove stale temporaries/moles under this directory and exit")
}
