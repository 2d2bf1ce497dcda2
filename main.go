// Command kerf cuts a triangle mesh with a horizontal plane and writes the
// cross-section as an image and, optionally, as vector outlines.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "kerf:", err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "kerf",
		Short:         "Single-plane mesh cross-sections",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().String("log-level", "", "log level (panic, fatal, error, warn, info, debug, trace)")

	root.AddCommand(
		newSliceCmd(),
		newInfoCmd(),
		newPrimitiveCmd(),
		newBuildCmd(),
	)
	return root
}
