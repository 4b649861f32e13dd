// Command reactpy-devtools is a standalone harness for exercising a
// pkg/vclient-based frontend without a real ReactPy server: serve runs
// the devserver HTTP/WebSocket endpoint, mirror pre-caches import-source
// module bundles from S3, and replay drives a recorded layout-update
// trace at a connecting client.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "reactpy-devtools",
		Short: "Development harness for the ReactPy Go client runtime",
		Long: `reactpy-devtools runs a local stand-in for a ReactPy server so a
pkg/vclient-based frontend can be developed and tested without a live
Python backend.

  • serve   — serve modules/assets and a simulated layout-update stream
  • mirror  — cache import-source module bundles from S3 locally
  • replay  — drive a single WebSocket connection from a trace file`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		mirrorCmd(),
		replayCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

func success(format string, args ...any) { fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...)) }
func info(format string, args ...any)    { fmt.Printf("  %s\n", fmt.Sprintf(format, args...)) }
