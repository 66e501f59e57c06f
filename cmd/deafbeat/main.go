// Command deafbeat turns seeds into deterministic loops, timeline documents
// and per-frame visual signals.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/deafbeat/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			// cobra argument and flag errors have not been reported yet.
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(cli.ExitCommandError)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
