// Command canteen is the campus canteen ordering CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/GlaceYT/E-Canteen/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// ExitErrors have already been reported in the requested format.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
