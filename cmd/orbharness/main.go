// Command orbharness drives the orbfix device tool through batteries of
// SBAS corrections commands.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/orbharness/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()

	// ExitErrors have already been reported by the command.
	var exitErr *cli.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(cli.GetExitCode(err))
}
