// Command rtype validates class declarations, answers subtype queries and
// runs dispatch scenarios against the runtime.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/rtype/internal/cli"
)

func main() {
	root := cli.NewRootCommand()
	root.SilenceErrors = true
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "rtype:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
