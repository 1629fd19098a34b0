package main

import (
	"fmt"
	"os"

	"github.com/runnerr0/browser-timeline/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.Run(version); err != nil {
		fmt.Fprintf(os.Stderr, "browser-timeline: %v\n", err)
		os.Exit(cli.ExitCode(err))
	}
}
