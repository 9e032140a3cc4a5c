package main

import (
	"fmt"
	"os"

	"github.com/banshee-data/haptics/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "hapticsctl:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
