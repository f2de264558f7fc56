package main

import (
	"fmt"
	"os"

	"github.com/Makepad-fr/tadakit/internal/cli"
)

func main() {
	cmd := cli.NewCalcCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.ExitCode(err))
	}
}
