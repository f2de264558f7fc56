package main

import (
	"os"

	"github.com/Makepad-fr/tadakit/internal/cli"
)

func main() {
	os.Exit(cli.Main(os.Args[1:]))
}
