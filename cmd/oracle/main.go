package main

import (
	"os"

	"github.com/pablasso/oracle/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
