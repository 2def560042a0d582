package main

import (
	"fmt"
	"os"

	"github.com/ccbar/ccbar/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ccbar: %v\n", err)
		os.Exit(1)
	}
}
