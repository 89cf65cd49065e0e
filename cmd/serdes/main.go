package main

import (
	"fmt"
	"os"

	"github.com/reoring/serdes/internal/cli"
)

func main() {
	if err := cli.New(os.Stdout, os.Stderr).RootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "serdes:", err)
		os.Exit(1)
	}
}
