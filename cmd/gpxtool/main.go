package main

import (
	"fmt"
	"os"

	"github.com/beetlebugorg/gpsdata/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "gpxtool:", err)
		os.Exit(1)
	}
}
