package main

import (
	"os"

	"github.com/mwhitlock/tracetrim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
