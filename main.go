package main

import (
	"os"

	"github.com/shopforge/shopforge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
