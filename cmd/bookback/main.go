package main

import (
	"os"

	"github.com/quantmill/bookback/cmd/bookback/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
