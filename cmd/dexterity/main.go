package main

import (
	"os"

	"github.com/lugondev/go-dexterity/cmd/dexterity/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
