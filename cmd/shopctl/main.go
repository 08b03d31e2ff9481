package main

import (
	"os"

	"github.com/liftboard/liftboard/cmd/shopctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
