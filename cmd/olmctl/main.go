package main

import (
	"os"

	"olmcore/cmd/olmctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
