package main

import (
	"os"

	"github.com/croki-app/croki/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
