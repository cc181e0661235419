package main

import (
	"os"

	"github.com/vzahanych/weather-notify/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		cmd.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}
