package main

import (
	"os"

	"github.com/psantana5/timeprofile/cmd/timeprofile/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
