package main

import (
	"os"

	"github.com/dlukin/scout-responder/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
