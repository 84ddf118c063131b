package main

import (
	"os"

	"github.com/deevus/orders-tui/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
