// Package main is the entry point for the mytv addon server.
package main

import (
	"os"

	"github.com/Jash-k/MyTVStremioAddon/cmd/mytv/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
