// Avatint - avatar accent colour extraction
//
// Avatint derives readable display colours from avatar images for use
// against dark or light backgrounds.
//
// Copyright (c) 2025 John Mylchreest
// Licensed under the MIT License
package main

import (
	"os"

	"github.com/jmylchreest/avatint/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
