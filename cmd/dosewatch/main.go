// Package main is the single-binary entrypoint for dosewatch.
package main

import "github.com/dosewatch/dosewatch/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
