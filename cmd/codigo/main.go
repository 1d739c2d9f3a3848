// Package main is the single-binary entrypoint for the Codigo server.
package main

import "github.com/codigo-app/codigo/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
