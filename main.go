// Package main is the entry point for the shipster CLI.
// It keeps a Hipster Shipster lobby session on this machine.
package main

import (
	"shipster/cli/cmd"
)

func main() {
	cmd.Execute()
}
