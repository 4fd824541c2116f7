// Package main is the pktsim command, which runs packet delivery simulations
// described by a configuration file.
package main

import "github.com/iti/pktsim/cmd/pktsim/cmd"

func main() {
	cmd.Execute()
}
