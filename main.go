// ABOUTME: Entry point for the booking CLI
// ABOUTME: Command-line and terminal UI client for the resource booking service

package main

import (
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/nandasurya23/resource-booking-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
