// ABOUTME: Entry point for the doklink CLI
// ABOUTME: Terminal sign-in client for the DokLink backend

package main

import (
	"fmt"
	"os"

	"github.com/doklink/doklink-auth/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
