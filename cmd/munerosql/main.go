// Package main provides the munerosql CLI.
package main

import (
	"os"

	"github.com/zmasarw3h/munero-hybrid-dashboard/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
