// Command pokerctl is the local operator tool: it migrates the store,
// records and deletes sessions and prints reports.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
