// Command strokectl trains forest artifacts, scores patients from the
// command line and applies database migrations.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
