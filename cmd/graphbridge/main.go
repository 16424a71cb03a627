// Package main implements the graphbridge command line client: ad-hoc
// queries and edits against a remote RDF graph store over the same session
// protocol the library exposes.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
)

// Build information constants
const (
	Version = "0.1.0"
	appName = "graphbridge"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := Execute(context.Background()); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(1)
	}
}
