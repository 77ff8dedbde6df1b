// Command sparsewave drives the sparse spectral link: streaming sessions
// against a device or emulator, offline compression analysis, and the
// services around them.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
