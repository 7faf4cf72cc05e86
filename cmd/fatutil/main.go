// Command fatutil is a host-side tool for exercising the fat32 library
// against disk image files during development. It is not part of the
// embedded target the library itself is built for.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
