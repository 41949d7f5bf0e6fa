// Command notestore imports study-note sources and queries the resulting
// notes by heading, prefix, terms or criteria.
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
