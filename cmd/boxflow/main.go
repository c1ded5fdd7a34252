// Command boxflow lays out YAML document fixtures and renders them to PNG,
// text dumps, scroll scripts or an interactive terminal view.
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
