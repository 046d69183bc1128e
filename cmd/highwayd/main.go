// Command highwayd wires the era supervisor into a runnable process: CLI
// flags (cobra, bound into viper; no configuration file is read), structured
// logging, prometheus exposition, and a Jaeger tracer, then runs the
// supervisor until interrupted.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
