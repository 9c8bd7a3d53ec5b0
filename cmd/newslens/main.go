// Package main implements the newslens binary: an HTTP service that
// classifies batches of news items against caller-supplied category pairs,
// plus a one-shot classify command for local runs.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
