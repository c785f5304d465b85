// Command s3meta scans an S3 location and prints a summary of its objects.
package main

import (
	"fmt"
	"os"

	"github.com/eunmann/s3-meta/internal/cli"
)

func main() {
	if err := cli.Run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
