package config

import (
	"fmt"
	"io"
	"os"
)

// Exitf reports a fatal startup or run error on stderr and exits with
// status 1.
func Exitf(format string, args ...any) {
	os.Exit(report(os.Stderr, format, args...))
}

func report(w io.Writer, format string, args ...any) int {
	fmt.Fprintf(w, format+"\n", args...)
	return 1
}
