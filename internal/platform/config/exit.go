package config

import (
	"fmt"
	"io"
	"os"
)

// ExitCodeFailure is the process status used for configuration and startup failures.
const ExitCodeFailure = 1

var (
	stderr io.Writer = os.Stderr
	exit             = os.Exit
)

// Exitf writes a formatted error message to stderr and exits with ExitCodeFailure.
func Exitf(format string, args ...any) {
	ExitCodef(ExitCodeFailure, format, args...)
}

// ExitCodef writes a formatted error message to stderr and exits with code.
func ExitCodef(code int, format string, args ...any) {
	fmt.Fprintf(stderr, format+"\n", args...)
	exit(code)
}
