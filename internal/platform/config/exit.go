package config

import (
	"fmt"
	"os"

	apperrors "github.com/louisbranch/postpos/internal/platform/errors"
)

// ExitTempFail is returned when the failure may clear on retry (sysexits EX_TEMPFAIL).
const ExitTempFail = 75

// Exitf writes a formatted error message to stderr and exits with code 1.
// It provides a consistent fatal-exit pattern for CLI entry points.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// ExitError writes err and its localized operator message to stderr, then
// exits with ExitCode(err).
func ExitError(err error, locale string) {
	fmt.Fprintf(os.Stderr, "Error: %v\n%s\n", err, apperrors.Localize(err, locale))
	os.Exit(ExitCode(err))
}

// ExitCode maps err to a process exit status. Retryable storage failures use
// ExitTempFail so supervisors can restart after a delay.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if apperrors.CodeOf(err).Retryable() {
		return ExitTempFail
	}
	return 1
}
