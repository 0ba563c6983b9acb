// Package logging wraps charmbracelet/log with the color/tty behavior
// and message taxonomy (error/warning/info/hint/debug) of the original
// engine's diagnostics, so call sites read the same way regardless of
// whether stderr is a terminal.
package logging

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
)

var logger *log.Logger

// Init configures the package-level logger. withCaller enables
// file:line reporting on every message, the Go analog of error.h's
// __msg(type, color, file, line, msg) overload.
func Init(withCaller bool) {
	opts := log.Options{
		ReportTimestamp: false,
		ReportCaller:    withCaller,
		Level:           log.InfoLevel,
	}

	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		opts.Formatter = log.TextFormatter
	} else {
		// No ANSI styling on a non-terminal stderr, mirroring error.h's
		// isatty(STDERR_FILENO) branch that drops the BOLD/RED/... codes.
		opts.Formatter = log.LogfmtFormatter
	}

	l := log.NewWithOptions(os.Stderr, opts)
	l.SetStyles(log.DefaultStyles())
	logger = l
}

func ensure() *log.Logger {
	if logger == nil {
		Init(false)
	}
	return logger
}

// SetDebug toggles verbose diagnostic output.
func SetDebug(enabled bool) {
	if enabled {
		ensure().SetLevel(log.DebugLevel)
	} else {
		ensure().SetLevel(log.InfoLevel)
	}
}

// Error logs a FatalInit/FatalRuntime-class diagnostic. It does not exit;
// callers that need process termination call os.Exit after this, keeping
// the "what failed" and "how fatal" decisions separate.
func Error(msg string, args ...any) {
	ensure().Error(msg, args...)
}

// Fatal logs like Error and then terminates the process with status 1,
// matching spec.md's "Fatal* exits the process with a non-zero status".
func Fatal(msg string, args ...any) {
	ensure().Fatal(msg, args...)
}

// Warning logs a WarnTransient/WarnConfig-class diagnostic; the loop
// continues after a Warning.
func Warning(msg string, args ...any) {
	ensure().Warn(msg, args...)
}

// Info logs routine progress information.
func Info(msg string, args ...any) {
	ensure().Info(msg, args...)
}

// Hint logs a suggestion attached to a preceding Error/Warning.
func Hint(msg string, args ...any) {
	ensure().Debug("hint: "+msg, args...)
}

// Debug logs fine-grained diagnostic information, off by default.
func Debug(msg string, args ...any) {
	ensure().Debug(msg, args...)
}
