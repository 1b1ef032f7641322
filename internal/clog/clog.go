// Package clog wires up leveled logging for the compiler driver: only
// INFO stage lines by default, DEBUG lines only when the caller asks
// for them.
//
// Grounded on _examples/qjcg-driving/main.go's use of
// github.com/hashicorp/logutils: a logutils.LevelFilter wrapping the
// stdlib log.Logger, with MinLevel toggled by a command-line flag
// rather than a full structured-logging library.
package clog

import (
	"io"
	"log"
	"os"

	"github.com/hashicorp/logutils"
)

// Level is one of the two levels the driver emits. There is no WARN or
// ERROR level here: compiler errors are cmderr values returned up the
// call stack and printed by the caller, not logged.
type Level string

const (
	Debug Level = "DEBUG"
	Info  Level = "INFO"
)

var filter = &logutils.LevelFilter{
	Levels:   []logutils.LogLevel{logutils.LogLevel(Debug), logutils.LogLevel(Info)},
	MinLevel: logutils.LogLevel(Info),
	Writer:   os.Stderr,
}

func init() {
	log.SetOutput(filter)
	log.SetFlags(0)
}

// SetVerbose raises the minimum level to DEBUG when verbose is true,
// and back to INFO (the default) otherwise.
func SetVerbose(verbose bool) {
	if verbose {
		filter.MinLevel = logutils.LogLevel(Debug)
	} else {
		filter.MinLevel = logutils.LogLevel(Info)
	}
}

// SetOutput redirects where filtered log lines are written; tests use
// this to capture output instead of polluting stderr.
func SetOutput(w io.Writer) {
	filter.Writer = w
	log.SetOutput(filter)
}

// Stage logs an INFO-level pipeline stage transition, e.g. "lexing",
// "parsing", "generating TAC", "assembling".
func Stage(name string) {
	log.Printf("[INFO] %s", name)
}

// Debugf logs a DEBUG-level line: per-declaration detail (a symbol's
// assigned stack offset, a label allocated for a loop) that only
// --verbose callers want to see.
func Debugf(format string, args ...any) {
	log.Printf("[DEBUG] "+format, args...)
}
