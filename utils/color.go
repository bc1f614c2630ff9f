package utils

import (
	"fmt"
	"os"
	"sync/atomic"

	"golang.org/x/term"
)

// colorizeEnabled controls whether lattice pretty-printers emit ANSI
// colors. It defaults to whether stdout is attached to a terminal.
var colorizeEnabled atomic.Bool

func init() {
	colorizeEnabled.Store(term.IsTerminal(int(os.Stdout.Fd())))
}

// SetColorize overrides terminal detection for colorized output.
// Deterministic (plain) output is required when pretty-printed states are
// compared against golden files.
func SetColorize(on bool) {
	colorizeEnabled.Store(on)
}

// CanColorize wraps a color sprint function such that it degrades to plain
// formatting when colorization is disabled.
func CanColorize(f func(...interface{}) string) func(...interface{}) string {
	return func(is ...interface{}) string {
		if !colorizeEnabled.Load() {
			return fmt.Sprint(is...)
		}
		return f(is...)
	}
}
