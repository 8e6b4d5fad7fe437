// Package logging provides leveled, colored output for the keyenvelope
// command.
//
// Verbosity is controlled by two flags:
//
//   - --verbose: shows info messages
//   - --debug: shows info and debug messages
//
// Warnings and errors are always shown. Key material, passphrases and
// mnemonics must never be passed to a Logger.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Logger writes prefixed messages to Out and Err. Nil writers fall back to
// os.Stderr.
type Logger struct {
	Verbose bool
	Debug   bool

	Out io.Writer
	Err io.Writer
}

// Infof logs when Verbose or Debug is set.
func (l Logger) Infof(msg string, args ...any) {
	if l.Verbose || l.Debug {
		l.write(l.out(), color.GreenString("[info] "), msg, args...)
	}
}

// Debugf logs only when Debug is set.
func (l Logger) Debugf(msg string, args ...any) {
	if l.Debug {
		l.write(l.out(), color.CyanString("[debug] "), msg, args...)
	}
}

// Warnf always logs.
func (l Logger) Warnf(msg string, args ...any) {
	l.write(l.err(), color.YellowString("[warn] "), msg, args...)
}

// Errorf always logs.
func (l Logger) Errorf(msg string, args ...any) {
	l.write(l.err(), color.RedString("[error] "), msg, args...)
}

func (l Logger) write(w io.Writer, prefix, msg string, args ...any) {
	fmt.Fprintf(w, prefix+msg+"\n", args...)
}

func (l Logger) out() io.Writer {
	if l.Out != nil {
		return l.Out
	}
	return os.Stderr
}

func (l Logger) err() io.Writer {
	if l.Err != nil {
		return l.Err
	}
	return os.Stderr
}
