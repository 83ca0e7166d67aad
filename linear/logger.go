package linear

import (
	"io"
	"log"
)

// Prefix is the prefix of the log lines.
const Prefix = "->> "

// Logger prints the progress of the client and of the server.
type Logger interface {
	PrintMessage(message string)
	PrintFormatted(format string, args ...any)
}

type logger struct {
	debug bool
	*log.Logger
}

// NewLogger returns a [Logger] writing on w. Nothing is printed unless debug is true.
func NewLogger(w io.Writer, debug bool) Logger {
	return &logger{
		debug:  debug,
		Logger: log.New(w, Prefix, log.LstdFlags),
	}
}

// Discard returns a [Logger] that prints nothing.
func Discard() Logger {
	return NewLogger(io.Discard, false)
}

func (l logger) PrintMessage(message string) {
	if l.debug {
		l.Print(message)
	}
}

func (l logger) PrintFormatted(format string, args ...any) {
	if l.debug {
		l.Printf(format, args...)
	}
}
