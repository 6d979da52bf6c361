package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// ConsoleLogger writes plain lines to stderr. Safe for concurrent use.
type ConsoleLogger struct {
	verbose bool
	out     io.Writer
	mu      sync.Mutex
}

// NewConsoleLogger creates a stderr logger; Verbose is a no-op unless verbose is set.
func NewConsoleLogger(verbose bool) *ConsoleLogger {
	return NewConsoleLoggerTo(os.Stderr, verbose)
}

// NewConsoleLoggerTo writes to out instead of stderr.
func NewConsoleLoggerTo(out io.Writer, verbose bool) *ConsoleLogger {
	return &ConsoleLogger{verbose: verbose, out: out}
}

func (l *ConsoleLogger) write(prefix, format string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(args) > 0 {
		fmt.Fprintf(l.out, prefix+format+"\n", args...)
		return
	}
	fmt.Fprint(l.out, prefix+format+"\n")
}

func (l *ConsoleLogger) Verbose(format string, args ...interface{}) {
	if l.verbose {
		l.write("[VERBOSE] ", format, args)
	}
}

func (l *ConsoleLogger) Info(format string, args ...interface{}) {
	l.write("", format, args)
}

func (l *ConsoleLogger) Error(format string, args ...interface{}) {
	l.write("[ERROR] ", format, args)
}
