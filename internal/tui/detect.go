package tui

import (
	"os"

	"golang.org/x/term"
)

// Mode is how pgbulk presents progress.
type Mode int

const (
	// ModeNonInteractive logs progress; used for CI, pipes and scripts.
	ModeNonInteractive Mode = iota
	// ModeInteractive shows the live progress view.
	ModeInteractive
)

// DetectMode returns ModeNonInteractive when PGBULK_NON_INTERACTIVE=1, CI or
// NO_COLOR is set, or when stdin or stdout is not a terminal.
func DetectMode() Mode {
	return detectMode(os.Getenv, func(fd int) bool { return term.IsTerminal(fd) })
}

func detectMode(getenv func(string) string, isTerminal func(fd int) bool) Mode {
	if getenv("PGBULK_NON_INTERACTIVE") == "1" || getenv("CI") != "" || getenv("NO_COLOR") != "" {
		return ModeNonInteractive
	}
	if !isTerminal(int(os.Stdin.Fd())) || !isTerminal(int(os.Stdout.Fd())) {
		return ModeNonInteractive
	}
	return ModeInteractive
}

func IsInteractive() bool {
	return DetectMode() == ModeInteractive
}

// IsTerminal reports whether stdout is a terminal; styled output is only
// rendered when it is.
func IsTerminal() bool {
	return os.Getenv("NO_COLOR") == "" && term.IsTerminal(int(os.Stdout.Fd()))
}
