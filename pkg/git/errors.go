package git

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRemoteNotSet is returned when a working copy has no url for a remote
var ErrRemoteNotSet = errors.New("remote url not configured")

// ErrNotWorkingCopy is returned when Clone finds a populated directory
// that isn't the root of a git working copy
var ErrNotWorkingCopy = errors.New("directory exists and isn't a git working copy")

// CommandError describes a git command that exited with a non-zero status
type CommandError struct {
	Subcommand string
	Args       []string
	ExitCode   int
	Stdout     string
	Stderr     string
	Err        error

	// Outcome is the classification of this failure (see classify.go)
	Outcome Outcome
}

func (e *CommandError) Error() string {
	out := strings.TrimSpace(e.Stderr)
	if out == "" {
		out = strings.TrimSpace(e.Stdout)
	}
	if out == "" && e.Err != nil {
		out = e.Err.Error()
	}

	return fmt.Sprintf("git %s failed with code %d: %s", e.Subcommand, e.ExitCode, out)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// IsOutcome reports whether err holds a CommandError classified as o
func IsOutcome(err error, o Outcome) bool {
	var cerr *CommandError
	if !errors.As(err, &cerr) {
		return false
	}
	return cerr.Outcome == o
}
