package git

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
)

// Result holds what a finished process wrote, and how it exited
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes an external command in a given directory. A non-zero exit
// status must be reported as an error, with Result.ExitCode set (-1 when the
// process couldn't be started at all).
type Runner interface {
	Run(ctx context.Context, dir, name string, args []string) (Result, error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct {
	// Env is appended to the current process environment
	Env []string
}

// DefaultRunner forces the C locale, so git messages stay parseable
var DefaultRunner Runner = &ExecRunner{Env: []string{"LC_ALL=C"}}

// Run implements Runner
func (r *ExecRunner) Run(ctx context.Context, dir, name string, args []string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...) // #nosec
	cmd.Dir = dir
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return res, nil
	}

	res.ExitCode = -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
	}
	if ctx.Err() != nil {
		err = ctx.Err()
	}

	return res, err
}
