// Package bridge runs the external commands that turn an iconset folder
// into an .icns file and remove the folder afterwards.
package bridge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// ErrCommandFailed matches every *CommandError.
var ErrCommandFailed = errors.New("command failed")

// Result is the outcome of one shell command.
type Result struct {
	Command  string
	ExitCode int
	Stderr   string
	Duration time.Duration
	// Err is set when the command could not be started or was killed.
	Err error
}

// OK reports whether the command ran and exited 0.
func (r Result) OK() bool { return r.Err == nil && r.ExitCode == 0 }

// CommandError wraps a Result that did not succeed.
type CommandError struct {
	Result Result
}

func (e *CommandError) Error() string {
	r := e.Result
	var msg string
	if r.Err != nil {
		msg = fmt.Sprintf("%s: %v", r.Command, r.Err)
	} else {
		msg = fmt.Sprintf("%s: exit status %d", r.Command, r.ExitCode)
	}
	if r.Stderr != "" {
		msg += ": " + r.Stderr
	}
	return msg
}

func (e *CommandError) Is(target error) bool { return target == ErrCommandFailed }
func (e *CommandError) Unwrap() error        { return e.Result.Err }

// Check returns a *CommandError for a failed result, nil otherwise.
func Check(r Result) error {
	if r.OK() {
		return nil
	}
	return &CommandError{Result: r}
}

// Runner executes a shell command line.
type Runner interface {
	Run(ctx context.Context, command string) Result
}

// System runs commands through /bin/sh -c. A zero Timeout means the
// command may run forever.
type System struct {
	Shell   string
	Timeout time.Duration
	Stdout  io.Writer
}

func (s System) Run(ctx context.Context, command string) Result {
	sh := s.Shell
	if sh == "" {
		sh = "/bin/sh"
	}
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, sh, "-c", command)
	cmd.Stdout = s.Stdout
	cmd.Stderr = &stderr
	setProcessGroup(cmd)

	start := time.Now()
	err := cmd.Run()
	res := Result{
		Command:  command,
		Stderr:   strings.TrimSpace(stderr.String()),
		Duration: time.Since(start),
	}
	if ctx.Err() != nil {
		res.ExitCode = -1
		res.Err = fmt.Errorf("killed: %w", ctx.Err())
		return res
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			res.ExitCode = -1
			res.Err = err
		}
	}
	return res
}

// ConvertCommand returns the iconutil invocation for an escaped folder path.
func ConvertCommand(escaped string) string { return "iconutil -c icns " + escaped }

// RemoveCommand returns the recursive delete for an escaped folder path.
func RemoveCommand(escaped string) string { return "rm -rf " + escaped }

// Convert runs iconutil on an escaped iconset folder path.
func Convert(ctx context.Context, r Runner, escaped string) (Result, error) {
	res := r.Run(ctx, ConvertCommand(escaped))
	return res, Check(res)
}

// Remove deletes an escaped folder path with rm -rf.
func Remove(ctx context.Context, r Runner, escaped string) (Result, error) {
	res := r.Run(ctx, RemoveCommand(escaped))
	return res, Check(res)
}
