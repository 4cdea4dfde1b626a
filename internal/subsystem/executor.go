package subsystem

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// CommandExecutor abstracts running the collaborator binary.
type CommandExecutor interface {
	RunCommand(ctx context.Context, name string, arg ...string) (string, error)
}

// CallError describes a failed collaborator invocation.
type CallError struct {
	Command  string
	ExitCode int // -1 when the process never ran to completion
	Output   string
	Err      error
}

func (e *CallError) Error() string {
	out := strings.TrimSpace(e.Output)
	if len(out) > 200 {
		out = out[:200] + "..."
	}
	if out == "" {
		return fmt.Sprintf("%s: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Command, e.Err, out)
}

func (e *CallError) Unwrap() []error {
	return []error{ErrCallFailed, e.Err}
}

// Exited reports whether the process ran and returned a non-zero status.
func (e *CallError) Exited() bool {
	return e.ExitCode > 0
}

// ExecExecutor runs commands on the local host.
type ExecExecutor struct{}

// RunCommand runs a command and returns its stdout. A deadline on ctx kills
// the process and yields ErrTimeout.
func (ExecExecutor) RunCommand(ctx context.Context, name string, arg ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, arg...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.String(), nil
	}

	callErr := &CallError{
		Command:  name + " " + strings.Join(arg, " "),
		ExitCode: -1,
		Output:   stderr.String(),
		Err:      err,
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		callErr.Err = ErrTimeout
		return stdout.String(), callErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		callErr.ExitCode = exitErr.ExitCode()
		if callErr.Output == "" {
			callErr.Output = stdout.String()
		}
	}
	return stdout.String(), callErr
}
