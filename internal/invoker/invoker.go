package invoker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"

	"github.com/vk/hiertask/internal/ctxlog"
)

// Command describes one invocation of the clustering algorithm.
type Command struct {
	// Path is the executable to run.
	Path string
	// Input is the edge list handed to the algorithm as its first argument.
	Input string
	// Alpha and Beta are the algorithm's two tuning parameters.
	Alpha float64
	Beta  float64
}

// Args returns the argument vector passed to the executable, excluding argv[0].
func (c Command) Args() ([]string, error) {
	alpha, err := formatParam("alpha", c.Alpha)
	if err != nil {
		return nil, err
	}
	beta, err := formatParam("beta", c.Beta)
	if err != nil {
		return nil, err
	}
	return []string{c.Input, alpha, beta}, nil
}

// Output is the raw result of one process run.
type Output struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// SpawnError reports that the executable could not be started or waited on.
type SpawnError struct {
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to run %s: %v", e.Path, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// Exec runs commands with os/exec.
type Exec struct{}

// Run launches the command and blocks until it exits. A non-zero exit code is
// not an error.
func (Exec) Run(ctx context.Context, cmd Command) (*Output, error) {
	logger := ctxlog.FromContext(ctx)

	args, err := cmd.Args()
	if err != nil {
		return nil, err
	}
	if cmd.Path == "" {
		return nil, &SpawnError{Path: cmd.Path, Err: errors.New("executable path is empty")}
	}

	c := exec.CommandContext(ctx, cmd.Path, args...)
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	logger.Debug("Starting algorithm.", "path", cmd.Path, "args", args)
	if err := c.Start(); err != nil {
		return nil, &SpawnError{Path: cmd.Path, Err: err}
	}

	exitCode := 0
	if err := c.Wait(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, &SpawnError{Path: cmd.Path, Err: err}
		}
		exitCode = exitErr.ExitCode()
	}
	logger.Debug("Algorithm exited.", "exit_code", exitCode, "stdout_bytes", stdout.Len(), "stderr_bytes", stderr.Len())

	return &Output{
		ExitCode: exitCode,
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
	}, nil
}

// formatParam renders a parameter in its shortest round-trip form. Values
// that cannot be represented as a finite number wrap strconv.ErrRange.
func formatParam(name string, v float64) (string, error) {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "", fmt.Errorf("parameter %s is not finite (%v): %w", name, v, strconv.ErrRange)
	}
	return strconv.FormatFloat(v, 'g', -1, 64), nil
}
