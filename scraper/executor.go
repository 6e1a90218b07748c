package scraper

import (
	"bytes"
	"context"
	"os/exec"
	"time"

	"github.com/cockroachdb/errors"
)

// Output is the captured outcome of a validator process that ran to
// completion, whatever its exit status.
type Output struct {
	Argv     []string
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
}

// Executor runs validator processes. Run returns an error only when the
// process could not be launched, crashed or was killed; a non-zero exit code
// is reported through Output.
type Executor interface {
	Run(ctx context.Context, argv []string) (*Output, error)
}

// ExecExecutor runs validators as local processes.
type ExecExecutor struct {
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env overrides the environment when non-nil.
	Env []string
}

var _ Executor = (*ExecExecutor)(nil)

// Run implements Executor.
func (e *ExecExecutor) Run(ctx context.Context, argv []string) (*Output, error) {
	if len(argv) == 0 {
		return nil, errors.New("empty command line")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = e.Dir
	if e.Env != nil {
		cmd.Env = e.Env
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	out := &Output{
		Argv:     argv,
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}
	if err == nil {
		return out, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return out, errors.Wrapf(ctxErr, "%s killed", argv[0])
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code < 0 {
			return out, errors.Wrapf(err, "%s terminated abnormally", argv[0])
		}
		out.ExitCode = code
		return out, nil
	}
	return out, errors.Wrapf(err, "launch %s", argv[0])
}

// TimeoutExecutor bounds each invocation of the wrapped executor by Timeout.
// A zero Timeout leaves invocations unbounded.
type TimeoutExecutor struct {
	Executor Executor
	Timeout  time.Duration
}

var _ Executor = (*TimeoutExecutor)(nil)

// Run implements Executor.
func (e *TimeoutExecutor) Run(ctx context.Context, argv []string) (*Output, error) {
	if e.Timeout <= 0 {
		return e.Executor.Run(ctx, argv)
	}
	ctx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()
	return e.Executor.Run(ctx, argv)
}
