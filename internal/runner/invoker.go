package runner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
)

// StatusToolMissing is the conventional shell status for "command not found".
const StatusToolMissing = 127

// ErrToolNotFound means the device tool is not on the execution path.
var ErrToolNotFound = errors.New("device tool not found")

// Invoker runs one device-tool command line.
//
// status is the tool's exit status. err is reserved for failures to run the
// tool at all; a tool that runs and exits non-zero returns err == nil.
type Invoker interface {
	Invoke(ctx context.Context, args []string) (status int, output []byte, err error)
}

// ExecInvoker runs the tool as a child process.
type ExecInvoker struct {
	path string
}

// NewExecInvoker resolves tool on PATH (or as a path) once, up front.
// Returns an error wrapping ErrToolNotFound when it cannot be found.
func NewExecInvoker(tool string) (*ExecInvoker, error) {
	path, err := exec.LookPath(tool)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrToolNotFound, tool, err)
	}
	return &ExecInvoker{path: path}, nil
}

// Path returns the resolved tool location.
func (e *ExecInvoker) Path() string {
	return e.path
}

// Invoke runs the tool exactly once and returns its combined stdout and stderr.
func (e *ExecInvoker) Invoke(ctx context.Context, args []string) (int, []byte, error) {
	cmd := exec.CommandContext(ctx, e.path, args...)
	out, err := cmd.CombinedOutput()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return 0, out, nil
	case errors.As(err, &exitErr):
		return exitErr.ExitCode(), out, nil
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return StatusToolMissing, out, fmt.Errorf("%w: %s: %v", ErrToolNotFound, e.path, err)
	}
	return -1, out, fmt.Errorf("failed to run %s: %w", e.path, err)
}
