package submit

import (
	"context"
	"errors"
	"os/exec"
)

// Launcher runs the scheduler's submit executable against a script.
type Launcher interface {
	// Launch runs bin with script as its only argument and waits for it.
	// exitCode is -1 when the process could not be started.
	Launch(ctx context.Context, bin, script string) (output string, exitCode int, err error)
}

// ExecLauncher launches the submit command as a child process.
type ExecLauncher struct{}

// Launch runs bin and returns its combined stdout and stderr.
func (ExecLauncher) Launch(ctx context.Context, bin, script string) (string, int, error) {
	cmd := exec.CommandContext(ctx, bin, script)
	out, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return string(out), exitErr.ExitCode(), err
		}
		return string(out), -1, err
	}
	return string(out), 0, nil
}
