package media

import (
	"context"
	"os/exec"
)

// Runner executes an external command and returns its combined output.
type Runner func(ctx context.Context, binary string, args ...string) ([]byte, error)

// ExecRunner runs the command with os/exec.
func ExecRunner(ctx context.Context, binary string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, binary, args...).CombinedOutput()
}
