package cloud

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes the external sync tool. The adapter depends only on this
// contract, so tests can substitute a fake without a binary on PATH.
type Runner interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

// execRunner runs the real binary via os/exec.
type execRunner struct {
	binary string
}

func (r *execRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, r.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := lastLines(stderr.String(), 5)
		if detail == "" {
			return stdout.Bytes(), fmt.Errorf("%s %s: %w", r.binary, firstArg(args), err)
		}
		return stdout.Bytes(), fmt.Errorf("%s %s: %w: %s", r.binary, firstArg(args), err, detail)
	}
	return stdout.Bytes(), nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// lastLines keeps the tail of the tool's stderr, which is where rclone puts
// the actionable message.
func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
