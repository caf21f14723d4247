package engines

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single synthesizer process.
const DefaultTimeout = 30 * time.Second

// Runner executes a command with input on stdin and returns its stdout.
// Synthesizers take one so tests can replace the real process.
type Runner func(ctx context.Context, input string, name string, args ...string) ([]byte, error)

// RunCommand is the default Runner. Stdin is set up before the process
// starts, and the process is killed when ctx ends or timeout elapses.
func RunCommand(timeout time.Duration) Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return func(ctx context.Context, input string, name string, args ...string) ([]byte, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		cmd := exec.CommandContext(ctx, name, args...)
		cmd.Stdin = strings.NewReader(input)
		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		err := cmd.Run()
		if ctxErr := ctx.Err(); ctxErr != nil {
			if errors.Is(ctxErr, context.DeadlineExceeded) {
				return nil, fmt.Errorf("%s timed out after %v", name, timeout)
			}
			return nil, ctxErr
		}
		if err != nil {
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return nil, fmt.Errorf("%s failed: %w: %s", name, err, msg)
			}
			return nil, fmt.Errorf("%s failed: %w", name, err)
		}
		return stdout.Bytes(), nil
	}
}

// FindBinary returns the first of candidates found on PATH or on disk.
func FindBinary(candidates ...string) string {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if path, err := exec.LookPath(c); err == nil {
			return path
		}
	}
	return ""
}
