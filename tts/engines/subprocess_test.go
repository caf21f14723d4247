package engines

import (
	"context"
	"os/exec"
	"strings"
	"testing"
	"time"
)

func TestRunCommandPassesStdin(t *testing.T) {
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not available")
	}
	out, err := RunCommand(time.Second)(context.Background(), "สวัสดี", "cat")
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "สวัสดี" {
		t.Errorf("got %q", out)
	}
}

func TestRunCommandReportsStderr(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	_, err := RunCommand(time.Second)(context.Background(), "", "sh", "-c", "echo no model >&2; exit 3")
	if err == nil || !strings.Contains(err.Error(), "no model") {
		t.Errorf("expected stderr in error, got %v", err)
	}
}

func TestRunCommandTimeout(t *testing.T) {
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}
	_, err := RunCommand(20*time.Millisecond)(context.Background(), "", "sleep", "5")
	if err == nil || !strings.Contains(err.Error(), "timed out") {
		t.Errorf("expected timeout, got %v", err)
	}
}

func TestFindBinary(t *testing.T) {
	if FindBinary("", "definitely-not-a-real-binary-name") != "" {
		t.Error("expected no match")
	}
}
