// Package executor runs external binaries (ffmpeg, yt-dlp) with captured
// output and a per-runner timeout.
package executor

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Executor abstracts command execution so the media pipeline can be tested
// without the real binaries installed.
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
}

type Runner struct {
	// Timeout bounds a single command. Zero means no bound beyond ctx.
	Timeout time.Duration
}

func New() *Runner {
	return &Runner{Timeout: 15 * time.Minute}
}

// Execute runs name with args and returns trimmed stdout. On failure the
// error carries the command's stderr, which is where ffmpeg and yt-dlp
// report what actually went wrong.
func (r *Runner) Execute(ctx context.Context, name string, args ...string) (string, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		s := strings.TrimSpace(stderr.String())
		if s == "" {
			return "", fmt.Errorf("%s: %w", name, err)
		}
		return "", fmt.Errorf("%s: %w: %s", name, err, s)
	}
	return strings.TrimSpace(stdout.String()), nil
}
