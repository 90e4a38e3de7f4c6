package redo

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"os/exec"
)

// Spawn runs prog with args under the process permit pool: at most jobs
// external commands execute at once, while dependency analysis above the
// spawn proceeds unthrottled. Stdout is inherited, stderr is captured and
// returned so that the caller can forward it on failure only. Internal spawn
// errors (missing executable, permissions) are logged and folded into a
// non-zero status rather than propagated.
func (b *Ctx) Spawn(ctx context.Context, prog string, args ...string) (status int, stderr []byte) {
	if err := b.sema.Acquire(ctx, 1); err != nil {
		return 1, nil
	}
	defer b.sema.Release(1)

	cmd := exec.CommandContext(ctx, prog, args...)
	cmd.Stdout = os.Stdout
	var buf bytes.Buffer
	cmd.Stderr = &buf
	if err := cmd.Run(); err != nil {
		var exit *exec.ExitError
		if errors.As(err, &exit) {
			return exit.ExitCode(), buf.Bytes()
		}
		log.Printf("spawn %s: %v", prog, err)
		return 1, buf.Bytes()
	}
	return 0, buf.Bytes()
}
