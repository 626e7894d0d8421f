//go:build windows

package hooks

import (
	"bytes"
	"context"
	"os/exec"
)

// runHook runs the hook and kills it on timeout. Windows has no process
// groups here, so children that detach may outlive it.
func runHook(ctx context.Context, hookPath string, stdin []byte, args ...string) error {
	cmd := exec.Command(hookPath, args...)
	cmd.Stdin = bytes.NewReader(stdin)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		return ctx.Err()
	case err := <-done:
		return err
	}
}
