// Package hooks runs user scripts after mentor changes the database.
// Hooks are executables in .mentor/hooks/ named after the event.
package hooks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Event types
const (
	EventImport = "import"
	EventSeed   = "seed"
	EventDelete = "delete"
)

// Hook file names
const (
	HookOnImport = "on_import"
	HookOnSeed   = "on_seed"
	HookOnDelete = "on_delete"
)

// DefaultTimeout bounds one hook run.
const DefaultTimeout = 10 * time.Second

// Runner handles hook execution
type Runner struct {
	hooksDir string
	timeout  time.Duration
}

// NewRunner creates a new hook runner for hooksDir, which is
// .mentor/hooks/ in the project directory unless configured otherwise.
func NewRunner(hooksDir string) *Runner {
	return &Runner{
		hooksDir: hooksDir,
		timeout:  DefaultTimeout,
	}
}

// SetTimeout changes how long a hook may run before it is killed.
func (r *Runner) SetTimeout(d time.Duration) {
	if d > 0 {
		r.timeout = d
	}
}

// Run executes the hook for event, if one exists, and waits for it.
// The hook is called as `<hook> <event> <subject>` with payload as JSON on
// stdin. A missing or non-executable hook is not an error.
func (r *Runner) Run(ctx context.Context, event, subject string, payload any) error {
	hookPath, ok := r.hookPath(event)
	if !ok {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s hook payload: %w", event, err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := runHook(ctx, hookPath, data, event, subject); err != nil {
		return fmt.Errorf("%s hook: %w", event, err)
	}
	return nil
}

// HookExists checks if a hook exists for an event
func (r *Runner) HookExists(event string) bool {
	_, ok := r.hookPath(event)
	return ok
}

func (r *Runner) hookPath(event string) (string, bool) {
	hookName := eventToHook(event)
	if hookName == "" {
		return "", false
	}

	hookPath := filepath.Join(r.hooksDir, hookName)
	info, err := os.Stat(hookPath)
	if err != nil || info.IsDir() {
		return "", false
	}
	// Check if executable (Unix)
	if info.Mode()&0o111 == 0 {
		return "", false
	}
	return hookPath, true
}

func eventToHook(event string) string {
	switch event {
	case EventImport:
		return HookOnImport
	case EventSeed:
		return HookOnSeed
	case EventDelete:
		return HookOnDelete
	default:
		return ""
	}
}
