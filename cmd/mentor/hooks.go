package main

import (
	"context"

	"github.com/untoldecay/mentor/internal/hooks"
)

// runHook runs the user's hook for event after a write. A failing hook is
// reported but never fails the command; the data is already saved.
func (a *app) runHook(ctx context.Context, event, subject string, payload any) {
	runner := hooks.NewRunner(a.path(a.cfg.HooksDir()))
	runner.SetTimeout(a.cfg.HooksTimeout())
	if !runner.HookExists(event) {
		return
	}
	a.logger.Debug("running hook", "event", event, "subject", subject)
	if err := runner.Run(ctx, event, subject, payload); err != nil {
		a.logger.Warn("hook failed", "event", event, "error", err)
		a.warn("%v", err)
	}
}
