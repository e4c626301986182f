// Package coordinator runs a sequence of compensable steps as one logical
// unit. The checkout workflow uses it to keep the three persistence
// writes (order, order lines, cart clear) from ever leaving an orphaned
// order behind: when a step fails, every step that already succeeded is
// compensated in LIFO order.
package coordinator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jcmexdev/storefront/internal/coordinator/checkoutlog"
)

// Step is a single unit of work with a compensating action that undoes
// its effects.
type Step interface {
	Name() string
	Execute(ctx context.Context) error
	Compensate(ctx context.Context) error
}

// StepError is returned when a step fails. CompensationErrs is non-empty
// when the rollback itself failed, i.e. some already-executed steps could
// not be undone and the stored state needs reconciliation.
type StepError struct {
	Step             string
	Err              error
	CompensationErrs []error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Compensated reports whether the rollback fully undid the steps that
// had already executed.
func (e *StepError) Compensated() bool { return len(e.CompensationErrs) == 0 }

// Orchestrator executes steps sequentially, compensating on failure.
// Every transition is appended to the checkout log so an operator can
// reconcile executions that failed mid-rollback.
type Orchestrator struct {
	id    string
	steps []Step
	log   checkoutlog.Repository // nil-safe: logging skipped if nil
}

// NewOrchestrator builds an orchestrator for one execution. id is the
// business identifier (the order ID) so log rows join with order data.
func NewOrchestrator(id string, steps []Step, log checkoutlog.Repository) *Orchestrator {
	return &Orchestrator{id: id, steps: steps, log: log}
}

// Start runs the steps in order. On failure it compensates the already
// successful steps LIFO and returns a *StepError describing both the
// failure and the outcome of the rollback.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.record(ctx, checkoutlog.StatusStarted, "", nil)

	var done []Step
	for _, step := range o.steps {
		if err := step.Execute(ctx); err != nil {
			slog.ErrorContext(ctx, "step failed, rolling back",
				"id", o.id, "step", step.Name(), "error", err)
			o.record(ctx, checkoutlog.StatusCompensating, step.Name(), []string{err.Error()})

			compErrs := o.rollback(ctx, done)
			stepErr := &StepError{Step: step.Name(), Err: err, CompensationErrs: compErrs}
			o.record(ctx, checkoutlog.StatusFailed, step.Name(), errStrings(stepErr))
			return stepErr
		}
		done = append(done, step)
		o.record(ctx, checkoutlog.StatusStepDone, step.Name(), nil)
	}

	o.record(ctx, checkoutlog.StatusCompleted, "", nil)
	return nil
}

// rollback compensates steps in reverse order. Compensation errors are
// collected rather than aborting: later steps still get a chance to undo.
func (o *Orchestrator) rollback(ctx context.Context, steps []Step) []error {
	var errs []error
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		if err := step.Compensate(ctx); err != nil {
			slog.ErrorContext(ctx, "CRITICAL: compensation failed",
				"id", o.id, "step", step.Name(), "error", err)
			errs = append(errs, fmt.Errorf("compensate %s: %w", step.Name(), err))
		}
	}
	return errs
}

func (o *Orchestrator) record(ctx context.Context, status checkoutlog.Status, step string, errs []string) {
	if o.log == nil {
		return
	}
	entry := checkoutlog.NewEntry(ctx, o.id, status, step, errs)
	if err := o.log.Save(ctx, entry); err != nil {
		slog.WarnContext(ctx, "failed to persist checkout log entry",
			"id", o.id, "status", string(status), "error", err)
	}
}

func errStrings(e *StepError) []string {
	out := []string{e.Err.Error()}
	for _, ce := range e.CompensationErrs {
		out = append(out, ce.Error())
	}
	return out
}
