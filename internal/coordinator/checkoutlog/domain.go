// Package checkoutlog defines the durable audit trail of checkout
// executions.
//
// Each order placement appends one row per state transition. The log has
// two jobs:
//
//  1. Observability: the DB shows exactly where a checkout is (or was)
//     and joins to the distributed trace via trace_id.
//
//  2. Reconciliation: an execution whose last row is FAILED with
//     compensation errors means stored state may still hold a partial
//     order; an operator (or a future repair job) finds it here.
package checkoutlog

import "time"

// Status is the lifecycle state of one checkout execution.
type Status string

const (
	StatusStarted      Status = "STARTED"
	StatusStepDone     Status = "STEP_DONE"
	StatusCompleted    Status = "COMPLETED"
	StatusCompensating Status = "COMPENSATING"
	StatusFailed       Status = "FAILED"
)

// Entry is a single row in the checkout_logs table: a point-in-time
// snapshot of a checkout execution. Rows are append-only.
type Entry struct {
	// CheckoutID is the order ID being placed, so log rows join with
	// business data.
	CheckoutID string

	Status Status

	// CurrentStep is the step that just executed or failed, empty for
	// the STARTED/COMPLETED book-ends.
	CurrentStep string

	// ErrorMessages accumulates failure details as a JSON array. The
	// first element is the step error, any further elements are
	// compensation failures.
	ErrorMessages string

	// TraceID and SpanID come from the OpenTelemetry span active when the
	// row was written, linking the row to the full distributed trace.
	TraceID string
	SpanID  string

	UpdatedAt time.Time
}
