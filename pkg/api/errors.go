package api

import "errors"

// Engine error taxonomy. Packages wrap these sentinels with context so
// callers can classify failures with errors.Is.
var (
	// ErrValidation rejects bad trigger or workflow definitions at
	// registration; nothing invalid is ever stored
	ErrValidation = errors.New("validation failed")

	// ErrConditionEval marks a condition that could not be evaluated.
	// Treated as condition=false and logged, never fatal.
	ErrConditionEval = errors.New("condition evaluation failed")

	// ErrActionExecution fails the current step; the execution moves to
	// failed unless the step declares a retry policy
	ErrActionExecution = errors.New("action execution failed")

	// ErrTimeout drives the configured escalation policy
	ErrTimeout = errors.New("step timed out")

	// ErrConcurrencyLimit is applied at ingress as backpressure when the
	// in-flight execution cap is reached
	ErrConcurrencyLimit = errors.New("concurrent workflow limit reached")

	// ErrComplianceBlocked aborts a message step whose content was
	// flagged by the compliance checker
	ErrComplianceBlocked = errors.New("content blocked by compliance check")
)
