package itinerary

import "fmt"

// ValidationError reports malformed input. It is returned before any store
// access is attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string { return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason) }

func invalidf(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// PartialOptimizationError reports that one or more per-entry writes during
// optimization hit a version conflict after others had already committed.
// Committed writes stand; nothing is rolled back or retried. The caller may
// re-invoke the optimization to reconcile.
type PartialOptimizationError struct {
	Updated    []string // entry ids whose new times committed
	Conflicted []string // entry ids skipped on version conflict
}

func (e *PartialOptimizationError) Error() string {
	return fmt.Sprintf("optimization partially applied: %d updated, %d conflicted", len(e.Updated), len(e.Conflicted))
}
