package estimate

import "errors"

// Sentinel kinds for the fusion driver.
var (
	// ErrPassBudgetExhausted means the fixpoint loop hit its defensive pass
	// cap. The shrink invariant makes this unreachable unless a narrowing
	// bug re-grows a set, so it is reported as an internal error.
	ErrPassBudgetExhausted = errors.New("fixpoint pass budget exhausted")
)
