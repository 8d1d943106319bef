package service

import "errors"

// Sentinel kinds for service state.
var (
	ErrNotRun = errors.New("pipeline has not run")
)
