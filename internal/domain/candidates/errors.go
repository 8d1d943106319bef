package candidates

import "errors"

// Sentinel kinds for store operations.
var (
	ErrConstantOutOfDomain = errors.New("score constant outside domain")
)
