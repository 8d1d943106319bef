package catalog

import "errors"

// Sentinel kinds for catalog construction and lookups.
var (
	ErrDuplicateChart = errors.New("duplicate chart in catalog")
	ErrInvalidEntry   = errors.New("invalid catalog entry")
	ErrInvalidLevel   = errors.New("invalid display level")
	ErrUnknownChart   = errors.New("chart not in catalog")
)
