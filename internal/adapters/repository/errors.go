package repository

import "errors"

// Sentinel kinds for dataset ingestion.
var (
	ErrUnknownUser = errors.New("user has no dataset")
	ErrMissingUser = errors.New("record has no user")
)
