package domain

import "errors"

var (
	ErrNoStarsSelected    = errors.New("no star rating selected")
	ErrSubmissionInFlight = errors.New("another submission is in flight")
	ErrSnapshotNotFound   = errors.New("ratings snapshot not found")
)
