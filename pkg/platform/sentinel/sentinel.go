package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors:
// - ErrNotFound: no record for the requested key
// - ErrConflict: a record with the same unique key already exists
// - ErrUnavailable: backend temporarily unreachable
//
// For validation failures (missing fields, bad input) use pkg/domain-errors.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
