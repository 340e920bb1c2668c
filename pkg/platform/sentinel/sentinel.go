package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and loaders return these
// (optionally wrapped) so services can translate them into domain errors.
//
//   - ErrNotFound: snapshot, file or cache entry does not exist
//   - ErrConflict: a concurrent writer already replaced the resource
//   - ErrInvalidState: resource exists but cannot serve the request yet
//   - ErrUnavailable: backing service temporarily unavailable
//
// For validation errors (bad input, missing columns), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
