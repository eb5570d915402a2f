package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Clients and infrastructure layers
// return these (optionally wrapped) so services can translate them into
// domain errors.
//
// These represent factual states about remote collaborators, not validation
// failures:
// - ErrUnavailable: the remote could not be reached
// - ErrTimeout: the remote did not answer in time
// - ErrRejected: the remote answered with a non-success status
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrUnavailable = errors.New("unavailable")
	ErrTimeout     = errors.New("timeout")
	ErrRejected    = errors.New("rejected")
)
