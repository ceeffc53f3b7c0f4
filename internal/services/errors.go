// Package services defines the business logic for chains and their parts.
// This file centralizes service-level error values so that they can be
// returned by service methods and checked by callers with errors.Is.
//
// Translation into HTTP status codes is performed in the handler layer.
// Business no-ops of the part protocol (wrong status, not permitted, lost
// race) are not errors: they are reported through Outcome.Reason.
package services

import "errors"

var (
	// ErrChainNotFound indicates that the requested chain does not exist.
	ErrChainNotFound = errors.New("chain not found")

	// ErrInvalidChain wraps a *domain.SpecError when a create request fails
	// validation. Nothing is written in that case.
	ErrInvalidChain = errors.New("invalid chain")

	// ErrNotPermitted is returned when a caller tries to delete a chain they
	// do not own.
	ErrNotPermitted = errors.New("not permitted")

	// ErrUnavailable wraps persistence failures and timeouts. The operation
	// may be retried; its effect is unknown only for writes that timed out.
	ErrUnavailable = errors.New("chain store unavailable")
)
