// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are lowercase snake_case and stable; clients branch on them. The
// part protocol's no-op reasons (not_found, wrong_status, not_permitted,
// conflict) are surfaced verbatim as codes so a client can tell "someone
// else got it" from "retry later".
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeValidation       = "validation_failed"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Part protocol no-ops (see domain.Reason).
	ErrCodeWrongStatus  = "wrong_status"
	ErrCodeNotPermitted = "not_permitted"

	// ErrCodeUnavailable means the chain store failed or timed out. The
	// request may be retried.
	ErrCodeUnavailable = "unavailable"
)
