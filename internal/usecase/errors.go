package usecase

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors the transport layer maps to HTTP statuses via errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")

	// ErrSlotUnavailable covers capacity and gateway-pool conflicts,
	// including ones detected by the database constraints under concurrent
	// admission. Safe to retry against a different period.
	ErrSlotUnavailable = errors.New("slot unavailable")

	// ErrRescheduleWindow means the lock window before the period start has
	// already begun.
	ErrRescheduleWindow = errors.New("reschedule window closed")

	// ErrUpstream is a payment gateway failure before money moved.
	ErrUpstream = errors.New("payment gateway failure")

	// ErrPartialCommit marks the at-least-once boundary: payment succeeded
	// but the booking records were not written. The order must be
	// reconciled via the ensure-enrollment operation.
	ErrPartialCommit = errors.New("payment succeeded but booking commit failed")
)

const (
	pgUniqueViolation    = "23505"
	pgExclusionViolation = "23P01"
)

// isAdmissionConflict reports whether err is the database rejecting a
// concurrent admission: the unique meet-per-period index or the exclusive
// service constraint.
func isAdmissionConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgUniqueViolation || pgErr.Code == pgExclusionViolation
}
