package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	EventBookingConfirmed   = "booking.confirmed"
	EventBookingCanceled    = "booking.canceled"
	EventBookingRescheduled = "booking.rescheduled"
)

// Event is the payload pushed to the notification/audit sink so downstream
// messaging (calendar invites, reminders) can react to booking changes.
type Event struct {
	Type           string     `json:"type"`
	EnrollmentID   uuid.UUID  `json:"enrollment_id"`
	PlanID         uuid.UUID  `json:"appointment_plan_id"`
	MemberID       uuid.UUID  `json:"member_id"`
	HostMemberID   uuid.UUID  `json:"host_member_id"`
	StartedAt      time.Time  `json:"started_at"`
	EndedAt        time.Time  `json:"ended_at"`
	OldStartedAt   *time.Time `json:"old_started_at,omitempty"`
	OldEndedAt     *time.Time `json:"old_ended_at,omitempty"`
	CanceledReason string     `json:"canceled_reason,omitempty"`
	OccurredAt     time.Time  `json:"occurred_at"`
}

// Publisher is fire-and-forget from the booking engine's perspective:
// callers log publish errors and never fail the booking on them.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Nop is used when no broker is configured (local development).
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
