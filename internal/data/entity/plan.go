package entity

import (
	"time"

	"github.com/google/uuid"
)

// UnlimitedCapacity marks a plan with no attendee limit per period.
const UnlimitedCapacity = -1

type RescheduleUnit string

const (
	RescheduleUnitMinute RescheduleUnit = "minute"
	RescheduleUnitHour   RescheduleUnit = "hour"
	RescheduleUnitDay    RescheduleUnit = "day"
)

// Duration converts one unit into a time.Duration.
func (u RescheduleUnit) Duration() time.Duration {
	switch u {
	case RescheduleUnitMinute:
		return time.Minute
	case RescheduleUnitHour:
		return time.Hour
	case RescheduleUnitDay:
		return 24 * time.Hour
	default:
		return 0
	}
}

type AppointmentPlan struct {
	Base
	Title            string         `db:"title"`
	DurationMinutes  int            `db:"duration_minutes"`
	Capacity         int            `db:"capacity"` // UnlimitedCapacity = no limit
	DefaultGateway   Gateway        `db:"default_gateway"`
	RescheduleAmount int            `db:"reschedule_amount"`
	RescheduleUnit   RescheduleUnit `db:"reschedule_unit"`
	ListPrice        float64        `db:"list_price"`
	CurrencyID       string         `db:"currency_id"`
	CreatorID        uuid.UUID      `db:"creator_id"`
	AppID            string         `db:"app_id"`
	IsPrivate        bool           `db:"is_private"`
	PublishedAt      *time.Time     `db:"published_at"`
}

func (p *AppointmentPlan) Duration() time.Duration {
	return time.Duration(p.DurationMinutes) * time.Minute
}

// RescheduleWindow is the minimum lead time before a period's start during
// which rescheduling is disallowed.
func (p *AppointmentPlan) RescheduleWindow() time.Duration {
	return time.Duration(p.RescheduleAmount) * p.RescheduleUnit.Duration()
}

func (p *AppointmentPlan) IsPublished() bool {
	return p.PublishedAt != nil
}
