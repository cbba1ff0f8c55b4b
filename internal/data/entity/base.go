package entity

import (
	"time"

	"github.com/google/uuid"
)

// Base is for soft-deleted rows (plans, meets).
type Base struct {
	ID        uuid.UUID  `db:"id"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

// BaseNoDelete is for rows that never soft-delete as a whole; enrollments
// tombstone via canceled_at instead.
type BaseNoDelete struct {
	ID        uuid.UUID `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// BaseSimple is for append-style rows (services, reschedule logs).
type BaseSimple struct {
	ID        uuid.UUID `db:"id"`
	CreatedAt time.Time `db:"created_at"`
}
