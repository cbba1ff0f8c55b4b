package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session rows are written by the external auth service; this engine only
// reads them to resolve the acting member.
type Session struct {
	BaseSimple
	MemberID  uuid.UUID  `db:"member_id"`
	Token     uuid.UUID  `db:"token"`
	ExpiresAt time.Time  `db:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at"`
}
