package repository

import (
	"context"
	"fmt"

	"appointment-booking/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	Plan          PlanRepository
	Schedule      ScheduleRepository
	Service       ServiceRepository
	Meet          MeetRepository
	MeetMember    MeetMemberRepository
	Enrollment    EnrollmentRepository
	RescheduleLog RescheduleLogRepository
	Session       SessionRepository

	db  database.PgxIface
	log *zap.Logger
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	r := build(db, log)
	r.db = db
	return r
}

func build(q database.Querier, log *zap.Logger) *Repository {
	return &Repository{
		Plan:          NewPlanRepository(q, log),
		Schedule:      NewScheduleRepository(q, log),
		Service:       NewServiceRepository(q, log),
		Meet:          NewMeetRepository(q, log),
		MeetMember:    NewMeetMemberRepository(q, log),
		Enrollment:    NewEnrollmentRepository(q, log),
		RescheduleLog: NewRescheduleLogRepository(q, log),
		Session:       NewSessionRepository(q, log),
		log:           log,
	}
}

// RunInTx runs fn against a transaction-scoped copy of the repository and
// commits when fn returns nil. A repository without an attached pool (a
// transaction-scoped copy, or a hand-built one in tests) runs fn against
// the receiver directly.
func (r *Repository) RunInTx(ctx context.Context, fn func(*Repository) error) error {
	if r.db == nil {
		return fn(r)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(build(tx, r.log)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			r.log.Error("Transaction rollback failed", zap.Error(rbErr))
		}
		return err
	}

	return tx.Commit(ctx)
}
