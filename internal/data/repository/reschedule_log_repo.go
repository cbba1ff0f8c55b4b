package repository

import (
	"context"
	"fmt"

	"appointment-booking/internal/data/entity"
	"appointment-booking/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RescheduleLogRepository interface {
	Create(ctx context.Context, log *entity.RescheduleLog) error
	FindByEnrollmentID(ctx context.Context, enrollmentID uuid.UUID) ([]*entity.RescheduleLog, error)
}

type rescheduleLogRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewRescheduleLogRepository(db database.Querier, log *zap.Logger) RescheduleLogRepository {
	return &rescheduleLogRepository{
		db:  db,
		log: log.With(zap.String("repository", "reschedule_log")),
	}
}

func (r *rescheduleLogRepository) Create(ctx context.Context, rl *entity.RescheduleLog) error {
	query := `
		INSERT INTO reschedule_logs (id, enrollment_id, old_started_at, old_ended_at, new_started_at, new_ended_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		rl.ID,
		rl.EnrollmentID,
		rl.OldStartedAt,
		rl.OldEndedAt,
		rl.NewStartedAt,
		rl.NewEndedAt,
		rl.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create reschedule log",
			zap.Error(err),
			zap.String("enrollment_id", rl.EnrollmentID.String()),
		)
		return fmt.Errorf("create reschedule log for enrollment %s: %w", rl.EnrollmentID.String(), err)
	}

	return nil
}

func (r *rescheduleLogRepository) FindByEnrollmentID(ctx context.Context, enrollmentID uuid.UUID) ([]*entity.RescheduleLog, error) {
	query := `
		SELECT id, enrollment_id, old_started_at, old_ended_at, new_started_at, new_ended_at, created_at
		FROM reschedule_logs
		WHERE enrollment_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, enrollmentID)
	if err != nil {
		r.log.Error("Failed to find reschedule logs",
			zap.Error(err),
			zap.String("enrollment_id", enrollmentID.String()),
		)
		return nil, fmt.Errorf("find reschedule logs for enrollment %s: %w", enrollmentID.String(), err)
	}
	defer rows.Close()

	var logs []*entity.RescheduleLog
	for rows.Next() {
		var rl entity.RescheduleLog
		err := rows.Scan(
			&rl.ID,
			&rl.EnrollmentID,
			&rl.OldStartedAt,
			&rl.OldEndedAt,
			&rl.NewStartedAt,
			&rl.NewEndedAt,
			&rl.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan reschedule log row", zap.Error(err))
			return nil, fmt.Errorf("scan reschedule log row: %w", err)
		}
		logs = append(logs, &rl)
	}

	return logs, nil
}
