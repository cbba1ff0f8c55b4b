package repository

import (
	"context"
	"fmt"
	"time"

	"appointment-booking/internal/data/entity"
	"appointment-booking/internal/scheduling"
	"appointment-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type MeetRepository interface {
	Create(ctx context.Context, meet *entity.Meet) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Meet, error)
	// FindActiveByPlanAndStart locates the live meet for one plan period.
	// With forUpdate set the row is locked for the enclosing transaction.
	FindActiveByPlanAndStart(ctx context.Context, planID uuid.UUID, startedAt time.Time, forUpdate bool) (*entity.Meet, error)
	// FindSnapshotsByHost captures the host's live meets overlapping
	// [from, until) with their active member counts and whether viewerID
	// holds a live membership.
	FindSnapshotsByHost(ctx context.Context, hostMemberID, viewerID uuid.UUID, from, until time.Time) ([]scheduling.MeetSnapshot, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type meetRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewMeetRepository(db database.Querier, log *zap.Logger) MeetRepository {
	return &meetRepository{
		db:  db,
		log: log.With(zap.String("repository", "meet")),
	}
}

func (r *meetRepository) Create(ctx context.Context, meet *entity.Meet) error {
	query := `
		INSERT INTO meets (id, appointment_plan_id, host_member_id, service_id, gateway, started_at, ended_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		meet.ID,
		meet.AppointmentPlanID,
		meet.HostMemberID,
		meet.ServiceID,
		meet.Gateway,
		meet.StartedAt,
		meet.EndedAt,
		meet.CreatedAt,
		meet.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create meet",
			zap.Error(err),
			zap.String("plan_id", meet.AppointmentPlanID.String()),
			zap.Time("started_at", meet.StartedAt),
		)
		return fmt.Errorf("create meet for plan %s: %w", meet.AppointmentPlanID.String(), err)
	}

	return nil
}

func (r *meetRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Meet, error) {
	query := `
		SELECT id, appointment_plan_id, host_member_id, service_id, gateway, started_at, ended_at, created_at, updated_at, deleted_at
		FROM meets
		WHERE id = $1 AND deleted_at IS NULL
	`

	var meet entity.Meet
	err := r.db.QueryRow(ctx, query, id).Scan(
		&meet.ID,
		&meet.AppointmentPlanID,
		&meet.HostMemberID,
		&meet.ServiceID,
		&meet.Gateway,
		&meet.StartedAt,
		&meet.EndedAt,
		&meet.CreatedAt,
		&meet.UpdatedAt,
		&meet.DeletedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find meet by ID",
			zap.Error(err),
			zap.String("meet_id", id.String()),
		)
		return nil, fmt.Errorf("find meet by ID %s: %w", id.String(), err)
	}

	return &meet, nil
}

func (r *meetRepository) FindActiveByPlanAndStart(ctx context.Context, planID uuid.UUID, startedAt time.Time, forUpdate bool) (*entity.Meet, error) {
	query := `
		SELECT id, appointment_plan_id, host_member_id, service_id, gateway, started_at, ended_at, created_at, updated_at, deleted_at
		FROM meets
		WHERE appointment_plan_id = $1 AND started_at = $2 AND deleted_at IS NULL
	`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var meet entity.Meet
	err := r.db.QueryRow(ctx, query, planID, startedAt).Scan(
		&meet.ID,
		&meet.AppointmentPlanID,
		&meet.HostMemberID,
		&meet.ServiceID,
		&meet.Gateway,
		&meet.StartedAt,
		&meet.EndedAt,
		&meet.CreatedAt,
		&meet.UpdatedAt,
		&meet.DeletedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find meet by plan and start",
			zap.Error(err),
			zap.String("plan_id", planID.String()),
			zap.Time("started_at", startedAt),
		)
		return nil, fmt.Errorf("find meet for plan %s at %s: %w",
			planID.String(), startedAt.Format(time.RFC3339), err)
	}

	return &meet, nil
}

func (r *meetRepository) FindSnapshotsByHost(ctx context.Context, hostMemberID, viewerID uuid.UUID, from, until time.Time) ([]scheduling.MeetSnapshot, error) {
	query := `
		SELECT m.id, m.appointment_plan_id, m.service_id, m.started_at, m.ended_at,
		       COUNT(mm.id) FILTER (WHERE mm.deleted_at IS NULL),
		       COALESCE(BOOL_OR(mm.member_id = $2 AND mm.deleted_at IS NULL), FALSE)
		FROM meets m
		LEFT JOIN meet_members mm ON mm.meet_id = m.id
		WHERE m.host_member_id = $1 AND m.deleted_at IS NULL
		  AND m.started_at < $4 AND m.ended_at > $3
		GROUP BY m.id
		ORDER BY m.started_at
	`

	rows, err := r.db.Query(ctx, query, hostMemberID, viewerID, from, until)
	if err != nil {
		r.log.Error("Failed to find meet snapshots by host",
			zap.Error(err),
			zap.String("host_member_id", hostMemberID.String()),
			zap.Time("from", from),
			zap.Time("until", until),
		)
		return nil, fmt.Errorf("find meet snapshots for host %s: %w", hostMemberID.String(), err)
	}
	defer rows.Close()

	var snapshots []scheduling.MeetSnapshot
	for rows.Next() {
		var snap scheduling.MeetSnapshot
		err := rows.Scan(
			&snap.ID,
			&snap.AppointmentPlanID,
			&snap.ServiceID,
			&snap.StartedAt,
			&snap.EndedAt,
			&snap.ActiveMembers,
			&snap.ViewerJoined,
		)
		if err != nil {
			r.log.Error("Failed to scan meet snapshot row", zap.Error(err))
			return nil, fmt.Errorf("scan meet snapshot row: %w", err)
		}
		snapshots = append(snapshots, snap)
	}

	return snapshots, nil
}

func (r *meetRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE meets SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete meet",
			zap.Error(err),
			zap.String("meet_id", id.String()),
		)
		return fmt.Errorf("delete meet %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("meet %s not found", id.String())
	}

	return nil
}
