package repository

import (
	"context"
	"fmt"

	"appointment-booking/internal/data/entity"
	"appointment-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type MeetMemberRepository interface {
	Create(ctx context.Context, member *entity.MeetMember) error
	FindActiveByMeetAndMember(ctx context.Context, meetID, memberID uuid.UUID) (*entity.MeetMember, error)
	CountActiveByMeet(ctx context.Context, meetID uuid.UUID) (int, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type meetMemberRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewMeetMemberRepository(db database.Querier, log *zap.Logger) MeetMemberRepository {
	return &meetMemberRepository{
		db:  db,
		log: log.With(zap.String("repository", "meet_member")),
	}
}

func (r *meetMemberRepository) Create(ctx context.Context, member *entity.MeetMember) error {
	query := `
		INSERT INTO meet_members (id, meet_id, member_id, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.Exec(ctx, query,
		member.ID,
		member.MeetID,
		member.MemberID,
		member.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create meet member",
			zap.Error(err),
			zap.String("meet_id", member.MeetID.String()),
			zap.String("member_id", member.MemberID.String()),
		)
		return fmt.Errorf("create meet member for meet %s: %w", member.MeetID.String(), err)
	}

	return nil
}

func (r *meetMemberRepository) FindActiveByMeetAndMember(ctx context.Context, meetID, memberID uuid.UUID) (*entity.MeetMember, error) {
	query := `
		SELECT id, meet_id, member_id, created_at, deleted_at
		FROM meet_members
		WHERE meet_id = $1 AND member_id = $2 AND deleted_at IS NULL
	`

	var member entity.MeetMember
	err := r.db.QueryRow(ctx, query, meetID, memberID).Scan(
		&member.ID,
		&member.MeetID,
		&member.MemberID,
		&member.CreatedAt,
		&member.DeletedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find meet member",
			zap.Error(err),
			zap.String("meet_id", meetID.String()),
			zap.String("member_id", memberID.String()),
		)
		return nil, fmt.Errorf("find member %s of meet %s: %w", memberID.String(), meetID.String(), err)
	}

	return &member, nil
}

func (r *meetMemberRepository) CountActiveByMeet(ctx context.Context, meetID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM meet_members WHERE meet_id = $1 AND deleted_at IS NULL`

	var count int
	err := r.db.QueryRow(ctx, query, meetID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count meet members",
			zap.Error(err),
			zap.String("meet_id", meetID.String()),
		)
		return 0, fmt.Errorf("count members of meet %s: %w", meetID.String(), err)
	}

	return count, nil
}

func (r *meetMemberRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE meet_members SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete meet member",
			zap.Error(err),
			zap.String("meet_member_id", id.String()),
		)
		return fmt.Errorf("delete meet member %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("meet member %s not found", id.String())
	}

	return nil
}
