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

type PlanRepository interface {
	Create(ctx context.Context, plan *entity.AppointmentPlan) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.AppointmentPlan, error)
	FindByCreatorID(ctx context.Context, creatorID uuid.UUID) ([]*entity.AppointmentPlan, error)
	Update(ctx context.Context, plan *entity.AppointmentPlan) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type planRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewPlanRepository(db database.Querier, log *zap.Logger) PlanRepository {
	return &planRepository{
		db:  db,
		log: log.With(zap.String("repository", "plan")),
	}
}

const planColumns = `id, title, duration_minutes, capacity, default_gateway,
		       reschedule_amount, reschedule_unit, list_price, currency_id,
		       creator_id, app_id, is_private, published_at, created_at, updated_at, deleted_at`

func scanPlan(row pgx.Row) (*entity.AppointmentPlan, error) {
	var plan entity.AppointmentPlan
	err := row.Scan(
		&plan.ID,
		&plan.Title,
		&plan.DurationMinutes,
		&plan.Capacity,
		&plan.DefaultGateway,
		&plan.RescheduleAmount,
		&plan.RescheduleUnit,
		&plan.ListPrice,
		&plan.CurrencyID,
		&plan.CreatorID,
		&plan.AppID,
		&plan.IsPrivate,
		&plan.PublishedAt,
		&plan.CreatedAt,
		&plan.UpdatedAt,
		&plan.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *planRepository) Create(ctx context.Context, plan *entity.AppointmentPlan) error {
	query := `
		INSERT INTO appointment_plans (id, title, duration_minutes, capacity, default_gateway,
		                               reschedule_amount, reschedule_unit, list_price, currency_id,
		                               creator_id, app_id, is_private, published_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.Exec(ctx, query,
		plan.ID,
		plan.Title,
		plan.DurationMinutes,
		plan.Capacity,
		plan.DefaultGateway,
		plan.RescheduleAmount,
		plan.RescheduleUnit,
		plan.ListPrice,
		plan.CurrencyID,
		plan.CreatorID,
		plan.AppID,
		plan.IsPrivate,
		plan.PublishedAt,
		plan.CreatedAt,
		plan.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create appointment plan",
			zap.Error(err),
			zap.String("title", plan.Title),
			zap.String("creator_id", plan.CreatorID.String()),
		)
		return fmt.Errorf("create appointment plan %s: %w", plan.Title, err)
	}

	return nil
}

func (r *planRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.AppointmentPlan, error) {
	query := `
		SELECT ` + planColumns + `
		FROM appointment_plans
		WHERE id = $1 AND deleted_at IS NULL
	`

	plan, err := scanPlan(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find appointment plan by ID",
			zap.Error(err),
			zap.String("plan_id", id.String()),
		)
		return nil, fmt.Errorf("find appointment plan by ID %s: %w", id.String(), err)
	}

	return plan, nil
}

func (r *planRepository) FindByCreatorID(ctx context.Context, creatorID uuid.UUID) ([]*entity.AppointmentPlan, error) {
	query := `
		SELECT ` + planColumns + `
		FROM appointment_plans
		WHERE creator_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, creatorID)
	if err != nil {
		r.log.Error("Failed to find appointment plans by creator",
			zap.Error(err),
			zap.String("creator_id", creatorID.String()),
		)
		return nil, fmt.Errorf("find appointment plans by creator %s: %w", creatorID.String(), err)
	}
	defer rows.Close()

	var plans []*entity.AppointmentPlan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			r.log.Error("Failed to scan appointment plan row", zap.Error(err))
			return nil, fmt.Errorf("scan appointment plan row: %w", err)
		}
		plans = append(plans, plan)
	}

	return plans, nil
}

func (r *planRepository) Update(ctx context.Context, plan *entity.AppointmentPlan) error {
	query := `
		UPDATE appointment_plans
		SET title = $2, duration_minutes = $3, capacity = $4, default_gateway = $5,
		    reschedule_amount = $6, reschedule_unit = $7, list_price = $8, currency_id = $9,
		    is_private = $10, published_at = $11, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(ctx, query,
		plan.ID,
		plan.Title,
		plan.DurationMinutes,
		plan.Capacity,
		plan.DefaultGateway,
		plan.RescheduleAmount,
		plan.RescheduleUnit,
		plan.ListPrice,
		plan.CurrencyID,
		plan.IsPrivate,
		plan.PublishedAt,
	)

	if err != nil {
		r.log.Error("Failed to update appointment plan",
			zap.Error(err),
			zap.String("plan_id", plan.ID.String()),
		)
		return fmt.Errorf("update appointment plan %s: %w", plan.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("appointment plan %s not found", plan.ID.String())
	}

	return nil
}

func (r *planRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE appointment_plans SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete appointment plan",
			zap.Error(err),
			zap.String("plan_id", id.String()),
		)
		return fmt.Errorf("delete appointment plan %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("appointment plan %s not found", id.String())
	}

	r.log.Info("Appointment plan deleted", zap.String("plan_id", id.String()))
	return nil
}
