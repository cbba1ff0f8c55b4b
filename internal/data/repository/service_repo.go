package repository

import (
	"context"
	"fmt"
	"time"

	"appointment-booking/internal/data/entity"
	"appointment-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ServiceRepository interface {
	Create(ctx context.Context, service *entity.Service) error
	FindIDsByAppAndGateway(ctx context.Context, appID string, gateway entity.Gateway) ([]uuid.UUID, error)
	// FindFreeService returns a service account of the given gateway with no
	// live exclusive meet overlapping [start, end), or nil when the pool is
	// exhausted. Non-exclusive gateways always have a free account.
	FindFreeService(ctx context.Context, appID string, gateway entity.Gateway, start, end time.Time) (*entity.Service, error)
}

type serviceRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewServiceRepository(db database.Querier, log *zap.Logger) ServiceRepository {
	return &serviceRepository{
		db:  db,
		log: log.With(zap.String("repository", "service")),
	}
}

func (r *serviceRepository) Create(ctx context.Context, service *entity.Service) error {
	query := `
		INSERT INTO services (id, app_id, gateway, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.Exec(ctx, query,
		service.ID,
		service.AppID,
		service.Gateway,
		service.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create service",
			zap.Error(err),
			zap.String("app_id", service.AppID),
			zap.String("gateway", string(service.Gateway)),
		)
		return fmt.Errorf("create %s service for app %s: %w", string(service.Gateway), service.AppID, err)
	}

	return nil
}

func (r *serviceRepository) FindIDsByAppAndGateway(ctx context.Context, appID string, gateway entity.Gateway) ([]uuid.UUID, error) {
	query := `SELECT id FROM services WHERE app_id = $1 AND gateway = $2 ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, appID, gateway)
	if err != nil {
		r.log.Error("Failed to find services by app and gateway",
			zap.Error(err),
			zap.String("app_id", appID),
			zap.String("gateway", string(gateway)),
		)
		return nil, fmt.Errorf("find %s services for app %s: %w", string(gateway), appID, err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			r.log.Error("Failed to scan service row", zap.Error(err))
			return nil, fmt.Errorf("scan service row: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

func (r *serviceRepository) FindFreeService(ctx context.Context, appID string, gateway entity.Gateway, start, end time.Time) (*entity.Service, error) {
	// Only zoom meets occupy their service account exclusively, so the
	// overlap check is scoped to them; for jitsi it never disqualifies.
	query := `
		SELECT s.id, s.app_id, s.gateway, s.created_at
		FROM services s
		WHERE s.app_id = $1 AND s.gateway = $2
		  AND NOT EXISTS (
			SELECT 1 FROM meets m
			WHERE m.service_id = s.id
			  AND m.gateway = 'zoom'
			  AND m.deleted_at IS NULL
			  AND m.started_at < $4 AND m.ended_at > $3
		  )
		ORDER BY s.created_at
		LIMIT 1
	`

	var service entity.Service
	err := r.db.QueryRow(ctx, query, appID, gateway, start, end).Scan(
		&service.ID,
		&service.AppID,
		&service.Gateway,
		&service.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find free service",
			zap.Error(err),
			zap.String("app_id", appID),
			zap.String("gateway", string(gateway)),
			zap.Time("start", start),
		)
		return nil, fmt.Errorf("find free %s service for app %s: %w", string(gateway), appID, err)
	}

	return &service, nil
}
