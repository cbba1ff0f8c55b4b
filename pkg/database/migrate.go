package database

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"appointment-booking/pkg/utils"
)

// Migrate applies all pending migrations from config.MigrationsPath.
// Returns (false, nil) when the schema was already up to date.
func Migrate(config utils.DatabaseConfig) (bool, error) {
	dbURL := fmt.Sprintf("pgx5://%s:%s@%s:%s/%s?sslmode=disable",
		url.QueryEscape(config.User),
		url.QueryEscape(config.Password),
		config.Host, config.Port, config.Name)

	m, err := migrate.New("file://"+config.MigrationsPath, dbURL)
	if err != nil {
		return false, fmt.Errorf("init migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return false, nil
		}
		return false, fmt.Errorf("apply migrations: %w", err)
	}
	return true, nil
}
