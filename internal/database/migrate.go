// internal/database/migrate.go
package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies every pending embedded migration to databaseURL. A database
// left dirty by an interrupted run is forced back to its recorded version
// before migrating.
func Migrate(databaseURL string, logger logrus.FieldLogger) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open migration source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if dirty {
		logger.WithField("version", version).Warn("database schema is dirty, forcing recorded version")
		if err := m.Force(int(version)); err != nil {
			return fmt.Errorf("failed to clear dirty schema: %w", err)
		}
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.WithField("version", version).Debug("database schema up to date")
			return nil
		}
		return fmt.Errorf("failed to migrate: %w", err)
	}
	version, _, _ = m.Version()
	logger.WithField("version", version).Info("database schema migrated")
	return nil
}
