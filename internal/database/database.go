package database

import (
	"embed"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/logger"
	"fintrack/internal/models"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Models lists every table owned by the API, in dependency order.
var Models = []interface{}{
	&models.User{},
	&models.Transaction{},
	&models.Settings{},
	&models.AuditLog{},
}

// Manager handles database operations
type Manager struct {
	db     *gorm.DB
	config *Config
}

// NewManager opens the configured database and tunes its connection pool.
func NewManager(config *Config) (*Manager, error) {
	gormConfig := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)}

	var dialector gorm.Dialector
	switch config.Driver {
	case "sqlite":
		dialector = sqlite.Open(config.SQLitePath + "?_foreign_keys=on")
	case "postgres", "":
		dialector = postgres.New(postgres.Config{
			DSN:                  config.DSN(),
			PreferSimpleProtocol: true,
		})
	default:
		return nil, fmt.Errorf("unsupported database driver %q", config.Driver)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying DB: %w", err)
	}
	if config.Driver == "sqlite" {
		// SQLite serialises writers; one connection avoids "database is locked".
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	return &Manager{db: db, config: config}, nil
}

// RunMigrations brings the schema up to date. PostgreSQL uses the embedded
// SQL migrations; SQLite, used for local development, is auto-migrated.
func (m *Manager) RunMigrations() error {
	logger.Get().Info("Running database migrations...")

	if m.config.Driver == "sqlite" {
		if err := m.db.AutoMigrate(Models...); err != nil {
			return fmt.Errorf("auto-migration failed: %w", err)
		}
		logger.Get().Info("Database migrations completed successfully")
		return nil
	}

	err := m.withMigrator(func(mig *migrate.Migrate) error {
		if err := mig.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migration failed: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Get().Info("Database migrations completed successfully")
	return nil
}

// RollbackMigration reverts the most recent migration step.
func (m *Manager) RollbackMigration() error {
	if m.config.Driver == "sqlite" {
		return fmt.Errorf("rollback is only supported for postgres")
	}
	return m.withMigrator(func(mig *migrate.Migrate) error {
		if err := mig.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("rollback failed: %w", err)
		}
		return nil
	})
}

// MigrationVersion reports the applied schema version and whether the last
// migration left the database dirty.
func (m *Manager) MigrationVersion() (uint, bool, error) {
	if m.config.Driver == "sqlite" {
		return 0, false, fmt.Errorf("schema versions are only tracked for postgres")
	}
	var (
		version uint
		dirty   bool
	)
	err := m.withMigrator(func(mig *migrate.Migrate) error {
		var err error
		version, dirty, err = mig.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			return nil
		}
		return err
	})
	return version, dirty, err
}

func (m *Manager) withMigrator(fn func(*migrate.Migrate) error) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create iofs source: %w", err)
	}

	mig, err := migrate.NewWithSourceInstance("iofs", src, m.config.MigrationURL())
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() {
		srcErr, dbErr := mig.Close()
		if srcErr != nil {
			logger.Get().Warnf("migrate source close error: %v", srcErr)
		}
		if dbErr != nil {
			logger.Get().Warnf("migrate database close error: %v", dbErr)
		}
	}()

	return fn(mig)
}

// DB returns the underlying GORM database instance
func (m *Manager) DB() *gorm.DB {
	return m.db
}

// Close releases the connection pool.
func (m *Manager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
