// Package database manages the relational sink: Postgres when configured,
// with a local SQLite file as the fallback.
package database

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ls4096/sailnavsim-core/internal/model"
)

// Manager handles the database connection and schema migration.
type Manager struct {
	DB      *gorm.DB
	IsValid bool
	Logger  zerolog.Logger
}

// NewManager creates a new database manager.
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{Logger: log}
}

// Connect establishes a database connection. With db.driver set to
// "postgres" the configured server is used; anything else (or a failed
// Postgres connection) falls back to the local SQLite file.
func (m *Manager) Connect() error {
	var err error

	if viper.GetString("db.driver") == "postgres" {
		m.DB, err = m.openPostgres()
		if err != nil {
			m.Logger.Error().Err(err).Msg("Failed to connect to Postgres DB, trying SQLite")
		}
	}

	if m.DB == nil {
		m.DB, err = m.openSqlite(viper.GetString("db.sqliteFile"))
		if err != nil {
			return fmt.Errorf("failed to open local SQLite DB: %w", err)
		}
	}

	if err := m.DB.AutoMigrate(model.DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	m.IsValid = true
	m.Logger.Info().Msg("Connected to database")
	return nil
}

func (m *Manager) openPostgres() (*gorm.DB, error) {
	dsn := fmt.Sprintf(`host=%s port=%s user=%s password=%s dbname=%s sslmode=disable`,
		viper.GetString("db.host"),
		viper.GetString("db.port"),
		viper.GetString("db.username"),
		viper.GetString("db.password"),
		viper.GetString("db.database"),
	)

	m.Logger.Debug().Msgf("Connecting to Postgres DB at '%s'", dsn)

	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        2000,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
}

func (m *Manager) openSqlite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		CreateBatchSize:        2000,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	m.Logger.Info().Str("path", path).Msg("Using local SQLite DB")
	return db, nil
}

// IsBusy reports whether the error is SQLite contention worth a retry.
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}
