package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"libraryhub/internal/config"
	"libraryhub/internal/http-api/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Store bundles the three views over one connection pool:
// gorm for the write side, sqlx for reports, and the raw pool for health checks.
type Store struct {
	SQL  *sql.DB
	Gorm *gorm.DB
	X    *sqlx.DB
}

// Connect opens the pool, verifies it and wires gorm and sqlx on top of it.
func Connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	connCfg, err := pgx.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}

	sqlDB := stdlib.OpenDB(*connCfg)
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		// close the pool if ping fails to avoid resource leak
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	level := gormlogger.Warn
	if cfg.IsProduction() {
		level = gormlogger.Silent
	}
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(level),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	logger.Info("database_connected",
		"host", connCfg.Host,
		"database", connCfg.Database,
		"max_open_conns", cfg.DBMaxOpenConns,
	)
	return &Store{
		SQL:  sqlDB,
		Gorm: gormDB,
		X:    sqlx.NewDb(sqlDB, "pgx"),
	}, nil
}

// Close releases the shared pool.
func (s *Store) Close() error {
	if s == nil || s.SQL == nil {
		return nil
	}
	return s.SQL.Close()
}

// Migrate creates or updates every table, index and check constraint.
func Migrate(ctx context.Context, db *gorm.DB, logger *slog.Logger) error {
	if err := db.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	logger.Info("database_migrated", "tables", len(models.All()))
	return nil
}
