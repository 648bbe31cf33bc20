package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/config"
	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/logger"
)

// DB represents the database connection
type DB struct {
	*sql.DB
	logger   *logger.Logger
	recorder QueryRecorder
}

// QueryRecorder receives query timings, typically a metrics collector
type QueryRecorder interface {
	RecordDBQuery(operation, table string, duration time.Duration)
}

// NewConnection opens a PostgreSQL connection pool and verifies it
func NewConnection(cfg *config.DatabaseConfig, log *logger.Logger) (*DB, error) {
	sqlDB, err := sql.Open("postgres", ConnectionString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.WithComponent("database").Info("Database connection established successfully")
	return New(sqlDB, log), nil
}

// New wraps an already opened *sql.DB
func New(sqlDB *sql.DB, log *logger.Logger) *DB {
	return &DB{
		DB:     sqlDB,
		logger: log,
	}
}

// ConnectionString returns the DSN for cfg, preferring an explicit URL
func ConnectionString(cfg *config.DatabaseConfig) string {
	if cfg.URL != "" {
		return cfg.URL
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.DB != nil {
		return db.DB.Close()
	}
	return nil
}

// Health checks the database connection health
func (db *DB) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return db.PingContext(ctx)
}

// SetQueryRecorder installs r to receive query timings
func (db *DB) SetQueryRecorder(r QueryRecorder) {
	db.recorder = r
}

// Observe logs a finished query, records its timing and returns err unchanged
func (db *DB) Observe(ctx context.Context, operation, table string, start time.Time, rows int64, err error) error {
	elapsed := time.Since(start)
	if db.recorder != nil {
		db.recorder.RecordDBQuery(operation, table, elapsed)
	}
	db.logger.DatabaseOperation(ctx, operation, table, elapsed.Milliseconds(), rows, err == nil, nil)
	return err
}
