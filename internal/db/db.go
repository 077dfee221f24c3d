// Package db opens the PostgreSQL connection used by the document repository.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"time"

	"github.com/SHADOW0715/Hostel-Management-System/internal/config"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Pool defaults applied when the config leaves a setting at zero.
const (
	defaultMaxOpenConns    = 10
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 5 * time.Minute
	defaultConnMaxIdleTime = time.Minute
)

// DSN builds a postgres:// URL; user and password are escaped.
func DSN(cfg config.DatabaseConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, cfg.Port),
		Path:     "/" + cfg.DBName,
		RawQuery: url.Values{"sslmode": {sslMode}}.Encode(),
	}
	return u.String()
}

// New connects with the configured pool limits and verifies the connection.
func New(ctx context.Context, cfg config.DatabaseConfig) (*bun.DB, error) {
	database, err := NewWithDSN(ctx, DSN(cfg))
	if err != nil {
		return nil, err
	}

	pool := poolFromConfig(cfg)
	pool.apply(database.DB)
	slog.Info("database pool configured",
		"max_open_conns", pool.maxOpen,
		"max_idle_conns", pool.maxIdle,
		"conn_max_lifetime", pool.maxLifetime.String(),
		"conn_max_idle_time", pool.maxIdleTime.String(),
	)
	return database, nil
}

// NewWithDSN skips pool tuning; tests point it at a container.
func NewWithDSN(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	database := bun.NewDB(sqldb, pgdialect.New())

	if err := database.PingContext(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("database connected successfully")
	return database, nil
}

type pool struct {
	maxOpen     int
	maxIdle     int
	maxLifetime time.Duration
	maxIdleTime time.Duration
}

func poolFromConfig(cfg config.DatabaseConfig) pool {
	p := pool{
		maxOpen:     cfg.MaxOpenConns,
		maxIdle:     cfg.MaxIdleConns,
		maxLifetime: time.Duration(cfg.ConnMaxLifetime) * time.Second,
		maxIdleTime: time.Duration(cfg.ConnMaxIdleTime) * time.Second,
	}
	if p.maxOpen <= 0 {
		p.maxOpen = defaultMaxOpenConns
	}
	if p.maxIdle <= 0 {
		p.maxIdle = defaultMaxIdleConns
	}
	if p.maxIdle > p.maxOpen {
		p.maxIdle = p.maxOpen
	}
	if p.maxLifetime <= 0 {
		p.maxLifetime = defaultConnMaxLifetime
	}
	if p.maxIdleTime <= 0 {
		p.maxIdleTime = defaultConnMaxIdleTime
	}
	return p
}

func (p pool) apply(sqlDB *sql.DB) {
	sqlDB.SetMaxOpenConns(p.maxOpen)
	sqlDB.SetMaxIdleConns(p.maxIdle)
	sqlDB.SetConnMaxLifetime(p.maxLifetime)
	sqlDB.SetConnMaxIdleTime(p.maxIdleTime)
}

// CreateTables creates a table per model unless it already exists.
func CreateTables(ctx context.Context, database bun.IDB, models ...interface{}) error {
	for _, model := range models {
		if _, err := database.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", model, err)
		}
	}
	return nil
}
