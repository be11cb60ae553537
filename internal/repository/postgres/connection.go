package postgres

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/config"
)

// NewConnection creates the request-scoped PostgreSQL connection pool
func NewConnection(cfg config.DatabaseConfig) (*sql.DB, error) {
	return open(cfg, cfg.User, cfg.Password)
}

// NewAdminConnection creates the elevated-privilege pool used for admin and
// dispatcher writes. Falls back to the primary credentials when no elevated
// role is configured.
func NewAdminConnection(cfg config.DatabaseConfig) (*sql.DB, error) {
	user, password := cfg.AdminUser, cfg.AdminPassword
	if user == "" {
		user, password = cfg.User, cfg.Password
	}
	return open(cfg, user, password)
}

func open(cfg config.DatabaseConfig, user, password string) (*sql.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, user, password, cfg.DBName, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
