package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Lilvamp237/Smart-Home-Energy-Tracker/internal/config"
)

// NewPool creates a pgx connection pool and verifies the database is
// reachable before returning it.
func NewPool(conf config.DatabaseConfig) (*pgxpool.Pool, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		conf.Host, conf.Port, conf.User, conf.Password, conf.DBName, conf.SSLMode)

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse config failed: %w", err)
	}

	poolConfig.MaxConns = 20
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("pool creation error: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	return pool, nil
}

// Migrate creates the readings table when it does not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS energy_readings (
			id BIGSERIAL PRIMARY KEY,
			timestamp TIMESTAMPTZ NOT NULL,
			household_id INT NOT NULL,
			energy_kwh DOUBLE PRECISION NOT NULL,
			future_energy_kwh DOUBLE PRECISION
		)`)
	if err != nil {
		return fmt.Errorf("create energy_readings: %w", err)
	}
	_, err = pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS idx_energy_readings_timestamp
			ON energy_readings (timestamp)`)
	if err != nil {
		return fmt.Errorf("create timestamp index: %w", err)
	}
	_, err = pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS idx_energy_readings_household
			ON energy_readings (household_id)`)
	if err != nil {
		return fmt.Errorf("create household index: %w", err)
	}
	return nil
}
