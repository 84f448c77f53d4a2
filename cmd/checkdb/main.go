// Command checkdb verifies connectivity to the readings database and
// prints a short summary of the stored dataset.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Lilvamp237/Smart-Home-Energy-Tracker/internal/config"
	"github.com/Lilvamp237/Smart-Home-Energy-Tracker/internal/database"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	fmt.Println("Connection parameters:")
	fmt.Printf("   Host:   %s\n", cfg.Database.Host)
	fmt.Printf("   Port:   %s\n", cfg.Database.Port)
	fmt.Printf("   User:   %s\n", cfg.Database.User)
	fmt.Printf("   DBName: %s\n", cfg.Database.DBName)

	pool, err := database.NewPool(cfg.Database)
	if err != nil {
		log.Fatalf("Connection failed: %v", err)
	}
	defer pool.Close()

	fmt.Println("Connection established")

	if err := inspect(pool); err != nil {
		log.Fatalf("Inspection failed: %v", err)
	}
}

func inspect(pool *pgxpool.Pool) error {
	ctx := context.Background()

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquiring connection: %w", err)
	}
	defer conn.Release()

	var version string
	if err := conn.QueryRow(ctx, "SELECT version()").Scan(&version); err != nil {
		return fmt.Errorf("querying server version: %w", err)
	}
	fmt.Printf("PostgreSQL version: %s\n", version)

	var count int64
	err = conn.QueryRow(ctx, "SELECT COUNT(*) FROM energy_readings").Scan(&count)
	if err != nil {
		return fmt.Errorf("counting readings: %w", err)
	}
	fmt.Printf("Stored readings: %d\n", count)

	if count == 0 {
		fmt.Println("The readings table is empty; seed it via POST /api/v1/data/load")
		return nil
	}

	var first, last time.Time
	err = conn.QueryRow(ctx,
		"SELECT MIN(timestamp), MAX(timestamp) FROM energy_readings").Scan(&first, &last)
	if err != nil {
		return fmt.Errorf("querying date range: %w", err)
	}
	fmt.Printf("Date range: %s .. %s\n",
		first.Format("2006-01-02 15:04"), last.Format("2006-01-02 15:04"))

	var households int
	err = conn.QueryRow(ctx,
		"SELECT COUNT(DISTINCT household_id) FROM energy_readings").Scan(&households)
	if err != nil {
		return fmt.Errorf("counting households: %w", err)
	}
	fmt.Printf("Households: %d\n", households)

	rows, err := conn.Query(ctx, `
		SELECT timestamp, household_id, energy_kwh
		FROM energy_readings
		ORDER BY timestamp DESC
		LIMIT 5
	`)
	if err != nil {
		return fmt.Errorf("querying sample rows: %w", err)
	}
	defer rows.Close()

	fmt.Println("Most recent readings:")
	for rows.Next() {
		var ts time.Time
		var household int
		var kwh float64
		if err := rows.Scan(&ts, &household, &kwh); err != nil {
			return fmt.Errorf("scanning sample row: %w", err)
		}
		fmt.Printf("   %s  household=%d  %.4f kWh\n",
			ts.Format("2006-01-02 15:04"), household, kwh)
	}
	return rows.Err()
}
