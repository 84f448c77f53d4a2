package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Lilvamp237/Smart-Home-Energy-Tracker/internal/models"
)

// ReadingStore owns all SQL against the energy_readings table.
type ReadingStore struct {
	pool *pgxpool.Pool
}

func NewReadingStore(pool *pgxpool.Pool) *ReadingStore {
	return &ReadingStore{pool: pool}
}

// HistoricalFilter narrows a historical query. Nil fields mean no
// constraint.
type HistoricalFilter struct {
	HouseholdID *int
	Start       *time.Time
	End         *time.Time
}

// HouseholdTotal is a per-household consumption sum.
type HouseholdTotal struct {
	HouseholdID int
	TotalKWh    float64
}

func (s *ReadingStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM energy_readings").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count readings: %w", err)
	}
	return count, nil
}

// Latest returns the most recent reading, or nil when the table is
// empty.
func (s *ReadingStore) Latest(ctx context.Context) (*models.EnergyReading, error) {
	var r models.EnergyReading
	err := s.pool.QueryRow(ctx, `
		SELECT id, timestamp, household_id, energy_kwh, future_energy_kwh
		FROM energy_readings
		ORDER BY timestamp DESC
		LIMIT 1`).Scan(&r.ID, &r.Timestamp, &r.HouseholdID, &r.EnergyKWh, &r.FutureEnergyKWh)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest reading: %w", err)
	}
	return &r, nil
}

// ReadingsSince returns readings after the cutoff in timestamp order.
// householdID 0 means all households.
func (s *ReadingStore) ReadingsSince(ctx context.Context, cutoff time.Time, householdID int) ([]models.EnergyReading, error) {
	query := `
		SELECT id, timestamp, household_id, energy_kwh, future_energy_kwh
		FROM energy_readings
		WHERE timestamp >= $1`
	args := []any{cutoff}
	if householdID != 0 {
		query += " AND household_id = $2"
		args = append(args, householdID)
	}
	query += " ORDER BY timestamp"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("readings since: %w", err)
	}
	defer rows.Close()

	return scanReadings(rows)
}

// Historical returns readings matching the filter in timestamp order.
func (s *ReadingStore) Historical(ctx context.Context, filter HistoricalFilter) ([]models.EnergyReading, error) {
	query := `
		SELECT id, timestamp, household_id, energy_kwh, future_energy_kwh
		FROM energy_readings
		WHERE 1=1`
	var args []any
	if filter.HouseholdID != nil {
		args = append(args, *filter.HouseholdID)
		query += fmt.Sprintf(" AND household_id = $%d", len(args))
	}
	if filter.Start != nil {
		args = append(args, *filter.Start)
		query += fmt.Sprintf(" AND timestamp >= $%d", len(args))
	}
	if filter.End != nil {
		args = append(args, *filter.End)
		query += fmt.Sprintf(" AND timestamp <= $%d", len(args))
	}
	query += " ORDER BY timestamp"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("historical readings: %w", err)
	}
	defer rows.Close()

	return scanReadings(rows)
}

// RecentUsage returns usage records from the last window, newest
// first, capped at limit. The dataset is historical, so when nothing
// falls inside the window it falls back to the most recent readings
// overall.
func (s *ReadingStore) RecentUsage(ctx context.Context, window time.Duration, limit int) ([]models.UsageRecord, error) {
	cutoff := time.Now().Add(-window)

	records, err := s.queryUsage(ctx, `
		SELECT household_id, energy_kwh, timestamp
		FROM energy_readings
		WHERE timestamp >= $1
		ORDER BY timestamp DESC
		LIMIT $2`, cutoff, limit)
	if err != nil {
		return nil, err
	}
	if len(records) > 0 {
		return records, nil
	}

	return s.queryUsage(ctx, `
		SELECT household_id, energy_kwh, timestamp
		FROM energy_readings
		ORDER BY timestamp DESC
		LIMIT $1`, limit)
}

func (s *ReadingStore) queryUsage(ctx context.Context, query string, args ...any) ([]models.UsageRecord, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("recent usage: %w", err)
	}
	defer rows.Close()

	var records []models.UsageRecord
	for rows.Next() {
		var r models.UsageRecord
		if err := rows.Scan(&r.HouseholdID, &r.EnergyKWh, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("scan usage record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// SumSince totals consumption after the given time.
func (s *ReadingStore) SumSince(ctx context.Context, since time.Time) (float64, error) {
	var total float64
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(energy_kwh), 0)
		FROM energy_readings
		WHERE timestamp >= $1`, since).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum readings: %w", err)
	}
	return total, nil
}

// Households lists distinct household ids in ascending order.
func (s *ReadingStore) Households(ctx context.Context) ([]int, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT DISTINCT household_id FROM energy_readings ORDER BY household_id")
	if err != nil {
		return nil, fmt.Errorf("list households: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan household id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// LatestForHousehold returns the household's most recent reading, or
// nil when it has none.
func (s *ReadingStore) LatestForHousehold(ctx context.Context, householdID int) (*models.EnergyReading, error) {
	var r models.EnergyReading
	err := s.pool.QueryRow(ctx, `
		SELECT id, timestamp, household_id, energy_kwh, future_energy_kwh
		FROM energy_readings
		WHERE household_id = $1
		ORDER BY timestamp DESC
		LIMIT 1`, householdID).Scan(&r.ID, &r.Timestamp, &r.HouseholdID, &r.EnergyKWh, &r.FutureEnergyKWh)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest for household: %w", err)
	}
	return &r, nil
}

// TotalsByHousehold sums consumption per household after the cutoff.
func (s *ReadingStore) TotalsByHousehold(ctx context.Context, cutoff time.Time) ([]HouseholdTotal, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT household_id, SUM(energy_kwh)
		FROM energy_readings
		WHERE timestamp >= $1
		GROUP BY household_id
		ORDER BY household_id`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("totals by household: %w", err)
	}
	defer rows.Close()

	var totals []HouseholdTotal
	for rows.Next() {
		var t HouseholdTotal
		if err := rows.Scan(&t.HouseholdID, &t.TotalKWh); err != nil {
			return nil, fmt.Errorf("scan household total: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// InsertBatch writes readings in one round trip.
func (s *ReadingStore) InsertBatch(ctx context.Context, readings []models.EnergyReading) error {
	batch := &pgx.Batch{}
	for _, r := range readings {
		batch.Queue(`
			INSERT INTO energy_readings (timestamp, household_id, energy_kwh, future_energy_kwh)
			VALUES ($1, $2, $3, $4)`,
			r.Timestamp, r.HouseholdID, r.EnergyKWh, r.FutureEnergyKWh)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range readings {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert reading: %w", err)
		}
	}
	return nil
}

// DeleteAll clears the readings table before a full reload.
func (s *ReadingStore) DeleteAll(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "DELETE FROM energy_readings"); err != nil {
		return fmt.Errorf("clear readings: %w", err)
	}
	return nil
}

func scanReadings(rows pgx.Rows) ([]models.EnergyReading, error) {
	var readings []models.EnergyReading
	for rows.Next() {
		var r models.EnergyReading
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.HouseholdID, &r.EnergyKWh, &r.FutureEnergyKWh); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		readings = append(readings, r)
	}
	return readings, rows.Err()
}
