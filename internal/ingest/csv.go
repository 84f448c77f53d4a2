package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Lilvamp237/Smart-Home-Energy-Tracker/internal/logger"
	"github.com/Lilvamp237/Smart-Home-Energy-Tracker/internal/models"
	"github.com/Lilvamp237/Smart-Home-Energy-Tracker/internal/store"
)

const batchSize = 1000

// Expected CSV header:
// timestamp, household_id, energy_consumption_kWh, future_consumption_kWh
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Loader imports meter readings from the energy dataset CSV.
type Loader struct {
	store *store.ReadingStore
	log   *logger.Logger
}

func NewLoader(st *store.ReadingStore, log *logger.Logger) *Loader {
	return &Loader{store: st, log: log}
}

// LoadCSV replaces the readings table with the file's contents.
// limitRows <= 0 loads everything. Rows without a consumption value
// are skipped. Returns the number of rows loaded.
func (l *Loader) LoadCSV(ctx context.Context, path string, limitRows int) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	batchID := uuid.New()
	log := l.log.With("batch_id", batchID.String(), "path", path)
	log.Info("loading energy data")

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read csv header: %w", err)
	}
	cols, err := mapColumns(header)
	if err != nil {
		return 0, err
	}

	if err := l.store.DeleteAll(ctx); err != nil {
		return 0, err
	}
	log.Info("cleared existing readings")

	var (
		batch   []models.EnergyReading
		loaded  int
		skipped int
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := l.store.InsertBatch(ctx, batch); err != nil {
			return err
		}
		loaded += len(batch)
		batch = batch[:0]
		if loaded%5000 == 0 {
			log.Info("loading progress", "rows", loaded)
		}
		return nil
	}

	for limitRows <= 0 || loaded+len(batch) < limitRows {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return loaded, fmt.Errorf("read csv row: %w", err)
		}

		reading, ok := parseRow(row, cols)
		if !ok {
			skipped++
			continue
		}
		batch = append(batch, reading)

		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return loaded, err
			}
		}
	}
	if err := flush(); err != nil {
		return loaded, err
	}

	log.Info("energy data loaded", "rows", loaded, "skipped", skipped)
	return loaded, nil
}

type columns struct {
	timestamp int
	household int
	energy    int
	future    int // -1 when absent
}

func mapColumns(header []string) (columns, error) {
	cols := columns{timestamp: -1, household: -1, energy: -1, future: -1}
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case "timestamp":
			cols.timestamp = i
		case "household_id":
			cols.household = i
		case "energy_consumption_kWh":
			cols.energy = i
		case "future_consumption_kWh":
			cols.future = i
		}
	}
	if cols.timestamp < 0 || cols.household < 0 || cols.energy < 0 {
		return cols, fmt.Errorf("csv header missing required columns: %v", header)
	}
	return cols, nil
}

func parseRow(row []string, cols columns) (models.EnergyReading, bool) {
	var reading models.EnergyReading

	if cols.timestamp >= len(row) || cols.household >= len(row) || cols.energy >= len(row) {
		return reading, false
	}

	ts, ok := parseTimestamp(strings.TrimSpace(row[cols.timestamp]))
	if !ok {
		return reading, false
	}

	household, err := strconv.Atoi(strings.TrimSpace(row[cols.household]))
	if err != nil {
		return reading, false
	}

	energyStr := strings.TrimSpace(row[cols.energy])
	if energyStr == "" {
		return reading, false
	}
	energy, err := strconv.ParseFloat(energyStr, 64)
	if err != nil || energy < 0 {
		return reading, false
	}

	reading.Timestamp = ts
	reading.HouseholdID = household
	reading.EnergyKWh = energy

	if cols.future >= 0 && cols.future < len(row) {
		if futureStr := strings.TrimSpace(row[cols.future]); futureStr != "" {
			if future, err := strconv.ParseFloat(futureStr, 64); err == nil {
				reading.FutureEnergyKWh = &future
			}
		}
	}

	return reading, true
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
