package ingest

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/Lilvamp237/Smart-Home-Energy-Tracker/internal/logger"
	"github.com/Lilvamp237/Smart-Home-Energy-Tracker/internal/models"
	"github.com/Lilvamp237/Smart-Home-Energy-Tracker/internal/store"
)

// Simulator appends synthetic 5-minute meter readings for demos and
// local development, so the dashboard keeps moving without a live
// meter feed.
type Simulator struct {
	store    *store.ReadingStore
	log      *logger.Logger
	interval time.Duration

	mu         sync.Mutex
	households []int
	cancel     context.CancelFunc
	running    bool
}

func NewSimulator(st *store.ReadingStore, log *logger.Logger, interval time.Duration) *Simulator {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Simulator{store: st, log: log, interval: interval}
}

// Start launches the generation loop. It reads the known households up
// front; with an empty database it falls back to a single household.
func (s *Simulator) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	households, err := s.store.Households(ctx)
	if err != nil {
		return err
	}
	if len(households) == 0 {
		households = []int{1}
	}
	s.households = households

	ctx, s.cancel = context.WithCancel(ctx)
	s.running = true
	go s.loop(ctx)

	s.log.Info("Reading simulator started", "households", len(households), "interval", s.interval)
	return nil
}

func (s *Simulator) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.cancel()
	s.running = false
	s.log.Info("Reading simulator stopped")
}

func (s *Simulator) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Simulator) loop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if err := s.emit(ctx, now); err != nil {
				s.log.Warn("Simulated reading insert failed", "error", err)
			}
		}
	}
}

// emit writes one reading per household, shaped by the time of day so
// evening peaks and overnight lulls show up in the charts.
func (s *Simulator) emit(ctx context.Context, now time.Time) error {
	batch := make([]models.EnergyReading, 0, len(s.households))
	for _, id := range s.households {
		base := 0.08 + rand.Float64()*0.12 // kWh per 5-minute interval
		batch = append(batch, models.EnergyReading{
			Timestamp:   now,
			HouseholdID: id,
			EnergyKWh:   base * dailyShape(now.Hour()),
		})
	}
	return s.store.InsertBatch(ctx, batch)
}

func dailyShape(hour int) float64 {
	switch {
	case hour >= 18 && hour < 22:
		return 1.4
	case hour >= 7 && hour < 10:
		return 1.3
	case hour >= 23 || hour < 6:
		return 0.7
	default:
		return 1.1
	}
}
