package optimizer

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Lilvamp237/Smart-Home-Energy-Tracker/internal/logger"
	"github.com/Lilvamp237/Smart-Home-Energy-Tracker/internal/models"
	"github.com/Lilvamp237/Smart-Home-Energy-Tracker/internal/rules"
)

const testRules = `
rules:
  - id: peak_laundry
    description: "Shift laundry to off-peak. Saves money"
    impact: High
    category: Load-Shifting
    threshold_wh: 100
    applies_to: PeakHours
  - id: peak_hvac
    description: "Raise the thermostat during peak hours. Small changes compound"
    impact: Medium
    category: Cost-Saving
    threshold_wh: 150
    applies_to: PeakHours
`

// 18:00 on a Wednesday is inside PeakHours (multiplier 1.5).
var peakTime = time.Date(2025, 1, 15, 18, 0, 0, 0, time.UTC)

// 10:00 is ShoulderHours; the fixture has no shoulder rules.
var shoulderTime = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

func loadedStore(t *testing.T, content string) *rules.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	store := rules.NewStore(logger.Nop())
	if err := store.Load(path); err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	return store
}

func record(household int, kwh float64) models.UsageRecord {
	return models.UsageRecord{HouseholdID: household, EnergyKWh: kwh, Timestamp: peakTime}
}

func TestGenerateUnavailableStore(t *testing.T) {
	store := rules.NewStore(logger.Nop())
	_ = store.Load(filepath.Join(t.TempDir(), "missing.yaml"))

	engine := NewEngine(store, logger.Nop())
	got := engine.Generate([]models.UsageRecord{record(1, 0.5)}, peakTime)

	if len(got) != 1 {
		t.Fatalf("got %d suggestions, want 1", len(got))
	}
	if got[0].Category != "System" || got[0].Impact != "Info" {
		t.Errorf("degraded suggestion: impact=%s category=%s", got[0].Impact, got[0].Category)
	}
	if got[0].TimeSlot != "Unknown" {
		t.Errorf("degraded suggestion slot: got %q", got[0].TimeSlot)
	}
}

func TestGenerateNoRulesForSlot(t *testing.T) {
	engine := NewEngine(loadedStore(t, testRules), logger.Nop())
	got := engine.Generate([]models.UsageRecord{record(1, 0.5)}, shoulderTime)

	if len(got) != 1 {
		t.Fatalf("got %d suggestions, want 1", len(got))
	}
	if got[0].Impact != "Info" {
		t.Errorf("impact: got %s, want Info", got[0].Impact)
	}
	if !strings.Contains(got[0].Text, "ShoulderHours") {
		t.Errorf("text should name the slot: %q", got[0].Text)
	}
	if got[0].TimeSlot != "ShoulderHours" {
		t.Errorf("slot: got %q", got[0].TimeSlot)
	}
}

func TestGenerateThresholdMath(t *testing.T) {
	engine := NewEngine(loadedStore(t, testRules), logger.Nop())

	// 0.2 kWh exceeds the 100 Wh rule but not the 150 Wh one at 0.14.
	got := engine.Generate([]models.UsageRecord{record(3, 0.2)}, peakTime)

	if len(got) != 2 {
		t.Fatalf("got %d suggestions, want 2", len(got))
	}

	first := got[0]
	if first.ID != 1 {
		t.Errorf("first id: got %d, want 1", first.ID)
	}
	// savings = 0.2 * (1.5 - 1.0) = 0.1
	if math.Abs(first.PotentialSavingsKWh-0.1) > 1e-9 {
		t.Errorf("savings: got %v, want 0.1", first.PotentialSavingsKWh)
	}
	if first.ThresholdKWh != 0.1 {
		t.Errorf("threshold kwh: got %v, want 0.1", first.ThresholdKWh)
	}
	if !strings.Contains(first.Text, "Current usage: 0.200 kWh") {
		t.Errorf("text missing usage: %q", first.Text)
	}
	if !strings.Contains(first.Text, "Potential savings: 0.100 kWh (33.3% cost reduction)") {
		t.Errorf("text missing savings: %q", first.Text)
	}
	if first.HouseholdID == nil || *first.HouseholdID != 3 {
		t.Errorf("household: got %v", first.HouseholdID)
	}

	if got[1].ID != 2 {
		t.Errorf("second id: got %d, want 2", got[1].ID)
	}
}

func TestGenerateIDsIncrementPerEmission(t *testing.T) {
	engine := NewEngine(loadedStore(t, testRules), logger.Nop())

	records := []models.UsageRecord{record(1, 0.3), record(2, 0.12)}
	got := engine.Generate(records, peakTime)

	// Record 1 exceeds both thresholds, record 2 only the 100 Wh one.
	if len(got) != 3 {
		t.Fatalf("got %d suggestions, want 3", len(got))
	}
	for i, s := range got {
		if s.ID != i+1 {
			t.Errorf("suggestion %d: id %d", i, s.ID)
		}
	}
}

func TestGenerateFallbackWhenNothingExceeds(t *testing.T) {
	engine := NewEngine(loadedStore(t, testRules), logger.Nop())
	got := engine.Generate([]models.UsageRecord{record(1, 0.05)}, peakTime)

	if len(got) != 1 {
		t.Fatalf("got %d suggestions, want 1", len(got))
	}
	s := got[0]
	if s.Impact != "Low" || s.Category != "Efficiency" {
		t.Errorf("fallback: impact=%s category=%s", s.Impact, s.Category)
	}
	if !strings.Contains(s.Text, "PeakHours") || !strings.Contains(s.Text, "1.5x") {
		t.Errorf("fallback text: %q", s.Text)
	}
	if s.CostMultiplier != 1.5 {
		t.Errorf("fallback multiplier: got %v", s.CostMultiplier)
	}
}

func TestGenerateNoRecords(t *testing.T) {
	engine := NewEngine(loadedStore(t, testRules), logger.Nop())
	got := engine.Generate(nil, peakTime)

	if len(got) != 1 || got[0].Category != "Efficiency" {
		t.Fatalf("expected single efficiency fallback, got %+v", got)
	}
}
