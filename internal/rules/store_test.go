package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Lilvamp237/Smart-Home-Energy-Tracker/internal/logger"
)

const validRules = `
rules:
  - id: peak_hvac
    description: "Reduce HVAC usage during peak hours. Raising the thermostat 2 degrees cuts costs"
    impact: High
    category: Cost-Saving
    threshold_wh: 150
    applies_to: PeakHours
  - id: peak_laundry
    description: "Shift laundry to off-peak. Saves money"
    impact: Medium
    category: Load-Shifting
    threshold_wh: 100
    applies_to: PeakHours
  - id: offpeak_charge
    description: "Charge devices and batteries now. Off-peak power is cheapest"
    impact: Low
    category: Efficiency
    threshold_wh: 200
    applies_to: OffPeakHours
`

func writeRuleFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadValidFile(t *testing.T) {
	store := NewStore(logger.Nop())
	if err := store.Load(writeRuleFile(t, validRules)); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if !store.Available() {
		t.Fatal("store should be available after load")
	}
	if store.Len() != 3 {
		t.Errorf("got %d rules, want 3", store.Len())
	}

	peak := store.RulesForSlot("PeakHours")
	if len(peak) != 2 {
		t.Fatalf("got %d peak rules, want 2", len(peak))
	}
	// File order is preserved.
	if peak[0].ID != "peak_hvac" || peak[1].ID != "peak_laundry" {
		t.Errorf("peak rules out of order: %s, %s", peak[0].ID, peak[1].ID)
	}
	if peak[1].ThresholdWh != 100 {
		t.Errorf("threshold exposed unconverted: got %v, want 100", peak[1].ThresholdWh)
	}
}

func TestLoadMissingFile(t *testing.T) {
	store := NewStore(logger.Nop())
	if err := store.Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
	if store.Available() {
		t.Error("store should be unavailable")
	}
	if store.LoadError() == nil {
		t.Error("load error should be recorded")
	}
	if got := store.RulesForSlot("PeakHours"); len(got) != 0 {
		t.Errorf("unavailable store returned %d rules", len(got))
	}
}

func TestLoadMalformedFile(t *testing.T) {
	store := NewStore(logger.Nop())
	if err := store.Load(writeRuleFile(t, "rules: {not a list")); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
	if store.Available() {
		t.Error("store should be unavailable")
	}
}

func TestLoadRejectsInvalidRecords(t *testing.T) {
	bad := `
rules:
  - id: broken
    description: "Missing slot and non-positive threshold"
    impact: Sideways
    category: Test
    threshold_wh: 0
    applies_to: LunchHours
`
	store := NewStore(logger.Nop())
	if err := store.Load(writeRuleFile(t, bad)); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestFailedReloadKeepsPreviousRules(t *testing.T) {
	store := NewStore(logger.Nop())
	if err := store.Load(writeRuleFile(t, validRules)); err != nil {
		t.Fatal(err)
	}

	if err := store.Load(filepath.Join(t.TempDir(), "gone.yaml")); err == nil {
		t.Fatal("expected reload error")
	}

	// Old snapshot must survive the failed reload.
	if !store.Available() {
		t.Fatal("store lost its rules after failed reload")
	}
	if store.Len() != 3 {
		t.Errorf("got %d rules after failed reload, want 3", store.Len())
	}
}

func TestRulesForSlotUnknownSlot(t *testing.T) {
	store := NewStore(logger.Nop())
	if err := store.Load(writeRuleFile(t, validRules)); err != nil {
		t.Fatal(err)
	}
	if got := store.RulesForSlot("ShoulderHours"); len(got) != 0 {
		t.Errorf("got %d shoulder rules, want 0", len(got))
	}
}
