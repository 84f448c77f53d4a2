package optimizer

import (
	"fmt"
	"math"
	"time"

	"github.com/Lilvamp237/Smart-Home-Energy-Tracker/internal/logger"
	"github.com/Lilvamp237/Smart-Home-Energy-Tracker/internal/models"
	"github.com/Lilvamp237/Smart-Home-Energy-Tracker/internal/pricing"
	"github.com/Lilvamp237/Smart-Home-Energy-Tracker/internal/rules"
)

// Engine cross-references usage records against the rule base for the
// current pricing slot. It never fails past its boundary: a broken or
// empty rule base degrades into informational suggestions so callers
// always get something to render.
type Engine struct {
	store *rules.Store
	log   *logger.Logger
}

func NewEngine(store *rules.Store, log *logger.Logger) *Engine {
	return &Engine{store: store, log: log}
}

// Generate produces optimization suggestions for the given usage
// records at the given time. The result is never empty.
func (e *Engine) Generate(records []models.UsageRecord, now time.Time) []models.Suggestion {
	if !e.store.Available() {
		e.log.Warn("suggestion generation with unavailable rule base", "reason", e.store.LoadError())
		return []models.Suggestion{{
			ID:       0,
			Text:     "Optimization engine unavailable. Please restart the server to reload the rule base.",
			Impact:   "Info",
			Category: "System",
			TimeSlot: "Unknown",
		}}
	}

	slot := pricing.ClassifySlot(now.Hour())

	slotRules := e.store.RulesForSlot(slot.Name)
	if len(slotRules) == 0 {
		return []models.Suggestion{{
			ID:       0,
			Text:     fmt.Sprintf("No optimization rules found for current time slot: %s", slot.Name),
			Impact:   "Info",
			Category: "System",
			TimeSlot: slot.Name,
		}}
	}

	var suggestions []models.Suggestion
	nextID := 1

	for _, record := range records {
		for _, rule := range slotRules {
			// Thresholds are stored in Wh; comparisons happen in kWh.
			thresholdKWh := rule.ThresholdWh / 1000

			if record.EnergyKWh <= thresholdKWh {
				continue
			}

			potentialSavingsKWh := record.EnergyKWh * (slot.Multiplier - 1.0)
			savingsPercentage := (slot.Multiplier - 1.0) / slot.Multiplier * 100

			text := fmt.Sprintf(
				"%s Current usage: %.3f kWh. Potential savings: %.3f kWh (%.1f%% cost reduction).",
				rule.Description, record.EnergyKWh, potentialSavingsKWh, savingsPercentage,
			)

			householdID := record.HouseholdID
			suggestions = append(suggestions, models.Suggestion{
				ID:                  nextID,
				Text:                text,
				Impact:              rule.Impact,
				Category:            rule.Category,
				HouseholdID:         &householdID,
				CurrentUsageKWh:     round4(record.EnergyKWh),
				ThresholdKWh:        round4(thresholdKWh),
				TimeSlot:            slot.Name,
				CostMultiplier:      slot.Multiplier,
				PotentialSavingsKWh: round4(potentialSavingsKWh),
				Timestamp:           record.Timestamp.Format(time.RFC3339),
			})
			nextID++
		}
	}

	// Nothing over threshold: one general efficiency note for the slot.
	if len(suggestions) == 0 {
		suggestions = append(suggestions, models.Suggestion{
			ID: 1,
			Text: fmt.Sprintf(
				"Current time slot: %s (cost multiplier: %.1fx). Energy usage is within normal ranges. Continue monitoring for optimization opportunities.",
				slot.Name, slot.Multiplier,
			),
			Impact:         "Low",
			Category:       "Efficiency",
			TimeSlot:       slot.Name,
			CostMultiplier: slot.Multiplier,
		})
	}

	return suggestions
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
