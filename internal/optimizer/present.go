package optimizer

import (
	"fmt"
	"strings"

	"github.com/Lilvamp237/Smart-Home-Energy-Tracker/internal/models"
)

const maxTitleLen = 100

// ToDisplay converts raw engine output into the ranked caller-facing
// shape. Kept separate from generation so alternate presentations can
// reuse the engine untouched.
//
// The daily projection assumes the sampled reading holds as a constant
// rate for a full day; that modeling assumption is inherited from the
// savings formula, not a derivation from actual daily profiles.
func ToDisplay(suggestions []models.Suggestion, unitPrice float64) []models.DisplaySuggestion {
	out := make([]models.DisplaySuggestion, 0, len(suggestions))

	for idx, s := range suggestions {
		i := idx + 1

		energySaving := s.PotentialSavingsKWh * 24
		costSaving := energySaving * unitPrice

		var priority string
		var score float64
		switch s.Impact {
		case "High":
			priority = "high"
			score = 8.5 + 0.1*float64(i)
		case "Medium":
			priority = "medium"
			score = 6.0 + 0.1*float64(i)
		default:
			priority = "low"
			score = 4.0 + 0.1*float64(i)
		}
		if score > 10.0 {
			score = 10.0
		}

		title, description := splitText(s.Text, s.TimeSlot)

		out = append(out, models.DisplaySuggestion{
			ID:          s.ID,
			Title:       title,
			Description: description,
			Impact: models.SuggestionImpact{
				EnergySaving: fmt.Sprintf("%.1f kWh/day", energySaving),
				CostSaving:   fmt.Sprintf("$%.2f/day", costSaving),
				Score:        score,
			},
			Priority:    priority,
			Status:      "pending",
			Category:    s.Category,
			TimeSlot:    s.TimeSlot,
			HouseholdID: s.HouseholdID,
		})
	}

	return out
}

// splitText splits the enhanced text at the first sentence boundary.
// The first sentence becomes the title (capped at 100 characters); the
// rest becomes the description, falling back to the slot name when the
// text is a single sentence.
func splitText(text, timeSlot string) (title, description string) {
	parts := strings.SplitN(text, ". ", 2)

	title = parts[0]
	if len(title) > maxTitleLen {
		title = title[:maxTitleLen]
	}

	if len(parts) > 1 {
		return title, parts[1]
	}
	if timeSlot == "" {
		timeSlot = "N/A"
	}
	return title, fmt.Sprintf("Time slot: %s", timeSlot)
}
