package models

import (
	"time"
)

// EnergyReading is one stored meter reading (5-minute interval).
type EnergyReading struct {
	ID              int64     `json:"id" db:"id"`
	Timestamp       time.Time `json:"timestamp" db:"timestamp"`
	HouseholdID     int       `json:"household_id" db:"household_id"`
	EnergyKWh       float64   `json:"energy_kwh" db:"energy_kwh"`
	FutureEnergyKWh *float64  `json:"future_energy_kwh" db:"future_energy_kwh"`
}

// UsageRecord is the per-request input to the suggestion engine,
// derived from recent readings. The engine does not touch storage.
type UsageRecord struct {
	HouseholdID int       `json:"household_id"`
	EnergyKWh   float64   `json:"energy_kwh"`
	Timestamp   time.Time `json:"timestamp"`
}

// Suggestion is the raw engine output, one per usage/rule match.
type Suggestion struct {
	ID                  int     `json:"id"`
	Text                string  `json:"text"`
	Impact              string  `json:"impact"`
	Category            string  `json:"category"`
	HouseholdID         *int    `json:"household_id"`
	CurrentUsageKWh     float64 `json:"current_usage_kwh"`
	ThresholdKWh        float64 `json:"threshold_kwh,omitempty"`
	TimeSlot            string  `json:"time_slot"`
	CostMultiplier      float64 `json:"cost_multiplier,omitempty"`
	PotentialSavingsKWh float64 `json:"potential_savings_kwh,omitempty"`
	Timestamp           string  `json:"timestamp,omitempty"`
}

// DisplaySuggestion is the caller-facing shape after the presentation
// transform (ranked, titled, with daily projections).
type DisplaySuggestion struct {
	ID          int              `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Impact      SuggestionImpact `json:"impact"`
	Priority    string           `json:"priority"`
	Status      string           `json:"status"`
	Category    string           `json:"category"`
	TimeSlot    string           `json:"timeSlot"`
	HouseholdID *int             `json:"householdId"`
}

type SuggestionImpact struct {
	EnergySaving string  `json:"energySaving"`
	CostSaving   string  `json:"costSaving"`
	Score        float64 `json:"score"`
}

// ForecastPoint is one hourly prediction in the 24-hour forecast.
type ForecastPoint struct {
	Timestamp    string  `json:"timestamp"`
	PredictedKWh float64 `json:"predicted_kwh"`
	Hour         int     `json:"hour"`
	DayOfWeek    string  `json:"day_of_week"`
	TimeCategory string  `json:"time_category"`
}

// ForecastSummary compares the predicted cost for the coming 24 hours
// against what today has actually cost so far.
type ForecastSummary struct {
	PredictedCost   float64 `json:"predictedCost"`
	ActualCostToday float64 `json:"actualCostToday"`
	Difference      float64 `json:"difference"`
	Trend           string  `json:"trend"`
}

// TimeSlotInfo describes the current pricing slot for display.
type TimeSlotInfo struct {
	CurrentSlot    string  `json:"current_slot"`
	CostMultiplier float64 `json:"cost_multiplier"`
	CurrentHour    int     `json:"current_hour"`
	NextTransition string  `json:"next_transition"`
	Recommendation string  `json:"recommendation"`
}
