package forecast

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Lilvamp237/Smart-Home-Energy-Tracker/internal/logger"
	"github.com/Lilvamp237/Smart-Home-Energy-Tracker/internal/models"
	"github.com/Lilvamp237/Smart-Home-Energy-Tracker/internal/pricing"
)

// FeatureCount is the width of the model's input vector:
// [hour, weekday, is_weekend, time_category,
//  lag_1, lag_2, lag_3, rolling_mean_3, rolling_mean_6, rolling_std_3]
const FeatureCount = 10

// ErrPredictorUnavailable means no model is loaded; callers report it
// as service-unavailable, distinct from a generation failure.
var ErrPredictorUnavailable = errors.New("prediction model not loaded")

// Lag and rolling features use constant stand-ins for recent-history
// statistics. A production variant would source them from the most
// recent actual readings; the constants match the training data mean.
const (
	placeholderMeanKWh = 0.2
	placeholderStdKWh  = 0.02
)

// Pipeline produces the 24-point forward forecast from an externally
// supplied predictor.
type Pipeline struct {
	predictor Predictor
	log       *logger.Logger
}

func NewPipeline(predictor Predictor, log *logger.Logger) *Pipeline {
	return &Pipeline{predictor: predictor, log: log}
}

// Available reports whether a predictor is loaded.
func (p *Pipeline) Available() bool {
	return p.predictor != nil
}

// Forecast returns one prediction per hour for the 24 hours starting
// at the top of now's hour.
func (p *Pipeline) Forecast(now time.Time) ([]models.ForecastPoint, error) {
	if p.predictor == nil {
		return nil, ErrPredictorUnavailable
	}

	anchor := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location())

	points := make([]models.ForecastPoint, 0, 24)
	for hourOffset := 0; hourOffset < 24; hourOffset++ {
		forecastTime := anchor.Add(time.Duration(hourOffset) * time.Hour)
		hour := forecastTime.Hour()
		categoryIdx, categoryName := pricing.ClassifyCategory(hour)

		// time.Weekday counts from Sunday; the model was trained with
		// Monday as 0.
		weekday := (int(forecastTime.Weekday()) + 6) % 7
		isWeekend := 0.0
		if weekday >= 5 {
			isWeekend = 1.0
		}

		features := []float64{
			float64(hour),
			float64(weekday),
			isWeekend,
			float64(categoryIdx),
			placeholderMeanKWh, // lag_1
			placeholderMeanKWh, // lag_2
			placeholderMeanKWh, // lag_3
			placeholderMeanKWh, // rolling_mean_3
			placeholderMeanKWh, // rolling_mean_6
			placeholderStdKWh,  // rolling_std_3
		}

		predicted, err := p.predictor.Predict(features)
		if err != nil {
			return nil, fmt.Errorf("forecast generation failed at offset %d: %w", hourOffset, err)
		}
		if predicted < 0 {
			predicted = 0
		}

		points = append(points, models.ForecastPoint{
			Timestamp:    forecastTime.Format(time.RFC3339),
			PredictedKWh: round4(predicted),
			Hour:         hour,
			DayOfWeek:    forecastTime.Weekday().String(),
			TimeCategory: categoryName,
		})
	}

	return points, nil
}

// Summary totals the forecast and compares its cost against what
// today has already cost.
func Summary(points []models.ForecastPoint, actualKWhToday, unitPrice float64) models.ForecastSummary {
	var totalPredictedKWh float64
	for _, pt := range points {
		totalPredictedKWh += pt.PredictedKWh
	}

	predictedCost := round2(totalPredictedKWh * unitPrice)
	actualCostToday := round2(actualKWhToday * unitPrice)

	trend := "decreasing"
	if predictedCost > actualCostToday {
		trend = "increasing"
	}

	return models.ForecastSummary{
		PredictedCost:   predictedCost,
		ActualCostToday: actualCostToday,
		Difference:      round2(predictedCost - actualCostToday),
		Trend:           trend,
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
