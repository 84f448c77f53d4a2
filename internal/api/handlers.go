package api

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Lilvamp237/Smart-Home-Energy-Tracker/internal/forecast"
	"github.com/Lilvamp237/Smart-Home-Energy-Tracker/internal/logger"
	"github.com/Lilvamp237/Smart-Home-Energy-Tracker/internal/models"
	"github.com/Lilvamp237/Smart-Home-Energy-Tracker/internal/optimizer"
	"github.com/Lilvamp237/Smart-Home-Energy-Tracker/internal/pricing"
	"github.com/Lilvamp237/Smart-Home-Energy-Tracker/internal/store"
)

// Meter readings arrive at 5-minute intervals, so one reading times 12
// approximates the hourly rate in kW.
const intervalsPerHour = 12

// ReadingSource is the slice of the readings store the handlers need.
type ReadingSource interface {
	Count(ctx context.Context) (int64, error)
	Latest(ctx context.Context) (*models.EnergyReading, error)
	ReadingsSince(ctx context.Context, cutoff time.Time, householdID int) ([]models.EnergyReading, error)
	Historical(ctx context.Context, filter store.HistoricalFilter) ([]models.EnergyReading, error)
	RecentUsage(ctx context.Context, window time.Duration, limit int) ([]models.UsageRecord, error)
	SumSince(ctx context.Context, since time.Time) (float64, error)
	Households(ctx context.Context) ([]int, error)
	LatestForHousehold(ctx context.Context, householdID int) (*models.EnergyReading, error)
	TotalsByHousehold(ctx context.Context, cutoff time.Time) ([]store.HouseholdTotal, error)
}

// CSVLoader triggers a dataset import. Implemented by ingest.Loader.
type CSVLoader interface {
	LoadCSV(ctx context.Context, path string, limitRows int) (int, error)
}

// ForecastCacher is the optional Redis-backed forecast cache.
type ForecastCacher interface {
	Get(ctx context.Context, anchor time.Time) ([]models.ForecastPoint, bool)
	Set(ctx context.Context, anchor time.Time, points []models.ForecastPoint)
}

// Deps wires the handler's collaborators. Cache and Loader may be nil.
type Deps struct {
	Readings  ReadingSource
	Engine    *optimizer.Engine
	Pipeline  *forecast.Pipeline
	Loader    CSVLoader
	Cache     ForecastCacher
	UnitPrice float64
	Log       *logger.Logger
}

type Handler struct {
	readings  ReadingSource
	engine    *optimizer.Engine
	pipeline  *forecast.Pipeline
	loader    CSVLoader
	cache     ForecastCacher
	unitPrice float64
	log       *logger.Logger
	now       func() time.Time
}

func NewHandler(deps Deps) *Handler {
	return &Handler{
		readings:  deps.Readings,
		engine:    deps.Engine,
		pipeline:  deps.Pipeline,
		loader:    deps.Loader,
		cache:     deps.Cache,
		unitPrice: deps.UnitPrice,
		log:       deps.Log,
		now:       time.Now,
	}
}

// Health reports server and database status.
func (h *Handler) Health(c *gin.Context) {
	dbStatus := "connected"
	count, err := h.readings.Count(c.Request.Context())
	if err != nil {
		dbStatus = "error: " + err.Error()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"database":       dbStatus,
		"readings_count": count,
		"timestamp":      h.now().Format(time.RFC3339),
	})
}

// GetCurrentConsumption returns the latest reading converted to kW.
func (h *Handler) GetCurrentConsumption(c *gin.Context) {
	latest, err := h.readings.Latest(c.Request.Context())
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Failed to fetch current consumption", err)
		return
	}

	if latest == nil {
		c.JSON(http.StatusOK, gin.H{
			"current":   0,
			"unit":      "kW",
			"timestamp": h.now().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"current":   round2(latest.EnergyKWh * intervalsPerHour),
		"unit":      "kW",
		"timestamp": latest.Timestamp.Format(time.RFC3339),
	})
}

// GetEnergyUsage aggregates usage over 24h (hourly), 7d (daily) or
// 30d (weekly) buckets.
func (h *Handler) GetEnergyUsage(c *gin.Context) {
	timeRange := c.DefaultQuery("range", "24h")
	householdID, _ := strconv.Atoi(c.Query("household_id"))

	now := h.now()
	var cutoff time.Time
	switch timeRange {
	case "7d":
		cutoff = now.AddDate(0, 0, -7)
	case "30d":
		cutoff = now.AddDate(0, 0, -30)
	default:
		timeRange = "24h"
		cutoff = now.Add(-24 * time.Hour)
	}

	readings, err := h.readings.ReadingsSince(c.Request.Context(), cutoff, householdID)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Failed to fetch energy usage", err)
		return
	}
	if len(readings) == 0 {
		c.JSON(http.StatusOK, []gin.H{})
		return
	}

	switch timeRange {
	case "7d":
		c.JSON(http.StatusOK, h.aggregateDaily(readings, now))
	case "30d":
		c.JSON(http.StatusOK, h.aggregateWeekly(readings, now))
	default:
		c.JSON(http.StatusOK, h.aggregateHourly(readings, now))
	}
}

func (h *Handler) aggregateHourly(readings []models.EnergyReading, now time.Time) []gin.H {
	anchor := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location())

	out := make([]gin.H, 0, 24)
	for i := 0; i < 24; i++ {
		hourStart := anchor.Add(-time.Duration(23-i) * time.Hour)
		hourEnd := hourStart.Add(time.Hour)

		var sum float64
		var n int
		for _, r := range readings {
			if !r.Timestamp.Before(hourStart) && r.Timestamp.Before(hourEnd) {
				sum += r.EnergyKWh
				n++
			}
		}

		var avg float64
		if n > 0 {
			avg = sum / float64(n)
		}
		out = append(out, gin.H{
			"time":        fmt.Sprintf("%d:00", i),
			"consumption": round3(avg),
			"cost":        round2(avg * h.unitPrice),
		})
	}
	return out
}

var dayNames = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

func (h *Handler) aggregateDaily(readings []models.EnergyReading, now time.Time) []gin.H {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	out := make([]gin.H, 0, 7)
	for i := 0; i < 7; i++ {
		dayStart := midnight.AddDate(0, 0, -(6 - i))
		dayEnd := dayStart.AddDate(0, 0, 1)

		var total float64
		for _, r := range readings {
			if !r.Timestamp.Before(dayStart) && r.Timestamp.Before(dayEnd) {
				total += r.EnergyKWh
			}
		}

		out = append(out, gin.H{
			"day":         dayNames[(int(dayStart.Weekday())+6)%7],
			"consumption": round2(total),
			"cost":        round2(total * h.unitPrice),
		})
	}
	return out
}

func (h *Handler) aggregateWeekly(readings []models.EnergyReading, now time.Time) []gin.H {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	out := make([]gin.H, 0, 4)
	for week := 0; week < 4; week++ {
		weekStart := midnight.AddDate(0, 0, -(28 - week*7))
		weekEnd := weekStart.AddDate(0, 0, 7)

		var total float64
		for _, r := range readings {
			if !r.Timestamp.Before(weekStart) && r.Timestamp.Before(weekEnd) {
				total += r.EnergyKWh
			}
		}

		out = append(out, gin.H{
			"week":        fmt.Sprintf("Week %d", week+1),
			"consumption": round2(total),
			"cost":        round2(total * h.unitPrice),
		})
	}
	return out
}

// The dashboard presents households as named appliances; the dataset
// has no appliance-level metering.
var (
	applianceNames  = []string{"HVAC", "Refrigerator", "Washer", "Water Heater", "Electronics"}
	applianceTypes  = []string{"heating_cooling", "appliance", "appliance", "appliance", "electronics"}
	breakdownNames  = []string{"HVAC", "Water Heater", "Refrigerator", "Washer/Dryer", "Electronics"}
	breakdownColors = []string{"#8884d8", "#82ca9d", "#ffc658", "#ff8042", "#a4de6c"}
)

// GetAppliances lists households with their latest power draw.
func (h *Handler) GetAppliances(c *gin.Context) {
	ctx := c.Request.Context()

	households, err := h.readings.Households(ctx)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Failed to fetch appliances", err)
		return
	}

	appliances := make([]gin.H, 0, len(households))
	for idx, id := range households {
		latest, err := h.readings.LatestForHousehold(ctx, id)
		if err != nil {
			h.fail(c, http.StatusInternalServerError, "Failed to fetch appliances", err)
			return
		}

		var powerRating int
		if latest != nil {
			powerRating = int(latest.EnergyKWh * intervalsPerHour * 1000)
		}
		status := "idle"
		if powerRating > 100 {
			status = "active"
		}

		appliances = append(appliances, gin.H{
			"id":          id,
			"name":        applianceNames[idx%len(applianceNames)],
			"type":        applianceTypes[idx%len(applianceTypes)],
			"powerRating": powerRating,
			"status":      status,
		})
	}

	c.JSON(http.StatusOK, appliances)
}

// GetApplianceUsage returns a household's readings with per-reading
// cost.
func (h *Handler) GetApplianceUsage(c *gin.Context) {
	applianceID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid appliance ID"})
		return
	}

	cutoff := h.now().AddDate(0, 0, -7)
	if c.DefaultQuery("range", "7d") != "7d" {
		cutoff = h.now().Add(-24 * time.Hour)
	}

	readings, err := h.readings.ReadingsSince(c.Request.Context(), cutoff, applianceID)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Failed to fetch appliance usage", err)
		return
	}

	usage := make([]gin.H, 0, len(readings))
	for _, r := range readings {
		usage = append(usage, gin.H{
			"timestamp":   r.Timestamp.Format(time.RFC3339),
			"consumption": round3(r.EnergyKWh),
			"cost":        round2(r.EnergyKWh * h.unitPrice),
		})
	}

	c.JSON(http.StatusOK, usage)
}

// GetApplianceBreakdown shows each household's share of the last 24
// hours of consumption.
func (h *Handler) GetApplianceBreakdown(c *gin.Context) {
	cutoff := h.now().Add(-24 * time.Hour)

	totals, err := h.readings.TotalsByHousehold(c.Request.Context(), cutoff)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Failed to fetch appliance breakdown", err)
		return
	}

	var grandTotal float64
	for _, t := range totals {
		grandTotal += t.TotalKWh
	}

	breakdown := make([]gin.H, 0, len(totals))
	for idx, t := range totals {
		var percentage float64
		if grandTotal > 0 {
			percentage = t.TotalKWh / grandTotal * 100
		}
		breakdown = append(breakdown, gin.H{
			"name":        breakdownNames[idx%len(breakdownNames)],
			"value":       round1(percentage),
			"consumption": round1(t.TotalKWh),
			"color":       breakdownColors[idx%len(breakdownColors)],
		})
	}

	c.JSON(http.StatusOK, breakdown)
}

// GetPredictions returns the frontend forecast: per-hour kW values
// plus a cost summary against today's actual consumption.
func (h *Handler) GetPredictions(c *gin.Context) {
	hours, err := strconv.Atoi(c.DefaultQuery("hours", "24"))
	if err != nil || hours <= 0 || hours > 24 {
		hours = 24
	}

	points, ok := h.forecastPoints(c)
	if !ok {
		return
	}

	next24Hours := make([]gin.H, 0, hours)
	for _, pt := range points[:hours] {
		next24Hours = append(next24Hours, gin.H{
			"time":       fmt.Sprintf("%d:00", pt.Hour),
			"predicted":  round2(pt.PredictedKWh * intervalsPerHour),
			"confidence": 0.85, // placeholder, the model does not expose intervals
		})
	}

	now := h.now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	actualKWhToday, err := h.readings.SumSince(c.Request.Context(), todayStart)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Prediction failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"next24Hours": next24Hours,
		"summary":     forecast.Summary(points, actualKWhToday, h.unitPrice),
	})
}

// GetRawPrediction returns the full 24-point forecast envelope.
func (h *Handler) GetRawPrediction(c *gin.Context) {
	points, ok := h.forecastPoints(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"forecast_generated":    h.now().Format(time.RFC3339),
		"forecast_period_hours": 24,
		"predictions":           points,
	})
}

// forecastPoints runs the pipeline (through the cache when one is
// configured) and writes the error response itself on failure.
func (h *Handler) forecastPoints(c *gin.Context) ([]models.ForecastPoint, bool) {
	if !h.pipeline.Available() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Prediction model not loaded",
			"message": "Export a trained model and restart the server",
		})
		return nil, false
	}

	now := h.now()
	anchor := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location())

	if h.cache != nil {
		if points, hit := h.cache.Get(c.Request.Context(), anchor); hit {
			return points, true
		}
	}

	points, err := h.pipeline.Forecast(now)
	if err != nil {
		if errors.Is(err, forecast.ErrPredictorUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":   "Prediction model not loaded",
				"message": err.Error(),
			})
		} else {
			h.fail(c, http.StatusInternalServerError, "Prediction failed", err)
		}
		return nil, false
	}

	if h.cache != nil {
		h.cache.Set(c.Request.Context(), anchor, points)
	}
	return points, true
}

// GetHistoricalUsage returns stored readings filtered by household and
// date range.
func (h *Handler) GetHistoricalUsage(c *gin.Context) {
	var filter store.HistoricalFilter

	if v := c.Query("household_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid household_id"})
			return
		}
		filter.HouseholdID = &id
	}
	if v := c.Query("start_date"); v != "" {
		start, err := parseDate(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start_date format. Use YYYY-MM-DD"})
			return
		}
		filter.Start = &start
	}
	if v := c.Query("end_date"); v != "" {
		end, err := parseDate(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end_date format. Use YYYY-MM-DD"})
			return
		}
		filter.End = &end
	}

	readings, err := h.readings.Historical(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Failed to fetch historical usage", err)
		return
	}
	if readings == nil {
		readings = []models.EnergyReading{}
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(readings),
		"data":  readings,
	})
}

// GetSuggestions runs the optimization engine over the recent-usage
// window and returns display-ready suggestions.
func (h *Handler) GetSuggestions(c *gin.Context) {
	timeWindow, err := strconv.Atoi(c.DefaultQuery("time_window", "60"))
	if err != nil || timeWindow <= 0 {
		timeWindow = 60
	}

	usage, err := h.readings.RecentUsage(c.Request.Context(), time.Duration(timeWindow)*time.Minute, 100)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Suggestion generation failed", err)
		return
	}
	if len(usage) == 0 {
		c.JSON(http.StatusOK, []models.DisplaySuggestion{})
		return
	}

	suggestions := h.engine.Generate(usage, h.now())
	c.JSON(http.StatusOK, optimizer.ToDisplay(suggestions, h.unitPrice))
}

// GetTimeSlot describes the current time-of-use pricing slot.
func (h *Handler) GetTimeSlot(c *gin.Context) {
	now := h.now()
	slot := pricing.ClassifySlot(now.Hour())
	nextTransition, recommendation := pricing.TransitionInfo(slot.Name)

	c.JSON(http.StatusOK, models.TimeSlotInfo{
		CurrentSlot:    slot.Name,
		CostMultiplier: slot.Multiplier,
		CurrentHour:    now.Hour(),
		NextTransition: nextTransition,
		Recommendation: recommendation,
	})
}

type loadDataRequest struct {
	Path      string `json:"path" binding:"required"`
	LimitRows int    `json:"limit_rows"`
}

// LoadData triggers a CSV import, replacing stored readings.
func (h *Handler) LoadData(c *gin.Context) {
	if h.loader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Data loading not configured"})
		return
	}

	var req loadDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "message": err.Error()})
		return
	}

	rows, err := h.loader.LoadCSV(c.Request.Context(), req.Path, req.LimitRows)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Data load failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Energy data loaded successfully",
		"rows":    rows,
	})
}

func (h *Handler) fail(c *gin.Context, status int, label string, err error) {
	h.log.Error(label, "error", err, "path", c.FullPath())
	c.JSON(status, gin.H{"error": label, "message": err.Error()})
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
