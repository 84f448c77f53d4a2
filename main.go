package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Lilvamp237/Smart-Home-Energy-Tracker/internal/api"
	"github.com/Lilvamp237/Smart-Home-Energy-Tracker/internal/cache"
	"github.com/Lilvamp237/Smart-Home-Energy-Tracker/internal/config"
	"github.com/Lilvamp237/Smart-Home-Energy-Tracker/internal/database"
	"github.com/Lilvamp237/Smart-Home-Energy-Tracker/internal/forecast"
	"github.com/Lilvamp237/Smart-Home-Energy-Tracker/internal/ingest"
	"github.com/Lilvamp237/Smart-Home-Energy-Tracker/internal/logger"
	"github.com/Lilvamp237/Smart-Home-Energy-Tracker/internal/optimizer"
	"github.com/Lilvamp237/Smart-Home-Energy-Tracker/internal/rules"
	"github.com/Lilvamp237/Smart-Home-Energy-Tracker/internal/store"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg, err := logger.New(cfg.Server.Mode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logg.Sync()

	pool, err := database.NewPool(cfg.Database)
	if err != nil {
		logg.Fatal("Failed to connect to database", "error", err)
	}
	defer pool.Close()

	ctx := context.Background()
	if err := database.Migrate(ctx, pool); err != nil {
		logg.Fatal("Failed to run migrations", "error", err)
	}

	readings := store.NewReadingStore(pool)
	loader := ingest.NewLoader(readings, logg)

	// Seed the database from the bundled dataset on first start.
	if cfg.Data.CSVPath != "" {
		count, err := readings.Count(ctx)
		if err != nil {
			logg.Fatal("Failed to query readings count", "error", err)
		}
		if count == 0 {
			rows, err := loader.LoadCSV(ctx, cfg.Data.CSVPath, 0)
			if err != nil {
				logg.Warn("Could not seed readings from CSV", "path", cfg.Data.CSVPath, "error", err)
			} else {
				logg.Info("Seeded readings from CSV", "path", cfg.Data.CSVPath, "rows", rows)
			}
		}
	}

	if os.Getenv("ENABLE_DATA_GENERATION") == "true" {
		simulator := ingest.NewSimulator(readings, logg, 30*time.Second)
		if err := simulator.Start(ctx); err != nil {
			logg.Warn("Could not start reading simulator", "error", err)
		} else {
			defer simulator.Stop()
		}
	}

	ruleStore := rules.NewStore(logg)
	if err := ruleStore.Load(cfg.Rules.Path); err != nil {
		logg.Warn("Rule base unavailable, suggestions degrade to a notice", "path", cfg.Rules.Path, "error", err)
	} else {
		logg.Info("Rule base loaded", "path", cfg.Rules.Path, "rules", ruleStore.Len())
	}

	var predictor forecast.Predictor
	if model, err := forecast.LoadModel(cfg.Model.Path); err != nil {
		logg.Warn("Prediction model unavailable, forecast endpoints return 503", "path", cfg.Model.Path, "error", err)
	} else {
		predictor = model
	}
	pipeline := forecast.NewPipeline(predictor, logg)

	var forecastCache api.ForecastCacher
	if cfg.Redis.Addr != "" {
		fc, err := cache.NewForecastCache(cfg.Redis.Addr, logg)
		if err != nil {
			logg.Warn("Redis unavailable, forecast caching disabled", "addr", cfg.Redis.Addr, "error", err)
		} else {
			defer fc.Close()
			forecastCache = fc
		}
	}

	handler := api.NewHandler(api.Deps{
		Readings:  readings,
		Engine:    optimizer.NewEngine(ruleStore, logg),
		Pipeline:  pipeline,
		Loader:    loader,
		Cache:     forecastCache,
		UnitPrice: cfg.Tariff.UnitPrice,
		Log:       logg,
	})

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(api.RequestID())
	router.Use(api.RequestLogger(logg))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":   "Smart Home Energy Tracker",
			"status":    "running",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/health", handler.Health)
		apiGroup.GET("/energy/current", handler.GetCurrentConsumption)
		apiGroup.GET("/energy/usage", handler.GetEnergyUsage)
		apiGroup.GET("/appliances", handler.GetAppliances)
		apiGroup.GET("/appliances/breakdown", handler.GetApplianceBreakdown)
		apiGroup.GET("/appliances/:id/usage", handler.GetApplianceUsage)
		apiGroup.GET("/predictions", handler.GetPredictions)
		apiGroup.GET("/optimization/suggestions", handler.GetSuggestions)

		v1 := apiGroup.Group("/v1")
		{
			v1.GET("/usage/historical", handler.GetHistoricalUsage)
			v1.GET("/usage/predict", handler.GetRawPrediction)
			v1.GET("/optimization/suggestions", handler.GetSuggestions)
			v1.GET("/optimization/timeslot", handler.GetTimeSlot)
			v1.POST("/data/load", handler.LoadData)
		}
	}

	addr := ":" + cfg.Server.Port
	logg.Info("Server starting", "addr", addr, "mode", cfg.Server.Mode)
	if err := router.Run(addr); err != nil {
		logg.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}
