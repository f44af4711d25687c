package main

import (
	"context"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"civic-reports-service/catalog"
	"civic-reports-service/config"
	"civic-reports-service/database"
	"civic-reports-service/email"
	"civic-reports-service/geocode"
	"civic-reports-service/handlers"
	"civic-reports-service/imgproc"
	"civic-reports-service/metrics"
	"civic-reports-service/middleware"
	"civic-reports-service/rabbitmq"
)

const (
	EndPointHealth            = "/health"
	EndPointHelp              = "/help"
	EndPointReport            = "/report"
	EndPointGetReports        = "/get_reports"
	EndPointUpdateStatus      = "/update_status"
	EndPointSearchLocation    = "/search_location"
	EndPointPickLocation      = "/pick_location"
	EndPointUploadImages      = "/upload_images"
	EndPointGetStats          = "/get_stats"
	EndPointGetMap            = "/get_map"
	EndPointGetReportsGeoJSON = "/get_reports_geojson"
	EndPointGetCategories     = "/get_categories"
	EndPointMetrics           = "/metrics"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log.Info("Starting the civic reports service...")

	opts := []catalog.Option{}

	// Connect to database when persistence is enabled; otherwise the
	// catalog runs in memory only.
	var reportsService *database.ReportsService
	if cfg.DBEnabled {
		db, err := database.Connect(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := database.InitSchema(db); err != nil {
			log.Fatalf("Failed to initialize database schema: %v", err)
		}

		reportsService = database.NewReportsService(db)
		opts = append(opts, catalog.WithStore(reportsService))
	}

	// Connect to RabbitMQ when an URL is configured.
	if cfg.AMQPUrl != "" {
		publisher, err := rabbitmq.NewPublisher(cfg.AMQPUrl, cfg.AMQPExchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
		opts = append(opts, catalog.WithPublisher(publisher))
	}

	cat := catalog.New(opts...)

	// Seed the catalog from persisted reports.
	if reportsService != nil {
		reports, err := reportsService.LoadReports(context.Background())
		if err != nil {
			log.Fatalf("Failed to load reports: %v", err)
		}
		cat.Load(reports)
		log.Infof("Loaded %d reports from the database", len(reports))
	}

	notifier := email.NewNotifier(cfg.SendGridAPIKey, cfg.SendGridFromName, cfg.SendGridFromEmail)

	// Uploaded images are normalized and, absent a storage backend,
	// addressed with stable placeholder URLs.
	resolver := imgproc.NewResolver(func(name string, _ []byte) (string, error) {
		return fmt.Sprintf("https://placehold.co/600x400?name=%s", name), nil
	})

	// Initialize handlers
	reportsHandler := handlers.NewReportsHandler(
		cat,
		geocode.NewStaticProvider(),
		geocode.DefaultFrame(),
		resolver,
		notifier,
		cfg,
	)

	metrics.Register()

	// Setup router
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowOrigins:     []string{"*"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.AuthMiddleware(cfg.JWTSecret))

	router.GET(EndPointHealth, reportsHandler.HealthCheck)
	router.GET(EndPointHelp, reportsHandler.Help)
	router.GET(EndPointMetrics, gin.WrapH(promhttp.Handler()))

	router.POST(EndPointReport, middleware.RequireAuth(), reportsHandler.SubmitReport)
	router.GET(EndPointGetReports, reportsHandler.GetReports)
	router.POST(EndPointUpdateStatus, middleware.RequireRole("admin"), reportsHandler.UpdateStatus)
	router.POST(EndPointSearchLocation, reportsHandler.SearchLocation)
	router.POST(EndPointPickLocation, reportsHandler.PickLocation)
	router.POST(EndPointUploadImages, middleware.RequireAuth(), reportsHandler.UploadImages)
	router.GET(EndPointGetStats, reportsHandler.GetStats)
	router.POST(EndPointGetMap, reportsHandler.GetMap)
	router.GET(EndPointGetReportsGeoJSON, reportsHandler.GetReportsGeoJSON)
	router.GET(EndPointGetCategories, reportsHandler.GetCategories)

	// Start server
	log.Infof("Civic reports service starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
