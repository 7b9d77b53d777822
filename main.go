package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/stephancmorris/league-fan-hub/handlers"
	"github.com/stephancmorris/league-fan-hub/middleware"
	"github.com/stephancmorris/league-fan-hub/models"
	"github.com/stephancmorris/league-fan-hub/services"
	"github.com/stephancmorris/league-fan-hub/utils"
	"github.com/stephancmorris/league-fan-hub/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // logos only
	})

	// 🔐❗ GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-User-Roles",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitObjectStore(); err != nil {
		log.Fatal("failed to initialize object storage:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Match{},
		&models.Prediction{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	liveHub := services.NewLiveHub()
	leaderboardService := services.NewLeaderboardService(db)
	matchService := services.NewMatchService(db, liveHub)
	predictionService := services.NewPredictionService(db)
	userService := services.NewUserService(db, leaderboardService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Profile mirroring is optional — without a sync service, users are
	// created lazily via /auth/sync.
	if profileSyncURL := os.Getenv("PROFILE_SYNC_URL"); profileSyncURL != "" {
		serviceToken := os.Getenv("FAN_HUB_SERVICE_TOKEN")
		syncWorker := workers.NewUserSyncWorker(db, profileSyncURL, "/api/v1/public/profiles", serviceToken)
		if err := syncWorker.Start(ctx); err != nil {
			log.Fatal("failed to start user sync worker:", err)
		}
	} else {
		log.Println("⚠️  PROFILE_SYNC_URL not set, user sync worker disabled")
	}

	handlers.SetupMatchRoutes(app, matchService, liveHub)
	handlers.SetupPredictionRoutes(app, predictionService)
	handlers.SetupLeaderboardRoutes(app, leaderboardService)
	handlers.SetupUserRoutes(app, userService)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
