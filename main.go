package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gamification-engine/handlers"
	"gamification-engine/middleware"
	"gamification-engine/models"
	"gamification-engine/services"
	"gamification-engine/utils"
	"gamification-engine/workers"

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
		BodyLimit: 10 * 1024 * 1024, // 10MB — icon uploads only
	})

	// 🔐 GLOBAL: only gateway requests allowed
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
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-User-Roles, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitObjectStorage(); err != nil {
		log.Fatal("failed to initialize object storage client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Subject{},
		&models.Game{},
		&models.GameGroup{},
		&models.Project{},
		&models.Player{},
		&models.EvaluableAction{},
		&models.ActionLog{},
		&models.Achievement{},
		&models.AchievementAssignment{},
		&models.AssignmentProgress{},
		&models.AssignmentConsumption{},
		&models.LoggedAchievement{},
		&models.Rule{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	gameService := services.NewGameService(db)
	actionLogService := services.NewActionLogService(db)
	achievementService := services.NewAchievementService(db)
	playerService := services.NewPlayerService(db)
	evaluationService := services.NewEvaluationService(db, actionLogService, achievementService)

	rosterSyncClient := workers.NewRosterSyncClient(db)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go workers.PollRosters(ctx, rosterSyncClient, 10*time.Minute)

	evaluationService.StartEvaluationScheduler(30 * time.Minute)

	handlers.SetupGameRoutes(app, gameService, evaluationService)
	handlers.SetupAchievementRoutes(app, achievementService, playerService, actionLogService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Roster sync polling running (every 10m)")
	log.Println("✅ Evaluation scheduler running (every 30m)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from the gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
