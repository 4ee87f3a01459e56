package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"careercoach/api/internal/config"
	"careercoach/api/internal/handlers"
	"careercoach/api/internal/logger"
	"careercoach/api/internal/repositories"
	"careercoach/api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log, err := logger.New(logger.Config{
		Level:    cfg.Server.LogLevel,
		Encoding: cfg.Server.LogEncoding,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}
	log.Info("config loaded", zap.String("env", cfg.Server.Env))

	// Initialize database
	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	insightRepo := repositories.NewIndustryInsightRepository(db)
	assessmentRepo := repositories.NewAssessmentRepository(db)
	resumeRepo := repositories.NewResumeRepository(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// One Gemini client for the whole process
	geminiService, err := services.NewGeminiService(ctx, cfg.Gemini)
	if err != nil {
		log.Fatal("failed to initialize Gemini", zap.Error(err))
	}
	log.Info("gemini initialized", zap.String("model", cfg.Gemini.Model), zap.Duration("timeout", cfg.Gemini.Timeout))

	metrics := services.NewMetrics(prometheus.DefaultRegisterer)
	generator := services.NewStructuredGenerationClient(geminiService, metrics, log)

	// Optional resume context index
	var resumeIndex services.ResumeIndex
	if cfg.Qdrant.URL != "" {
		index, err := services.NewResumeIndex(cfg.Qdrant, geminiService, log)
		if err != nil {
			log.Fatal("failed to initialize Qdrant", zap.Error(err))
		}
		if err := index.InitCollection(ctx); err != nil {
			log.Fatal("failed to initialize Qdrant collection", zap.Error(err))
		}
		resumeIndex = index
		log.Info("resume index enabled", zap.String("collection", cfg.Qdrant.Collection))
	}

	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatal("failed to create upload directory", zap.Error(err))
	}

	// Initialize services
	insightService := services.NewInsightService(userRepo, insightRepo, generator, cfg.Insights.TTL, log)
	userService := services.NewUserService(userRepo, insightService, log)
	interviewService := services.NewInterviewService(userRepo, assessmentRepo, generator, log)
	resumeService := services.NewResumeService(
		userService,
		userRepo,
		resumeRepo,
		generator,
		storageService,
		services.NewDocumentParserService(),
		resumeIndex,
		log,
	)

	verifier, err := services.NewTokenVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer, log)
	if err != nil {
		log.Fatal("failed to initialize token verifier", zap.Error(err))
	}

	var worker services.Worker
	if cfg.Worker.RefreshEnabled {
		worker = services.NewWorker(insightRepo, insightService, cfg.Worker.Concurrency, cfg.Worker.PollInterval, log)
		worker.Start(ctx)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Career Coach API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * cfg.Gemini.Timeout,
		BodyLimit:    int(cfg.Storage.MaxFileSize),
		ErrorHandler: handlers.NewErrorHandler(log),
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Scheduler-Token",
	}))

	router := &handlers.Router{
		Auth:           handlers.NewAuthMiddleware(verifier, log),
		Users:          handlers.NewUserHandler(userService),
		Insights:       handlers.NewInsightHandler(insightService),
		Interview:      handlers.NewInterviewHandler(interviewService),
		Resume:         handlers.NewResumeHandler(resumeService, cfg.Storage.MaxFileSize),
		SchedulerToken: cfg.Scheduler.Token,
		Gatherer:       prometheus.DefaultGatherer,
	}
	router.Register(app)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Career Coach API",
			"version": "1.0.0",
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("shutting down server")
		cancel()
		if worker != nil {
			worker.Stop()
		}
		if err := app.Shutdown(); err != nil {
			log.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}
