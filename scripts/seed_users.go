package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"careercoach/api/internal/config"
	"careercoach/api/internal/logger"
	"careercoach/api/internal/models"
	"careercoach/api/internal/repositories"
	"careercoach/api/internal/services"
)

type seedUser struct {
	Identity   models.Identity
	Industry   string
	Bio        string
	Experience int
	Skills     []string
	Resume     string
}

var seedUsers = []seedUser{
	{
		Identity: models.Identity{
			ExternalID: "user_2ZYxd5WQONJxTb75k8jQvKMVPwn",
			Email:      "test@example.com",
			FirstName:  "Test",
			LastName:   "User",
		},
		Industry:   "tech",
		Bio:        "Full-stack developer focused on web applications.",
		Experience: 5,
		Skills:     []string{"JavaScript", "React", "Node.js", "Next.js", "TypeScript"},
		Resume: "## Summary\n\nFull-stack developer with five years of experience building web applications.\n\n" +
			"## Experience\n\nSenior Developer at Example Corp. Led the migration of a monolith to Next.js and cut page load times in half.",
	},
}

// Seeds development users with a completed profile and a saved resume. The
// industry insight for each profile is generated on the way, so GEMINI_API_KEY
// must be set.
func main() {
	cfg := config.Load()

	log, err := logger.New(logger.Config{Level: cfg.Server.LogLevel, Encoding: "console"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}

	ctx := context.Background()

	geminiService, err := services.NewGeminiService(ctx, cfg.Gemini)
	if err != nil {
		log.Fatal("failed to initialize Gemini", zap.Error(err))
	}
	generator := services.NewStructuredGenerationClient(geminiService, nil, log)

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
	}

	userRepo := repositories.NewUserRepository(db)
	insightService := services.NewInsightService(userRepo, repositories.NewIndustryInsightRepository(db), generator, cfg.Insights.TTL, log)
	userService := services.NewUserService(userRepo, insightService, log)
	resumeService := services.NewResumeService(
		userService,
		userRepo,
		repositories.NewResumeRepository(db),
		generator,
		services.NewStorageService(cfg.Storage.UploadPath),
		services.NewDocumentParserService(),
		resumeIndex,
		log,
	)

	failCount := 0
	for _, seed := range seedUsers {
		identity := seed.Identity
		userLog := log.With(zap.String("external_id", identity.ExternalID))

		if _, err := userService.SyncUser(ctx, &identity); err != nil {
			userLog.Error("failed to create user", zap.Error(err))
			failCount++
			continue
		}

		experience := seed.Experience
		user, err := userService.UpdateProfile(ctx, &identity, models.UpdateProfileRequest{
			Industry:   seed.Industry,
			Experience: &experience,
			Bio:        seed.Bio,
			Skills:     seed.Skills,
		})
		if err != nil {
			userLog.Error("failed to update profile", zap.Error(err))
			failCount++
			continue
		}

		if _, err := resumeService.SaveResume(ctx, &identity, seed.Resume); err != nil {
			userLog.Error("failed to save resume", zap.Error(err))
			failCount++
			continue
		}

		userLog.Info("user seeded",
			zap.String("user_id", user.ID.String()),
			zap.String("industry", user.Industry),
			zap.Strings("skills", user.Skills),
		)
	}

	log.Info("seed finished", zap.Int("users", len(seedUsers)), zap.Int("failed", failCount))
	if failCount > 0 {
		os.Exit(1)
	}
}
