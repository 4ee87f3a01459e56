package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	Auth           *AuthMiddleware
	Users          *UserHandler
	Insights       *InsightHandler
	Interview      *InterviewHandler
	Resume         *ResumeHandler
	SchedulerToken string
	Gatherer       prometheus.Gatherer
}

func (r *Router) Register(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	if r.Gatherer != nil {
		api.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(r.Gatherer, promhttp.HandlerOpts{})))
	}

	users := api.Group("/users", r.Auth.RequireAuth)
	users.Post("/sync", r.Users.HandleSync)
	users.Get("/me", r.Users.HandleGetProfile)
	users.Put("/me", r.Users.HandleUpdateProfile)
	users.Get("/me/onboarding", r.Users.HandleOnboardingStatus)

	api.Get("/insights", r.Auth.RequireAuth, r.Insights.HandleGetInsights)

	interview := api.Group("/interview")
	interview.Post("/quiz", r.Auth.OptionalAuth, r.Interview.HandleGenerateQuiz)
	interview.Post("/assessments", r.Auth.RequireAuth, r.Interview.HandleSubmitQuiz)
	interview.Get("/assessments", r.Auth.RequireAuth, r.Interview.HandleListAssessments)
	interview.Get("/stats", r.Auth.RequireAuth, r.Interview.HandleStats)

	resume := api.Group("/resume", r.Auth.RequireAuth)
	resume.Get("/", r.Resume.HandleGetResume)
	resume.Put("/", r.Resume.HandleSaveResume)
	resume.Post("/improve", r.Resume.HandleImprove)
	resume.Post("/import", r.Resume.HandleImport)

	internal := api.Group("/internal", RequireSchedulerToken(r.SchedulerToken))
	internal.Post("/insights/refresh", r.Insights.HandleRefreshAll)
	internal.Post("/insights/refresh/:industry", r.Insights.HandleRefreshIndustry)
}
