package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"careercoach/api/internal/config"
	"careercoach/api/internal/models"
	"careercoach/api/internal/repositories"
	"careercoach/api/internal/services"
)

const (
	testSecret         = "handler-secret"
	testSchedulerToken = "cron-token"
)

// stubGenerator always returns the same reply.
type stubGenerator struct {
	text string
	err  error
}

func (s stubGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	return s.text, s.err
}

func setupApp(t *testing.T, gen services.TextGenerator) *fiber.App {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, config.Migrate(db))

	log := zap.NewNop()
	userRepo := repositories.NewUserRepository(db)
	insightRepo := repositories.NewIndustryInsightRepository(db)
	reg := prometheus.NewRegistry()
	client := services.NewStructuredGenerationClient(gen, services.NewMetrics(reg), log)

	insightService := services.NewInsightService(userRepo, insightRepo, client, 7*24*time.Hour, log)
	userService := services.NewUserService(userRepo, insightService, log)
	interviewService := services.NewInterviewService(userRepo, repositories.NewAssessmentRepository(db), client, log)
	resumeService := services.NewResumeService(
		userService,
		userRepo,
		repositories.NewResumeRepository(db),
		client,
		services.NewStorageService(t.TempDir()),
		services.NewDocumentParserService(),
		nil,
		log,
	)

	verifier, err := services.NewTokenVerifier(testSecret, "", log)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: NewErrorHandler(log)})
	router := &Router{
		Auth:           NewAuthMiddleware(verifier, log),
		Users:          NewUserHandler(userService),
		Insights:       NewInsightHandler(insightService),
		Interview:      NewInterviewHandler(interviewService),
		Resume:         NewResumeHandler(resumeService, 1<<20),
		SchedulerToken: testSchedulerToken,
		Gatherer:       reg,
	}
	router.Register(app)
	return app
}

func sessionToken(t *testing.T, subject string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, services.SessionClaims{
		Email: subject + "@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, app *fiber.App, method, path, token, body string) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func TestHealth(t *testing.T) {
	app := setupApp(t, stubGenerator{})

	resp, body := doRequest(t, app, http.MethodGet, "/api/v1/health", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
}

func TestQuiz_AnonymousGetsDefault(t *testing.T) {
	app := setupApp(t, stubGenerator{err: errors.New("must not be called")})

	resp, body := doRequest(t, app, http.MethodPost, "/api/v1/interview/quiz", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	questions := body["questions"].([]any)
	require.Len(t, questions, 1)
	assert.Equal(t, "Paris", questions[0].(map[string]any)["correctAnswer"])
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	app := setupApp(t, stubGenerator{})

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/insights"},
		{http.MethodGet, "/api/v1/users/me"},
		{http.MethodPost, "/api/v1/interview/assessments"},
		{http.MethodGet, "/api/v1/interview/stats"},
		{http.MethodPost, "/api/v1/resume/improve"},
	} {
		resp, body := doRequest(t, app, route.method, route.path, "", "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, route.path)
		assert.Equal(t, "Unauthorized", body["error"], route.path)
	}

	resp, _ := doRequest(t, app, http.MethodGet, "/api/v1/insights", "not-a-jwt", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestInsights_ErrorMapping(t *testing.T) {
	app := setupApp(t, stubGenerator{text: "garbage"})
	token := sessionToken(t, "user_handlers")

	resp, body := doRequest(t, app, http.MethodGet, "/api/v1/insights", token, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "User not found", body["error"])

	resp, _ = doRequest(t, app, http.MethodPost, "/api/v1/users/sync", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doRequest(t, app, http.MethodGet, "/api/v1/insights", token, "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.EqualValues(t, http.StatusUnprocessableEntity, body["code"])

	resp, _ = doRequest(t, app, http.MethodPut, "/api/v1/users/me", token, `{"industry":"tech","skills":["Go"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doRequest(t, app, http.MethodGet, "/api/v1/insights", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(models.DemandMedium), body["demandLevel"])
}

func TestSubmitQuiz(t *testing.T) {
	app := setupApp(t, stubGenerator{text: "Brush up on geography."})
	token := sessionToken(t, "quiz_taker")

	resp, _ := doRequest(t, app, http.MethodPost, "/api/v1/users/sync", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	payload := `{"questions":[{"question":"Capital of France?","options":["Berlin","Madrid","Paris","Rome"],"correctAnswer":"Paris","explanation":"Paris."}],"answers":["Rome"]}`
	resp, body := doRequest(t, app, http.MethodPost, "/api/v1/interview/assessments", token, payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.EqualValues(t, 0, body["score"])
	assert.Equal(t, "Brush up on geography.", body["improvementTip"])

	resp, body = doRequest(t, app, http.MethodPost, "/api/v1/interview/assessments", token, `{"questions":[],"answers":[]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "No questions submitted", body["error"])
}

func TestImproveResume_GenerationFailure(t *testing.T) {
	app := setupApp(t, stubGenerator{err: errors.New("upstream down")})
	token := sessionToken(t, "resume_writer")

	resp, _ := doRequest(t, app, http.MethodPost, "/api/v1/users/sync", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doRequest(t, app, http.MethodPost, "/api/v1/resume/improve", token, `{"current":"Did stuff","type":"experience"}`)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "Failed to improve content", body["error"])
}

func TestSaveAndGetResume(t *testing.T) {
	app := setupApp(t, stubGenerator{})
	token := sessionToken(t, "resume_owner")

	resp, body := doRequest(t, app, http.MethodGet, "/api/v1/resume", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, body["resume"])

	resp, _ = doRequest(t, app, http.MethodPut, "/api/v1/resume", token, `{"content":"# Me"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doRequest(t, app, http.MethodGet, "/api/v1/resume", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "# Me", body["resume"].(map[string]any)["content"])
}

func TestSchedulerRefresh(t *testing.T) {
	app := setupApp(t, stubGenerator{text: "garbage"})

	resp, _ := doRequest(t, app, http.MethodPost, "/api/v1/internal/insights/refresh", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/internal/insights/refresh", nil)
	req.Header.Set(schedulerTokenHeader, "wrong")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/internal/insights/refresh", nil)
	req.Header.Set(schedulerTokenHeader, testSchedulerToken)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	app := setupApp(t, stubGenerator{})
	token := sessionToken(t, "metrics_user")

	_, _ = doRequest(t, app, http.MethodPost, "/api/v1/users/sync", token, "")
	_, _ = doRequest(t, app, http.MethodPut, "/api/v1/users/me", token, `{"industry":"tech"}`)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/metrics", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `career_coach_generations_total{call_site="industry_insights",outcome="fallback"} 1`)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer  abc "))
	assert.Equal(t, "", bearerToken("Basic abc"))
	assert.Equal(t, "", bearerToken(""))
}
