package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"careercoach/api/internal/config"
	"careercoach/api/internal/models"
	"careercoach/api/internal/repositories"
)

// fakeGenerator replays scripted replies in order; the last reply repeats.
type fakeGenerator struct {
	mu      sync.Mutex
	replies []fakeReply
	prompts []string
}

type fakeReply struct {
	text string
	err  error
}

func newFakeGenerator(replies ...fakeReply) *fakeGenerator {
	return &fakeGenerator{replies: replies}
}

func (f *fakeGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx := len(f.prompts)
	f.prompts = append(f.prompts, prompt)
	if len(f.replies) == 0 {
		return "", ErrEmptyResponse
	}
	if idx >= len(f.replies) {
		idx = len(f.replies) - 1
	}
	return f.replies[idx].text, f.replies[idx].err
}

func (f *fakeGenerator) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func (f *fakeGenerator) LastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

func reply(text string) fakeReply { return fakeReply{text: text} }

func replyErr(err error) fakeReply { return fakeReply{err: err} }

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// every pooled connection would get its own empty in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.Migrate(db))
	return db
}

type testEnv struct {
	db          *gorm.DB
	gen         *fakeGenerator
	client      *StructuredGenerationClient
	userRepo    repositories.UserRepository
	insightRepo repositories.IndustryInsightRepository
	insights    InsightService
	users       UserService
}

func newTestEnv(t *testing.T, gen *fakeGenerator) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	log := zap.NewNop()

	env := &testEnv{
		db:          db,
		gen:         gen,
		client:      NewStructuredGenerationClient(gen, nil, log),
		userRepo:    repositories.NewUserRepository(db),
		insightRepo: repositories.NewIndustryInsightRepository(db),
	}
	env.insights = NewInsightService(env.userRepo, env.insightRepo, env.client, 7*24*time.Hour, log)
	env.users = NewUserService(env.userRepo, env.insights, log)
	return env
}

// createUser stores a user for identity with the given industry ("" for a
// user that has not onboarded).
func (e *testEnv) createUser(t *testing.T, identity *models.Identity, industry string, skills ...string) *models.User {
	t.Helper()
	user, err := e.users.SyncUser(context.Background(), identity)
	require.NoError(t, err)

	if industry != "" {
		user.Industry = industry
		user.Skills = datatypes.NewJSONSlice(skills)
		require.NoError(t, e.userRepo.UpdateProfile(context.Background(), user))
	}
	return user
}

func testIdentity(externalID string) *models.Identity {
	return &models.Identity{
		ExternalID: externalID,
		Email:      externalID + "@example.com",
		FirstName:  "Test",
		LastName:   "User",
	}
}

func validInsightReport() models.InsightReport {
	return models.InsightReport{
		SalaryRanges: []models.SalaryRange{
			{Role: "Junior Engineer", Min: 60000, Max: 80000, Median: 70000, Location: "US"},
			{Role: "Engineer", Min: 80000, Max: 120000, Median: 100000, Location: "US"},
			{Role: "Senior Engineer", Min: 120000, Max: 170000, Median: 145000, Location: "US"},
			{Role: "Staff Engineer", Min: 160000, Max: 220000, Median: 190000, Location: "US"},
			{Role: "Engineering Manager", Min: 150000, Max: 210000, Median: 180000, Location: "US"},
		},
		GrowthRate:        12.5,
		DemandLevel:       models.DemandHigh,
		TopSkills:         []string{"Go", "Kubernetes", "SQL", "AWS", "TypeScript"},
		MarketOutlook:     models.OutlookPositive,
		KeyTrends:         []string{"AI tooling", "Platform teams", "Remote work", "Rust adoption", "FinOps"},
		RecommendedSkills: []string{"LLM integration", "Observability", "Security", "Terraform", "gRPC"},
	}
}

func validQuiz(n int) quizPayload {
	questions := make([]models.QuizQuestion, n)
	for i := range questions {
		questions[i] = models.QuizQuestion{
			Question:      fmt.Sprintf("Question %d?", i+1),
			Options:       []string{"A", "B", "C", "D"},
			CorrectAnswer: "B",
			Explanation:   "B is right.",
		}
	}
	return quizPayload{Questions: questions}
}
