package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"careercoach/api/internal/models"
	"careercoach/api/internal/services"
)

// recordingInsights captures the arguments of the refresh calls.
type recordingInsights struct {
	services.InsightService
	dueLimits []int
	allCalls  int
}

func (r *recordingInsights) RefreshDue(ctx context.Context, limit int) (*models.RefreshResponse, error) {
	r.dueLimits = append(r.dueLimits, limit)
	return &models.RefreshResponse{Refreshed: []string{}, Skipped: []string{}}, nil
}

func (r *recordingInsights) RefreshAll(ctx context.Context) (*models.RefreshResponse, error) {
	r.allCalls++
	return &models.RefreshResponse{Refreshed: []string{}, Skipped: []string{}}, nil
}

func TestHandleRefreshAll_DueLimit(t *testing.T) {
	insights := &recordingInsights{}
	app := fiber.New(fiber.Config{ErrorHandler: NewErrorHandler(zap.NewNop())})
	app.Post("/refresh", NewInsightHandler(insights).HandleRefreshAll)

	for _, query := range []string{
		"?due=true",
		"?due=true&limit=0",
		"?due=true&limit=-5",
		"?due=true&limit=abc",
		"?due=true&limit=3",
		"",
	} {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/refresh"+query, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, query)
	}

	assert.Equal(t, []int{
		services.DefaultDueRefreshLimit,
		services.DefaultDueRefreshLimit,
		services.DefaultDueRefreshLimit,
		services.DefaultDueRefreshLimit,
		3,
	}, insights.dueLimits)
	assert.Equal(t, 1, insights.allCalls)
}
