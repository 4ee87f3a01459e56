package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"careercoach/api/internal/models"
	"careercoach/api/internal/repositories"
)

const (
	// DefaultDueRefreshLimit bounds one due refresh batch.
	DefaultDueRefreshLimit = 50

	// RefreshRetryBackoff delays the next attempt after a refresh that only
	// produced the default report.
	RefreshRetryBackoff = 6 * time.Hour
)

type InsightService interface {
	GetIndustryInsights(ctx context.Context, identity *models.Identity) (*models.IndustryInsight, error)
	EnsureInsight(ctx context.Context, industry string) (*models.IndustryInsight, error)
	RefreshIndustry(ctx context.Context, industry string) (bool, error)
	RefreshAll(ctx context.Context) (*models.RefreshResponse, error)
	RefreshDue(ctx context.Context, limit int) (*models.RefreshResponse, error)
}

type insightService struct {
	users     repositories.UserRepository
	insights  repositories.IndustryInsightRepository
	generator *StructuredGenerationClient
	prompts   *PromptBuilder
	ttl       time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

func NewInsightService(
	users repositories.UserRepository,
	insights repositories.IndustryInsightRepository,
	generator *StructuredGenerationClient,
	ttl time.Duration,
	logger *zap.Logger,
) InsightService {
	return &insightService{
		users:     users,
		insights:  insights,
		generator: generator,
		prompts:   NewPromptBuilder(),
		ttl:       ttl,
		now:       time.Now,
		logger:    logger.Named("insights"),
	}
}

func (s *insightService) GetIndustryInsights(ctx context.Context, identity *models.Identity) (*models.IndustryInsight, error) {
	user, err := resolveUser(ctx, s.users, identity)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(user.Industry) == "" {
		return nil, newServiceError(ErrIndustryNotSet, "User has not set an industry", nil)
	}

	return s.EnsureInsight(ctx, user.Industry)
}

// EnsureInsight returns the stored insight, generating and storing it first
// when the industry has none yet.
func (s *insightService) EnsureInsight(ctx context.Context, industry string) (*models.IndustryInsight, error) {
	insight, err := s.insights.FindByIndustry(ctx, industry)
	if err == nil {
		return insight, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		s.logger.Error("failed to load industry insight", zap.String("industry", industry), zap.Error(err))
		return nil, newServiceError(ErrPersistence, "Failed to load industry insights", err)
	}

	result := s.generateReport(ctx, industry)

	insight, err = s.insights.CreateIfAbsent(ctx, models.NewIndustryInsight(industry, result.Value, s.now(), s.ttl))
	if err != nil {
		s.logger.Error("failed to store industry insight", zap.String("industry", industry), zap.Error(err))
		return nil, newServiceError(ErrPersistence, "Failed to save industry insights", err)
	}

	s.logger.Info("industry insight created",
		zap.String("industry", industry),
		zap.String("outcome", string(result.Outcome)),
	)

	return insight, nil
}

// RefreshIndustry regenerates the report and replaces the stored record. A
// fallback report never overwrites an existing record; it reports false and
// pushes the record's next update out by RefreshRetryBackoff.
func (s *insightService) RefreshIndustry(ctx context.Context, industry string) (bool, error) {
	result := s.generateReport(ctx, industry)

	if result.IsFallback() {
		_, err := s.insights.FindByIndustry(ctx, industry)
		if err == nil {
			retryAt := s.now().Add(RefreshRetryBackoff)
			s.logger.Warn("refresh produced default report, keeping existing insight",
				zap.String("industry", industry), zap.Time("retry_at", retryAt))
			if err := s.insights.PostponeNextUpdate(ctx, industry, retryAt); err != nil {
				s.logger.Error("failed to postpone insight refresh", zap.String("industry", industry), zap.Error(err))
				return false, newServiceError(ErrPersistence, "Failed to refresh industry insights", err)
			}
			return false, nil
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return false, newServiceError(ErrPersistence, "Failed to refresh industry insights", err)
		}
	}

	if err := s.insights.Replace(ctx, models.NewIndustryInsight(industry, result.Value, s.now(), s.ttl)); err != nil {
		s.logger.Error("failed to replace industry insight", zap.String("industry", industry), zap.Error(err))
		return false, newServiceError(ErrPersistence, "Failed to refresh industry insights", err)
	}

	s.logger.Info("industry insight refreshed", zap.String("industry", industry))
	return true, nil
}

func (s *insightService) RefreshAll(ctx context.Context) (*models.RefreshResponse, error) {
	industries, err := s.insights.ListIndustries(ctx)
	if err != nil {
		s.logger.Error("failed to list industries", zap.Error(err))
		return nil, newServiceError(ErrPersistence, "Failed to list industries", err)
	}

	return s.refreshEach(ctx, industries), nil
}

// RefreshDue refreshes at most limit industries whose next update has passed.
// A non-positive limit means DefaultDueRefreshLimit.
func (s *insightService) RefreshDue(ctx context.Context, limit int) (*models.RefreshResponse, error) {
	if limit <= 0 {
		limit = DefaultDueRefreshLimit
	}
	due, err := s.insights.FindDue(ctx, s.now(), limit)
	if err != nil {
		s.logger.Error("failed to find due insights", zap.Error(err))
		return nil, newServiceError(ErrPersistence, "Failed to list industries", err)
	}

	industries := make([]string, 0, len(due))
	for _, insight := range due {
		industries = append(industries, insight.Industry)
	}
	return s.refreshEach(ctx, industries), nil
}

func (s *insightService) refreshEach(ctx context.Context, industries []string) *models.RefreshResponse {
	resp := &models.RefreshResponse{Refreshed: []string{}, Skipped: []string{}}
	for _, industry := range industries {
		refreshed, err := s.RefreshIndustry(ctx, industry)
		if err != nil || !refreshed {
			resp.Skipped = append(resp.Skipped, industry)
			continue
		}
		resp.Refreshed = append(resp.Refreshed, industry)
	}
	return resp
}

func (s *insightService) generateReport(ctx context.Context, industry string) GenerationResult[models.InsightReport] {
	return GenerateStructured(
		ctx,
		s.generator,
		CallSiteInsights,
		s.prompts.BuildIndustryInsightPrompt(industry),
		DefaultInsightReport(),
		ValidateInsightReport,
	)
}
