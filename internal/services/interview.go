package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"careercoach/api/internal/models"
	"careercoach/api/internal/repositories"
)

type InterviewService interface {
	GenerateQuiz(ctx context.Context, identity *models.Identity) ([]models.QuizQuestion, error)
	SubmitQuiz(ctx context.Context, identity *models.Identity, questions []models.QuizQuestion, answers []string) (*models.Assessment, error)
	ListAssessments(ctx context.Context, identity *models.Identity) ([]models.Assessment, error)
	Stats(ctx context.Context, identity *models.Identity) (*models.AssessmentStats, error)
}

type interviewService struct {
	users       repositories.UserRepository
	assessments repositories.AssessmentRepository
	generator   *StructuredGenerationClient
	prompts     *PromptBuilder
	logger      *zap.Logger
}

func NewInterviewService(
	users repositories.UserRepository,
	assessments repositories.AssessmentRepository,
	generator *StructuredGenerationClient,
	logger *zap.Logger,
) InterviewService {
	return &interviewService{
		users:       users,
		assessments: assessments,
		generator:   generator,
		prompts:     NewPromptBuilder(),
		logger:      logger.Named("interview"),
	}
}

// GenerateQuiz serves the default question to anonymous callers without
// contacting the model.
func (s *interviewService) GenerateQuiz(ctx context.Context, identity *models.Identity) ([]models.QuizQuestion, error) {
	if identity == nil {
		return DefaultQuizQuestions(), nil
	}

	user, err := resolveUser(ctx, s.users, identity)
	if err != nil {
		return nil, err
	}

	result := GenerateStructured(
		ctx,
		s.generator,
		CallSiteQuiz,
		s.prompts.BuildQuizPrompt(user.Industry, user.Skills),
		quizPayload{Questions: DefaultQuizQuestions()},
		validateQuizPayload,
	)

	s.logger.Info("quiz generated",
		zap.String("user_id", user.ID.String()),
		zap.Int("questions", len(result.Value.Questions)),
		zap.String("outcome", string(result.Outcome)),
	)

	return result.Value.Questions, nil
}

func (s *interviewService) SubmitQuiz(ctx context.Context, identity *models.Identity, questions []models.QuizQuestion, answers []string) (*models.Assessment, error) {
	user, err := resolveUser(ctx, s.users, identity)
	if err != nil {
		return nil, err
	}

	if len(questions) == 0 {
		return nil, newServiceError(ErrInvalidInput, "No questions submitted", nil)
	}

	score, err := ScoreQuiz(questions, answers)
	if err != nil {
		return nil, newServiceError(ErrInvalidInput, "Answers must match questions", err)
	}

	var tip *string
	if len(score.Wrong) > 0 {
		tip = s.improvementTip(ctx, user.Industry, score.Wrong)
	}

	assessment := &models.Assessment{
		UserID:         user.ID,
		Score:          score.Score,
		TotalQuestions: len(questions),
		Results:        datatypes.NewJSONSlice(score.Results),
		Category:       models.CategoryTechnical,
		ImprovementTip: tip,
		CreatedAt:      time.Now(),
	}

	if err := s.assessments.Create(ctx, assessment); err != nil {
		s.logger.Error("failed to save quiz result", zap.String("user_id", user.ID.String()), zap.Error(err))
		return nil, newServiceError(ErrPersistence, "Failed to save quiz result", err)
	}

	return assessment, nil
}

// improvementTip is supplementary output: any failure yields nil.
func (s *interviewService) improvementTip(ctx context.Context, industry string, wrong []models.QuestionResult) *string {
	tip, err := s.generator.GenerateText(ctx, CallSiteImprovementTip, s.prompts.BuildImprovementTipPrompt(industry, wrong))
	if err != nil {
		s.logger.Warn("improvement tip unavailable", zap.Error(err))
		return nil
	}
	return &tip
}

func (s *interviewService) ListAssessments(ctx context.Context, identity *models.Identity) ([]models.Assessment, error) {
	user, err := resolveUser(ctx, s.users, identity)
	if err != nil {
		return nil, err
	}

	assessments, err := s.assessments.ListByUser(ctx, user.ID)
	if err != nil {
		s.logger.Error("failed to fetch assessments", zap.String("user_id", user.ID.String()), zap.Error(err))
		return nil, newServiceError(ErrPersistence, "Failed to fetch assessments", err)
	}

	return assessments, nil
}

func (s *interviewService) Stats(ctx context.Context, identity *models.Identity) (*models.AssessmentStats, error) {
	assessments, err := s.ListAssessments(ctx, identity)
	if err != nil {
		return nil, err
	}
	return SummarizeAssessments(assessments), nil
}

// SummarizeAssessments expects assessments newest first, as ListAssessments
// returns them; the trend is reported oldest first.
func SummarizeAssessments(assessments []models.Assessment) *models.AssessmentStats {
	stats := &models.AssessmentStats{
		TotalAssessments: len(assessments),
		Trend:            make([]models.TrendPoint, 0, len(assessments)),
	}
	if len(assessments) == 0 {
		return stats
	}

	var percentSum float64
	for _, a := range assessments {
		stats.TotalQuestions += a.TotalQuestions
		stats.TotalCorrect += a.Score
		percentSum += a.Percentage()
	}

	stats.AverageScore = percentSum / float64(len(assessments))
	if stats.TotalQuestions > 0 {
		stats.AccuracyRate = float64(stats.TotalCorrect) / float64(stats.TotalQuestions) * 100
	}

	latest := assessments[0].Percentage()
	stats.LatestScore = &latest

	for i := len(assessments) - 1; i >= 0; i-- {
		a := assessments[i]
		stats.Trend = append(stats.Trend, models.TrendPoint{
			Label: fmt.Sprintf("Quiz %d", len(stats.Trend)+1),
			Score: a.Percentage(),
			Date:  a.CreatedAt,
		})
	}

	return stats
}
