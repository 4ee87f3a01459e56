package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"careercoach/api/internal/models"
	"careercoach/api/internal/repositories"
)

type UserService interface {
	SyncUser(ctx context.Context, identity *models.Identity) (*models.User, error)
	GetProfile(ctx context.Context, identity *models.Identity) (*models.User, error)
	UpdateProfile(ctx context.Context, identity *models.Identity, req models.UpdateProfileRequest) (*models.User, error)
	OnboardingStatus(ctx context.Context, identity *models.Identity) (*models.OnboardingStatusResponse, error)
}

type userService struct {
	users    repositories.UserRepository
	insights InsightService
	logger   *zap.Logger
}

func NewUserService(users repositories.UserRepository, insights InsightService, logger *zap.Logger) UserService {
	return &userService{
		users:    users,
		insights: insights,
		logger:   logger.Named("users"),
	}
}

// SyncUser returns the stored user for identity, creating it from the
// identity provider's profile fields on first sight.
func (s *userService) SyncUser(ctx context.Context, identity *models.Identity) (*models.User, error) {
	if identity == nil || identity.ExternalID == "" {
		return nil, newServiceError(ErrUnauthenticated, "Not authenticated", nil)
	}

	user, err := s.users.FindByExternalID(ctx, identity.ExternalID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		s.logger.Error("failed to look up user", zap.String("external_id", identity.ExternalID), zap.Error(err))
		return nil, newServiceError(ErrPersistence, "Failed to create user", err)
	}

	user, err = s.users.CreateIfAbsent(ctx, &models.User{
		ExternalID: identity.ExternalID,
		Email:      identity.Email,
		FirstName:  identity.FirstName,
		LastName:   identity.LastName,
		ImageURL:   identity.ImageURL,
		Skills:     datatypes.NewJSONSlice([]string{}),
	})
	if err != nil {
		s.logger.Error("failed to create user", zap.String("external_id", identity.ExternalID), zap.Error(err))
		return nil, newServiceError(ErrPersistence, "Failed to create user", err)
	}

	s.logger.Info("user created", zap.String("user_id", user.ID.String()))
	return user, nil
}

func (s *userService) GetProfile(ctx context.Context, identity *models.Identity) (*models.User, error) {
	return resolveUser(ctx, s.users, identity)
}

// UpdateProfile saves the onboarding fields and makes sure the chosen
// industry already has an insight report.
func (s *userService) UpdateProfile(ctx context.Context, identity *models.Identity, req models.UpdateProfileRequest) (*models.User, error) {
	user, err := resolveUser(ctx, s.users, identity)
	if err != nil {
		return nil, err
	}

	industry := strings.TrimSpace(req.Industry)
	if industry == "" {
		return nil, newServiceError(ErrInvalidInput, "industry is required", nil)
	}
	if req.Experience != nil && *req.Experience < 0 {
		return nil, newServiceError(ErrInvalidInput, "experience cannot be negative", nil)
	}

	user.Industry = industry
	user.Experience = req.Experience
	user.Bio = strings.TrimSpace(req.Bio)
	user.Skills = datatypes.NewJSONSlice(normalizeSkills(req.Skills))

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		s.logger.Error("failed to update profile", zap.String("user_id", user.ID.String()), zap.Error(err))
		return nil, newServiceError(ErrPersistence, "Failed to update profile", err)
	}

	if _, err := s.insights.EnsureInsight(ctx, industry); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *userService) OnboardingStatus(ctx context.Context, identity *models.Identity) (*models.OnboardingStatusResponse, error) {
	user, err := resolveUser(ctx, s.users, identity)
	if err != nil {
		return nil, err
	}
	return &models.OnboardingStatusResponse{IsOnboarded: user.Industry != ""}, nil
}

func normalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			continue
		}
		if _, ok := seen[skill]; ok {
			continue
		}
		seen[skill] = struct{}{}
		out = append(out, skill)
	}
	return out
}
