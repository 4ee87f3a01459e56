package services

import (
	"context"
	"errors"

	"careercoach/api/internal/models"
	"careercoach/api/internal/repositories"
)

var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrNotFound         = errors.New("not found")
	ErrIndustryNotSet   = errors.New("industry not set")
	ErrInvalidInput     = errors.New("invalid input")
	ErrGenerationFailed = errors.New("generation failed")
	ErrPersistence      = errors.New("persistence failure")
)

// ServiceError carries a user-visible Message. Err is the underlying cause
// and is only ever logged.
type ServiceError struct {
	Kind    error
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ServiceError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newServiceError(kind error, message string, cause error) *ServiceError {
	return &ServiceError{Kind: kind, Message: message, Err: cause}
}

// resolveUser maps the caller's identity to the stored user record.
func resolveUser(ctx context.Context, users repositories.UserRepository, identity *models.Identity) (*models.User, error) {
	if identity == nil || identity.ExternalID == "" {
		return nil, newServiceError(ErrUnauthenticated, "Unauthorized", nil)
	}

	user, err := users.FindByExternalID(ctx, identity.ExternalID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newServiceError(ErrNotFound, "User not found", err)
		}
		return nil, newServiceError(ErrPersistence, "Failed to load user", err)
	}

	return user, nil
}
