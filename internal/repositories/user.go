package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"careercoach/api/internal/models"
)

// ErrNotFound is returned by every repository when the requested row is absent.
var ErrNotFound = errors.New("record not found")

type UserRepository interface {
	FindByExternalID(ctx context.Context, externalID string) (*models.User, error)
	CreateIfAbsent(ctx context.Context, user *models.User) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// CreateIfAbsent inserts the user unless one with the same external id
// exists, and returns the stored row either way.
func (r *userRepository) CreateIfAbsent(ctx context.Context, user *models.User) (*models.User, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "external_id"}}, DoNothing: true}).
		Create(user).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return r.FindByExternalID(ctx, user.ExternalID)
}

func (r *userRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"industry":   user.Industry,
			"experience": user.Experience,
			"bio":        user.Bio,
			"skills":     user.Skills,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update user profile: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
