package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"careercoach/api/internal/models"
)

type ResumeRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Resume, error)
	Upsert(ctx context.Context, userID uuid.UUID, content string) (*models.Resume, error)
}

type resumeRepository struct {
	db *gorm.DB
}

func NewResumeRepository(db *gorm.DB) ResumeRepository {
	return &resumeRepository{db: db}
}

func (r *resumeRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Resume, error) {
	var resume models.Resume
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&resume).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find resume: %w", err)
	}
	return &resume, nil
}

// Upsert keeps a single resume per user.
func (r *resumeRepository) Upsert(ctx context.Context, userID uuid.UUID, content string) (*models.Resume, error) {
	resume := &models.Resume{
		UserID:    userID,
		Content:   content,
		UpdatedAt: time.Now(),
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"content", "updated_at"}),
		}).
		Create(resume).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save resume: %w", err)
	}

	return r.FindByUserID(ctx, userID)
}
