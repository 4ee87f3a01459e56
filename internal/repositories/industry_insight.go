package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"careercoach/api/internal/models"
)

type IndustryInsightRepository interface {
	FindByIndustry(ctx context.Context, industry string) (*models.IndustryInsight, error)
	CreateIfAbsent(ctx context.Context, insight *models.IndustryInsight) (*models.IndustryInsight, error)
	Replace(ctx context.Context, insight *models.IndustryInsight) error
	ListIndustries(ctx context.Context) ([]string, error)
	FindDue(ctx context.Context, now time.Time, limit int) ([]models.IndustryInsight, error)
	PostponeNextUpdate(ctx context.Context, industry string, next time.Time) error
}

type industryInsightRepository struct {
	db *gorm.DB
}

func NewIndustryInsightRepository(db *gorm.DB) IndustryInsightRepository {
	return &industryInsightRepository{db: db}
}

func (r *industryInsightRepository) FindByIndustry(ctx context.Context, industry string) (*models.IndustryInsight, error) {
	var insight models.IndustryInsight
	if err := r.db.WithContext(ctx).Where("industry = ?", industry).First(&insight).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find industry insight: %w", err)
	}
	return &insight, nil
}

// CreateIfAbsent keeps the first writer's record when two requests race to
// generate the same industry.
func (r *industryInsightRepository) CreateIfAbsent(ctx context.Context, insight *models.IndustryInsight) (*models.IndustryInsight, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "industry"}}, DoNothing: true}).
		Create(insight).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create industry insight: %w", err)
	}
	return r.FindByIndustry(ctx, insight.Industry)
}

// Replace overwrites every generated field of the industry's record, or
// inserts it when missing.
func (r *industryInsightRepository) Replace(ctx context.Context, insight *models.IndustryInsight) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "industry"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"salary_ranges",
				"growth_rate",
				"demand_level",
				"top_skills",
				"market_outlook",
				"key_trends",
				"recommended_skills",
				"last_updated",
				"next_update",
			}),
		}).
		Create(insight).Error
	if err != nil {
		return fmt.Errorf("failed to replace industry insight: %w", err)
	}
	return nil
}

func (r *industryInsightRepository) ListIndustries(ctx context.Context) ([]string, error) {
	var industries []string
	err := r.db.WithContext(ctx).
		Model(&models.IndustryInsight{}).
		Order("industry ASC").
		Pluck("industry", &industries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list industries: %w", err)
	}
	return industries, nil
}

func (r *industryInsightRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]models.IndustryInsight, error) {
	var insights []models.IndustryInsight
	err := r.db.WithContext(ctx).
		Where("next_update <= ?", now).
		Order("next_update ASC").
		Limit(limit).
		Find(&insights).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find due insights: %w", err)
	}
	return insights, nil
}

// PostponeNextUpdate moves only the schedule; the report stays as it is.
func (r *industryInsightRepository) PostponeNextUpdate(ctx context.Context, industry string, next time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.IndustryInsight{}).
		Where("industry = ?", industry).
		Update("next_update", next)
	if result.Error != nil {
		return fmt.Errorf("failed to postpone industry insight: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
