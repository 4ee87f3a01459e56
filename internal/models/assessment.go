package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const CategoryTechnical = "Technical"

type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

type QuestionResult struct {
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	UserAnswer  string `json:"userAnswer"`
	IsCorrect   bool   `json:"isCorrect"`
	Explanation string `json:"explanation"`
}

// Assessment is written once per quiz submission and never updated.
type Assessment struct {
	ID             uuid.UUID                           `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID                           `gorm:"type:uuid;not null;index" json:"userId"`
	Score          int                                 `gorm:"not null" json:"score"`
	TotalQuestions int                                 `gorm:"not null" json:"totalQuestions"`
	Results        datatypes.JSONSlice[QuestionResult] `gorm:"not null" json:"results"`
	Category       string                              `gorm:"type:text;not null" json:"category"`
	ImprovementTip *string                             `gorm:"type:text" json:"improvementTip"`
	CreatedAt      time.Time                           `gorm:"index" json:"createdAt"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Assessment) TableName() string {
	return "assessments"
}

func (a *Assessment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Percentage is the score scaled to 0-100.
func (a *Assessment) Percentage() float64 {
	if a.TotalQuestions == 0 {
		return 0
	}
	return float64(a.Score) / float64(a.TotalQuestions) * 100
}
