package models

import "time"

type UpdateProfileRequest struct {
	Industry   string   `json:"industry"`
	Experience *int     `json:"experience"`
	Bio        string   `json:"bio"`
	Skills     []string `json:"skills"`
}

type OnboardingStatusResponse struct {
	IsOnboarded bool `json:"isOnboarded"`
}

type QuizResponse struct {
	Questions []QuizQuestion `json:"questions"`
}

type SubmitQuizRequest struct {
	Questions []QuizQuestion `json:"questions"`
	Answers   []string       `json:"answers"`
}

type SaveResumeRequest struct {
	Content string `json:"content"`
}

type ImproveResumeRequest struct {
	Current string `json:"current"`
	Type    string `json:"type"`
}

type ImproveResumeResponse struct {
	Content string `json:"content"`
}

type RefreshResponse struct {
	Refreshed []string `json:"refreshed"`
	Skipped   []string `json:"skipped"`
}

type TrendPoint struct {
	Label string    `json:"label"`
	Score float64   `json:"score"`
	Date  time.Time `json:"date"`
}

type AssessmentStats struct {
	TotalAssessments int          `json:"totalAssessments"`
	AverageScore     float64      `json:"averageScore"`
	TotalQuestions   int          `json:"totalQuestions"`
	TotalCorrect     int          `json:"totalCorrect"`
	AccuracyRate     float64      `json:"accuracyRate"`
	LatestScore      *float64     `json:"latestScore"`
	Trend            []TrendPoint `json:"trend"`
}
