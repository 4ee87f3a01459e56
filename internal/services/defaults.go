package services

import (
	"fmt"

	"careercoach/api/internal/models"
)

const minInsightEntries = 5

// DefaultInsightReport is stored when the model cannot produce a usable report.
func DefaultInsightReport() models.InsightReport {
	return models.InsightReport{
		SalaryRanges: []models.SalaryRange{
			{Role: "Entry Level", Min: 40000, Max: 60000, Median: 50000, Location: "Remote"},
			{Role: "Mid Level", Min: 60000, Max: 90000, Median: 75000, Location: "Remote"},
			{Role: "Senior Level", Min: 90000, Max: 130000, Median: 110000, Location: "Remote"},
			{Role: "Manager", Min: 100000, Max: 150000, Median: 125000, Location: "Remote"},
			{Role: "Director", Min: 130000, Max: 200000, Median: 165000, Location: "Remote"},
		},
		GrowthRate:        5.0,
		DemandLevel:       models.DemandMedium,
		TopSkills:         []string{"Skill 1", "Skill 2", "Skill 3", "Skill 4", "Skill 5"},
		MarketOutlook:     models.OutlookNeutral,
		KeyTrends:         []string{"Trend 1", "Trend 2", "Trend 3", "Trend 4", "Trend 5"},
		RecommendedSkills: []string{"Recommended 1", "Recommended 2", "Recommended 3", "Recommended 4", "Recommended 5"},
	}
}

// DefaultQuizQuestions is served to anonymous callers and when quiz
// generation fails.
func DefaultQuizQuestions() []models.QuizQuestion {
	return []models.QuizQuestion{
		{
			Question:      "What is the capital of France?",
			Options:       []string{"Berlin", "Madrid", "Paris", "Rome"},
			CorrectAnswer: "Paris",
			Explanation:   "Paris has been the capital of France since the 10th century.",
		},
	}
}

type quizPayload struct {
	Questions []models.QuizQuestion `json:"questions"`
}

func ValidateInsightReport(r models.InsightReport) error {
	if len(r.SalaryRanges) < minInsightEntries {
		return fmt.Errorf("expected at least %d salary ranges, got %d", minInsightEntries, len(r.SalaryRanges))
	}
	for i, s := range r.SalaryRanges {
		if s.Role == "" {
			return fmt.Errorf("salary range %d has no role", i)
		}
		if s.Min > s.Max {
			return fmt.Errorf("salary range %d has min above max", i)
		}
	}
	if !r.DemandLevel.Valid() {
		return fmt.Errorf("invalid demand level %q", r.DemandLevel)
	}
	if !r.MarketOutlook.Valid() {
		return fmt.Errorf("invalid market outlook %q", r.MarketOutlook)
	}
	if err := requireEntries("topSkills", r.TopSkills); err != nil {
		return err
	}
	if err := requireEntries("keyTrends", r.KeyTrends); err != nil {
		return err
	}
	return requireEntries("recommendedSkills", r.RecommendedSkills)
}

func requireEntries(field string, values []string) error {
	if len(values) < minInsightEntries {
		return fmt.Errorf("expected at least %d %s, got %d", minInsightEntries, field, len(values))
	}
	for i, v := range values {
		if v == "" {
			return fmt.Errorf("%s[%d] is empty", field, i)
		}
	}
	return nil
}

func validateQuizPayload(p quizPayload) error {
	if len(p.Questions) == 0 {
		return fmt.Errorf("no questions in response")
	}
	for i, q := range p.Questions {
		if q.Question == "" {
			return fmt.Errorf("question %d has no text", i)
		}
		if len(q.Options) != 4 {
			return fmt.Errorf("question %d has %d options, want 4", i, len(q.Options))
		}
		found := false
		for _, o := range q.Options {
			if o == q.CorrectAnswer {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("question %d correct answer is not one of its options", i)
		}
	}
	return nil
}
