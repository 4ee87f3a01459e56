package services

import (
	"fmt"

	"careercoach/api/internal/models"
)

type QuizScore struct {
	Score   int
	Results []models.QuestionResult
	Wrong   []models.QuestionResult
}

// ScoreQuiz marks answers[i] correct only when it equals
// questions[i].CorrectAnswer exactly (case-sensitive). No partial credit.
func ScoreQuiz(questions []models.QuizQuestion, answers []string) (QuizScore, error) {
	if len(questions) != len(answers) {
		return QuizScore{}, fmt.Errorf("got %d answers for %d questions", len(answers), len(questions))
	}

	score := QuizScore{
		Results: make([]models.QuestionResult, 0, len(questions)),
		Wrong:   []models.QuestionResult{},
	}

	for i, q := range questions {
		result := models.QuestionResult{
			Question:    q.Question,
			Answer:      q.CorrectAnswer,
			UserAnswer:  answers[i],
			IsCorrect:   answers[i] == q.CorrectAnswer,
			Explanation: q.Explanation,
		}
		if result.IsCorrect {
			score.Score++
		} else {
			score.Wrong = append(score.Wrong, result)
		}
		score.Results = append(score.Results, result)
	}

	return score, nil
}
