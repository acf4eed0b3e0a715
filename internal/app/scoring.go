package app

import (
	"sort"

	"exam-grading-service/internal/domain"
)

// Score grades submitted answers against key. One mark per question; the
// denominator is the size of the key. A question answered twice only counts once.
func Score(key domain.AnswerKey, submitted []domain.Answer) domain.ScoreResult {
	result := domain.ScoreResult{
		TotalQuestions: len(key),
		Breakdown:      make([]domain.QuestionResult, 0, len(submitted)),
	}
	credited := make(map[int]bool, len(submitted))

	for _, answer := range submitted {
		line := domain.QuestionResult{
			QuestionNumber: answer.QuestionNumber,
			SelectedOption: answer.SelectedOption,
		}
		if correct, ok := key[answer.QuestionNumber]; ok {
			c := correct
			line.CorrectOption = &c
			line.IsCorrect = answer.SelectedOption == correct
		}
		if line.IsCorrect && !credited[answer.QuestionNumber] {
			credited[answer.QuestionNumber] = true
			result.TotalCorrect++
		}
		result.Breakdown = append(result.Breakdown, line)
	}

	sort.SliceStable(result.Breakdown, func(i, j int) bool {
		return result.Breakdown[i].QuestionNumber < result.Breakdown[j].QuestionNumber
	})

	if result.TotalQuestions > 0 {
		result.ScorePercentage = 100 * float64(result.TotalCorrect) / float64(result.TotalQuestions)
	}
	return result
}
