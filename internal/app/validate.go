package app

import (
	"fmt"
	"math"
	"strings"

	"exam-grading-service/internal/domain"
)

// Question numbers and durations are stored as 32-bit integers.
const maxQuestionNumber = math.MaxInt32

func validateAnswerKey(entries []domain.AnswerKeyEntry) error {
	if len(entries) == 0 {
		return domain.Invalid("entries", "must not be empty")
	}
	seen := make(map[int]int, len(entries))
	for i, e := range entries {
		if e.QuestionNumber <= 0 || e.QuestionNumber > maxQuestionNumber {
			return domain.Invalid(fmt.Sprintf("entries[%d].question_number", i), "must be between 1 and %d, got %d", maxQuestionNumber, e.QuestionNumber)
		}
		if first, dup := seen[e.QuestionNumber]; dup {
			return domain.Invalid(fmt.Sprintf("entries[%d].question_number", i), "question %d already given at entries[%d]", e.QuestionNumber, first)
		}
		seen[e.QuestionNumber] = i
		if !e.CorrectOption.Valid() {
			return domain.Invalid(fmt.Sprintf("entries[%d].correct_option", i), "must be one of A-%c", 'A'+domain.MaxOptions-1)
		}
	}
	return nil
}

func validateAnswers(answers []domain.Answer, timeSpent int) error {
	if timeSpent < 0 || timeSpent > math.MaxInt32 {
		return domain.Invalid("time_spent", "must be between 0 and %d, got %d", math.MaxInt32, timeSpent)
	}
	seen := make(map[int]int, len(answers))
	for i, a := range answers {
		if a.QuestionNumber <= 0 || a.QuestionNumber > maxQuestionNumber {
			return domain.Invalid(fmt.Sprintf("answers[%d].question_number", i), "must be between 1 and %d, got %d", maxQuestionNumber, a.QuestionNumber)
		}
		if first, dup := seen[a.QuestionNumber]; dup {
			return domain.Invalid(fmt.Sprintf("answers[%d].question_number", i), "question %d already answered at answers[%d]", a.QuestionNumber, first)
		}
		seen[a.QuestionNumber] = i
		if !a.SelectedOption.Valid() {
			return domain.Invalid(fmt.Sprintf("answers[%d].selected_option", i), "must be one of A-%c", 'A'+domain.MaxOptions-1)
		}
	}
	return nil
}

func validatePaper(in domain.PaperInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return domain.Invalid("title", "must not be empty")
	}
	if in.DurationMinutes < 0 || in.DurationMinutes > math.MaxInt32 {
		return domain.Invalid("duration_minutes", "must be between 0 and %d", math.MaxInt32)
	}
	if in.TotalMarks < 0 || in.TotalMarks > math.MaxInt32 {
		return domain.Invalid("total_marks", "must be between 0 and %d", math.MaxInt32)
	}
	return nil
}
