package domain

import (
	"sort"
	"time"
)

// Paper is the aggregate root that owns an answer key and its submissions.
type Paper struct {
	ID                 int64      `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	DurationMinutes    int        `json:"duration_minutes"`
	TotalMarks         int        `json:"total_marks"`
	PDFPath            string     `json:"-"`
	HasPDF             bool       `json:"has_pdf"`
	AnswerKeyUpdatedAt *time.Time `json:"answer_key_updated_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// PaperInput carries the editable paper fields.
type PaperInput struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"duration_minutes"`
	TotalMarks      int    `json:"total_marks"`
}

// User is an identity known to the grading service.
type User struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	IsAdmin     bool      `json:"is_admin"`
	CreatedAt   time.Time `json:"created_at"`
}

// Identity is the verified caller attached to a request.
type Identity struct {
	UserID int64
	Name   string
	Admin  bool
}

// AnswerKeyEntry is one row of an uploaded answer key.
type AnswerKeyEntry struct {
	QuestionNumber int    `json:"question_number"`
	CorrectOption  Option `json:"correct_option"`
}

// AnswerKey maps question number to the correct option.
type AnswerKey map[int]Option

// Entries returns the key as a slice ordered by question number.
func (k AnswerKey) Entries() []AnswerKeyEntry {
	out := make([]AnswerKeyEntry, 0, len(k))
	for q, o := range k {
		out = append(out, AnswerKeyEntry{QuestionNumber: q, CorrectOption: o})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionNumber < out[j].QuestionNumber })
	return out
}

// Answer is one submitted (question, option) pair.
type Answer struct {
	QuestionNumber int    `json:"question_number"`
	SelectedOption Option `json:"selected_option"`
}

// QuestionResult is one line of a scoring breakdown.
type QuestionResult struct {
	QuestionNumber int     `json:"question_number"`
	SelectedOption Option  `json:"selected_option"`
	CorrectOption  *Option `json:"correct_option"`
	IsCorrect      bool    `json:"is_correct"`
}

// ScoreResult is the output of the scoring engine.
type ScoreResult struct {
	TotalCorrect    int              `json:"total_correct"`
	TotalQuestions  int              `json:"total_questions"`
	ScorePercentage float64          `json:"score_percentage"`
	Breakdown       []QuestionResult `json:"breakdown"`
}

// SubmissionDraft is a validated submission that has not been graded yet.
type SubmissionDraft struct {
	PaperID     int64
	StudentID   int64
	Answers     []Answer
	TimeSpent   int
	SubmittedAt time.Time
}

// Submission is a frozen grading record. Nothing mutates it after creation.
type Submission struct {
	ID              int64            `json:"id"`
	PaperID         int64            `json:"paper_id"`
	StudentID       int64            `json:"student_id"`
	Answers         []Answer         `json:"answers"`
	TimeSpent       int              `json:"time_spent"`
	SubmittedAt     time.Time        `json:"submitted_at"`
	Score           int              `json:"score"`
	TotalQuestions  int              `json:"total_questions"`
	ScorePercentage float64          `json:"score_percentage"`
	Breakdown       []QuestionResult `json:"breakdown"`
}

// StudentResult is the read projection served by the results endpoints.
type StudentResult struct {
	SubmissionID       int64     `json:"submission_id"`
	PaperID            int64     `json:"paper_id"`
	PaperTitle         string    `json:"paper_title"`
	StudentID          int64     `json:"student_id"`
	StudentDisplayName string    `json:"student_display_name"`
	TotalCorrect       int       `json:"total_correct"`
	TotalQuestions     int       `json:"total_questions"`
	ScorePercentage    float64   `json:"score_percentage"`
	TimeSpent          int       `json:"time_spent"`
	SubmittedAt        time.Time `json:"submitted_at"`
}
