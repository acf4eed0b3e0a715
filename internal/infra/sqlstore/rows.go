package sqlstore

import (
	"time"

	"exam-grading-service/internal/domain"
	"github.com/uptrace/bun"
)

type userRow struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID          int64     `bun:"id,pk,autoincrement"`
	Username    string    `bun:"username,notnull"`
	DisplayName string    `bun:"display_name,notnull"`
	IsAdmin     bool      `bun:"is_admin,notnull"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
}

func (r userRow) toDomain() domain.User {
	return domain.User{
		ID:          r.ID,
		Username:    r.Username,
		DisplayName: r.DisplayName,
		IsAdmin:     r.IsAdmin,
		CreatedAt:   r.CreatedAt,
	}
}

type paperRow struct {
	bun.BaseModel `bun:"table:papers,alias:p"`

	ID                 int64      `bun:"id,pk,autoincrement"`
	Title              string     `bun:"title,notnull"`
	Description        string     `bun:"description,notnull"`
	DurationMinutes    int        `bun:"duration_minutes,notnull"`
	TotalMarks         int        `bun:"total_marks,notnull"`
	PDFPath            string     `bun:"pdf_path,nullzero"`
	AnswerKeyUpdatedAt *time.Time `bun:"answer_key_updated_at"`
	CreatedAt          time.Time  `bun:"created_at,notnull"`
}

func (r paperRow) toDomain() domain.Paper {
	return domain.Paper{
		ID:                 r.ID,
		Title:              r.Title,
		Description:        r.Description,
		DurationMinutes:    r.DurationMinutes,
		TotalMarks:         r.TotalMarks,
		PDFPath:            r.PDFPath,
		HasPDF:             r.PDFPath != "",
		AnswerKeyUpdatedAt: r.AnswerKeyUpdatedAt,
		CreatedAt:          r.CreatedAt,
	}
}

type answerKeyEntryRow struct {
	bun.BaseModel `bun:"table:answer_key_entries,alias:e"`

	PaperID        int64  `bun:"paper_id,pk"`
	QuestionNumber int    `bun:"question_number,pk"`
	CorrectOption  string `bun:"correct_option,notnull"`
}

type submissionRow struct {
	bun.BaseModel `bun:"table:submissions,alias:s"`

	ID              int64                   `bun:"id,pk,autoincrement"`
	PaperID         int64                   `bun:"paper_id,notnull"`
	StudentID       int64                   `bun:"student_id,notnull"`
	Answers         []domain.Answer         `bun:"answers,type:jsonb,notnull"`
	Breakdown       []domain.QuestionResult `bun:"breakdown,type:jsonb,notnull"`
	TimeSpent       int                     `bun:"time_spent,notnull"`
	Score           int                     `bun:"score,notnull"`
	TotalQuestions  int                     `bun:"total_questions,notnull"`
	ScorePercentage float64                 `bun:"score_percentage,notnull"`
	SubmittedAt     time.Time               `bun:"submitted_at,notnull"`
}

func (r submissionRow) toDomain() domain.Submission {
	return domain.Submission{
		ID:              r.ID,
		PaperID:         r.PaperID,
		StudentID:       r.StudentID,
		Answers:         r.Answers,
		TimeSpent:       r.TimeSpent,
		SubmittedAt:     r.SubmittedAt,
		Score:           r.Score,
		TotalQuestions:  r.TotalQuestions,
		ScorePercentage: r.ScorePercentage,
		Breakdown:       r.Breakdown,
	}
}

type resultRow struct {
	SubmissionID       int64     `bun:"submission_id"`
	PaperID            int64     `bun:"paper_id"`
	PaperTitle         string    `bun:"paper_title"`
	StudentID          int64     `bun:"student_id"`
	StudentDisplayName string    `bun:"student_display_name"`
	TotalCorrect       int       `bun:"total_correct"`
	TotalQuestions     int       `bun:"total_questions"`
	ScorePercentage    float64   `bun:"score_percentage"`
	TimeSpent          int       `bun:"time_spent"`
	SubmittedAt        time.Time `bun:"submitted_at"`
}

func (r resultRow) toDomain() domain.StudentResult {
	return domain.StudentResult(r)
}
