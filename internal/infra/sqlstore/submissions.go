package sqlstore

import (
	"context"
	"fmt"

	"exam-grading-service/internal/app"
	"exam-grading-service/internal/domain"
	"github.com/uptrace/bun"
)

// CreateSubmission grades and inserts a submission in one transaction. The
// (paper_id, student_id) unique constraint rejects a second submission.
func (s *Store) CreateSubmission(ctx context.Context, draft domain.SubmissionDraft, grade app.GradeFunc) (domain.Submission, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	var row submissionRow
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		key, err := loadAnswerKey(ctx, tx, draft.PaperID)
		if err != nil {
			return err
		}
		exists, err := tx.NewSelect().Model((*userRow)(nil)).Where("u.id = ?", draft.StudentID).Exists(ctx)
		if err != nil {
			return classify(err)
		}
		if !exists {
			return fmt.Errorf("student %d: %w", draft.StudentID, domain.ErrNotFound)
		}
		if len(key) == 0 {
			return fmt.Errorf("paper %d: %w", draft.PaperID, domain.ErrNotGradable)
		}

		result := grade(key)
		row = submissionRow{
			PaperID:         draft.PaperID,
			StudentID:       draft.StudentID,
			Answers:         draft.Answers,
			Breakdown:       result.Breakdown,
			TimeSpent:       draft.TimeSpent,
			Score:           result.TotalCorrect,
			TotalQuestions:  result.TotalQuestions,
			ScorePercentage: result.ScorePercentage,
			SubmittedAt:     draft.SubmittedAt,
		}
		if _, err := tx.NewInsert().Model(&row).Exec(ctx); err != nil {
			return classify(err)
		}
		return nil
	})
	if err != nil {
		return domain.Submission{}, classify(err)
	}
	return row.toDomain(), nil
}

func (s *Store) GetSubmission(ctx context.Context, id int64) (domain.Submission, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	var row submissionRow
	if err := s.db.NewSelect().Model(&row).Where("s.id = ?", id).Scan(ctx); err != nil {
		return domain.Submission{}, notFound(err, "submission", id)
	}
	return row.toDomain(), nil
}
