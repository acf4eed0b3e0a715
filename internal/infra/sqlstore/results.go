package sqlstore

import (
	"context"
	"fmt"

	"exam-grading-service/internal/domain"
	"github.com/uptrace/bun"
)

func (s *Store) resultsQuery() *bun.SelectQuery {
	return s.db.NewSelect().
		TableExpr("submissions AS s").
		ColumnExpr("s.id AS submission_id").
		ColumnExpr("s.paper_id, p.title AS paper_title").
		ColumnExpr("s.student_id, u.display_name AS student_display_name").
		ColumnExpr("s.score AS total_correct, s.total_questions, s.score_percentage").
		ColumnExpr("s.time_spent, s.submitted_at").
		Join("JOIN papers AS p ON p.id = s.paper_id").
		Join("JOIN users AS u ON u.id = s.student_id").
		OrderExpr("s.submitted_at ASC, s.id ASC")
}

func (s *Store) ResultsForPaper(ctx context.Context, paperID int64) ([]domain.StudentResult, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	var rows []resultRow
	if err := s.resultsQuery().Where("s.paper_id = ?", paperID).Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("results for paper %d: %w", paperID, classify(err))
	}
	return toResults(rows), nil
}

func (s *Store) ResultsForStudent(ctx context.Context, studentID int64) ([]domain.StudentResult, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	var rows []resultRow
	if err := s.resultsQuery().Where("s.student_id = ?", studentID).Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("results for student %d: %w", studentID, classify(err))
	}
	return toResults(rows), nil
}

func (s *Store) ResultForSubmission(ctx context.Context, submissionID int64) (domain.StudentResult, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	var row resultRow
	if err := s.resultsQuery().Where("s.id = ?", submissionID).Limit(1).Scan(ctx, &row); err != nil {
		return domain.StudentResult{}, notFound(err, "submission", submissionID)
	}
	return row.toDomain(), nil
}

func toResults(rows []resultRow) []domain.StudentResult {
	out := make([]domain.StudentResult, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out
}
