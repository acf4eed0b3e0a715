package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"exam-grading-service/internal/domain"
	"github.com/uptrace/bun"
)

type keyLine struct {
	QuestionNumber sql.NullInt64  `bun:"question_number"`
	CorrectOption  sql.NullString `bun:"correct_option"`
}

// LoadAnswerKey returns the paper's key, empty when nothing was uploaded.
func (s *Store) LoadAnswerKey(ctx context.Context, paperID int64) (domain.AnswerKey, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	return loadAnswerKey(ctx, s.db, paperID)
}

// loadAnswerKey reads the key in a single statement so it sees one snapshot.
func loadAnswerKey(ctx context.Context, db bun.IDB, paperID int64) (domain.AnswerKey, error) {
	var lines []keyLine
	err := db.NewSelect().
		TableExpr("papers AS p").
		ColumnExpr("e.question_number, e.correct_option").
		Join("LEFT JOIN answer_key_entries AS e ON e.paper_id = p.id").
		Where("p.id = ?", paperID).
		Scan(ctx, &lines)
	if err != nil {
		return nil, fmt.Errorf("load answer key of paper %d: %w", paperID, classify(err))
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("paper %d: %w", paperID, domain.ErrNotFound)
	}

	key := make(domain.AnswerKey, len(lines))
	for _, l := range lines {
		if !l.QuestionNumber.Valid {
			continue
		}
		opt, err := domain.ParseOption(l.CorrectOption.String)
		if err != nil {
			return nil, fmt.Errorf("paper %d question %d: stored option: %w", paperID, l.QuestionNumber.Int64, err)
		}
		key[int(l.QuestionNumber.Int64)] = opt
	}
	return key, nil
}

// ReplaceAnswerKey swaps the whole key of a paper in one transaction. The
// paper row is updated first so concurrent replacements of the same key queue
// behind its lock.
func (s *Store) ReplaceAnswerKey(ctx context.Context, paperID int64, entries []domain.AnswerKeyEntry, at time.Time) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*paperRow)(nil)).
			Set("answer_key_updated_at = ?", at).
			Where("id = ?", paperID).
			Exec(ctx)
		if err != nil {
			return classify(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("paper %d: %w", paperID, domain.ErrNotFound)
		}

		if _, err := tx.NewDelete().
			Model((*answerKeyEntryRow)(nil)).
			Where("paper_id = ?", paperID).
			Exec(ctx); err != nil {
			return classify(err)
		}

		if len(entries) == 0 {
			return nil
		}
		rows := make([]answerKeyEntryRow, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, answerKeyEntryRow{
				PaperID:        paperID,
				QuestionNumber: e.QuestionNumber,
				CorrectOption:  e.CorrectOption.String(),
			})
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return classify(err)
		}
		return nil
	})
	return classify(err)
}
