package sqlstore

import (
	"context"
	"fmt"
	"time"

	"exam-grading-service/internal/domain"
	"github.com/uptrace/bun"
)

func (s *Store) CreatePaper(ctx context.Context, in domain.PaperInput, createdAt time.Time) (domain.Paper, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	row := paperRow{
		Title:           in.Title,
		Description:     in.Description,
		DurationMinutes: in.DurationMinutes,
		TotalMarks:      in.TotalMarks,
		CreatedAt:       createdAt,
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return domain.Paper{}, fmt.Errorf("insert paper: %w", classify(err))
	}
	return row.toDomain(), nil
}

func (s *Store) GetPaper(ctx context.Context, id int64) (domain.Paper, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	row, err := s.getPaper(ctx, s.db, id)
	if err != nil {
		return domain.Paper{}, classify(err)
	}
	return row.toDomain(), nil
}

func (s *Store) getPaper(ctx context.Context, db bun.IDB, id int64) (paperRow, error) {
	var row paperRow
	if err := db.NewSelect().Model(&row).Where("p.id = ?", id).Scan(ctx); err != nil {
		return paperRow{}, notFound(err, "paper", id)
	}
	return row, nil
}

func (s *Store) ListPapers(ctx context.Context) ([]domain.Paper, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	var rows []paperRow
	if err := s.db.NewSelect().Model(&rows).Order("p.id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list papers: %w", classify(err))
	}
	papers := make([]domain.Paper, 0, len(rows))
	for _, r := range rows {
		papers = append(papers, r.toDomain())
	}
	return papers, nil
}

func (s *Store) UpdatePaper(ctx context.Context, id int64, in domain.PaperInput) (domain.Paper, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	var out paperRow
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*paperRow)(nil)).
			Set("title = ?", in.Title).
			Set("description = ?", in.Description).
			Set("duration_minutes = ?", in.DurationMinutes).
			Set("total_marks = ?", in.TotalMarks).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return classify(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("paper %d: %w", id, domain.ErrNotFound)
		}
		out, err = s.getPaper(ctx, tx, id)
		return err
	})
	if err != nil {
		return domain.Paper{}, classify(err)
	}
	return out.toDomain(), nil
}

func (s *Store) SetPaperPDF(ctx context.Context, id int64, key string) (string, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	var prev string
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var row paperRow
		q := tx.NewSelect().Model(&row).Column("id", "pdf_path").Where("p.id = ?", id)
		if err := s.forUpdate(q).Scan(ctx); err != nil {
			return notFound(err, "paper", id)
		}
		prev = row.PDFPath
		_, err := tx.NewUpdate().
			Model((*paperRow)(nil)).
			Set("pdf_path = ?", key).
			Where("id = ?", id).
			Exec(ctx)
		return classify(err)
	})
	if err != nil {
		return "", classify(err)
	}
	return prev, nil
}

func (s *Store) DeletePaper(ctx context.Context, id int64) (domain.Paper, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	var row paperRow
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		if row, err = s.getPaper(ctx, tx, id); err != nil {
			return err
		}
		_, err = tx.NewDelete().Model((*paperRow)(nil)).Where("id = ?", id).Exec(ctx)
		return classify(err)
	})
	if err != nil {
		return domain.Paper{}, classify(err)
	}
	return row.toDomain(), nil
}
