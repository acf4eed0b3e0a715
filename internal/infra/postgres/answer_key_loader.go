package postgres

import (
	"context"
	"fmt"

	"exam-grading-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// AnswerKeyLoader reads answer keys straight from Postgres over a pgx pool.
// It serves cache misses so hot reads bypass bun.
type AnswerKeyLoader struct {
	pool *pgxpool.Pool
}

func NewAnswerKeyLoader(pool *pgxpool.Pool) *AnswerKeyLoader {
	return &AnswerKeyLoader{pool: pool}
}

func (l *AnswerKeyLoader) LoadAnswerKey(ctx context.Context, paperID int64) (domain.AnswerKey, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT e.question_number, e.correct_option
		FROM papers p
		LEFT JOIN answer_key_entries e ON e.paper_id = p.id
		WHERE p.id = $1`, paperID)
	if err != nil {
		return nil, fmt.Errorf("load answer key: %w", err)
	}
	defer rows.Close()

	var (
		found bool
		key   = domain.AnswerKey{}
	)
	for rows.Next() {
		found = true
		var (
			question *int32
			option   *string
		)
		if err := rows.Scan(&question, &option); err != nil {
			return nil, fmt.Errorf("scan answer key: %w", err)
		}
		if question == nil || option == nil {
			continue
		}
		opt, err := domain.ParseOption(*option)
		if err != nil {
			return nil, fmt.Errorf("paper %d question %d: stored option: %w", paperID, *question, err)
		}
		key[int(*question)] = opt
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load answer key: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("paper %d: %w", paperID, domain.ErrNotFound)
	}
	return key, nil
}

// Connect opens a pgx pool for the loader.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.Connect(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres pool: %w", err)
	}
	return pool, nil
}
