package sqlstore

import (
	"context"
	"fmt"
	"time"

	"exam-grading-service/internal/domain"
)

func (s *Store) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	row := userRow{
		Username:    u.Username,
		DisplayName: u.DisplayName,
		IsAdmin:     u.IsAdmin,
		CreatedAt:   u.CreatedAt,
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return domain.User{}, fmt.Errorf("insert user %q: %w", u.Username, classify(err))
	}
	return row.toDomain(), nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (domain.User, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	var row userRow
	if err := s.db.NewSelect().Model(&row).Where("u.id = ?", id).Scan(ctx); err != nil {
		return domain.User{}, notFound(err, "user", id)
	}
	return row.toDomain(), nil
}
