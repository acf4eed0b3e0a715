// Package sqlstoretest opens throwaway SQLite stores for tests.
package sqlstoretest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"exam-grading-service/internal/domain"
	"exam-grading-service/internal/infra/sqlstore"
)

// New returns a migrated store backed by a file in t.TempDir.
func New(t testing.TB) *sqlstore.Store {
	t.Helper()
	store, err := sqlstore.Open(sqlstore.DriverSQLite, filepath.Join(t.TempDir(), "grading.db"), 10*time.Second)
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate sqlite store: %v", err)
	}
	return store
}

// Paper inserts a paper titled title.
func Paper(t testing.TB, store *sqlstore.Store, title string) domain.Paper {
	t.Helper()
	p, err := store.CreatePaper(context.Background(), domain.PaperInput{Title: title, DurationMinutes: 60, TotalMarks: 100}, time.Now().UTC())
	if err != nil {
		t.Fatalf("create paper: %v", err)
	}
	return p
}

// Student inserts a non-admin user.
func Student(t testing.TB, store *sqlstore.Store, username string) domain.User {
	t.Helper()
	u, err := store.CreateUser(context.Background(), domain.User{Username: username, DisplayName: username})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}
