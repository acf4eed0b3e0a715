package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"exam-grading-service/internal/app"
	"exam-grading-service/internal/infra/sqlstore/migrations"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	_ "modernc.org/sqlite" // registers "sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var (
	_ app.PaperRepository      = (*Store)(nil)
	_ app.UserRepository       = (*Store)(nil)
	_ app.AnswerKeyRepository  = (*Store)(nil)
	_ app.SubmissionRepository = (*Store)(nil)
	_ app.ResultsRepository    = (*Store)(nil)
)

// Store implements the relational repositories of the app layer on top of bun.
type Store struct {
	db        *bun.DB
	opTimeout time.Duration
}

// Open connects to PostgreSQL through pgdriver or to an SQLite file through modernc.
func Open(driver, url string, opTimeout time.Duration) (*Store, error) {
	switch driver {
	case DriverPostgres:
		if url == "" {
			return nil, fmt.Errorf("postgres url not configured")
		}
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(url)))
		return New(bun.NewDB(sqldb, pgdialect.New()), opTimeout), nil
	case DriverSQLite:
		if url == "" {
			return nil, fmt.Errorf("sqlite path not configured")
		}
		sqldb, err := sql.Open("sqlite", SQLiteDSN(url))
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return New(bun.NewDB(sqldb, sqlitedialect.New()), opTimeout), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// New wraps an existing bun handle.
func New(db *bun.DB, opTimeout time.Duration) *Store {
	return &Store{db: db, opTimeout: opTimeout}
}

// SQLiteDSN turns a file path into a DSN with foreign keys on, a busy timeout
// and write transactions that take the lock up front.
func SQLiteDSN(path string) string {
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"
}

func (s *Store) DB() *bun.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	return classify(s.db.PingContext(ctx))
}

// Migrate applies pending schema migrations.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := migrations.Apply(ctx, s.db); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (s *Store) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opTimeout)
}

// forUpdate locks selected rows on PostgreSQL. SQLite write transactions
// already hold the database lock.
func (s *Store) forUpdate(q *bun.SelectQuery) *bun.SelectQuery {
	if s.db.Dialect().Name() == dialect.PG {
		return q.For("UPDATE")
	}
	return q
}
