package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/migrate"
)

//go:embed 0001_init.pg.sql
var initPostgresSQL string

//go:embed 0001_init.sqlite.sql
var initSQLiteSQL string

var Migrations = migrate.NewMigrations()

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			schema := initPostgresSQL
			if db.Dialect().Name() == dialect.SQLite {
				schema = initSQLiteSQL
			}
			_, err := db.ExecContext(ctx, schema)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			for _, table := range []string{"submissions", "answer_key_entries", "papers", "users"} {
				if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
					return err
				}
			}
			return nil
		},
	)
}

// Apply brings the schema up to date and returns the applied group.
func Apply(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error) {
	migrator := migrate.NewMigrator(db, Migrations)
	if err := migrator.Init(ctx); err != nil {
		return nil, err
	}
	return migrator.Migrate(ctx)
}
