package sqlstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"exam-grading-service/internal/domain"
	"github.com/uptrace/bun/driver/pgdriver"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// classify maps driver failures onto the domain taxonomy. Unknown errors pass through.
func classify(err error) error {
	if err == nil || classified(err) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) {
		return fmt.Errorf("%w: %w", domain.ErrTransient, err)
	}

	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		code := pgErr.Field('C')
		switch {
		case code == "23505":
			return fmt.Errorf("%w: %w", domain.ErrConflict, err)
		case code == "22003":
			return fmt.Errorf("%w: %w", domain.ErrValidation, err)
		case strings.HasPrefix(code, "40"), strings.HasPrefix(code, "08"), code == "57P01", code == "57014":
			return fmt.Errorf("%w: %w", domain.ErrTransient, err)
		}
		return err
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w: %w", domain.ErrConflict, err)
		}
		switch liteErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return fmt.Errorf("%w: %w", domain.ErrTransient, err)
		}
	}
	return err
}

// notFound turns sql.ErrNoRows into domain.ErrNotFound for what.
func notFound(err error, what string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %d: %w", what, id, domain.ErrNotFound)
	}
	return classify(err)
}

func classified(err error) bool {
	for _, target := range []error{domain.ErrNotFound, domain.ErrNotGradable, domain.ErrConflict, domain.ErrTransient, domain.ErrValidation} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
