package sqlstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"exam-grading-service/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	assert.NoError(t, classify(nil))
	assert.ErrorIs(t, classify(context.DeadlineExceeded), domain.ErrTransient)
	assert.ErrorIs(t, classify(fmt.Errorf("query: %w", driver.ErrBadConn)), domain.ErrTransient)

	plain := errors.New("syntax error")
	assert.Same(t, plain, classify(plain))

	already := fmt.Errorf("paper 1: %w", domain.ErrNotFound)
	assert.Same(t, already, classify(already))
}

func TestNotFound(t *testing.T) {
	err := notFound(sql.ErrNoRows, "paper", 3)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "paper 3")
}
