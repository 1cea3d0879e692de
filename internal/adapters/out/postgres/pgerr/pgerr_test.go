package pgerr_test

import (
	"errors"
	"fmt"
	"testing"

	"fulfillment/internal/adapters/out/postgres/pgerr"
	"fulfillment/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	t.Run("unique_violation_is_conflict", func(t *testing.T) {
		err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "idx_packing_jobs_wave_id"})

		got := pgerr.Translate(err, "packingJob")

		require.ErrorIs(t, got, errs.ErrConflict)
		var conflict *errs.ConflictError
		require.ErrorAs(t, got, &conflict)
		assert.Equal(t, "packingJob", conflict.ParamName)
	})

	t.Run("other_pg_error_unchanged", func(t *testing.T) {
		err := &pgconn.PgError{Code: "23503"}

		assert.Same(t, err, pgerr.Translate(err, "x"))
	})

	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, pgerr.Translate(nil, "x"))
	})

	t.Run("plain_error", func(t *testing.T) {
		err := errors.New("boom")
		assert.False(t, pgerr.IsUniqueViolation(err))
	})
}
