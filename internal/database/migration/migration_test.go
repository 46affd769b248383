package migration

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doctools/internal/logging"
)

const sentinel = "SELECT to_regclass('public.activities') IS NOT NULL"

func TestEnsureMigrated_RunsStepsOnFreshDatabase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(sentinel)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	for _, step := range steps {
		mock.ExpectExec(regexp.QuoteMeta(step.SQL)).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	var buf bytes.Buffer
	err = EnsureMigrated(context.Background(), db, logging.New(&buf, time.UTC, 0), "db.local")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Contains(t, buf.String(), `"msg":"db_migration_success"`)
	assert.Contains(t, buf.String(), `"db_host":"db.local"`)
}

func TestEnsureMigrated_SkipsExistingSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(sentinel)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	err = EnsureMigrated(context.Background(), db, logging.Discard(), "db.local")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureMigrated_Errors(t *testing.T) {
	t.Run("sentinel check fails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(sentinel)).WillReturnError(errors.New("timeout"))

		err = EnsureMigrated(context.Background(), db, logging.Discard(), "db.local")
		assert.ErrorContains(t, err, "failed to check sentinel table")
	})

	t.Run("step fails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(sentinel)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec(regexp.QuoteMeta(steps[0].SQL)).WillReturnError(errors.New("permission denied"))

		err = EnsureMigrated(context.Background(), db, logging.Discard(), "db.local")
		assert.ErrorContains(t, err, "migration step create_table_activities failed")
	})
}
