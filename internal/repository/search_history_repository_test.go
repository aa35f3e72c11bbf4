package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSearchHistoryListByUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSearchHistoryRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "user_id", "query", "searched_at"}).
		AddRow("h2", "user-1", "Berlin", now).
		AddRow("h1", "user-1", "Paris", now.Add(-time.Minute))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, query, searched_at FROM location_search_history")).
		WithArgs("user-1", 5).
		WillReturnRows(rows)

	entries, err := repo.ListByUser(context.Background(), "user-1", 5)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "Berlin", entries[0].Query)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchHistoryRecordUpsertsAndTrims(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSearchHistoryRepository(db)

	at := time.Date(2024, time.March, 12, 10, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO location_search_history")).
		WithArgs(sqlmock.AnyArg(), "user-1", "Paris", at).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM location_search_history WHERE user_id = $1 AND id NOT IN")).
		WithArgs("user-1", 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Record(context.Background(), "user-1", "Paris", at, 5))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchHistoryRecordRollsBackOnError(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSearchHistoryRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO location_search_history")).
		WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err := repo.Record(context.Background(), "user-1", "Paris", time.Now(), 5)
	require.ErrorContains(t, err, "record search history")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchHistoryClear(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSearchHistoryRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM location_search_history WHERE user_id = $1")).
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	require.NoError(t, repo.ClearByUser(context.Background(), "user-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
