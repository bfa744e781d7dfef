package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newSalaryRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSalaryRepositoryFindByTrainerMonthMissing(t *testing.T) {
	db, mock, cleanup := newSalaryRepoMock(t)
	defer cleanup()
	repo := NewSalaryRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM salaries WHERE trainer_id = $1 AND month = $2")).
		WithArgs("tr-1", "2025-06").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByTrainerMonth(context.Background(), "tr-1", "2025-06")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSalaryRepositoryMarkPaidOnlyOnce(t *testing.T) {
	db, mock, cleanup := newSalaryRepoMock(t)
	defer cleanup()
	repo := NewSalaryRepository(db)

	paidAt := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE salaries SET paid_at = $2")).
		WithArgs("sal-1", paidAt, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	paid, err := repo.MarkPaid(context.Background(), "sal-1", paidAt)
	require.NoError(t, err)
	require.True(t, paid)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE salaries SET paid_at = $2")).
		WithArgs("sal-1", paidAt, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	paid, err = repo.MarkPaid(context.Background(), "sal-1", paidAt)
	require.NoError(t, err)
	require.False(t, paid)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSalaryRepositoryTrainerRevenue(t *testing.T) {
	db, mock, cleanup := newSalaryRepoMock(t)
	defer cleanup()
	repo := NewSalaryRepository(db)

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	rows := sqlmock.NewRows([]string{"package_revenue", "class_revenue", "personal_revenue"}).
		AddRow(int64(3000000), int64(1200000), int64(800000))
	mock.ExpectQuery(regexp.QuoteMeta("FROM payments")).
		WithArgs("tr-1", from, to).
		WillReturnRows(rows)

	pkg, class, personal, err := repo.TrainerRevenue(context.Background(), "tr-1", from, to)
	require.NoError(t, err)
	require.Equal(t, int64(3000000), pkg)
	require.Equal(t, int64(1200000), class)
	require.Equal(t, int64(800000), personal)
	require.NoError(t, mock.ExpectationsWereMet())
}
