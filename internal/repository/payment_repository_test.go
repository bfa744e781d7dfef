package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newPaymentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestPaymentRepositorySettleActivatesRegistration(t *testing.T) {
	db, mock, cleanup := newPaymentRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	regID := "reg-1"
	txnNo := "VNP123"
	paidAt := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE payments SET status = 'SUCCESS'")).
		WithArgs("pay-1", txnNo, paidAt, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"registration_id"}).AddRow(regID))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE registrations SET status = 'ACTIVE'")).
		WithArgs(regID, "paid via VNPay", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	settled, err := repo.Settle(context.Background(), "pay-1", &txnNo, paidAt, "paid via VNPay")
	require.NoError(t, err)
	require.True(t, settled)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositorySettleNotPendingIsNoOp(t *testing.T) {
	db, mock, cleanup := newPaymentRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	paidAt := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE payments SET status = 'SUCCESS'")).
		WithArgs("pay-1", nil, paidAt, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"registration_id"}))
	mock.ExpectRollback()

	settled, err := repo.Settle(context.Background(), "pay-1", nil, paidAt, "paid in cash")
	require.NoError(t, err)
	require.False(t, settled)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryRefundOnlyFromSuccess(t *testing.T) {
	db, mock, cleanup := newPaymentRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE payments SET status = 'REFUND'")).
		WithArgs("pay-1", "member dispute", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	refunded, err := repo.Refund(context.Background(), "pay-1", "member dispute")
	require.NoError(t, err)
	require.False(t, refunded)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositorySumRevenueBetween(t *testing.T) {
	db, mock, cleanup := newPaymentRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(amount), 0) FROM payments")).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(int64(4500000)))

	total, err := repo.SumRevenueBetween(context.Background(), from, to)
	require.NoError(t, err)
	require.Equal(t, int64(4500000), total)
	require.NoError(t, mock.ExpectationsWereMet())
}
