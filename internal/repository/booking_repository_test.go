package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/gym-core-api/pkg/errors"
)

func newBookingRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestBookingRepositoryBookTakesSeat(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("mem-1", "sess-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE class_sessions SET booked = booked + 1")).
		WithArgs("sess-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bookings")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	booking, err := repo.Book(context.Background(), "mem-1", "sess-1")
	require.NoError(t, err)
	require.Equal(t, "mem-1", booking.MemberID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryBookFullSession(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("mem-1", "sess-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE class_sessions SET booked = booked + 1")).
		WithArgs("sess-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.Book(context.Background(), "mem-1", "sess-1")
	require.ErrorIs(t, err, appErrors.ErrClassFull)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryBookDuplicate(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("mem-1", "sess-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	_, err := repo.Book(context.Background(), "mem-1", "sess-1")
	require.ErrorIs(t, err, appErrors.ErrDuplicateBooking)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryCancelReleasesSeat(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE bookings SET status = 'CANCELLED'")).
		WithArgs("book-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"session_id"}).AddRow("sess-1"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE class_sessions SET booked = booked - 1")).
		WithArgs("sess-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	cancelled, err := repo.Cancel(context.Background(), "book-1")
	require.NoError(t, err)
	require.True(t, cancelled)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryCancelAlreadyCancelled(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE bookings SET status = 'CANCELLED'")).
		WithArgs("book-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"session_id"}))
	mock.ExpectRollback()

	cancelled, err := repo.Cancel(context.Background(), "book-1")
	require.NoError(t, err)
	require.False(t, cancelled)
	require.NoError(t, mock.ExpectationsWereMet())
}
