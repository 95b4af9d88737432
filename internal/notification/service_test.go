// AngelaMos | 2026
// service_test.go

package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/permitdesk/internal/core"
)

func newMock(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewService(NewRepository(sqlx.NewDb(db, "sqlmock")), nil), mock
}

func TestNotify_Persists(t *testing.T) {
	svc, mock := newMock(t)

	mock.ExpectQuery(`INSERT INTO notifications`).
		WithArgs(sqlmock.AnyArg(), "user-1", "Approved", "Permit approved", SeveritySuccess).
		WillReturnRows(sqlmock.NewRows([]string{"is_read", "created_at"}).
			AddRow(false, time.Now()))

	svc.Notify(context.Background(), "user-1", "Approved", "Permit approved", SeveritySuccess)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotify_SwallowsFailures(t *testing.T) {
	svc, mock := newMock(t)

	mock.ExpectQuery(`INSERT INTO notifications`).
		WithArgs(sqlmock.AnyArg(), "user-1", "t", "m", SeverityInfo).
		WillReturnError(errors.New("connection reset"))

	assert.NotPanics(t, func() {
		svc.Notify(context.Background(), "user-1", "t", "m", "shouting")
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotify_SurvivesCancelledContext(t *testing.T) {
	svc, mock := newMock(t)

	mock.ExpectQuery(`INSERT INTO notifications`).
		WillReturnRows(sqlmock.NewRows([]string{"is_read", "created_at"}).
			AddRow(false, time.Now()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc.Notify(ctx, "user-1", "t", "m", SeverityInfo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkRead_OtherUsersNotification(t *testing.T) {
	svc, mock := newMock(t)

	mock.ExpectExec(`UPDATE notifications\s+SET is_read = true\s+WHERE id = \$1 AND user_id = \$2`).
		WithArgs("n-1", "user-2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.MarkRead(context.Background(), core.Actor{ID: "user-2"}, "n-1")
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkAllRead(t *testing.T) {
	svc, mock := newMock(t)

	mock.ExpectExec(`UPDATE notifications`).
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := svc.MarkAllRead(context.Background(), core.Actor{ID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
