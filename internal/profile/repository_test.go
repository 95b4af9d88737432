// AngelaMos | 2026
// repository_test.go

package profile

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/permitdesk/internal/core"
)

var profileRowColumns = []string{
	"id", "email", "password_hash", "full_name", "user_type", "token_version",
	"is_suspended", "suspended_at", "suspended_by", "suspension_reason",
	"created_at", "updated_at",
}

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestRepository_SuspendIsSingleUpdate(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`UPDATE users\s+SET is_suspended = true,\s+suspended_at = NOW\(\),\s+suspended_by = \$2,\s+suspension_reason = \$3,\s+token_version = token_version \+ 1`).
		WithArgs("user-1", "admin-1", "unpaid fees").
		WillReturnRows(sqlmock.NewRows(profileRowColumns).AddRow(
			"user-1", "u@example.com", "hash", "User", "public", 2,
			true, now, "admin-1", "unpaid fees", now, now,
		))

	p, err := repo.Suspend(context.Background(), "user-1", "admin-1", "unpaid fees")
	require.NoError(t, err)
	assert.True(t, p.IsSuspended)
	assert.Equal(t, "admin-1", *p.SuspendedBy)
	assert.Equal(t, "unpaid fees", *p.SuspensionReason)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ReactivateMissingUser(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`UPDATE users\s+SET is_suspended = false`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(profileRowColumns))

	_, err := repo.Reactivate(context.Background(), "ghost")
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ResetPasswordBumpsVersion(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("token_version = token_version + 1")).
		WithArgs("user-1", "new-hash").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.ResetPassword(context.Background(), "user-1", "new-hash"))

	mock.ExpectExec(regexp.QuoteMeta("token_version = token_version + 1")).
		WithArgs("ghost", "new-hash").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.ResetPassword(context.Background(), "ghost", "new-hash")
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListFilters(t *testing.T) {
	repo, mock := newMockRepo(t)
	suspended := true

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT COUNT(*) FROM users WHERE TRUE AND (email ILIKE $1 OR full_name ILIKE $1) AND user_type = $2 AND is_suspended = $3",
	)).
		WithArgs("%50\\%%", "staff", true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	now := time.Now()
	mock.ExpectQuery(`LIMIT \$4 OFFSET \$5`).
		WithArgs("%50\\%%", "staff", true, 10, 10).
		WillReturnRows(sqlmock.NewRows(profileRowColumns).AddRow(
			"staff-1", "s@example.com", "hash", "Staff 50%", "staff", 0,
			true, now, "admin-1", "leave", now, now,
		))

	profiles, total, err := repo.List(context.Background(), ListParams{
		PageParams: core.PageParams{Page: 2, PageSize: 10},
		Search:     "50%",
		UserType:   "staff",
		Suspended:  &suspended,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, profiles, 1)
	assert.Equal(t, "staff-1", profiles[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
