// AngelaMos | 2026
// repository_test.go

package permit

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

var applicationRowColumns = []string{
	"id", "user_id", "entity_id", "title", "permit_type", "description",
	"commencement_date", "completion_date", "status", "permit_number",
	"submitted_at", "decided_at", "created_at", "updated_at",
}

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestRepository_TransitionApplicationWritesAssessment(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()
	number := "EP-2026-ABCDEFGHJK"

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE permit_applications\s+SET status = \$3`).
		WithArgs("app-1", AppUnderTechnical, AppApproved, number, false, true).
		WillReturnRows(sqlmock.NewRows(applicationRowColumns).AddRow(
			"app-1", "user-1", "ent-1", "Quarry", "environmental", "desc",
			now, now.Add(48*time.Hour), AppApproved, number,
			now, now, now, now,
		))
	mock.ExpectQuery(`INSERT INTO assessments`).
		WithArgs("as-1", "app-1", "staff-1", AppUnderTechnical, AppApproved, "fine").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))
	mock.ExpectCommit()

	app, err := repo.TransitionApplication(context.Background(), ApplicationTransition{
		ID:           "app-1",
		From:         AppUnderTechnical,
		To:           AppApproved,
		PermitNumber: &number,
		Assessment: &Assessment{
			ID:            "as-1",
			ApplicationID: "app-1",
			AssessorID:    "staff-1",
			FromStatus:    AppUnderTechnical,
			ToStatus:      AppApproved,
			Feedback:      "fine",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, AppApproved, app.Status)
	require.NotNil(t, app.PermitNumber)
	assert.Equal(t, number, *app.PermitNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_TransitionApplicationStaleStatus(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE permit_applications`).
		WillReturnRows(sqlmock.NewRows(applicationRowColumns))
	mock.ExpectRollback()

	_, err := repo.TransitionApplication(context.Background(), ApplicationTransition{
		ID:   "app-1",
		From: AppSubmitted,
		To:   AppUnderInitialReview,
	})
	assert.ErrorIs(t, err, core.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_TransitionRollsBackOnAssessmentFailure(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE permit_applications`).
		WillReturnRows(sqlmock.NewRows(applicationRowColumns).AddRow(
			"app-1", "user-1", "ent-1", "Quarry", "environmental", "desc",
			now, now, AppUnderInitialReview, nil,
			now, nil, now, now,
		))
	mock.ExpectQuery(`INSERT INTO assessments`).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := repo.TransitionApplication(context.Background(), ApplicationTransition{
		ID:   "app-1",
		From: AppSubmitted,
		To:   AppUnderInitialReview,
		Assessment: &Assessment{
			ID: "as-1", ApplicationID: "app-1", AssessorID: "staff-1",
			FromStatus: AppSubmitted, ToStatus: AppUnderInitialReview,
		},
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CountApplicationsByStatus(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT status, COUNT\(\*\) AS count\s+FROM permit_applications`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow(AppSubmitted, 2).
			AddRow(AppApproved, 1))

	counts, err := repo.CountApplicationsByStatus(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{AppSubmitted: 2, AppApproved: 1}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}
