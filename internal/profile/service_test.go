// AngelaMos | 2026
// service_test.go

package profile

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/permitdesk/internal/core"
)

type memRepo struct {
	mu            sync.Mutex
	profiles      map[string]*Profile
	writes        int
	suspendCalls  int
	lastSuspendBy string
}

func newMemRepo(profiles ...*Profile) *memRepo {
	m := &memRepo{profiles: make(map[string]*Profile)}
	for _, p := range profiles {
		m.profiles[p.ID] = p
	}
	return m
}

func (m *memRepo) get(id string) (*Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (m *memRepo) Create(_ context.Context, p *Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.profiles {
		if existing.Email == p.Email {
			return core.ErrDuplicateKey
		}
	}
	m.writes++
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	c := *p
	m.profiles[p.ID] = &c
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id string) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(id)
}

func (m *memRepo) GetByEmail(_ context.Context, email string) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, p := range m.profiles {
		if p.Email == email {
			return m.get(id)
		}
	}
	return nil, core.ErrNotFound
}

func (m *memRepo) UpdateFullName(_ context.Context, id, name string) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	m.writes++
	p.FullName = name
	return m.get(id)
}

func (m *memRepo) UpdatePassword(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return core.ErrNotFound
	}
	m.writes++
	p.PasswordHash = hash
	return nil
}

func (m *memRepo) IncrementTokenVersion(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return core.ErrNotFound
	}
	m.writes++
	p.TokenVersion++
	return nil
}

func (m *memRepo) Suspend(_ context.Context, id, by, reason string) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	m.writes++
	m.suspendCalls++
	m.lastSuspendBy = by
	now := time.Now()
	p.IsSuspended = true
	p.SuspendedAt = &now
	p.SuspendedBy = &by
	p.SuspensionReason = &reason
	p.TokenVersion++
	return m.get(id)
}

func (m *memRepo) Reactivate(_ context.Context, id string) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	m.writes++
	p.IsSuspended = false
	p.SuspendedAt = nil
	p.SuspendedBy = nil
	p.SuspensionReason = nil
	return m.get(id)
}

func (m *memRepo) SetUserType(_ context.Context, id, userType string) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	m.writes++
	p.UserType = userType
	p.TokenVersion++
	return m.get(id)
}

func (m *memRepo) ResetPassword(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return core.ErrNotFound
	}
	m.writes++
	p.PasswordHash = hash
	p.TokenVersion++
	return nil
}

func (m *memRepo) List(_ context.Context, params ListParams) ([]Profile, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Profile
	for _, p := range m.profiles {
		if params.UserType != "" && p.UserType != params.UserType {
			continue
		}
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (m *memRepo) Census(context.Context) (Census, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var c Census
	for _, p := range m.profiles {
		c.Total++
		if p.IsSuspended {
			c.Suspended++
		}
		if p.UserType != core.UserTypePublic {
			c.Staff++
		}
	}
	return c, nil
}

var (
	adminActor      = core.Actor{ID: "admin-1", UserType: core.UserTypeAdmin}
	superAdminActor = core.Actor{ID: "root-1", UserType: core.UserTypeSuperAdmin}
)

func seedProfiles() *memRepo {
	return newMemRepo(
		&Profile{ID: "admin-1", Email: "admin@example.com", UserType: core.UserTypeAdmin},
		&Profile{ID: "root-1", Email: "root@example.com", UserType: core.UserTypeSuperAdmin},
		&Profile{ID: "user-1", Email: "user@example.com", UserType: core.UserTypePublic},
		&Profile{ID: "staff-1", Email: "staff@example.com", UserType: core.UserTypeStaff},
	)
}

func TestSetSuspension_SuperAdminIsProtected(t *testing.T) {
	repo := seedProfiles()
	svc := NewService(repo, nil)

	for _, suspend := range []bool{true, false} {
		_, err := svc.SetSuspension(
			context.Background(),
			superAdminActor,
			"root-1",
			suspend,
			"policy breach",
		)
		assert.ErrorIs(t, err, ErrProtectedAccount)
		assert.ErrorIs(t, err, core.ErrForbidden)
	}

	assert.Zero(t, repo.writes)
	p, err := repo.GetByID(context.Background(), "root-1")
	require.NoError(t, err)
	assert.False(t, p.IsSuspended)
	assert.Nil(t, p.SuspendedAt)
	assert.Nil(t, p.SuspendedBy)
	assert.Nil(t, p.SuspensionReason)
}

func TestSetSuspension_ReasonRequired(t *testing.T) {
	repo := seedProfiles()
	svc := NewService(repo, nil)

	for _, reason := range []string{"", "   \t"} {
		_, err := svc.SetSuspension(context.Background(), adminActor, "user-1", true, reason)
		assert.ErrorIs(t, err, ErrReasonRequired)
		assert.ErrorIs(t, err, core.ErrInvalidInput)
	}
	assert.Zero(t, repo.writes)
}

func TestSetSuspension_SuspendSetsAllFieldsInOneWrite(t *testing.T) {
	repo := seedProfiles()
	svc := NewService(repo, nil)

	p, err := svc.SetSuspension(
		context.Background(),
		adminActor,
		"user-1",
		true,
		"  fraudulent documents  ",
	)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.writes)
	assert.Equal(t, 1, repo.suspendCalls)
	assert.True(t, p.IsSuspended)
	require.NotNil(t, p.SuspendedAt)
	require.NotNil(t, p.SuspendedBy)
	assert.Equal(t, "admin-1", *p.SuspendedBy)
	require.NotNil(t, p.SuspensionReason)
	assert.Equal(t, "fraudulent documents", *p.SuspensionReason)
	assert.Equal(t, 1, p.TokenVersion)
}

func TestSetSuspension_ReactivateClearsFields(t *testing.T) {
	repo := seedProfiles()
	svc := NewService(repo, nil)
	ctx := context.Background()

	_, err := svc.SetSuspension(ctx, adminActor, "user-1", true, "late fees")
	require.NoError(t, err)

	p, err := svc.SetSuspension(ctx, adminActor, "user-1", false, "")
	require.NoError(t, err)
	assert.False(t, p.IsSuspended)
	assert.Nil(t, p.SuspendedAt)
	assert.Nil(t, p.SuspendedBy)
	assert.Nil(t, p.SuspensionReason)
}

func TestSetSuspension_Guards(t *testing.T) {
	repo := seedProfiles()
	svc := NewService(repo, nil)
	ctx := context.Background()

	staff := core.Actor{ID: "staff-1", UserType: core.UserTypeStaff}
	_, err := svc.SetSuspension(ctx, staff, "user-1", true, "reason")
	assert.ErrorIs(t, err, core.ErrForbidden)

	_, err = svc.SetSuspension(ctx, adminActor, "admin-1", true, "reason")
	assert.ErrorIs(t, err, ErrSelfSuspension)

	_, err = svc.SetSuspension(ctx, adminActor, "missing", true, "reason")
	assert.ErrorIs(t, err, core.ErrNotFound)

	assert.Zero(t, repo.writes)
}

func TestChangeUserType(t *testing.T) {
	ctx := context.Background()

	t.Run("admin promotes public to staff", func(t *testing.T) {
		svc := NewService(seedProfiles(), nil)
		p, err := svc.ChangeUserType(ctx, adminActor, "user-1", core.UserTypeStaff)
		require.NoError(t, err)
		assert.Equal(t, core.UserTypeStaff, p.UserType)
		assert.Equal(t, 1, p.TokenVersion)
	})

	t.Run("admin cannot grant admin", func(t *testing.T) {
		svc := NewService(seedProfiles(), nil)
		_, err := svc.ChangeUserType(ctx, adminActor, "user-1", core.UserTypeAdmin)
		assert.ErrorIs(t, err, core.ErrForbidden)
	})

	t.Run("super admin grants admin", func(t *testing.T) {
		svc := NewService(seedProfiles(), nil)
		p, err := svc.ChangeUserType(ctx, superAdminActor, "staff-1", core.UserTypeAdmin)
		require.NoError(t, err)
		assert.Equal(t, core.UserTypeAdmin, p.UserType)
	})

	t.Run("cannot change own type", func(t *testing.T) {
		svc := NewService(seedProfiles(), nil)
		_, err := svc.ChangeUserType(ctx, superAdminActor, "root-1", core.UserTypePublic)
		assert.ErrorIs(t, err, ErrSelfTypeChange)
	})

	t.Run("unknown type", func(t *testing.T) {
		svc := NewService(seedProfiles(), nil)
		_, err := svc.ChangeUserType(ctx, superAdminActor, "user-1", "regulator")
		assert.ErrorIs(t, err, core.ErrInvalidInput)
	})
	t.Run("suspended user cannot become super admin", func(t *testing.T) {
		repo := seedProfiles()
		svc := NewService(repo, nil)
		_, err := svc.SetSuspension(ctx, adminActor, "user-1", true, "chargeback fraud")
		require.NoError(t, err)
		writes := repo.writes

		_, err = svc.ChangeUserType(ctx, superAdminActor, "user-1", core.UserTypeSuperAdmin)
		assert.ErrorIs(t, err, ErrSuspendedPromotion)
		assert.ErrorIs(t, err, core.ErrConflict)
		assert.Equal(t, writes, repo.writes)

		p, err := repo.GetByID(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, core.UserTypePublic, p.UserType)
		assert.True(t, p.IsSuspended)
	})

	t.Run("suspended user can still become staff", func(t *testing.T) {
		repo := seedProfiles()
		svc := NewService(repo, nil)
		_, err := svc.SetSuspension(ctx, adminActor, "user-1", true, "pending review")
		require.NoError(t, err)

		p, err := svc.ChangeUserType(ctx, adminActor, "user-1", core.UserTypeStaff)
		require.NoError(t, err)
		assert.Equal(t, core.UserTypeStaff, p.UserType)
	})
}

func TestResetPassword(t *testing.T) {
	repo := seedProfiles()
	svc := NewService(repo, nil)
	ctx := context.Background()

	temp, err := svc.ResetPassword(ctx, adminActor, "user-1")
	require.NoError(t, err)
	assert.Len(t, temp, temporaryPasswordLength)

	p, err := repo.GetByID(ctx, "user-1")
	require.NoError(t, err)
	ok, err := core.VerifyPassword(temp, p.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, p.TokenVersion)

	_, err = svc.ResetPassword(ctx, adminActor, "root-1")
	assert.ErrorIs(t, err, ErrProtectedAccount)
}

func TestUserProvider(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	info, err := svc.Create(ctx, "  Person@Example.COM ", "hash", " Person ")
	require.NoError(t, err)
	assert.Equal(t, "person@example.com", info.Email)
	assert.Equal(t, "Person", info.Name)
	assert.Equal(t, core.UserTypePublic, info.UserType)

	_, err = svc.Create(ctx, "person@example.com", "hash", "Dup")
	assert.ErrorIs(t, err, core.ErrDuplicateKey)

	byEmail, err := svc.GetByEmail(ctx, "PERSON@example.com")
	require.NoError(t, err)
	assert.Equal(t, info.ID, byEmail.ID)
}

func TestCensus(t *testing.T) {
	repo := seedProfiles()
	svc := NewService(repo, nil)

	_, err := svc.SetSuspension(
		context.Background(), adminActor, "user-1", true, "fraudulent filings",
	)
	require.NoError(t, err)

	c, err := svc.Census(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Census{Total: 4, Suspended: 1, Staff: 3}, c)
}
