// AngelaMos | 2026
// service_test.go

package entity

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/permitdesk/internal/core"
)

type memRepo struct {
	entities map[string]*Entity
}

func newMemRepo() *memRepo {
	return &memRepo{entities: make(map[string]*Entity)}
}

func (m *memRepo) Create(_ context.Context, e *Entity) error {
	for _, existing := range m.entities {
		if existing.UserID == e.UserID &&
			existing.RegistrationNumber == e.RegistrationNumber {
			return fmt.Errorf("create entity: %w", core.ErrDuplicateKey)
		}
	}
	c := *e
	m.entities[e.ID] = &c
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id string) (*Entity, error) {
	e, ok := m.entities[id]
	if !ok {
		return nil, fmt.Errorf("get entity: %w", core.ErrNotFound)
	}
	c := *e
	return &c, nil
}

func (m *memRepo) Update(
	_ context.Context,
	id string,
	name, address *string,
) (*Entity, error) {
	e, ok := m.entities[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	if name != nil {
		e.Name = *name
	}
	if address != nil {
		e.Address = address
	}
	c := *e
	return &c, nil
}

func (m *memRepo) SetSuspended(
	_ context.Context,
	id string,
	suspended bool,
) (*Entity, error) {
	e, ok := m.entities[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	e.IsSuspended = suspended
	c := *e
	return &c, nil
}

func (m *memRepo) List(_ context.Context, params ListParams) ([]Entity, int, error) {
	out := []Entity{}
	for _, e := range m.entities {
		if params.UserID == "" || e.UserID == params.UserID {
			out = append(out, *e)
		}
	}
	return out, len(out), nil
}

var (
	applicant = core.Actor{ID: "user-1", UserType: core.UserTypePublic}
	other     = core.Actor{ID: "user-2", UserType: core.UserTypePublic}
	officer   = core.Actor{ID: "staff-1", UserType: core.UserTypeStaff}
)

func createEntity(t *testing.T, svc *Service) *Entity {
	t.Helper()
	e, err := svc.Create(context.Background(), applicant, CreateEntityRequest{
		Name:               " Green Quarry Ltd ",
		EntityType:         TypeCompany,
		RegistrationNumber: "bn-1234",
	})
	require.NoError(t, err)
	return e
}

func TestCreate_NormalizesAndRejectsDuplicates(t *testing.T) {
	svc := NewService(newMemRepo(), nil)

	e := createEntity(t, svc)
	assert.Equal(t, "Green Quarry Ltd", e.Name)
	assert.Equal(t, "BN-1234", e.RegistrationNumber)

	_, err := svc.Create(context.Background(), applicant, CreateEntityRequest{
		Name:               "Other",
		EntityType:         TypeCompany,
		RegistrationNumber: "BN-1234",
	})
	assert.ErrorIs(t, err, ErrDuplicateRegistration)
}

func TestCheckUsable(t *testing.T) {
	svc := NewService(newMemRepo(), nil)
	ctx := context.Background()
	e := createEntity(t, svc)

	require.NoError(t, svc.CheckUsable(ctx, applicant, e.ID))
	assert.ErrorIs(t, svc.CheckUsable(ctx, other, e.ID), core.ErrForbidden)
	assert.ErrorIs(t, svc.CheckUsable(ctx, applicant, "missing"), core.ErrNotFound)

	_, err := svc.SetSuspended(ctx, officer, e.ID, true)
	require.NoError(t, err)
	assert.ErrorIs(t, svc.CheckUsable(ctx, applicant, e.ID), ErrEntitySuspended)
}

func TestSetSuspended_StaffOnly(t *testing.T) {
	svc := NewService(newMemRepo(), nil)
	e := createEntity(t, svc)

	_, err := svc.SetSuspended(context.Background(), applicant, e.ID, true)
	assert.ErrorIs(t, err, core.ErrForbidden)
}

func TestGetAndUpdate_Ownership(t *testing.T) {
	svc := NewService(newMemRepo(), nil)
	ctx := context.Background()
	e := createEntity(t, svc)

	_, err := svc.Get(ctx, other, e.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	got, err := svc.Get(ctx, officer, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)

	name := "  Renamed  "
	_, err = svc.Update(ctx, other, e.ID, UpdateEntityRequest{Name: &name})
	assert.ErrorIs(t, err, core.ErrNotFound)

	updated, err := svc.Update(ctx, applicant, e.ID, UpdateEntityRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
}
