// AngelaMos | 2026
// service.go

package entity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/carterperez-dev/permitdesk/internal/core"
)

var (
	ErrEntitySuspended = core.NewAppError(
		core.ErrForbidden,
		"entity is suspended and cannot be used for new submissions",
		http.StatusForbidden,
		"ENTITY_SUSPENDED",
	)
	ErrDuplicateRegistration = core.NewAppError(
		core.ErrDuplicateKey,
		"an entity with this registration number already exists",
		http.StatusConflict,
		"DUPLICATE_REGISTRATION",
	)
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Create(
	ctx context.Context,
	actor core.Actor,
	req CreateEntityRequest,
) (*Entity, error) {
	if actor.IsZero() {
		return nil, fmt.Errorf("create entity: %w", core.ErrUnauthorized)
	}

	e := &Entity{
		ID:                 core.NewID(),
		UserID:             actor.ID,
		Name:               strings.TrimSpace(req.Name),
		EntityType:         req.EntityType,
		RegistrationNumber: strings.ToUpper(strings.TrimSpace(req.RegistrationNumber)),
		Address:            req.Address,
	}

	if err := s.repo.Create(ctx, e); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrDuplicateRegistration
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "entity created",
		"entity_id", e.ID,
		"user_id", actor.ID,
	)
	return e, nil
}

func (s *Service) Get(ctx context.Context, actor core.Actor, id string) (*Entity, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.CanAccess(e.UserID) {
		return nil, fmt.Errorf("get entity: %w", core.ErrNotFound)
	}

	return e, nil
}

func (s *Service) Update(
	ctx context.Context,
	actor core.Actor,
	id string,
	req UpdateEntityRequest,
) (*Entity, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if e.UserID != actor.ID {
		return nil, fmt.Errorf("update entity: %w", core.ErrNotFound)
	}

	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}

	return s.repo.Update(ctx, id, req.Name, req.Address)
}

// ListMine returns the actor's entities. Staff see all entities through
// List.
func (s *Service) ListMine(
	ctx context.Context,
	actor core.Actor,
	page core.PageParams,
) ([]Entity, int, error) {
	return s.repo.List(ctx, ListParams{PageParams: page, UserID: actor.ID})
}

func (s *Service) List(
	ctx context.Context,
	actor core.Actor,
	params ListParams,
) ([]Entity, int, error) {
	if !actor.IsStaff() {
		return nil, 0, fmt.Errorf("list entities: %w", core.ErrForbidden)
	}
	return s.repo.List(ctx, params)
}

func (s *Service) SetSuspended(
	ctx context.Context,
	actor core.Actor,
	id string,
	suspended bool,
) (*Entity, error) {
	if !actor.IsStaff() {
		return nil, fmt.Errorf("set entity suspended: %w", core.ErrForbidden)
	}

	e, err := s.repo.SetSuspended(ctx, id, suspended)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "entity suspension changed",
		"entity_id", id,
		"actor_id", actor.ID,
		"suspended", suspended,
	)
	return e, nil
}

// CheckUsable reports whether actor may file a new submission for the
// entity: it must exist, belong to the actor and not be suspended.
func (s *Service) CheckUsable(ctx context.Context, actor core.Actor, entityID string) error {
	e, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		return err
	}

	if e.UserID != actor.ID {
		return fmt.Errorf("check entity: %w", core.ErrForbidden)
	}

	if e.IsSuspended {
		return ErrEntitySuspended
	}

	return nil
}
