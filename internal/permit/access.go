// AngelaMos | 2026
// access.go

package permit

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/permitdesk/internal/core"
	"github.com/carterperez-dev/permitdesk/internal/document"
)

// ParentAccess lets the document service check intents and applications
// without depending on the permit service itself.
type ParentAccess struct {
	repo Repository
}

func NewParentAccess(repo Repository) *ParentAccess {
	return &ParentAccess{repo: repo}
}

func (p *ParentAccess) CheckParentAccess(
	ctx context.Context,
	actor core.Actor,
	parent document.Parent,
) error {
	var owner string

	switch parent.Kind {
	case document.ParentIntent:
		intent, err := p.repo.GetIntent(ctx, parent.ID)
		if err != nil {
			return err
		}
		owner = intent.UserID
	case document.ParentPermit:
		app, err := p.repo.GetApplication(ctx, parent.ID)
		if err != nil {
			return err
		}
		owner = app.UserID
	default:
		return fmt.Errorf("check parent %s: %w", parent.Kind, core.ErrInvalidInput)
	}

	if !actor.CanAccess(owner) {
		return fmt.Errorf("check parent: %w", core.ErrNotFound)
	}

	return nil
}

var _ document.ParentChecker = (*ParentAccess)(nil)
