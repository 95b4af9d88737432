// AngelaMos | 2026
// dto.go

package entity

import (
	"time"

	"github.com/carterperez-dev/permitdesk/internal/core"
)

type CreateEntityRequest struct {
	Name               string  `json:"name"                validate:"required,min=2,max=200"`
	EntityType         string  `json:"entity_type"         validate:"required,oneof=individual company government"`
	RegistrationNumber string  `json:"registration_number" validate:"required,min=2,max=64"`
	Address            *string `json:"address,omitempty"   validate:"omitempty,max=500"`
}

type UpdateEntityRequest struct {
	Name    *string `json:"name,omitempty"    validate:"omitempty,min=2,max=200"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=500"`
}

type SetSuspendedRequest struct {
	Suspended *bool `json:"suspended" validate:"required"`
}

type EntityResponse struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"user_id"`
	Name               string    `json:"name"`
	EntityType         string    `json:"entity_type"`
	RegistrationNumber string    `json:"registration_number"`
	Address            *string   `json:"address,omitempty"`
	IsSuspended        bool      `json:"is_suspended"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type ListParams struct {
	core.PageParams
	UserID string
	Search string
}

func ToEntityResponse(e *Entity) EntityResponse {
	return EntityResponse{
		ID:                 e.ID,
		UserID:             e.UserID,
		Name:               e.Name,
		EntityType:         e.EntityType,
		RegistrationNumber: e.RegistrationNumber,
		Address:            e.Address,
		IsSuspended:        e.IsSuspended,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}

func ToEntityResponseList(entities []Entity) []EntityResponse {
	responses := make([]EntityResponse, 0, len(entities))
	for i := range entities {
		responses = append(responses, ToEntityResponse(&entities[i]))
	}
	return responses
}
