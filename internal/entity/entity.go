// AngelaMos | 2026
// entity.go

package entity

import (
	"time"
)

const (
	TypeIndividual = "individual"
	TypeCompany    = "company"
	TypeGovernment = "government"
)

// Entity is the legal person a permit or intent is filed for.
type Entity struct {
	ID                 string    `db:"id"`
	UserID             string    `db:"user_id"`
	Name               string    `db:"name"`
	EntityType         string    `db:"entity_type"`
	RegistrationNumber string    `db:"registration_number"`
	Address            *string   `db:"address"`
	IsSuspended        bool      `db:"is_suspended"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}
