// AngelaMos | 2026
// actor.go

package core

const (
	UserTypePublic     = "public"
	UserTypeStaff      = "staff"
	UserTypeAdmin      = "admin"
	UserTypeSuperAdmin = "super_admin"
)

// Actor is the authenticated caller of a service operation. Handlers build
// it from the request context and pass it down explicitly.
type Actor struct {
	ID       string
	UserType string
}

func (a Actor) IsZero() bool {
	return a.ID == ""
}

func (a Actor) IsStaff() bool {
	switch a.UserType {
	case UserTypeStaff, UserTypeAdmin, UserTypeSuperAdmin:
		return true
	}
	return false
}

func (a Actor) IsAdmin() bool {
	return a.UserType == UserTypeAdmin || a.UserType == UserTypeSuperAdmin
}

func (a Actor) IsSuperAdmin() bool {
	return a.UserType == UserTypeSuperAdmin
}

// CanAccess reports whether the actor may read a record owned by ownerID.
func (a Actor) CanAccess(ownerID string) bool {
	return a.ID == ownerID || a.IsStaff()
}
