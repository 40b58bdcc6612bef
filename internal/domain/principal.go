package domain

import "github.com/google/uuid"

// Role levels recognized by the workflow engine.
const (
	RoleUser    = "user"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

// ValidRole reports whether role is one of the recognized role names.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleManager, RoleAdmin:
		return true
	default:
		return false
	}
}

// Principal is the authenticated actor behind an operation. It is supplied
// by the transport layer; the workflow engine never constructs one.
type Principal struct {
	ID   uuid.UUID
	Role string
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

func (p Principal) IsManager() bool { return p.Role == RoleManager }
