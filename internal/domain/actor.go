package domain

import "github.com/google/uuid"

// Role names match the values stored on users.role and referenced by the
// RBAC policy table.
const (
	RoleUser       = "User"
	RoleSupervisor = "Supervisor"
	RoleManager    = "Manager"
	RoleAdmin      = "Admin"
)

// Actor identifies who is performing an operation. Services receive it as an
// explicit argument and never read identity from ambient state, so every
// operation stays deterministic under test.
type Actor struct {
	ID   uuid.UUID
	Role string
}

// ValidRole reports whether name is one of the known roles.
func ValidRole(name string) bool {
	switch name {
	case RoleUser, RoleSupervisor, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// EnforceRequest is the question the RBAC layer answers: may this role
// perform this action on this resource.
type EnforceRequest struct {
	Role     string
	Resource string
	Action   string
}
