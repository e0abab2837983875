package rbac

import (
	"time"

	"github.com/google/uuid"
)

// RolePermission is one allow rule: role may perform action on resource.
type RolePermission struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Role     string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_role_permissions_rule"`
	Resource string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_role_permissions_rule"`
	Action   string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_role_permissions_rule"`

	CreatedAt time.Time
}
