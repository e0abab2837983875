package audit

import (
	"time"

	"github.com/google/uuid"
)

const EntityTransferRequest = "TransferRequest"

// Actions recorded against a transfer request. One row is written per
// successful transition attempt; rows are never updated or deleted.
const (
	ActionCreate         = "Create"
	ActionApprove        = "Approve"
	ActionReject         = "Reject"
	ActionRequestChanges = "RequestChanges"
	ActionAssignManager  = "AssignManager"
	ActionResubmit       = "Resubmit"
)

// AuditLog is the compliance record of who did what and when. It references
// its entity by id only, so it survives independently of the entity's
// lifecycle.
type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EntityType string    `gorm:"type:varchar(50);not null;index:idx_audit_logs_entity"`
	EntityID   uuid.UUID `gorm:"type:uuid;not null;index:idx_audit_logs_entity"`
	Action     string    `gorm:"type:varchar(50);not null;index"`
	ActorID    uuid.UUID `gorm:"type:uuid;not null"`
	FromStatus *string   `gorm:"type:varchar(30)"`
	ToStatus   *string   `gorm:"type:varchar(30)"`
	Data       *string   `gorm:"type:jsonb"`

	CreatedAt time.Time
}
