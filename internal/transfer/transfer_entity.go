package transfer

import (
	"time"

	"transferdesk/internal/upload"
	"transferdesk/internal/user"

	"github.com/google/uuid"
)

// TransferRequest is the single shared mutable row of the workflow. It is
// never physically deleted; terminal statuses end its lifecycle.
type TransferRequest struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title        string    `gorm:"type:varchar(200);not null"`
	FromLocation string    `gorm:"type:varchar(200);not null"`
	ToLocation   string    `gorm:"type:varchar(200);not null"`
	Purpose      string    `gorm:"type:text"`

	Status       Status     `gorm:"type:varchar(30);not null;default:'Submitted';index:idx_transfer_requests_status"`
	CreatedByID  uuid.UUID  `gorm:"type:uuid;not null;index:idx_transfer_requests_created_by"`
	SupervisorID *uuid.UUID `gorm:"type:uuid"`
	ManagerID    *uuid.UUID `gorm:"type:uuid"`

	SubmittedAt *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Comments    []TransferComment    `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE"`
	Attachments []TransferAttachment `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE"`
}

// TransferComment is immutable once written. AuthorRole snapshots the role
// held at write time; roles can change later without rewriting history.
type TransferComment struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RequestID  uuid.UUID `gorm:"type:uuid;not null;index"`
	AuthorID   uuid.UUID `gorm:"type:uuid;not null"`
	AuthorRole string    `gorm:"type:varchar(30);not null"`
	Body       string    `gorm:"type:text;not null"`
	CreatedAt  time.Time

	Author *user.User `gorm:"foreignKey:AuthorID"`
}

// TransferAttachment links a request to an upload managed by the file
// store. Resubmission replaces the whole set.
type TransferAttachment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RequestID uuid.UUID `gorm:"type:uuid;not null;index"`
	UploadID  uuid.UUID `gorm:"type:uuid;not null"`
	Label     *string   `gorm:"type:varchar(200)"`
	CreatedAt time.Time

	Upload *upload.Upload `gorm:"foreignKey:UploadID"`
}
