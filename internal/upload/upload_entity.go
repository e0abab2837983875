package upload

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Upload is a stored file reference managed by the file-manager surface.
// The workflow only ever links upload ids; bytes live elsewhere.
type Upload struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OriginalName string    `gorm:"type:varchar(255);not null"`
	Path         string    `gorm:"type:varchar(1024);not null"`
	MimeType     string    `gorm:"type:varchar(100)"`
	Size         int64     `gorm:"not null;default:0"`
	CreatedByID  uuid.UUID `gorm:"type:uuid;not null;index"`

	CreatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
