package audit

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=audit_repo.go -destination=mock/audit_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, entry *AuditLog) error
	ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]AuditLog, error)
	CountByAction(ctx context.Context, entityType, action string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx rebinds the repository onto an open transaction so audit writes
// commit or roll back together with the transition they describe.
func (r *repository) WithTx(tx *sql.Tx) Repository {
	db := r.db.Session(&gorm.Session{NewDB: true})
	db.Statement.ConnPool = tx
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, entry *AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]AuditLog, error) {
	var entries []AuditLog
	err := r.db.WithContext(ctx).
		Where("entity_type = ?", entityType).
		Where("entity_id = ?", entityID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

func (r *repository) CountByAction(ctx context.Context, entityType, action string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&AuditLog{}).
		Where("entity_type = ?", entityType).
		Where("action = ?", action).
		Count(&count).Error
	return count, err
}
