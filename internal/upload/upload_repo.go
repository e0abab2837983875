package upload

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=upload_repo.go -destination=mock/upload_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Upload, error)
	AllExist(ctx context.Context, ids []uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	db := r.db.Session(&gorm.Session{NewDB: true})
	db.Statement.ConnPool = tx
	return &repository{db: db}
}

func (r *repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Upload, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var uploads []Upload
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&uploads).Error
	return uploads, err
}

func (r *repository) AllExist(ctx context.Context, ids []uuid.UUID) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Upload{}).
		Where("id IN ?", ids).
		Count(&count).Error
	return count == int64(len(ids)), err
}
