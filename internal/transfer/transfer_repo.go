package transfer

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListFilter is the fully-resolved query for List: role scoping has already
// been applied by the service, so the repository only translates fields into
// SQL.
type ListFilter struct {
	CreatedByID *uuid.UUID
	Statuses    []Status
	Search      string
	Page        int
	Limit       int
}

// ResubmitFields is the corrected content written back on resubmission.
type ResubmitFields struct {
	Title        string
	FromLocation string
	ToLocation   string
	Purpose      string
	SubmittedAt  time.Time
}

//go:generate mockgen -source=transfer_repo.go -destination=mock/transfer_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, r *TransferRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*TransferRequest, error)
	FindDetailByID(ctx context.Context, id uuid.UUID) (*TransferRequest, error)
	List(ctx context.Context, filter ListFilter) ([]TransferRequest, int64, error)

	// TransitionStatus moves the request from -> to only if it still holds
	// the expected source status, reporting whether a row changed. A false
	// return with a nil error means a concurrent transition won the race.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to Status, completedAt *time.Time) (bool, error)
	ResubmitUpdate(ctx context.Context, id uuid.UUID, from Status, fields ResubmitFields) (bool, error)
	AssignManager(ctx context.Context, id uuid.UUID, current Status, managerID uuid.UUID) (bool, error)

	CreateComment(ctx context.Context, c *TransferComment) error
	CreateAttachments(ctx context.Context, atts []TransferAttachment) error
	ReplaceAttachments(ctx context.Context, requestID uuid.UUID, atts []TransferAttachment) error
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

func (r *repository) Create(ctx context.Context, req *TransferRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*TransferRequest, error) {
	var req TransferRequest
	err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error
	return &req, err
}

func (r *repository) FindDetailByID(ctx context.Context, id uuid.UUID) (*TransferRequest, error) {
	var req TransferRequest
	err := r.db.WithContext(ctx).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("transfer_comments.created_at ASC")
		}).
		Preload("Comments.Author").
		Preload("Attachments").
		Preload("Attachments.Upload").
		First(&req, "id = ?", id).Error
	return &req, err
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]TransferRequest, int64, error) {
	query := r.db.WithContext(ctx).Model(&TransferRequest{})

	if filter.CreatedByID != nil {
		query = query.Where("created_by_id = ?", *filter.CreatedByID)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where(
			"title ILIKE ? OR from_location ILIKE ? OR to_location ILIKE ?",
			pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var requests []TransferRequest
	err := query.
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&requests).Error
	return requests, total, err
}

func (r *repository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to Status, completedAt *time.Time) (bool, error) {
	updates := map[string]any{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}
	if completedAt != nil {
		updates["completed_at"] = *completedAt
	}

	res := r.db.WithContext(ctx).
		Model(&TransferRequest{}).
		Where("id = ?", id).
		Where("status = ?", from).
		Updates(updates)
	return res.RowsAffected > 0, res.Error
}

func (r *repository) ResubmitUpdate(ctx context.Context, id uuid.UUID, from Status, fields ResubmitFields) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&TransferRequest{}).
		Where("id = ?", id).
		Where("status = ?", from).
		Updates(map[string]any{
			"status":        StatusSubmitted,
			"title":         fields.Title,
			"from_location": fields.FromLocation,
			"to_location":   fields.ToLocation,
			"purpose":       fields.Purpose,
			"submitted_at":  fields.SubmittedAt,
			"updated_at":    time.Now().UTC(),
		})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) AssignManager(ctx context.Context, id uuid.UUID, current Status, managerID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&TransferRequest{}).
		Where("id = ?", id).
		Where("status = ?", current).
		Updates(map[string]any{
			"manager_id": managerID,
			"updated_at": time.Now().UTC(),
		})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) CreateComment(ctx context.Context, c *TransferComment) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *repository) CreateAttachments(ctx context.Context, atts []TransferAttachment) error {
	if len(atts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&atts).Error
}

// ReplaceAttachments drops the existing set and writes the new one. Runs
// inside the resubmission transaction so a partially replaced set is never
// observable.
func (r *repository) ReplaceAttachments(ctx context.Context, requestID uuid.UUID, atts []TransferAttachment) error {
	if err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Delete(&TransferAttachment{}).Error; err != nil {
		return err
	}
	return r.CreateAttachments(ctx, atts)
}
