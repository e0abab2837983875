package rbac

import (
	"context"

	"transferdesk/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=rbac_repo.go -destination=mock/rbac_repo_mock.go -package=mock
type Repository interface {
	ListPermissions(ctx context.Context) ([]RolePermission, error)
	SeedDefaults(ctx context.Context) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListPermissions(ctx context.Context) ([]RolePermission, error) {
	var perms []RolePermission
	err := r.db.WithContext(ctx).
		Order("role, resource, action").
		Find(&perms).Error
	return perms, err
}

// SeedDefaults inserts the built-in permission matrix, skipping rules that
// already exist so operators can customize rows without them being reset.
func (r *repository) SeedDefaults(ctx context.Context) error {
	defaults := []RolePermission{
		{Role: domain.RoleUser, Resource: "transfer", Action: "read"},
		{Role: domain.RoleUser, Resource: "transfer", Action: "create"},
		{Role: domain.RoleUser, Resource: "user", Action: "read"},

		{Role: domain.RoleSupervisor, Resource: "transfer", Action: "read"},
		{Role: domain.RoleSupervisor, Resource: "transfer", Action: "approve"},
		{Role: domain.RoleSupervisor, Resource: "transfer", Action: "assign"},
		{Role: domain.RoleSupervisor, Resource: "user", Action: "read"},

		{Role: domain.RoleManager, Resource: "transfer", Action: "read"},
		{Role: domain.RoleManager, Resource: "transfer", Action: "approve"},
		{Role: domain.RoleManager, Resource: "user", Action: "read"},

		{Role: domain.RoleAdmin, Resource: "transfer", Action: "read"},
		{Role: domain.RoleAdmin, Resource: "transfer", Action: "create"},
		{Role: domain.RoleAdmin, Resource: "transfer", Action: "approve"},
		{Role: domain.RoleAdmin, Resource: "transfer", Action: "assign"},
		{Role: domain.RoleAdmin, Resource: "user", Action: "read"},
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&defaults).Error
}
