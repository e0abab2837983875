package user

import (
	"context"

	"transferdesk/internal/domain"
	usererrors "transferdesk/internal/user/errors"

	"go.uber.org/zap"
)

//go:generate mockgen -source=user_service.go -destination=mock/user_service_mock.go -package=mock
type Service interface {
	ListApprovers(ctx context.Context, role string) ([]ApproverResponse, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("user.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.service")
	}
	return &service{repo: repo, logger: l}
}

// ListApprovers returns the active users holding an approver role, for the
// supervisor/manager pickers on the request form.
func (s *service) ListApprovers(ctx context.Context, role string) ([]ApproverResponse, error) {
	if role != domain.RoleSupervisor && role != domain.RoleManager {
		return nil, usererrors.ErrInvalidApproverRole
	}

	users, err := s.repo.ListActiveByRole(ctx, role)
	if err != nil {
		s.logger.Error("list approvers failed", zap.String("role", role), zap.Error(err))
		return nil, err
	}

	resp := make([]ApproverResponse, len(users))
	for i, u := range users {
		resp[i] = ApproverResponse{
			ID:        u.ID.String(),
			Email:     u.Email,
			Username:  u.Username,
			FirstName: u.FirstName,
			LastName:  u.LastName,
		}
	}
	return resp, nil
}
