package errors

import (
	"fmt"
	"net/http"

	"transferdesk/internal/shared/apperror"
)

var (
	ErrRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"Transfer request not found",
		http.StatusNotFound,
	)

	// ErrInvalidStateTransition answers both a genuinely illegal action and a
	// lost race against a concurrent transition. The caller cannot tell the
	// two apart, and does not need to: in either case the request is no
	// longer in a state the action applies to.
	ErrInvalidStateTransition = apperror.New(
		apperror.CodeConflict,
		"The request is not in a state that allows this action",
		http.StatusConflict,
	)

	ErrNotRequestOwner = apperror.New(
		apperror.CodeForbidden,
		"Only the request owner may perform this action",
		http.StatusForbidden,
	)

	ErrNotAssignedManager = apperror.New(
		apperror.CodeForbidden,
		"This request is assigned to a different manager",
		http.StatusForbidden,
	)

	ErrSupervisorRoleRequired = apperror.New(
		apperror.CodeForbidden,
		"Only a supervisor may perform this action",
		http.StatusForbidden,
	)

	ErrCommentRequired = apperror.New(
		apperror.CodeInvalidInput,
		"A comment of at least 3 characters is required for this action",
		http.StatusBadRequest,
	)

	ErrCommentTooLong = apperror.New(
		apperror.CodeInvalidInput,
		"Comment must be at most 2000 characters",
		http.StatusBadRequest,
	)

	ErrInvalidRequestID = apperror.New(
		apperror.CodeInvalidInput,
		"Request id must be a valid UUID",
		http.StatusBadRequest,
	)

	ErrTooManyAttachments = apperror.New(
		apperror.CodeInvalidInput,
		"A request may carry at most 10 attachments",
		http.StatusBadRequest,
	)

	ErrUnknownAttachment = apperror.New(
		apperror.CodeInvalidInput,
		"One or more attachment uploads do not exist",
		http.StatusBadRequest,
	)

	ErrManagerNotFound = apperror.New(
		apperror.CodeInvalidInput,
		"Assigned manager does not exist",
		http.StatusBadRequest,
	)

	ErrNotAManager = apperror.New(
		apperror.CodeInvalidInput,
		"Assigned user does not hold the Manager role",
		http.StatusBadRequest,
	)

	ErrSupervisorNotFound = apperror.New(
		apperror.CodeInvalidInput,
		"Selected supervisor does not exist",
		http.StatusBadRequest,
	)

	ErrNotASupervisor = apperror.New(
		apperror.CodeInvalidInput,
		"Selected user does not hold the Supervisor role",
		http.StatusBadRequest,
	)

	ErrInvalidStatusFilter = apperror.New(
		apperror.CodeInvalidInput,
		"Unknown status filter value",
		http.StatusBadRequest,
	)

	ErrInvalidTab = apperror.New(
		apperror.CodeInvalidInput,
		"tab must be one of new, completed, all",
		http.StatusBadRequest,
	)
)

func InvalidPagination(field string) *apperror.AppError {
	return apperror.New(
		apperror.CodeInvalidInput,
		fmt.Sprintf("%s must be a positive integer", field),
		http.StatusBadRequest,
	)
}
