package usererrors

import (
	"net/http"

	"transferdesk/internal/shared/apperror"
)

var (
	ErrUserNotFound = apperror.New(
		apperror.CodeNotFound,
		"user not found",
		http.StatusNotFound,
	)
	ErrInvalidApproverRole = apperror.New(
		apperror.CodeInvalidInput,
		"role must be Supervisor or Manager",
		http.StatusBadRequest,
	)
	ErrEmailTaken = apperror.New(
		apperror.CodeConflict,
		"email or username already registered",
		http.StatusConflict,
	)
)
