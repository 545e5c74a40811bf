package employeeerrors

import (
	"net/http"

	"github.com/patwikx/rgroup-lms-sub000/internal/shared/apperror"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found",
		http.StatusNotFound,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrEmployeeAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"employee with this email already exists",
		http.StatusConflict,
	)
	ErrNoApproverAssigned = apperror.New(
		apperror.CodeInvalidState,
		"employee has no approver assigned",
		http.StatusUnprocessableEntity,
	)
	ErrInvalidHiredAt = apperror.New(
		apperror.CodeInvalidInput,
		"invalid hired_at, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidApprover = apperror.New(
		apperror.CodeInvalidInput,
		"approver must hold an approver role",
		http.StatusBadRequest,
	)
)
