package balanceerrors

import (
	"net/http"

	"github.com/patwikx/rgroup-lms-sub000/internal/shared/apperror"
)

var (
	ErrBalanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave balance not found for this year",
		http.StatusNotFound,
	)
	ErrInsufficientBalance = apperror.New(
		apperror.CodeConflict,
		"insufficient leave balance",
		http.StatusConflict,
	)
	ErrLedgerConflict = apperror.New(
		apperror.CodeInvalidState,
		"leave balance ledger update conflicted with current state",
		http.StatusConflict,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidYear = apperror.New(
		apperror.CodeInvalidInput,
		"invalid year",
		http.StatusBadRequest,
	)
	ErrNotAuthorized = apperror.New(
		apperror.CodeForbidden,
		"only HR may replenish leave balances",
		http.StatusForbidden,
	)
)
