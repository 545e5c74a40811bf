package overtimeerrors

import (
	"net/http"

	"github.com/patwikx/rgroup-lms-sub000/internal/shared/apperror"
)

var (
	ErrOvertimeNotFound = apperror.New(apperror.CodeNotFound, "overtime request not found", http.StatusNotFound)
	ErrApprovalNotFound = apperror.New(apperror.CodeNotFound, "overtime approval not found", http.StatusNotFound)

	ErrInvalidOvertimeID = apperror.New(apperror.CodeInvalidInput, "invalid overtime request id", http.StatusBadRequest)
	ErrInvalidApprovalID = apperror.New(apperror.CodeInvalidInput, "invalid overtime approval id", http.StatusBadRequest)
	ErrInvalidDateFormat = apperror.New(apperror.CodeInvalidInput, "date must be in YYYY-MM-DD format", http.StatusBadRequest)
	ErrInvalidTimeFormat = apperror.New(apperror.CodeInvalidInput, "times must be in HH:MM format", http.StatusBadRequest)
	ErrInvalidTimeRange  = apperror.New(apperror.CodeInvalidInput, "end time must be after start time", http.StatusBadRequest)
	ErrFutureDate        = apperror.New(apperror.CodeInvalidState, "overtime can only be filed for dates that have occurred", http.StatusUnprocessableEntity)
	ErrInvalidDecision   = apperror.New(apperror.CodeInvalidInput, "decision must be APPROVED or REJECTED", http.StatusBadRequest)
	ErrRejectionComment  = apperror.New(apperror.CodeInvalidInput, "a comment is required when rejecting", http.StatusBadRequest)

	ErrNotAuthorized    = apperror.New(apperror.CodeForbidden, "you are not the designated approver for this stage", http.StatusForbidden)
	ErrNotAllowedCancel = apperror.New(apperror.CodeForbidden, "only the owner or HR may cancel this overtime request", http.StatusForbidden)
	ErrNotAllowedView   = apperror.New(apperror.CodeForbidden, "you are not allowed to view this overtime request", http.StatusForbidden)
	ErrAlreadyDecided   = apperror.New(apperror.CodeConflict, "this approval stage has already been decided", http.StatusConflict)
	ErrAlreadyFinalized = apperror.New(apperror.CodeConflict, "this overtime request has already been finalized", http.StatusConflict)
	ErrCancelNotPending = apperror.New(apperror.CodeConflict, "only pending overtime requests can be cancelled", http.StatusConflict)
)
