package leaverequesterrors

import (
	"net/http"

	"github.com/patwikx/rgroup-lms-sub000/internal/shared/apperror"
)

var (
	ErrLeaveRequestNotFound = apperror.New(apperror.CodeNotFound, "leave request not found", http.StatusNotFound)
	ErrApprovalNotFound     = apperror.New(apperror.CodeNotFound, "leave approval not found", http.StatusNotFound)

	ErrInvalidLeaveRequestID = apperror.New(apperror.CodeInvalidInput, "invalid leave request id", http.StatusBadRequest)
	ErrInvalidApprovalID     = apperror.New(apperror.CodeInvalidInput, "invalid leave approval id", http.StatusBadRequest)
	ErrInvalidDateFormat     = apperror.New(apperror.CodeInvalidInput, "dates must be in YYYY-MM-DD format", http.StatusBadRequest)
	ErrInvalidDateRange      = apperror.New(apperror.CodeInvalidInput, "end date must not be before start date", http.StatusBadRequest)
	ErrInvalidDecision       = apperror.New(apperror.CodeInvalidInput, "decision must be APPROVED or REJECTED", http.StatusBadRequest)

	ErrHalfDaySingleDayOnly = apperror.New(apperror.CodeInvalidInput, "half-day requests must start and end on the same date", http.StatusUnprocessableEntity)
	ErrHalfDayNotAllowed    = apperror.New(apperror.CodeInvalidState, "this leave type does not allow half-day requests", http.StatusUnprocessableEntity)
	ErrNoWorkingDays        = apperror.New(apperror.CodeInvalidInput, "requested range contains no working days", http.StatusUnprocessableEntity)
	ErrMinNoticeNotMet      = apperror.New(apperror.CodeInvalidState, "request does not meet the minimum notice period for this leave type", http.StatusUnprocessableEntity)
	ErrMaxConsecutiveDays   = apperror.New(apperror.CodeInvalidState, "request exceeds the maximum consecutive days for this leave type", http.StatusUnprocessableEntity)
	ErrOverlappingRequest   = apperror.New(apperror.CodeConflict, "an active leave request already covers part of this range", http.StatusConflict)

	ErrNotAuthorized    = apperror.New(apperror.CodeForbidden, "you are not the designated approver for this stage", http.StatusForbidden)
	ErrNotRequestOwner  = apperror.New(apperror.CodeForbidden, "only the request owner may perform this action", http.StatusForbidden)
	ErrAlreadyDecided   = apperror.New(apperror.CodeConflict, "this approval stage has already been decided", http.StatusConflict)
	ErrAlreadyFinalized = apperror.New(apperror.CodeConflict, "this leave request has already been finalized", http.StatusConflict)
	ErrCancelNotPending = apperror.New(apperror.CodeConflict, "only pending leave requests can be cancelled", http.StatusConflict)
	ErrRejectionComment = apperror.New(apperror.CodeInvalidInput, "a comment is required when rejecting", http.StatusBadRequest)

	ErrPMDNotAuthorized  = apperror.New(apperror.CodeForbidden, "only HR may record a PMD decision", http.StatusForbidden)
	ErrPMDNotApplicable  = apperror.New(apperror.CodeInvalidState, "PMD review applies only to approved leave requests", http.StatusConflict)
	ErrPMDAlreadyDecided = apperror.New(apperror.CodeConflict, "PMD review has already been recorded for this request", http.StatusConflict)
	ErrPMDReasonRequired = apperror.New(apperror.CodeInvalidInput, "a reason is required when PMD rejects a request", http.StatusBadRequest)
)
