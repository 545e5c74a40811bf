package leaverequest

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/patwikx/rgroup-lms-sub000/internal/balance"
	balanceerrors "github.com/patwikx/rgroup-lms-sub000/internal/balance/errors"
	"github.com/patwikx/rgroup-lms-sub000/internal/domain"
	"github.com/patwikx/rgroup-lms-sub000/internal/employee"
	employeeerrors "github.com/patwikx/rgroup-lms-sub000/internal/employee/errors"
	"github.com/patwikx/rgroup-lms-sub000/internal/events"
	leaverequesterrors "github.com/patwikx/rgroup-lms-sub000/internal/leaverequest/errors"
	"github.com/patwikx/rgroup-lms-sub000/internal/leavetype"
	leavetypeerrors "github.com/patwikx/rgroup-lms-sub000/internal/leavetype/errors"
	"github.com/patwikx/rgroup-lms-sub000/internal/messaging/kafka"
	"github.com/patwikx/rgroup-lms-sub000/internal/shared/clock"
	"github.com/patwikx/rgroup-lms-sub000/internal/shared/contextutil"
)

type Service interface {
	// Submit validates a new leave request against the leave type's rules,
	// reserves the requested days on the employee's balance and seeds the
	// full approval chain, all in one transaction.
	Submit(ctx context.Context, actor domain.Identity, req CreateLeaveRequestRequest) (LeaveRequestResponse, error)
	// Decide records one approver's verdict on their approval stage. A
	// rejection at any stage finalizes the request immediately; the last
	// approval finalizes it as approved and converts the reservation into
	// consumed days.
	Decide(ctx context.Context, actor domain.Identity, approvalID string, req DecideRequest) (LeaveRequestResponse, error)
	// Cancel lets the owner withdraw a still-pending request and releases
	// its reservation back to the balance.
	Cancel(ctx context.Context, actor domain.Identity, requestID string) (LeaveRequestResponse, error)
	// SetPMDDecision records the post-approval PMD verdict. A PMD rejection
	// flips the request to REJECTED but never restores consumed balance.
	SetPMDDecision(ctx context.Context, actor domain.Identity, requestID string, req PMDDecisionRequest) (LeaveRequestResponse, error)

	GetAll(ctx context.Context, actor domain.Identity) ([]LeaveRequestResponse, error)
	GetMine(ctx context.Context, actor domain.Identity) ([]LeaveRequestResponse, error)
	GetByID(ctx context.Context, actor domain.Identity, requestID string) (LeaveRequestResponse, error)
	GetPendingApprovals(ctx context.Context, actor domain.Identity) ([]LeaveApprovalResponse, error)
}

type service struct {
	db           *gorm.DB
	repo         Repository
	balanceRepo  balance.Repository
	employeeRepo employee.Repository
	typeRepo     leavetype.Repository
	outbox       kafka.OutboxRepository
	clk          clock.Clock
	logger       *zap.Logger
}

func NewService(
	db *gorm.DB,
	repo Repository,
	balanceRepo balance.Repository,
	employeeRepo employee.Repository,
	typeRepo leavetype.Repository,
	outbox kafka.OutboxRepository,
	clk clock.Clock,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leaverequest.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leaverequest.service")
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &service{
		db:           db,
		repo:         repo,
		balanceRepo:  balanceRepo,
		employeeRepo: employeeRepo,
		typeRepo:     typeRepo,
		outbox:       outbox,
		clk:          clk,
		logger:       l,
	}
}

func (s *service) Submit(ctx context.Context, actor domain.Identity, req CreateLeaveRequestRequest) (LeaveRequestResponse, error) {
	employeeID, err := uuid.Parse(actor.EmployeeID)
	if err != nil {
		return LeaveRequestResponse{}, employeeerrors.ErrInvalidEmployeeID
	}

	selector := req.DaySelector
	if selector == "" {
		selector = SelectorFull
	}

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidDateFormat
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidDateFormat
	}
	if end.Before(start) {
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidDateRange
	}
	if selector != SelectorFull && !start.Equal(end) {
		return LeaveRequestResponse{}, leaverequesterrors.ErrHalfDaySingleDayOnly
	}

	lt, err := s.typeRepo.FindByID(ctx, req.LeaveTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveRequestResponse{}, leavetypeerrors.ErrLeaveTypeNotFound
		}
		return LeaveRequestResponse{}, err
	}
	if !lt.Active {
		return LeaveRequestResponse{}, leavetypeerrors.ErrLeaveTypeNotFound
	}
	if selector != SelectorFull && !lt.HalfDayAllowed {
		return LeaveRequestResponse{}, leaverequesterrors.ErrHalfDayNotAllowed
	}

	today := normalizeDate(s.clk.Now())
	if lt.MinNoticeDays > 0 && normalizeDate(start).Before(today.AddDate(0, 0, lt.MinNoticeDays)) {
		return LeaveRequestResponse{}, leaverequesterrors.ErrMinNoticeNotMet
	}

	days := CalculateDays(start, end, selector)
	if !days.IsPositive() {
		return LeaveRequestResponse{}, leaverequesterrors.ErrNoWorkingDays
	}
	if lt.MaxConsecutiveDays > 0 && days.GreaterThan(decimal.NewFromInt(int64(lt.MaxConsecutiveDays))) {
		return LeaveRequestResponse{}, leaverequesterrors.ErrMaxConsecutiveDays
	}

	leaveReq := &LeaveRequest{
		ID:            uuid.New(),
		EmployeeID:    employeeID,
		LeaveTypeID:   lt.ID,
		StartDate:     start,
		EndDate:       end,
		DaySelector:   selector,
		DaysRequested: days,
		Reason:        req.Reason,
		Status:        StatusPending,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		overlap, err := qtx.HasActiveOverlap(ctx, actor.EmployeeID, start, end)
		if err != nil {
			return err
		}
		if overlap {
			return leaverequesterrors.ErrOverlappingRequest
		}

		var chain []employee.ApprovalStage
		if lt.RequiresApproval {
			chain, err = employee.ResolveApproverChain(ctx, s.employeeRepo.WithTx(tx), actor.EmployeeID)
			if err != nil {
				return err
			}
		}

		bal, err := s.balanceRepo.WithTx(tx).FindByKey(ctx, actor.EmployeeID, lt.ID.String(), start.Year())
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return balanceerrors.ErrBalanceNotFound
			}
			return err
		}
		leaveReq.BalanceID = bal.ID

		if err := s.balanceRepo.WithTx(tx).Reserve(ctx, bal.ID.String(), days); err != nil {
			return err
		}

		eventType := events.LeaveSubmitted
		if !lt.RequiresApproval {
			// Approval-free types finalize immediately; the reservation is
			// converted to consumed days in the same transaction.
			leaveReq.Status = StatusApproved
			pmd := PMDPending
			leaveReq.PMDStatus = &pmd
			if err := s.balanceRepo.WithTx(tx).Consume(ctx, bal.ID.String(), days); err != nil {
				return err
			}
			eventType = events.LeaveApproved
		}

		if err := qtx.CreateRequest(ctx, leaveReq); err != nil {
			return err
		}

		for _, stage := range chain {
			a := &LeaveApproval{
				ID:             uuid.New(),
				LeaveRequestID: leaveReq.ID,
				ApproverID:     stage.ApproverID,
				Level:          stage.Level,
				Status:         StatusPending,
			}
			if err := qtx.CreateApproval(ctx, a); err != nil {
				return err
			}
			leaveReq.Approvals = append(leaveReq.Approvals, *a)
		}

		return s.enqueueLifecycleEvent(ctx, s.outbox.WithTx(tx), eventType, leaveReq)
	})
	if err != nil {
		s.logger.Warn("submit leave request failed",
			zap.String("employee_id", actor.EmployeeID),
			zap.String("leave_type_id", req.LeaveTypeID),
			zap.Error(err),
		)
		return LeaveRequestResponse{}, err
	}

	s.logger.Info("leave request submitted",
		zap.String("leave_request_id", leaveReq.ID.String()),
		zap.String("employee_id", actor.EmployeeID),
		zap.String("days", days.String()),
		zap.Int("approval_stages", len(leaveReq.Approvals)),
	)
	return mapToResponse(*leaveReq), nil
}

func (s *service) Decide(ctx context.Context, actor domain.Identity, approvalID string, req DecideRequest) (LeaveRequestResponse, error) {
	if _, err := uuid.Parse(approvalID); err != nil {
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidApprovalID
	}
	if req.Decision != StatusApproved && req.Decision != StatusRejected {
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidDecision
	}
	if req.Decision == StatusRejected && req.Comment == "" {
		return LeaveRequestResponse{}, leaverequesterrors.ErrRejectionComment
	}

	var requestID string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		approval, err := qtx.FindApprovalByID(ctx, approvalID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return leaverequesterrors.ErrApprovalNotFound
			}
			return err
		}
		if approval.ApproverID.String() != actor.EmployeeID {
			return leaverequesterrors.ErrNotAuthorized
		}

		// Lock the parent so concurrent decisions on sibling stages
		// serialize before the finalization check below.
		leaveReq, err := qtx.FindRequestByIDForUpdate(ctx, approval.LeaveRequestID.String())
		if err != nil {
			return err
		}
		requestID = leaveReq.ID.String()
		if leaveReq.Status != StatusPending {
			return leaverequesterrors.ErrAlreadyFinalized
		}

		var comment *string
		if req.Comment != "" {
			comment = &req.Comment
		}
		now := s.clk.Now()
		updated, err := qtx.MarkApprovalDecided(ctx, approvalID, req.Decision, comment, now)
		if err != nil {
			return err
		}
		if updated == 0 {
			return leaverequesterrors.ErrAlreadyDecided
		}

		if req.Decision == StatusRejected {
			if err := qtx.CloseOpenApprovals(ctx, requestID, "request rejected at another stage", now); err != nil {
				return err
			}
			if err := qtx.UpdateRequestStatus(ctx, requestID, StatusRejected, comment); err != nil {
				return err
			}
			if err := s.balanceRepo.WithTx(tx).Release(ctx, leaveReq.BalanceID.String(), leaveReq.DaysRequested); err != nil {
				return err
			}
			leaveReq.Status = StatusRejected
			return s.enqueueLifecycleEvent(ctx, s.outbox.WithTx(tx), events.LeaveRejected, leaveReq)
		}

		pending, err := qtx.CountPendingApprovals(ctx, requestID)
		if err != nil {
			return err
		}
		if pending > 0 {
			return nil
		}

		if err := qtx.UpdateRequestStatus(ctx, requestID, StatusApproved, nil); err != nil {
			return err
		}
		// The approved request now waits on the PMD gate.
		if err := qtx.UpdateRequestPMD(ctx, requestID, PMDPending, nil); err != nil {
			return err
		}
		if err := s.balanceRepo.WithTx(tx).Consume(ctx, leaveReq.BalanceID.String(), leaveReq.DaysRequested); err != nil {
			return err
		}
		leaveReq.Status = StatusApproved
		return s.enqueueLifecycleEvent(ctx, s.outbox.WithTx(tx), events.LeaveApproved, leaveReq)
	})
	if err != nil {
		s.logger.Warn("leave decision failed",
			zap.String("approval_id", approvalID),
			zap.String("approver_id", actor.EmployeeID),
			zap.Error(err),
		)
		return LeaveRequestResponse{}, err
	}

	s.logger.Info("leave decision recorded",
		zap.String("leave_request_id", requestID),
		zap.String("approval_id", approvalID),
		zap.String("decision", req.Decision),
	)
	return s.fetchResponse(ctx, requestID)
}

func (s *service) Cancel(ctx context.Context, actor domain.Identity, requestID string) (LeaveRequestResponse, error) {
	if _, err := uuid.Parse(requestID); err != nil {
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidLeaveRequestID
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		leaveReq, err := qtx.FindRequestByIDForUpdate(ctx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return leaverequesterrors.ErrLeaveRequestNotFound
			}
			return err
		}
		if leaveReq.EmployeeID.String() != actor.EmployeeID {
			return leaverequesterrors.ErrNotRequestOwner
		}
		if leaveReq.Status != StatusPending {
			return leaverequesterrors.ErrCancelNotPending
		}

		now := s.clk.Now()
		if err := qtx.CloseOpenApprovals(ctx, requestID, "request cancelled by owner", now); err != nil {
			return err
		}
		if err := qtx.UpdateRequestStatus(ctx, requestID, StatusCancelled, nil); err != nil {
			return err
		}
		if err := s.balanceRepo.WithTx(tx).Release(ctx, leaveReq.BalanceID.String(), leaveReq.DaysRequested); err != nil {
			return err
		}
		leaveReq.Status = StatusCancelled
		return s.enqueueLifecycleEvent(ctx, s.outbox.WithTx(tx), events.LeaveCancelled, leaveReq)
	})
	if err != nil {
		s.logger.Warn("cancel leave request failed",
			zap.String("leave_request_id", requestID),
			zap.String("employee_id", actor.EmployeeID),
			zap.Error(err),
		)
		return LeaveRequestResponse{}, err
	}

	s.logger.Info("leave request cancelled", zap.String("leave_request_id", requestID))
	return s.fetchResponse(ctx, requestID)
}

func (s *service) SetPMDDecision(ctx context.Context, actor domain.Identity, requestID string, req PMDDecisionRequest) (LeaveRequestResponse, error) {
	if actor.Role != domain.RoleHR {
		return LeaveRequestResponse{}, leaverequesterrors.ErrPMDNotAuthorized
	}
	if _, err := uuid.Parse(requestID); err != nil {
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidLeaveRequestID
	}
	if req.Status == PMDRejected && req.Reason == "" {
		return LeaveRequestResponse{}, leaverequesterrors.ErrPMDReasonRequired
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		leaveReq, err := qtx.FindRequestByIDForUpdate(ctx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return leaverequesterrors.ErrLeaveRequestNotFound
			}
			return err
		}
		if leaveReq.Status != StatusApproved {
			return leaverequesterrors.ErrPMDNotApplicable
		}
		if leaveReq.PMDStatus != nil && *leaveReq.PMDStatus != PMDPending {
			return leaverequesterrors.ErrPMDAlreadyDecided
		}

		var reason *string
		if req.Reason != "" {
			reason = &req.Reason
		}
		// A PMD rejection flips the request status but the consumed days
		// stay consumed; the ledger records the absence as taken.
		return qtx.UpdateRequestPMD(ctx, requestID, req.Status, reason)
	})
	if err != nil {
		s.logger.Warn("pmd decision failed",
			zap.String("leave_request_id", requestID),
			zap.Error(err),
		)
		return LeaveRequestResponse{}, err
	}

	s.logger.Info("pmd decision recorded",
		zap.String("leave_request_id", requestID),
		zap.String("status", req.Status),
	)
	return s.fetchResponse(ctx, requestID)
}

func (s *service) GetAll(ctx context.Context, actor domain.Identity) ([]LeaveRequestResponse, error) {
	if actor.Role != domain.RoleHR {
		return nil, leaverequesterrors.ErrNotAuthorized
	}
	reqs, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return mapAllToResponse(reqs), nil
}

func (s *service) GetMine(ctx context.Context, actor domain.Identity) ([]LeaveRequestResponse, error) {
	reqs, err := s.repo.FindAllByEmployee(ctx, actor.EmployeeID)
	if err != nil {
		return nil, err
	}
	return mapAllToResponse(reqs), nil
}

func (s *service) GetByID(ctx context.Context, actor domain.Identity, requestID string) (LeaveRequestResponse, error) {
	if _, err := uuid.Parse(requestID); err != nil {
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidLeaveRequestID
	}
	leaveReq, err := s.repo.FindRequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveRequestResponse{}, leaverequesterrors.ErrLeaveRequestNotFound
		}
		return LeaveRequestResponse{}, err
	}
	if !s.canView(actor, leaveReq) {
		return LeaveRequestResponse{}, leaverequesterrors.ErrNotRequestOwner
	}
	return mapToResponse(*leaveReq), nil
}

func (s *service) GetPendingApprovals(ctx context.Context, actor domain.Identity) ([]LeaveApprovalResponse, error) {
	approvals, err := s.repo.FindPendingByApprover(ctx, actor.EmployeeID)
	if err != nil {
		return nil, err
	}
	resp := make([]LeaveApprovalResponse, len(approvals))
	for i, a := range approvals {
		resp[i] = mapApprovalToResponse(a)
	}
	return resp, nil
}

// canView allows the owner, any approver on the chain, and HR.
func (s *service) canView(actor domain.Identity, req *LeaveRequest) bool {
	if actor.Role == domain.RoleHR {
		return true
	}
	if req.EmployeeID.String() == actor.EmployeeID {
		return true
	}
	for _, a := range req.Approvals {
		if a.ApproverID.String() == actor.EmployeeID {
			return true
		}
	}
	return false
}

func (s *service) fetchResponse(ctx context.Context, requestID string) (LeaveRequestResponse, error) {
	leaveReq, err := s.repo.FindRequestByID(ctx, requestID)
	if err != nil {
		return LeaveRequestResponse{}, err
	}
	return mapToResponse(*leaveReq), nil
}

func (s *service) enqueueLifecycleEvent(ctx context.Context, outbox kafka.OutboxRepository, eventType string, req *LeaveRequest) error {
	payload, err := json.Marshal(events.LeaveLifecycleEvent{
		EventType:      eventType,
		LeaveRequestID: req.ID.String(),
		EmployeeID:     req.EmployeeID.String(),
		LeaveTypeID:    req.LeaveTypeID.String(),
		DaysRequested:  req.DaysRequested.String(),
		Status:         req.Status,
		OccurredAt:     s.clk.Now(),
	})
	if err != nil {
		return err
	}

	return outbox.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "leave_request",
		AggregateID:   req.ID.String(),
		EventType:     eventType,
		Topic:         events.LeaveLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func mapAllToResponse(reqs []LeaveRequest) []LeaveRequestResponse {
	resp := make([]LeaveRequestResponse, len(reqs))
	for i, r := range reqs {
		resp[i] = mapToResponse(r)
	}
	return resp
}
