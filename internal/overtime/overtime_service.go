package overtime

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/patwikx/rgroup-lms-sub000/internal/domain"
	"github.com/patwikx/rgroup-lms-sub000/internal/employee"
	employeeerrors "github.com/patwikx/rgroup-lms-sub000/internal/employee/errors"
	"github.com/patwikx/rgroup-lms-sub000/internal/events"
	"github.com/patwikx/rgroup-lms-sub000/internal/messaging/kafka"
	overtimeerrors "github.com/patwikx/rgroup-lms-sub000/internal/overtime/errors"
	"github.com/patwikx/rgroup-lms-sub000/internal/shared/clock"
	"github.com/patwikx/rgroup-lms-sub000/internal/shared/contextutil"
)

type Service interface {
	// Submit files an overtime request for a past or current date and seeds
	// its approval chain. A TWC-designated supervisor is the only stage;
	// otherwise a non-HR supervisor is followed by an HR stage.
	Submit(ctx context.Context, actor domain.Identity, req CreateOvertimeRequest) (OvertimeResponse, error)
	// Decide records one approver's verdict. The request is approved once
	// every stage has approved; any rejection finalizes it immediately.
	Decide(ctx context.Context, actor domain.Identity, approvalID string, req DecideRequest) (OvertimeResponse, error)
	// Cancel withdraws a still-pending request. The owner may always cancel
	// their own; HR may cancel anyone's.
	Cancel(ctx context.Context, actor domain.Identity, overtimeID string) (OvertimeResponse, error)

	GetAll(ctx context.Context, actor domain.Identity) ([]OvertimeResponse, error)
	GetMine(ctx context.Context, actor domain.Identity) ([]OvertimeResponse, error)
	GetByID(ctx context.Context, actor domain.Identity, overtimeID string) (OvertimeResponse, error)
	GetPendingApprovals(ctx context.Context, actor domain.Identity) ([]OvertimeApprovalResponse, error)
}

type service struct {
	db           *gorm.DB
	repo         Repository
	employeeRepo employee.Repository
	outbox       kafka.OutboxRepository
	clk          clock.Clock
	logger       *zap.Logger
}

func NewService(
	db *gorm.DB,
	repo Repository,
	employeeRepo employee.Repository,
	outbox kafka.OutboxRepository,
	clk clock.Clock,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("overtime.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("overtime.service")
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &service{
		db:           db,
		repo:         repo,
		employeeRepo: employeeRepo,
		outbox:       outbox,
		clk:          clk,
		logger:       l,
	}
}

func (s *service) Submit(ctx context.Context, actor domain.Identity, req CreateOvertimeRequest) (OvertimeResponse, error) {
	employeeID, err := uuid.Parse(actor.EmployeeID)
	if err != nil {
		return OvertimeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return OvertimeResponse{}, overtimeerrors.ErrInvalidDateFormat
	}
	startClock, err := time.Parse(timeLayout, req.StartTime)
	if err != nil {
		return OvertimeResponse{}, overtimeerrors.ErrInvalidTimeFormat
	}
	endClock, err := time.Parse(timeLayout, req.EndTime)
	if err != nil {
		return OvertimeResponse{}, overtimeerrors.ErrInvalidTimeFormat
	}

	start := time.Date(date.Year(), date.Month(), date.Day(), startClock.Hour(), startClock.Minute(), 0, 0, time.UTC)
	end := time.Date(date.Year(), date.Month(), date.Day(), endClock.Hour(), endClock.Minute(), 0, 0, time.UTC)
	if !end.After(start) {
		return OvertimeResponse{}, overtimeerrors.ErrInvalidTimeRange
	}

	now := s.clk.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if date.After(today) {
		return OvertimeResponse{}, overtimeerrors.ErrFutureDate
	}

	totalHours := decimal.NewFromFloat(end.Sub(start).Hours()).Round(2)

	ot := &Overtime{
		ID:         uuid.New(),
		EmployeeID: employeeID,
		Date:       date,
		StartTime:  start,
		EndTime:    end,
		TotalHours: totalHours,
		Reason:     req.Reason,
		Status:     StatusPending,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)
		empRepo := s.employeeRepo.WithTx(tx)

		chain, err := employee.ResolveApproverChain(ctx, empRepo, actor.EmployeeID)
		if err != nil {
			return err
		}
		// A TWC-designated supervisor signs off alone; no HR stage follows.
		if len(chain) > 1 {
			approver, err := empRepo.FindByID(ctx, chain[0].ApproverID.String())
			if err != nil {
				return err
			}
			if approver.Category == domain.CategoryTWC {
				chain = chain[:1]
			}
		}

		if err := qtx.CreateRequest(ctx, ot); err != nil {
			return err
		}

		for _, stage := range chain {
			a := &OvertimeApproval{
				ID:         uuid.New(),
				OvertimeID: ot.ID,
				ApproverID: stage.ApproverID,
				Level:      stage.Level,
				Status:     StatusPending,
			}
			if err := qtx.CreateApproval(ctx, a); err != nil {
				return err
			}
			ot.Approvals = append(ot.Approvals, *a)
		}

		return s.enqueueLifecycleEvent(ctx, s.outbox.WithTx(tx), events.OvertimeSubmitted, ot)
	})
	if err != nil {
		s.logger.Warn("submit overtime failed",
			zap.String("employee_id", actor.EmployeeID),
			zap.Error(err),
		)
		return OvertimeResponse{}, err
	}

	s.logger.Info("overtime submitted",
		zap.String("overtime_id", ot.ID.String()),
		zap.String("employee_id", actor.EmployeeID),
		zap.String("total_hours", totalHours.String()),
		zap.Int("approval_stages", len(ot.Approvals)),
	)
	return mapToResponse(*ot), nil
}

func (s *service) Decide(ctx context.Context, actor domain.Identity, approvalID string, req DecideRequest) (OvertimeResponse, error) {
	if _, err := uuid.Parse(approvalID); err != nil {
		return OvertimeResponse{}, overtimeerrors.ErrInvalidApprovalID
	}
	if req.Decision != StatusApproved && req.Decision != StatusRejected {
		return OvertimeResponse{}, overtimeerrors.ErrInvalidDecision
	}
	if req.Decision == StatusRejected && req.Comment == "" {
		return OvertimeResponse{}, overtimeerrors.ErrRejectionComment
	}

	var overtimeID string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		approval, err := qtx.FindApprovalByID(ctx, approvalID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return overtimeerrors.ErrApprovalNotFound
			}
			return err
		}
		if approval.ApproverID.String() != actor.EmployeeID {
			return overtimeerrors.ErrNotAuthorized
		}

		ot, err := qtx.FindRequestByIDForUpdate(ctx, approval.OvertimeID.String())
		if err != nil {
			return err
		}
		overtimeID = ot.ID.String()
		if ot.Status != StatusPending {
			return overtimeerrors.ErrAlreadyFinalized
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
			return overtimeerrors.ErrAlreadyDecided
		}

		if req.Decision == StatusRejected {
			if err := qtx.CloseOpenApprovals(ctx, overtimeID, "request rejected at another stage", now); err != nil {
				return err
			}
			if err := qtx.UpdateRequestStatus(ctx, overtimeID, StatusRejected, comment); err != nil {
				return err
			}
			ot.Status = StatusRejected
			return s.enqueueLifecycleEvent(ctx, s.outbox.WithTx(tx), events.OvertimeRejected, ot)
		}

		pending, err := qtx.CountPendingApprovals(ctx, overtimeID)
		if err != nil {
			return err
		}
		if pending > 0 {
			return nil
		}

		if err := qtx.UpdateRequestStatus(ctx, overtimeID, StatusApproved, nil); err != nil {
			return err
		}
		ot.Status = StatusApproved
		return s.enqueueLifecycleEvent(ctx, s.outbox.WithTx(tx), events.OvertimeApproved, ot)
	})
	if err != nil {
		s.logger.Warn("overtime decision failed",
			zap.String("approval_id", approvalID),
			zap.String("approver_id", actor.EmployeeID),
			zap.Error(err),
		)
		return OvertimeResponse{}, err
	}

	s.logger.Info("overtime decision recorded",
		zap.String("overtime_id", overtimeID),
		zap.String("approval_id", approvalID),
		zap.String("decision", req.Decision),
	)
	return s.fetchResponse(ctx, overtimeID)
}

func (s *service) Cancel(ctx context.Context, actor domain.Identity, overtimeID string) (OvertimeResponse, error) {
	if _, err := uuid.Parse(overtimeID); err != nil {
		return OvertimeResponse{}, overtimeerrors.ErrInvalidOvertimeID
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		ot, err := qtx.FindRequestByIDForUpdate(ctx, overtimeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return overtimeerrors.ErrOvertimeNotFound
			}
			return err
		}
		if !s.canCancel(ctx, tx, actor, ot) {
			return overtimeerrors.ErrNotAllowedCancel
		}
		if ot.Status != StatusPending {
			return overtimeerrors.ErrCancelNotPending
		}

		now := s.clk.Now()
		if err := qtx.CloseOpenApprovals(ctx, overtimeID, "request cancelled", now); err != nil {
			return err
		}
		if err := qtx.UpdateRequestStatus(ctx, overtimeID, StatusCancelled, nil); err != nil {
			return err
		}
		ot.Status = StatusCancelled
		return s.enqueueLifecycleEvent(ctx, s.outbox.WithTx(tx), events.OvertimeCancelled, ot)
	})
	if err != nil {
		s.logger.Warn("cancel overtime failed",
			zap.String("overtime_id", overtimeID),
			zap.String("employee_id", actor.EmployeeID),
			zap.Error(err),
		)
		return OvertimeResponse{}, err
	}

	s.logger.Info("overtime cancelled", zap.String("overtime_id", overtimeID))
	return s.fetchResponse(ctx, overtimeID)
}

func (s *service) GetAll(ctx context.Context, actor domain.Identity) ([]OvertimeResponse, error) {
	if actor.Role != domain.RoleHR {
		return nil, overtimeerrors.ErrNotAuthorized
	}
	ots, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return mapAllToResponse(ots), nil
}

func (s *service) GetMine(ctx context.Context, actor domain.Identity) ([]OvertimeResponse, error) {
	ots, err := s.repo.FindAllByEmployee(ctx, actor.EmployeeID)
	if err != nil {
		return nil, err
	}
	return mapAllToResponse(ots), nil
}

func (s *service) GetByID(ctx context.Context, actor domain.Identity, overtimeID string) (OvertimeResponse, error) {
	if _, err := uuid.Parse(overtimeID); err != nil {
		return OvertimeResponse{}, overtimeerrors.ErrInvalidOvertimeID
	}
	ot, err := s.repo.FindRequestByID(ctx, overtimeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OvertimeResponse{}, overtimeerrors.ErrOvertimeNotFound
		}
		return OvertimeResponse{}, err
	}
	if !s.canView(actor, ot) {
		return OvertimeResponse{}, overtimeerrors.ErrNotAllowedView
	}
	return mapToResponse(*ot), nil
}

func (s *service) GetPendingApprovals(ctx context.Context, actor domain.Identity) ([]OvertimeApprovalResponse, error) {
	approvals, err := s.repo.FindPendingByApprover(ctx, actor.EmployeeID)
	if err != nil {
		return nil, err
	}
	resp := make([]OvertimeApprovalResponse, len(approvals))
	for i, a := range approvals {
		resp[i] = mapApprovalToResponse(a)
	}
	return resp, nil
}

// canCancel allows the owner, HR and manager roles, and TWC-category actors.
// The category lives on the employee row, not in the token claims, so it is
// looked up last and inside the caller's transaction.
func (s *service) canCancel(ctx context.Context, tx *gorm.DB, actor domain.Identity, ot *Overtime) bool {
	if ot.EmployeeID.String() == actor.EmployeeID {
		return true
	}
	if actor.Role == domain.RoleHR || actor.Role == domain.RoleManager {
		return true
	}
	emp, err := s.employeeRepo.WithTx(tx).FindByID(ctx, actor.EmployeeID)
	if err != nil {
		return false
	}
	return emp.Category == domain.CategoryTWC
}

func (s *service) canView(actor domain.Identity, ot *Overtime) bool {
	if actor.Role == domain.RoleHR {
		return true
	}
	if ot.EmployeeID.String() == actor.EmployeeID {
		return true
	}
	for _, a := range ot.Approvals {
		if a.ApproverID.String() == actor.EmployeeID {
			return true
		}
	}
	return false
}

func (s *service) fetchResponse(ctx context.Context, overtimeID string) (OvertimeResponse, error) {
	ot, err := s.repo.FindRequestByID(ctx, overtimeID)
	if err != nil {
		return OvertimeResponse{}, err
	}
	return mapToResponse(*ot), nil
}

func (s *service) enqueueLifecycleEvent(ctx context.Context, outbox kafka.OutboxRepository, eventType string, ot *Overtime) error {
	payload, err := json.Marshal(events.OvertimeLifecycleEvent{
		EventType:  eventType,
		OvertimeID: ot.ID.String(),
		EmployeeID: ot.EmployeeID.String(),
		TotalHours: ot.TotalHours.String(),
		Status:     ot.Status,
		OccurredAt: s.clk.Now(),
	})
	if err != nil {
		return err
	}

	return outbox.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "overtime",
		AggregateID:   ot.ID.String(),
		EventType:     eventType,
		Topic:         events.OvertimeLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func mapAllToResponse(ots []Overtime) []OvertimeResponse {
	resp := make([]OvertimeResponse, len(ots))
	for i, ot := range ots {
		resp[i] = mapToResponse(ot)
	}
	return resp
}
