package employee

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/patwikx/rgroup-lms-sub000/internal/domain"
	employeeerrors "github.com/patwikx/rgroup-lms-sub000/internal/employee/errors"
	"github.com/patwikx/rgroup-lms-sub000/internal/events"
	"github.com/patwikx/rgroup-lms-sub000/internal/messaging/kafka"
	"github.com/patwikx/rgroup-lms-sub000/internal/shared/clock"
	"github.com/patwikx/rgroup-lms-sub000/internal/shared/contextutil"
)

// ApprovalStage is one entry of a resolved approver chain, in chain order.
type ApprovalStage struct {
	ApproverID uuid.UUID
	Level      string
}

type Service interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetAll(ctx context.Context) ([]EmployeeResponse, error)
	GetByID(ctx context.Context, id string) (EmployeeResponse, error)
	// ResolveApproverChain returns the ordered approver stages for an
	// employee: the direct approver first, then the HR stage when the direct
	// approver is not already HR and an active HR user exists.
	ResolveApproverChain(ctx context.Context, employeeID string) ([]ApprovalStage, error)
}

type service struct {
	db     *gorm.DB
	repo   Repository
	outbox kafka.OutboxRepository
	clk    clock.Clock
	logger *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, nil, logger...)
}

func NewServiceWithOutbox(db *gorm.DB, repo Repository, outbox kafka.OutboxRepository, logger ...*zap.Logger) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{db: db, repo: repo, outbox: outbox, clk: clock.Real(), logger: l}
}

func (s *service) Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error) {
	s.logger.Debug("create employee requested",
		zap.String("email", req.Email),
		zap.String("role", req.Role),
	)

	hiredAt, err := time.Parse("2006-01-02", req.HiredAt)
	if err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidHiredAt
	}

	e := &Employee{
		ID:       uuid.New(),
		FullName: req.FullName,
		Email:    req.Email,
		Role:     req.Role,
		Category: req.Category,
		Active:   true,
		HiredAt:  hiredAt,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		if req.ApproverID != nil && *req.ApproverID != "" {
			approverID, err := uuid.Parse(*req.ApproverID)
			if err != nil {
				return employeeerrors.ErrInvalidEmployeeID
			}
			approver, err := qtx.FindByID(ctx, approverID.String())
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return employeeerrors.ErrEmployeeNotFound
				}
				return err
			}
			if !domain.IsApproverRole(approver.Role) {
				return employeeerrors.ErrInvalidApprover
			}
			e.ApproverID = &approverID
		}

		if err := qtx.Create(ctx, e); err != nil {
			return mapRepositoryError(err)
		}

		if s.outbox != nil {
			return s.enqueueOnboardedEvent(ctx, s.outbox.WithTx(tx), e)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("create employee failed", zap.String("email", req.Email), zap.Error(err))
		return EmployeeResponse{}, err
	}

	s.logger.Info("create employee success",
		zap.String("employee_id", e.ID.String()),
		zap.String("role", e.Role),
	)
	return mapToResponse(*e), nil
}

func (s *service) enqueueOnboardedEvent(ctx context.Context, outbox kafka.OutboxRepository, e *Employee) error {
	payload, err := json.Marshal(events.EmployeeOnboardedEvent{
		EventType:  "employee.onboarded",
		EmployeeID: e.ID.String(),
		Category:   e.Category,
		OccurredAt: s.clk.Now(),
	})
	if err != nil {
		return err
	}

	return outbox.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "employee",
		AggregateID:   e.ID.String(),
		EventType:     "employee.onboarded",
		Topic:         events.EmployeeOnboardedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func (s *service) GetAll(ctx context.Context) ([]EmployeeResponse, error) {
	employees, err := s.repo.FindAllActive(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]EmployeeResponse, len(employees))
	for i, e := range employees {
		resp[i] = mapToResponse(e)
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, id string) (EmployeeResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EmployeeResponse{}, employeeerrors.ErrEmployeeNotFound
		}
		return EmployeeResponse{}, err
	}
	return mapToResponse(*e), nil
}

func (s *service) ResolveApproverChain(ctx context.Context, employeeID string) ([]ApprovalStage, error) {
	return ResolveApproverChain(ctx, s.repo, employeeID)
}

// ResolveApproverChain is the repo-level resolution used both by the service
// and by workflow transactions that need the chain inside their own tx.
func ResolveApproverChain(ctx context.Context, repo Repository, employeeID string) ([]ApprovalStage, error) {
	e, err := repo.FindByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, employeeerrors.ErrEmployeeNotFound
		}
		return nil, err
	}
	if e.ApproverID == nil {
		return nil, employeeerrors.ErrNoApproverAssigned
	}

	approver, err := repo.FindByID(ctx, e.ApproverID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, employeeerrors.ErrNoApproverAssigned
		}
		return nil, err
	}

	chain := []ApprovalStage{{
		ApproverID: approver.ID,
		Level:      domain.LevelForRole(approver.Role),
	}}

	if approver.Role == domain.RoleHR {
		return chain, nil
	}

	// Second stage: first active HR user. A missing HR user leaves the chain
	// at one stage rather than failing the submission.
	hr, err := repo.FirstActiveByRole(ctx, domain.RoleHR)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chain, nil
		}
		return nil, err
	}
	if hr.ID != approver.ID {
		chain = append(chain, ApprovalStage{
			ApproverID: hr.ID,
			Level:      domain.LevelHR,
		})
	}

	return chain, nil
}

func mapToResponse(e Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:       e.ID.String(),
		FullName: e.FullName,
		Email:    e.Email,
		Role:     e.Role,
		Category: e.Category,
		Active:   e.Active,
		HiredAt:  e.HiredAt.Format("2006-01-02"),
	}
	if e.ApproverID != nil {
		v := e.ApproverID.String()
		resp.ApproverID = &v
	}
	return resp
}
