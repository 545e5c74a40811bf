package leaverequest

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateRequest(ctx context.Context, req *LeaveRequest) error
	CreateApproval(ctx context.Context, a *LeaveApproval) error

	FindRequestByID(ctx context.Context, id string) (*LeaveRequest, error)
	// FindRequestByIDForUpdate takes a row lock on the request so concurrent
	// decisions on sibling approval rows serialize on the parent.
	FindRequestByIDForUpdate(ctx context.Context, id string) (*LeaveRequest, error)
	FindAll(ctx context.Context) ([]LeaveRequest, error)
	FindAllByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error)
	HasActiveOverlap(ctx context.Context, employeeID string, start, end time.Time) (bool, error)

	FindApprovalByID(ctx context.Context, id string) (*LeaveApproval, error)
	FindPendingByApprover(ctx context.Context, approverID string) ([]LeaveApproval, error)
	// MarkApprovalDecided flips one PENDING approval row to a terminal status.
	// Returns the number of rows updated; zero means the row was already
	// decided by a concurrent call.
	MarkApprovalDecided(ctx context.Context, id, status string, comment *string, decidedAt time.Time) (int64, error)
	// CloseOpenApprovals rejects every remaining PENDING row of a request so
	// no stage stays actionable after the request reaches a terminal status.
	CloseOpenApprovals(ctx context.Context, requestID, comment string, decidedAt time.Time) error
	CountPendingApprovals(ctx context.Context, requestID string) (int64, error)

	UpdateRequestStatus(ctx context.Context, id, status string, rejectionReason *string) error
	UpdateRequestPMD(ctx context.Context, id, pmdStatus string, reason *string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) CreateRequest(ctx context.Context, req *LeaveRequest) error {
	return r.db.WithContext(ctx).Omit("Approvals").Create(req).Error
}

func (r *repository) CreateApproval(ctx context.Context, a *LeaveApproval) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *repository) FindRequestByID(ctx context.Context, id string) (*LeaveRequest, error) {
	var req LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("Approvals", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&req, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repository) FindRequestByIDForUpdate(ctx context.Context, id string) (*LeaveRequest, error) {
	var req LeaveRequest
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&req, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repository) FindAll(ctx context.Context) ([]LeaveRequest, error) {
	var reqs []LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("Approvals").
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *repository) FindAllByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error) {
	var reqs []LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("Approvals").
		Where("employee_id = ?", employeeID).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *repository) HasActiveOverlap(ctx context.Context, employeeID string, start, end time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("employee_id = ?", employeeID).
		Where("status IN ?", []string{StatusPending, StatusApproved}).
		Where("start_date <= ? AND end_date >= ?", end, start).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) FindApprovalByID(ctx context.Context, id string) (*LeaveApproval, error) {
	var a LeaveApproval
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) FindPendingByApprover(ctx context.Context, approverID string) ([]LeaveApproval, error) {
	var approvals []LeaveApproval
	err := r.db.WithContext(ctx).
		Where("approver_id = ?", approverID).
		Where("status = ?", StatusPending).
		Order("created_at ASC").
		Find(&approvals).Error
	return approvals, err
}

func (r *repository) MarkApprovalDecided(ctx context.Context, id, status string, comment *string, decidedAt time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&LeaveApproval{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(map[string]any{
			"status":     status,
			"comment":    comment,
			"decided_at": decidedAt,
			"updated_at": decidedAt,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) CloseOpenApprovals(ctx context.Context, requestID, comment string, decidedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&LeaveApproval{}).
		Where("leave_request_id = ? AND status = ?", requestID, StatusPending).
		Updates(map[string]any{
			"status":     StatusRejected,
			"comment":    comment,
			"decided_at": decidedAt,
			"updated_at": decidedAt,
		}).Error
}

func (r *repository) CountPendingApprovals(ctx context.Context, requestID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&LeaveApproval{}).
		Where("leave_request_id = ? AND status = ?", requestID, StatusPending).
		Count(&count).Error
	return count, err
}

func (r *repository) UpdateRequestStatus(ctx context.Context, id, status string, rejectionReason *string) error {
	return r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":           status,
			"rejection_reason": rejectionReason,
		}).Error
}

func (r *repository) UpdateRequestPMD(ctx context.Context, id, pmdStatus string, reason *string) error {
	updates := map[string]any{
		"pmd_status":           pmdStatus,
		"pmd_rejection_reason": reason,
	}
	if pmdStatus == PMDRejected {
		updates["status"] = StatusRejected
	}
	return r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("id = ?", id).
		Updates(updates).Error
}
