package overtime

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateRequest(ctx context.Context, ot *Overtime) error
	CreateApproval(ctx context.Context, a *OvertimeApproval) error

	FindRequestByID(ctx context.Context, id string) (*Overtime, error)
	FindRequestByIDForUpdate(ctx context.Context, id string) (*Overtime, error)
	FindAll(ctx context.Context) ([]Overtime, error)
	FindAllByEmployee(ctx context.Context, employeeID string) ([]Overtime, error)

	FindApprovalByID(ctx context.Context, id string) (*OvertimeApproval, error)
	FindPendingByApprover(ctx context.Context, approverID string) ([]OvertimeApproval, error)
	MarkApprovalDecided(ctx context.Context, id, status string, comment *string, decidedAt time.Time) (int64, error)
	CloseOpenApprovals(ctx context.Context, overtimeID, comment string, decidedAt time.Time) error
	CountPendingApprovals(ctx context.Context, overtimeID string) (int64, error)

	UpdateRequestStatus(ctx context.Context, id, status string, rejectionReason *string) error
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

func (r *repository) CreateRequest(ctx context.Context, ot *Overtime) error {
	return r.db.WithContext(ctx).Omit("Approvals").Create(ot).Error
}

func (r *repository) CreateApproval(ctx context.Context, a *OvertimeApproval) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *repository) FindRequestByID(ctx context.Context, id string) (*Overtime, error) {
	var ot Overtime
	err := r.db.WithContext(ctx).
		Preload("Approvals", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&ot, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &ot, nil
}

func (r *repository) FindRequestByIDForUpdate(ctx context.Context, id string) (*Overtime, error) {
	var ot Overtime
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&ot, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &ot, nil
}

func (r *repository) FindAll(ctx context.Context) ([]Overtime, error) {
	var ots []Overtime
	err := r.db.WithContext(ctx).
		Preload("Approvals").
		Order("created_at DESC").
		Find(&ots).Error
	return ots, err
}

func (r *repository) FindAllByEmployee(ctx context.Context, employeeID string) ([]Overtime, error) {
	var ots []Overtime
	err := r.db.WithContext(ctx).
		Preload("Approvals").
		Where("employee_id = ?", employeeID).
		Order("created_at DESC").
		Find(&ots).Error
	return ots, err
}

func (r *repository) FindApprovalByID(ctx context.Context, id string) (*OvertimeApproval, error) {
	var a OvertimeApproval
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) FindPendingByApprover(ctx context.Context, approverID string) ([]OvertimeApproval, error) {
	var approvals []OvertimeApproval
	err := r.db.WithContext(ctx).
		Where("approver_id = ?", approverID).
		Where("status = ?", StatusPending).
		Order("created_at ASC").
		Find(&approvals).Error
	return approvals, err
}

func (r *repository) MarkApprovalDecided(ctx context.Context, id, status string, comment *string, decidedAt time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&OvertimeApproval{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(map[string]any{
			"status":     status,
			"comment":    comment,
			"decided_at": decidedAt,
			"updated_at": decidedAt,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) CloseOpenApprovals(ctx context.Context, overtimeID, comment string, decidedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&OvertimeApproval{}).
		Where("overtime_id = ? AND status = ?", overtimeID, StatusPending).
		Updates(map[string]any{
			"status":     StatusRejected,
			"comment":    comment,
			"decided_at": decidedAt,
			"updated_at": decidedAt,
		}).Error
}

func (r *repository) CountPendingApprovals(ctx context.Context, overtimeID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&OvertimeApproval{}).
		Where("overtime_id = ? AND status = ?", overtimeID, StatusPending).
		Count(&count).Error
	return count, err
}

func (r *repository) UpdateRequestStatus(ctx context.Context, id, status string, rejectionReason *string) error {
	return r.db.WithContext(ctx).
		Model(&Overtime{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":           status,
			"rejection_reason": rejectionReason,
		}).Error
}
