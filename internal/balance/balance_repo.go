package balance

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	balanceerrors "github.com/patwikx/rgroup-lms-sub000/internal/balance/errors"
)

// Repository is the balance ledger. Reserve, Consume and Release are single
// conditional UPDATE statements so concurrent callers cannot overdraw a row;
// callers run them inside the transaction that owns the related request
// mutation.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByKey(ctx context.Context, employeeID, leaveTypeID string, year int) (*LeaveBalance, error)
	FindAllByEmployee(ctx context.Context, employeeID string, year int) ([]LeaveBalance, error)
	FindAllByYear(ctx context.Context, year int) ([]LeaveBalance, error)
	Reserve(ctx context.Context, id string, days decimal.Decimal) error
	Consume(ctx context.Context, id string, days decimal.Decimal) error
	Release(ctx context.Context, id string, days decimal.Decimal) error
	Upsert(ctx context.Context, b *LeaveBalance) error
	CreateIfAbsent(ctx context.Context, b *LeaveBalance) error
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

func (r *repository) FindByKey(ctx context.Context, employeeID, leaveTypeID string, year int) (*LeaveBalance, error) {
	var b LeaveBalance
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("leave_type_id = ?", leaveTypeID).
		Where("year = ?", year).
		First(&b).Error
	return &b, err
}

func (r *repository) FindAllByEmployee(ctx context.Context, employeeID string, year int) ([]LeaveBalance, error) {
	var balances []LeaveBalance
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("year = ?", year).
		Find(&balances).Error
	return balances, err
}

func (r *repository) FindAllByYear(ctx context.Context, year int) ([]LeaveBalance, error) {
	var balances []LeaveBalance
	err := r.db.WithContext(ctx).
		Where("year = ?", year).
		Order("employee_id ASC").
		Find(&balances).Error
	return balances, err
}

// Reserve moves days from balance to pending. The balance >= days guard in
// the WHERE clause is the invariant: zero rows affected means the reservation
// would overdraw and the enclosing transaction must abort.
func (r *repository) Reserve(ctx context.Context, id string, days decimal.Decimal) error {
	res := r.db.WithContext(ctx).Exec(`
UPDATE leave_balances
SET balance = balance - ?, pending = pending + ?, updated_at = NOW()
WHERE id = ? AND balance >= ?
`, days, days, id, days)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return balanceerrors.ErrInsufficientBalance
	}
	return nil
}

// Consume settles a reservation on final approval: pending -> used, balance
// untouched (it was debited at reservation time).
func (r *repository) Consume(ctx context.Context, id string, days decimal.Decimal) error {
	res := r.db.WithContext(ctx).Exec(`
UPDATE leave_balances
SET pending = pending - ?, used = used + ?, updated_at = NOW()
WHERE id = ? AND pending >= ?
`, days, days, id, days)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return balanceerrors.ErrLedgerConflict
	}
	return nil
}

// Release refunds a reservation on rejection or cancellation: pending ->
// balance.
func (r *repository) Release(ctx context.Context, id string, days decimal.Decimal) error {
	res := r.db.WithContext(ctx).Exec(`
UPDATE leave_balances
SET pending = pending - ?, balance = balance + ?, updated_at = NOW()
WHERE id = ? AND pending >= ?
`, days, days, id, days)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return balanceerrors.ErrLedgerConflict
	}
	return nil
}

func (r *repository) Upsert(ctx context.Context, b *LeaveBalance) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "employee_id"}, {Name: "leave_type_id"}, {Name: "year"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"balance", "used", "pending", "updated_at"}),
	}).Create(b).Error
}

func (r *repository) CreateIfAbsent(ctx context.Context, b *LeaveBalance) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "employee_id"}, {Name: "leave_type_id"}, {Name: "year"},
		},
		DoNothing: true,
	}).Create(b).Error
}
