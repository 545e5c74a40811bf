package balance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LeaveBalance is the per (employee, leave type, year) ledger row.
//
// balance is the remaining amount and is decremented at reservation time;
// pending is the reserved amount awaiting an approval outcome; used is the
// cumulative consumed amount. balance never goes negative: every debit is a
// conditional UPDATE guarded by the current value.
type LeaveBalance struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_balance_employee_type_year"`
	LeaveTypeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_balance_employee_type_year"`
	Year        int       `gorm:"type:int;not null;uniqueIndex:uq_balance_employee_type_year"`

	Balance decimal.Decimal `gorm:"type:numeric(6,1);not null;default:0"`
	Used    decimal.Decimal `gorm:"type:numeric(6,1);not null;default:0"`
	Pending decimal.Decimal `gorm:"type:numeric(6,1);not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
