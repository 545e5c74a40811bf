package overtime

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusCancelled = "CANCELLED"
)

type Overtime struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_overtimes_employee"`

	Date      time.Time `gorm:"type:date;not null"`
	StartTime time.Time `gorm:"not null"`
	EndTime   time.Time `gorm:"not null"`
	// Derived from the time range at submission; never recomputed afterwards.
	TotalHours decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	Reason     string          `gorm:"type:text"`

	Status          string  `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	RejectionReason *string `gorm:"type:text"`

	Approvals []OvertimeApproval `gorm:"foreignKey:OvertimeID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type OvertimeApproval struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OvertimeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_overtime_approval_request_level"`
	ApproverID uuid.UUID `gorm:"type:uuid;not null;index:idx_overtime_approvals_approver"`
	Level      string    `gorm:"type:varchar(20);not null;uniqueIndex:uq_overtime_approval_request_level"`

	Status    string     `gorm:"type:varchar(20);not null;default:'PENDING'"`
	Comment   *string    `gorm:"type:text"`
	DecidedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
