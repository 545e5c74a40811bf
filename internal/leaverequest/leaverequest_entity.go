package leaverequest

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

// PMD statuses share the approval vocabulary but live on an independent
// channel; a request only enters it after reaching APPROVED.
const (
	PMDPending  = "PENDING"
	PMDApproved = "APPROVED"
	PMDRejected = "REJECTED"
)

type LeaveRequest struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID  uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_requests_employee"`
	LeaveTypeID uuid.UUID `gorm:"type:uuid;not null"`

	StartDate     time.Time       `gorm:"type:date;not null"`
	EndDate       time.Time       `gorm:"type:date;not null"`
	DaySelector   string          `gorm:"type:varchar(20);not null;default:'FULL'"`
	DaysRequested decimal.Decimal `gorm:"type:numeric(5,1);not null"`
	Reason        string          `gorm:"type:text"`

	Status          string  `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	RejectionReason *string `gorm:"type:text"`

	PMDStatus          *string `gorm:"type:varchar(20)"`
	PMDRejectionReason *string `gorm:"type:text"`

	// Ledger row the reservation was taken from; Consume/Release target it.
	BalanceID uuid.UUID `gorm:"type:uuid;not null"`

	Approvals []LeaveApproval `gorm:"foreignKey:LeaveRequestID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// LeaveApproval is one stage of a request's approval chain. Exactly one row
// per level per request; each row is decided at most once.
type LeaveApproval struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	LeaveRequestID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_leave_approval_request_level"`
	ApproverID     uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_approvals_approver"`
	Level          string    `gorm:"type:varchar(20);not null;uniqueIndex:uq_leave_approval_request_level"`

	Status    string     `gorm:"type:varchar(20);not null;default:'PENDING'"`
	Comment   *string    `gorm:"type:text"`
	DecidedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
