package leavetype

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LeaveType is leave configuration. Rows are treated as immutable while a
// request referencing them is in flight; requests never deep-copy settings.
type LeaveType struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name string    `gorm:"type:varchar(60);not null;uniqueIndex"`
	Code string    `gorm:"type:varchar(10);not null;uniqueIndex"`

	AnnualAllowance decimal.Decimal `gorm:"type:numeric(5,1);not null"`
	// Reduced allowance applied to TWC-category employees at replenishment.
	TWCAllowance decimal.Decimal `gorm:"type:numeric(5,1);not null;default:0"`

	RequiresApproval   bool `gorm:"not null;default:true"`
	Paid               bool `gorm:"not null;default:true"`
	MinNoticeDays      int  `gorm:"type:int;not null;default:0"`
	MaxConsecutiveDays int  `gorm:"type:int;not null;default:0"`
	HalfDayAllowed     bool `gorm:"not null;default:true"`
	Active             bool `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsCarryOver reports whether unused balance rolls into the next year.
// Sick and vacation leave carry over; everything else resets to the allowance.
func (t LeaveType) IsCarryOver() bool {
	name := strings.ToLower(t.Name)
	if strings.Contains(name, "sick") || strings.Contains(name, "vacation") {
		return true
	}
	switch strings.ToUpper(t.Code) {
	case "SL", "VL":
		return true
	}
	return false
}
