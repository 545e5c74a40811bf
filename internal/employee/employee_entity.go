package employee

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Employee struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FullName string    `gorm:"type:varchar(120);not null"`
	Email    string    `gorm:"type:varchar(120);not null;uniqueIndex:uq_employee_email"`

	Role     string `gorm:"type:varchar(20);not null;default:'EMPLOYEE';index"`
	Category string `gorm:"type:varchar(20);not null;default:'REGULAR'"`

	// Single upstream approver reference; the approval chain is one hop.
	ApproverID *uuid.UUID `gorm:"type:uuid;index"`

	Active   bool      `gorm:"not null;default:true"`
	HiredAt  time.Time `gorm:"type:date"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
