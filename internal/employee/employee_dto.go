package employee

type CreateEmployeeRequest struct {
	FullName   string  `json:"full_name" binding:"required"`
	Email      string  `json:"email" binding:"required,email"`
	Role       string  `json:"role" binding:"required,oneof=EMPLOYEE SUPERVISOR HR MANAGER"`
	Category   string  `json:"category" binding:"required,oneof=REGULAR TWC"`
	ApproverID *string `json:"approver_id"`
	HiredAt    string  `json:"hired_at" binding:"required"`
}

type EmployeeResponse struct {
	ID         string  `json:"id"`
	FullName   string  `json:"full_name"`
	Email      string  `json:"email"`
	Role       string  `json:"role"`
	Category   string  `json:"category"`
	ApproverID *string `json:"approver_id,omitempty"`
	Active     bool    `json:"active"`
	HiredAt    string  `json:"hired_at"`
}
