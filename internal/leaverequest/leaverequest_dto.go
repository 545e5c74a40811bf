package leaverequest

type CreateLeaveRequestRequest struct {
	LeaveTypeID string `json:"leave_type_id" binding:"required,uuid"`
	StartDate   string `json:"start_date" binding:"required"`
	EndDate     string `json:"end_date" binding:"required"`
	DaySelector string `json:"day_selector" binding:"omitempty,oneof=FULL FIRST_HALF SECOND_HALF"`
	Reason      string `json:"reason" binding:"max=2000"`
}

type DecideRequest struct {
	Decision string `json:"decision" binding:"required,oneof=APPROVED REJECTED"`
	Comment  string `json:"comment" binding:"max=2000"`
}

type PMDDecisionRequest struct {
	Status string `json:"status" binding:"required,oneof=APPROVED REJECTED"`
	Reason string `json:"reason" binding:"max=2000"`
}

type LeaveApprovalResponse struct {
	ID             string  `json:"id"`
	LeaveRequestID string  `json:"leave_request_id"`
	ApproverID     string  `json:"approver_id"`
	Level          string  `json:"level"`
	Status         string  `json:"status"`
	Comment        *string `json:"comment,omitempty"`
	DecidedAt      *string `json:"decided_at,omitempty"`
}

type LeaveRequestResponse struct {
	ID            string `json:"id"`
	EmployeeID    string `json:"employee_id"`
	LeaveTypeID   string `json:"leave_type_id"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	DaySelector   string `json:"day_selector"`
	DaysRequested string `json:"days_requested"`
	Reason        string `json:"reason,omitempty"`

	Status          string  `json:"status"`
	RejectionReason *string `json:"rejection_reason,omitempty"`

	PMDStatus          *string `json:"pmd_status,omitempty"`
	PMDRejectionReason *string `json:"pmd_rejection_reason,omitempty"`

	Approvals []LeaveApprovalResponse `json:"approvals,omitempty"`

	CreatedAt string `json:"created_at"`
}

const dateLayout = "2006-01-02"

func mapApprovalToResponse(a LeaveApproval) LeaveApprovalResponse {
	resp := LeaveApprovalResponse{
		ID:             a.ID.String(),
		LeaveRequestID: a.LeaveRequestID.String(),
		ApproverID:     a.ApproverID.String(),
		Level:          a.Level,
		Status:         a.Status,
		Comment:        a.Comment,
	}
	if a.DecidedAt != nil {
		s := a.DecidedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		resp.DecidedAt = &s
	}
	return resp
}

func mapToResponse(r LeaveRequest) LeaveRequestResponse {
	resp := LeaveRequestResponse{
		ID:                 r.ID.String(),
		EmployeeID:         r.EmployeeID.String(),
		LeaveTypeID:        r.LeaveTypeID.String(),
		StartDate:          r.StartDate.Format(dateLayout),
		EndDate:            r.EndDate.Format(dateLayout),
		DaySelector:        r.DaySelector,
		DaysRequested:      r.DaysRequested.String(),
		Reason:             r.Reason,
		Status:             r.Status,
		RejectionReason:    r.RejectionReason,
		PMDStatus:          r.PMDStatus,
		PMDRejectionReason: r.PMDRejectionReason,
		CreatedAt:          r.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if len(r.Approvals) > 0 {
		resp.Approvals = make([]LeaveApprovalResponse, len(r.Approvals))
		for i, a := range r.Approvals {
			resp.Approvals[i] = mapApprovalToResponse(a)
		}
	}
	return resp
}
