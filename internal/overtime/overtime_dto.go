package overtime

type CreateOvertimeRequest struct {
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	Reason    string `json:"reason" binding:"max=2000"`
}

type DecideRequest struct {
	Decision string `json:"decision" binding:"required,oneof=APPROVED REJECTED"`
	Comment  string `json:"comment" binding:"max=2000"`
}

type OvertimeApprovalResponse struct {
	ID         string  `json:"id"`
	OvertimeID string  `json:"overtime_id"`
	ApproverID string  `json:"approver_id"`
	Level      string  `json:"level"`
	Status     string  `json:"status"`
	Comment    *string `json:"comment,omitempty"`
	DecidedAt  *string `json:"decided_at,omitempty"`
}

type OvertimeResponse struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	TotalHours string `json:"total_hours"`
	Reason     string `json:"reason,omitempty"`

	Status          string  `json:"status"`
	RejectionReason *string `json:"rejection_reason,omitempty"`

	Approvals []OvertimeApprovalResponse `json:"approvals,omitempty"`

	CreatedAt string `json:"created_at"`
}

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

func mapApprovalToResponse(a OvertimeApproval) OvertimeApprovalResponse {
	resp := OvertimeApprovalResponse{
		ID:         a.ID.String(),
		OvertimeID: a.OvertimeID.String(),
		ApproverID: a.ApproverID.String(),
		Level:      a.Level,
		Status:     a.Status,
		Comment:    a.Comment,
	}
	if a.DecidedAt != nil {
		s := a.DecidedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		resp.DecidedAt = &s
	}
	return resp
}

func mapToResponse(ot Overtime) OvertimeResponse {
	resp := OvertimeResponse{
		ID:              ot.ID.String(),
		EmployeeID:      ot.EmployeeID.String(),
		Date:            ot.Date.Format(dateLayout),
		StartTime:       ot.StartTime.Format(timeLayout),
		EndTime:         ot.EndTime.Format(timeLayout),
		TotalHours:      ot.TotalHours.String(),
		Reason:          ot.Reason,
		Status:          ot.Status,
		RejectionReason: ot.RejectionReason,
		CreatedAt:       ot.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if len(ot.Approvals) > 0 {
		resp.Approvals = make([]OvertimeApprovalResponse, len(ot.Approvals))
		for i, a := range ot.Approvals {
			resp.Approvals[i] = mapApprovalToResponse(a)
		}
	}
	return resp
}
