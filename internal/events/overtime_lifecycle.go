package events

import "time"

const OvertimeLifecycleTopic = "lms.overtime.lifecycle.v1"

const (
	OvertimeSubmitted = "overtime.submitted"
	OvertimeApproved  = "overtime.approved"
	OvertimeRejected  = "overtime.rejected"
	OvertimeCancelled = "overtime.cancelled"
)

type OvertimeLifecycleEvent struct {
	EventType  string    `json:"event_type"`
	OvertimeID string    `json:"overtime_id"`
	EmployeeID string    `json:"employee_id"`
	TotalHours string    `json:"total_hours"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}
