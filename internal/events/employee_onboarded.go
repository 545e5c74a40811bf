package events

import "time"

const EmployeeOnboardedTopic = "lms.employee.lifecycle.v1"

// EmployeeOnboardedEvent announces a new hire. The balance consumer reacts by
// seeding one leave balance row per active leave type for the hire year.
type EmployeeOnboardedEvent struct {
	EventType  string    `json:"event_type"`
	EmployeeID string    `json:"employee_id"`
	Category   string    `json:"category"`
	OccurredAt time.Time `json:"occurred_at"`
}
