package domain

// Roles carried in JWT claims and stored on the employee row. An employee's
// role doubles as the approval level when they sit in an approval chain.
const (
	RoleEmployee   = "EMPLOYEE"
	RoleSupervisor = "SUPERVISOR"
	RoleHR         = "HR"
	RoleManager    = "MANAGER"
)

// Employee categories. TWC employees have reduced leave allowances, and an
// overtime filing whose first-stage approver is TWC-designated carries no HR
// stage.
const (
	CategoryRegular = "REGULAR"
	CategoryTWC     = "TWC"
)

// Identity is the authenticated caller as established by the auth middleware.
// Services trust it; they do not re-authenticate.
type Identity struct {
	UserID     string
	EmployeeID string
	Role       string
}

// Approval levels on leave/overtime approval rows. An approver's level is
// derived from their stored role: HR maps to HR, every other approver role
// maps to SUPERVISOR.
const (
	LevelSupervisor = "SUPERVISOR"
	LevelHR         = "HR"
)

// LevelForRole maps an approver's role to the approval level their row
// carries.
func LevelForRole(role string) string {
	if role == RoleHR {
		return LevelHR
	}
	return LevelSupervisor
}

// IsApproverRole reports whether the role may sit in an approval chain.
func IsApproverRole(role string) bool {
	switch role {
	case RoleSupervisor, RoleHR, RoleManager:
		return true
	default:
		return false
	}
}
