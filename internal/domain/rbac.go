package domain

// EnforceRequest is the input to the casbin-backed authorization check.
type EnforceRequest struct {
	EmployeeID string
	Role       string
	Resource   string
	Action     string
}
