package balance

type BalanceResponse struct {
	ID          string `json:"id"`
	EmployeeID  string `json:"employee_id"`
	LeaveTypeID string `json:"leave_type_id"`
	Year        int    `json:"year"`
	Balance     string `json:"balance"`
	Used        string `json:"used"`
	Pending     string `json:"pending"`
}

type ReplenishRequest struct {
	Year int `json:"year" binding:"required,min=2000,max=2200"`
}

type ReplenishResponse struct {
	Year         int `json:"year"`
	RowsUpserted int `json:"rows_upserted"`
}
