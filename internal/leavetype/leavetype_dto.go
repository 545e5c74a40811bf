package leavetype

type LeaveTypeResponse struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Code               string `json:"code"`
	AnnualAllowance    string `json:"annual_allowance"`
	TWCAllowance       string `json:"twc_allowance"`
	RequiresApproval   bool   `json:"requires_approval"`
	Paid               bool   `json:"paid"`
	MinNoticeDays      int    `json:"min_notice_days"`
	MaxConsecutiveDays int    `json:"max_consecutive_days"`
	HalfDayAllowed     bool   `json:"half_day_allowed"`
	CarryOver          bool   `json:"carry_over"`
}
