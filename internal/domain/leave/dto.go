package leave

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/validator"
)

// MaxLeaveDays bounds a single range request.
const MaxLeaveDays = 366

type CreateLeaveRequest struct {
	StaffID   string   `json:"staffId"`
	Type      string   `json:"type"`
	StartDate string   `json:"startDate,omitempty"`
	EndDate   string   `json:"endDate,omitempty"`
	Dates     []string `json:"dates,omitempty"`
	Note      *string  `json:"note,omitempty"`
}

func (r *CreateLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.StaffID) {
		errs.Add("staffId", "staffId is required")
	}
	if !validator.IsInSlice(r.Type, LeaveTypes) {
		errs.Add("type", "invalid leave type")
	}

	if len(r.Dates) > 0 {
		for i, d := range r.Dates {
			if _, ok := validator.IsValidDate(d); !ok {
				errs.Add(fmt.Sprintf("dates[%d]", i), "invalid date format, use YYYY-MM-DD")
			}
		}
		return errs.Err()
	}

	start, ok := validator.IsValidDate(r.StartDate)
	if !ok {
		errs.Add("startDate", "invalid date format, use YYYY-MM-DD")
	}
	end := start
	if r.EndDate != "" {
		var ok2 bool
		end, ok2 = validator.IsValidDate(r.EndDate)
		if !ok2 {
			errs.Add("endDate", "invalid date format, use YYYY-MM-DD")
		}
	}
	if ok && end.Before(start) {
		errs.Add("endDate", "endDate must not be before startDate")
	}
	if ok && end.Sub(start) > time.Duration(MaxLeaveDays)*24*time.Hour {
		errs.Add("endDate", fmt.Sprintf("range must not exceed %d days", MaxLeaveDays))
	}

	return errs.Err()
}

// ExpandDates returns the distinct days covered by the request in order.
// Validate must pass first.
func (r *CreateLeaveRequest) ExpandDates() []time.Time {
	seen := make(map[string]bool)
	var out []time.Time
	add := func(d time.Time) {
		key := d.Format(validator.DateLayout)
		if !seen[key] {
			seen[key] = true
			out = append(out, d)
		}
	}

	if len(r.Dates) > 0 {
		for _, s := range r.Dates {
			d, _ := validator.IsValidDate(s)
			add(d)
		}
		return out
	}

	start, _ := validator.IsValidDate(r.StartDate)
	end := start
	if r.EndDate != "" {
		end, _ = validator.IsValidDate(r.EndDate)
	}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		add(d)
	}
	return out
}

type BulkRosterItem struct {
	StaffID string `json:"staffId"`
	Type    string `json:"type"`
	Date    string `json:"date"`
}

type BulkRosterRequest struct {
	Items []BulkRosterItem `json:"items"`
}

func (r *BulkRosterRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.Items) == 0 {
		errs.Add("items", "at least one item is required")
	}
	for i, item := range r.Items {
		field := fmt.Sprintf("items[%d]", i)
		if validator.IsEmpty(item.StaffID) {
			errs.Add(field+".staffId", "staffId is required")
		}
		if !validator.IsInSlice(item.Type, LeaveTypes) {
			errs.Add(field+".type", "invalid leave type")
		}
		if _, ok := validator.IsValidDate(item.Date); !ok {
			errs.Add(field+".date", "invalid date format, use YYYY-MM-DD")
		}
	}

	return errs.Err()
}

type RejectLeaveRequest struct {
	Reason *string `json:"reason,omitempty"`
}

type LeaveFilter struct {
	StaffID *string
	Status  *string
	From    *time.Time
	To      *time.Time
}

func (f *LeaveFilter) Validate() error {
	var errs validator.ValidationErrors
	if f.Status != nil && !validator.IsInSlice(*f.Status, []string{
		string(LeaveStatusPending), string(LeaveStatusApproved), string(LeaveStatusRejected),
	}) {
		errs.Add("status", "invalid status")
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		errs.Add("to", "to must not be before from")
	}
	return errs.Err()
}

type LeaveResponse struct {
	ID        string          `json:"id"`
	StaffID   string          `json:"staffId"`
	StaffName *string         `json:"staffName,omitempty"`
	Type      LeaveType       `json:"type"`
	StartDate string          `json:"startDate"`
	EndDate   string          `json:"endDate"`
	Days      decimal.Decimal `json:"days"`
	Status    LeaveStatus     `json:"status"`
	Note      *string         `json:"note"`
	DecidedBy *string         `json:"decidedBy"`
	DecidedAt *time.Time      `json:"decidedAt"`
	CreatedAt time.Time       `json:"createdAt"`
}

func NewLeaveResponse(r LeaveRecord) LeaveResponse {
	return LeaveResponse{
		ID:        r.ID,
		StaffID:   r.StaffID,
		StaffName: r.StaffName,
		Type:      r.Type,
		StartDate: r.StartDate.Format(validator.DateLayout),
		EndDate:   r.EndDate.Format(validator.DateLayout),
		Days:      r.Days,
		Status:    r.Status,
		Note:      r.Note,
		DecidedBy: r.DecidedBy,
		DecidedAt: r.DecidedAt,
		CreatedAt: r.CreatedAt,
	}
}

type BatchLeaveResponse struct {
	Created []LeaveResponse `json:"created"`
	Skipped int             `json:"skipped"`
}
