package leave

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/validator"
)

type LeaveType string

const (
	LeaveTypeAnnual        LeaveType = "annual"
	LeaveTypeUnpaid        LeaveType = "unpaid"
	LeaveTypeSick          LeaveType = "sick"
	LeaveTypeCompassionate LeaveType = "compassionate"
	LeaveTypeCustomPaid    LeaveType = "custom_paid"
	LeaveTypeCustomUnpaid  LeaveType = "custom_unpaid"
)

var LeaveTypes = []string{
	string(LeaveTypeAnnual),
	string(LeaveTypeUnpaid),
	string(LeaveTypeSick),
	string(LeaveTypeCompassionate),
	string(LeaveTypeCustomPaid),
	string(LeaveTypeCustomUnpaid),
}

// IsPaid reports whether an approved day of this type accrues leave pay.
func (t LeaveType) IsPaid() bool {
	switch t {
	case LeaveTypeAnnual, LeaveTypeSick, LeaveTypeCompassionate, LeaveTypeCustomPaid:
		return true
	}
	return false
}

type LeaveStatus string

const (
	LeaveStatusPending  LeaveStatus = "pending"
	LeaveStatusApproved LeaveStatus = "approved"
	LeaveStatusRejected LeaveStatus = "rejected"
)

type LeaveRecord struct {
	ID        string
	StaffID   string
	Type      LeaveType
	StartDate time.Time
	EndDate   time.Time
	Days      decimal.Decimal
	Status    LeaveStatus
	Note      *string
	DecidedBy *string
	DecidedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time

	// Joined fields
	StaffName *string
}

// Covers reports whether the record spans the given calendar date.
func (r LeaveRecord) Covers(date time.Time) bool {
	d := date.Format(validator.DateLayout)
	return d >= r.StartDate.Format(validator.DateLayout) && d <= r.EndDate.Format(validator.DateLayout)
}

// Set indexes approved leave by staff member and date.
type Set map[string]map[string]LeaveRecord

func NewSet(records []LeaveRecord) Set {
	set := make(Set)
	for _, r := range records {
		if r.Status != LeaveStatusApproved {
			continue
		}
		days, ok := set[r.StaffID]
		if !ok {
			days = make(map[string]LeaveRecord)
			set[r.StaffID] = days
		}
		for d := r.StartDate; !d.After(r.EndDate); d = d.AddDate(0, 0, 1) {
			days[d.Format(validator.DateLayout)] = r
		}
	}
	return set
}

// On returns the approved leave a staff member has on date.
func (s Set) On(staffID string, date time.Time) (LeaveRecord, bool) {
	r, ok := s[staffID][date.Format(validator.DateLayout)]
	return r, ok
}
