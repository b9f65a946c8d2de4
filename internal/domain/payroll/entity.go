package payroll

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/staffpay/staffpay-backend-go/internal/domain/staff"
)

// Flag marks an anomaly on a day or staff result. Flags are data, not errors:
// they never stop a preview from being generated.
type Flag string

const (
	FlagAbsent           Flag = "absent"
	FlagStaleShift       Flag = "stale_shift"
	FlagAutoSignedIn     Flag = "auto_signed_in"
	FlagIncompleteShift  Flag = "incomplete_shift"
	FlagPayGroupMissing  Flag = "pay_group_missing"
	FlagTaxConfigMissing Flag = "tax_config_missing"
	FlagMaxRegularHours  Flag = "max_regular_hours"
	FlagMaxOvertimeHours Flag = "max_overtime_hours"
	FlagMaxSundayHours   Flag = "max_sunday_hours"
	FlagMaxHolidayHours  Flag = "max_holiday_hours"
	FlagMaxTotalOwed     Flag = "max_total_owed"
)

// Rates are the effective pay rates for one staff member.
type Rates struct {
	HourlyRate         decimal.Decimal      `json:"hourlyRate"`
	OvertimeMultiplier decimal.Decimal      `json:"overtimeMultiplier"`
	SundayMultiplier   decimal.Decimal      `json:"sundayMultiplier"`
	HolidayMultiplier  decimal.Decimal      `json:"holidayMultiplier"`
	HoursPerDay        decimal.Decimal      `json:"hoursPerDay"`
	Source             staff.RateSourceKind `json:"source"`
	PayGroupID         *string              `json:"payGroupId,omitempty"`
}

type HourBuckets struct {
	Regular  decimal.Decimal `json:"regularHours"`
	Overtime decimal.Decimal `json:"overtimeHours"`
	Sunday   decimal.Decimal `json:"sundayHours"`
	Holiday  decimal.Decimal `json:"holidayHours"`
}

func (b HourBuckets) Add(o HourBuckets) HourBuckets {
	return HourBuckets{
		Regular:  b.Regular.Add(o.Regular),
		Overtime: b.Overtime.Add(o.Overtime),
		Sunday:   b.Sunday.Add(o.Sunday),
		Holiday:  b.Holiday.Add(o.Holiday),
	}
}

func (b HourBuckets) Total() decimal.Decimal {
	return b.Regular.Add(b.Overtime).Add(b.Sunday).Add(b.Holiday)
}

// DayResult is the classified outcome of one staff member's day.
type DayResult struct {
	Date            string `json:"date"`
	DayOfWeek       int    `json:"dayOfWeek"`
	SundayDayOfWeek int    `json:"sundayDayOfWeek"`
	HourBuckets
	SignIn              *time.Time `json:"signIn,omitempty"`
	SignOut             *time.Time `json:"signOut,omitempty"`
	ShiftStart          *string    `json:"shiftStart,omitempty"`
	ShiftEnd            *string    `json:"shiftEnd,omitempty"`
	LunchMinutes        int        `json:"lunchMinutes"`
	TrimmedEarlyMinutes int        `json:"trimmedEarlyMinutes"`
	TrimmedLateMinutes  int        `json:"trimmedLateMinutes"`
	IsHoliday           bool       `json:"isHoliday"`
	OnLeave             bool       `json:"onLeave"`
	LeaveType           *string    `json:"leaveType,omitempty"`
	InProgress          bool       `json:"inProgress"`
	Flags               []Flag     `json:"flags"`
	IsEdited            bool       `json:"isEdited"`
	EditedBy            *string    `json:"editedBy,omitempty"`
	EditedAt            *time.Time `json:"editedAt,omitempty"`
	Note                *string    `json:"note,omitempty"`
}

// DailyOverride replaces the buckets it sets on one staff member's day. It is
// stored apart from computed output and survives recalculation.
type DailyOverride struct {
	StaffID  string
	Date     time.Time
	Regular  *decimal.Decimal
	Overtime *decimal.Decimal
	Sunday   *decimal.Decimal
	Holiday  *decimal.Decimal
	Note     *string
	Author   string
	EditedAt time.Time
}

// Apply merges the override onto a computed day. An edited day is treated as
// reviewed, so its anomaly flags are cleared.
func (o DailyOverride) Apply(day DayResult) DayResult {
	if o.Regular != nil {
		day.Regular = o.Regular.Round(2)
	}
	if o.Overtime != nil {
		day.Overtime = o.Overtime.Round(2)
	}
	if o.Sunday != nil {
		day.Sunday = o.Sunday.Round(2)
	}
	if o.Holiday != nil {
		day.Holiday = o.Holiday.Round(2)
	}
	author := o.Author
	editedAt := o.EditedAt
	day.IsEdited = true
	day.EditedBy = &author
	day.EditedAt = &editedAt
	day.Note = o.Note
	day.Flags = []Flag{}
	return day
}

// ========== TAX CONFIG ==========

type Bracket struct {
	Min     decimal.Decimal  `json:"min"`
	Max     *decimal.Decimal `json:"max"` // nil is unbounded
	Rate    decimal.Decimal  `json:"rate"`
	BaseTax decimal.Decimal  `json:"baseTax"`
}

// Contains reports whether min <= annual <= max.
func (b Bracket) Contains(annual decimal.Decimal) bool {
	if annual.LessThan(b.Min) {
		return false
	}
	return b.Max == nil || annual.LessThanOrEqual(*b.Max)
}

type TaxConfig struct {
	TaxYear            int
	Brackets           []Bracket
	RebatePrimary      decimal.Decimal
	RebateSecondary    decimal.Decimal
	RebateTertiary     decimal.Decimal
	UIFRate            decimal.Decimal
	UIFCeiling         decimal.Decimal
	SDLRate            decimal.Decimal
	SDLExemptThreshold decimal.Decimal
	UpdatedAt          time.Time
}

// BracketFor returns the first bracket containing annual.
func (c TaxConfig) BracketFor(annual decimal.Decimal) (Bracket, bool) {
	for _, b := range c.Brackets {
		if b.Contains(annual) {
			return b, true
		}
	}
	return Bracket{}, false
}

// Validate returns a *ConfigurationError describing the first problem found.
func (c TaxConfig) Validate() error {
	one := decimal.NewFromInt(1)

	if len(c.Brackets) == 0 {
		return &ConfigurationError{Reason: "tax config has no brackets"}
	}
	if !c.Brackets[0].Min.IsZero() {
		return &ConfigurationError{Reason: "first tax bracket must start at 0"}
	}
	for i, b := range c.Brackets {
		if b.Rate.IsNegative() || b.Rate.GreaterThan(one) {
			return &ConfigurationError{Reason: "tax bracket rate must be between 0 and 1"}
		}
		if b.BaseTax.IsNegative() {
			return &ConfigurationError{Reason: "tax bracket base tax must be non-negative"}
		}
		last := i == len(c.Brackets)-1
		if b.Max == nil {
			if !last {
				return &ConfigurationError{Reason: "only the last tax bracket may be unbounded"}
			}
			continue
		}
		if !b.Max.GreaterThan(b.Min) {
			return &ConfigurationError{Reason: "tax bracket max must exceed min"}
		}
		if !last && !c.Brackets[i+1].Min.Equal(*b.Max) {
			return &ConfigurationError{Reason: "tax brackets must be contiguous"}
		}
	}
	if c.Brackets[len(c.Brackets)-1].Max != nil {
		return &ConfigurationError{Reason: "last tax bracket must be unbounded"}
	}
	for _, v := range []decimal.Decimal{c.RebatePrimary, c.RebateSecondary, c.RebateTertiary, c.UIFCeiling, c.SDLExemptThreshold} {
		if v.IsNegative() {
			return &ConfigurationError{Reason: "rebates, UIF ceiling and SDL threshold must be non-negative"}
		}
	}
	for _, v := range []decimal.Decimal{c.UIFRate, c.SDLRate} {
		if v.IsNegative() || v.GreaterThan(one) {
			return &ConfigurationError{Reason: "UIF and SDL rates must be between 0 and 1"}
		}
	}
	return nil
}

// ========== RUNS ==========

type RunStatus string

const (
	RunStatusDraft     RunStatus = "draft"
	RunStatusFinalized RunStatus = "finalized"
)

type Run struct {
	ID          string
	PeriodStart time.Time
	PeriodEnd   time.Time
	Status      RunStatus
	FinalizedAt *time.Time
	FinalizedBy *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type NamedAmount struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

type DeductionBreakdown struct {
	PAYE            decimal.Decimal `json:"paye"`
	UIFEmployee     decimal.Decimal `json:"uifEmployee"`
	Custom          []NamedAmount   `json:"custom"`
	PensionEmployee decimal.Decimal `json:"pensionEmployee"`
	Total           decimal.Decimal `json:"total"`
}

type EmployerContributions struct {
	UIF     decimal.Decimal `json:"uif"`
	SDL     decimal.Decimal `json:"sdl"`
	Pension decimal.Decimal `json:"pension"`
	Total   decimal.Decimal `json:"total"`
}

// Snapshot freezes everything a payslip was computed from.
type Snapshot struct {
	StaffName       string                `json:"staffName"`
	ZoneName        string                `json:"zoneName"`
	Rates           Rates                 `json:"rates"`
	LeavePay        decimal.Decimal       `json:"leavePay"`
	LeaveDays       int                   `json:"leaveDays"`
	Deductions      DeductionBreakdown    `json:"deductions"`
	Employer        EmployerContributions `json:"employer"`
	Flags           []Flag                `json:"flags"`
	Days            []DayResult           `json:"days"`
	SettingsVersion int64                 `json:"settingsVersion"`
	TaxYear         int                   `json:"taxYear"`
}

type Payslip struct {
	ID        string
	RunID     string
	StaffID   string
	ZoneID    *string
	StaffName string
	HourBuckets
	GrossPay   decimal.Decimal
	Deductions decimal.Decimal
	NetPay     decimal.Decimal
	Snapshot   Snapshot
	CreatedAt  time.Time
}
