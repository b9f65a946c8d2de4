package payroll

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/validator"
)

// MaxPeriodDays bounds preview and run periods.
const MaxPeriodDays = 93

func validatePeriod(errs *validator.ValidationErrors, startField, start, endField, end string) (time.Time, time.Time) {
	s, ok := validator.IsValidDate(start)
	if !ok {
		errs.Add(startField, "invalid date format, use YYYY-MM-DD")
	}
	e, ok2 := validator.IsValidDate(end)
	if !ok2 {
		errs.Add(endField, "invalid date format, use YYYY-MM-DD")
	}
	if ok && ok2 {
		if e.Before(s) {
			errs.Add(endField, endField+" must not be before "+startField)
		} else if e.Sub(s) >= MaxPeriodDays*24*time.Hour {
			errs.Add(endField, "period must not exceed 93 days")
		}
	}
	return s, e
}

// ========== PREVIEW DTOs ==========

type PreviewRequest struct {
	Start  string
	End    string
	ZoneID *string
}

func (r *PreviewRequest) Validate() error {
	var errs validator.ValidationErrors
	validatePeriod(&errs, "start", r.Start, "end", r.End)
	return errs.Err()
}

// Period parses the validated dates.
func (r *PreviewRequest) Period() (time.Time, time.Time) {
	s, _ := validator.IsValidDate(r.Start)
	e, _ := validator.IsValidDate(r.End)
	return s, e
}

// Totals sums hours and money over a set of staff results.
type Totals struct {
	GrandTotal         decimal.Decimal `json:"grandTotal"`
	TotalLeavePay      decimal.Decimal `json:"totalLeavePay"`
	TotalRegularHours  decimal.Decimal `json:"totalRegularHours"`
	TotalOvertimeHours decimal.Decimal `json:"totalOvertimeHours"`
	TotalSundayHours   decimal.Decimal `json:"totalSundayHours"`
	TotalHolidayHours  decimal.Decimal `json:"totalHolidayHours"`
	TotalStaff         int             `json:"totalStaff"`
	TotalPaye          decimal.Decimal `json:"totalPaye"`
	TotalUif           decimal.Decimal `json:"totalUif"`
	TotalUifEmployer   decimal.Decimal `json:"totalUifEmployer"`
	TotalSdl           decimal.Decimal `json:"totalSdl"`
	TotalDeductions    decimal.Decimal `json:"totalDeductions"`
	TotalNet           decimal.Decimal `json:"totalNet"`
}

func (t *Totals) AddStaff(s StaffPreview) {
	t.GrandTotal = t.GrandTotal.Add(s.GrossPay)
	t.TotalLeavePay = t.TotalLeavePay.Add(s.LeavePay)
	t.TotalRegularHours = t.TotalRegularHours.Add(s.Regular)
	t.TotalOvertimeHours = t.TotalOvertimeHours.Add(s.Overtime)
	t.TotalSundayHours = t.TotalSundayHours.Add(s.Sunday)
	t.TotalHolidayHours = t.TotalHolidayHours.Add(s.Holiday)
	t.TotalStaff++
	t.TotalPaye = t.TotalPaye.Add(s.Deductions.PAYE)
	t.TotalUif = t.TotalUif.Add(s.Deductions.UIFEmployee)
	t.TotalUifEmployer = t.TotalUifEmployer.Add(s.Employer.UIF)
	t.TotalSdl = t.TotalSdl.Add(s.Employer.SDL)
	t.TotalDeductions = t.TotalDeductions.Add(s.Deductions.Total)
	t.TotalNet = t.TotalNet.Add(s.NetPay)
}

type StaffPreview struct {
	StaffID  string `json:"staffId"`
	Name     string `json:"name"`
	ZoneID   string `json:"zoneId"`
	ZoneName string `json:"zoneName"`
	Rates    Rates  `json:"rates"`
	HourBuckets
	GrossPay   decimal.Decimal       `json:"grossPay"`
	LeavePay   decimal.Decimal       `json:"leavePay"`
	LeaveDays  int                   `json:"leaveDays"`
	Deductions DeductionBreakdown    `json:"deductions"`
	Employer   EmployerContributions `json:"employer"`
	NetPay     decimal.Decimal       `json:"netPay"`
	Flags      []Flag                `json:"flags"`
	HasFlagged bool                  `json:"hasFlagged"`
	Days       []DayResult           `json:"days"`
}

type ZonePreview struct {
	ZoneID   string         `json:"zoneId"`
	ZoneName string         `json:"zoneName"`
	Staff    []StaffPreview `json:"staff"`
	Totals
	HasFlagged bool `json:"hasFlagged"`
}

type PayrollPreview struct {
	PeriodStart string        `json:"periodStart"`
	PeriodEnd   string        `json:"periodEnd"`
	Zones       []ZonePreview `json:"zones"`
	Totals
	HasFlagged    bool  `json:"hasFlagged"`
	GeneratedFrom int64 `json:"generatedFrom"`
	TaxYear       int   `json:"taxYear"`
}

// ========== DAILY OVERRIDE DTOs ==========

type OverrideUpdates struct {
	RegularHours  *decimal.Decimal `json:"regularHours,omitempty"`
	OvertimeHours *decimal.Decimal `json:"overtimeHours,omitempty"`
	SundayHours   *decimal.Decimal `json:"sundayHours,omitempty"`
	HolidayHours  *decimal.Decimal `json:"holidayHours,omitempty"`
}

type DailyOverrideRequest struct {
	StaffID string          `json:"staffId"`
	Date    string          `json:"date"`
	Updates OverrideUpdates `json:"updates"`
	Note    *string         `json:"note,omitempty"`
	Author  string          `json:"author"`
}

func (r *DailyOverrideRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.StaffID) {
		errs.Add("staffId", "staffId is required")
	}
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs.Add("date", "invalid date format, use YYYY-MM-DD")
	}
	if validator.IsEmpty(r.Author) {
		errs.Add("author", "author is required")
	}

	day := decimal.NewFromInt(24)
	set := 0
	for field, v := range map[string]*decimal.Decimal{
		"updates.regularHours":  r.Updates.RegularHours,
		"updates.overtimeHours": r.Updates.OvertimeHours,
		"updates.sundayHours":   r.Updates.SundayHours,
		"updates.holidayHours":  r.Updates.HolidayHours,
	} {
		if v == nil {
			continue
		}
		set++
		if v.IsNegative() || v.GreaterThan(day) {
			errs.Add(field, "must be between 0 and 24")
		}
	}
	if set == 0 {
		errs.Add("updates", "at least one hour bucket must be set")
	}

	return errs.Err()
}

type DailyOverrideResponse struct {
	StaffID       string           `json:"staffId"`
	Date          string           `json:"date"`
	RegularHours  *decimal.Decimal `json:"regularHours"`
	OvertimeHours *decimal.Decimal `json:"overtimeHours"`
	SundayHours   *decimal.Decimal `json:"sundayHours"`
	HolidayHours  *decimal.Decimal `json:"holidayHours"`
	Note          *string          `json:"note"`
	EditedBy      string           `json:"editedBy"`
	EditedAt      time.Time        `json:"editedAt"`
}

func NewDailyOverrideResponse(o DailyOverride) DailyOverrideResponse {
	return DailyOverrideResponse{
		StaffID:       o.StaffID,
		Date:          o.Date.Format(validator.DateLayout),
		RegularHours:  o.Regular,
		OvertimeHours: o.Overtime,
		SundayHours:   o.Sunday,
		HolidayHours:  o.Holiday,
		Note:          o.Note,
		EditedBy:      o.Author,
		EditedAt:      o.EditedAt,
	}
}

type ResetOverrideRequest struct {
	StaffID string
	Date    string
	Author  string
}

func (r *ResetOverrideRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.StaffID) {
		errs.Add("staffId", "staffId is required")
	}
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs.Add("date", "invalid date format, use YYYY-MM-DD")
	}
	return errs.Err()
}

// ========== RUN DTOs ==========

type CreateRunRequest struct {
	PeriodStart string `json:"periodStart"`
	PeriodEnd   string `json:"periodEnd"`
}

func (r *CreateRunRequest) Validate() error {
	var errs validator.ValidationErrors
	validatePeriod(&errs, "periodStart", r.PeriodStart, "periodEnd", r.PeriodEnd)
	return errs.Err()
}

type LockRunRequest struct {
	RunID            string `json:"-"`
	Actor            string `json:"-"`
	AcknowledgeFlags bool   `json:"acknowledgeFlags"`
}

type PayslipResponse struct {
	ID        string  `json:"id"`
	StaffID   string  `json:"staffId"`
	ZoneID    *string `json:"zoneId"`
	StaffName string  `json:"staffName"`
	HourBuckets
	GrossPay   decimal.Decimal `json:"grossPay"`
	Deductions decimal.Decimal `json:"deductions"`
	NetPay     decimal.Decimal `json:"netPay"`
	Snapshot   Snapshot        `json:"snapshotData"`
}

func NewPayslipResponse(p Payslip) PayslipResponse {
	return PayslipResponse{
		ID:          p.ID,
		StaffID:     p.StaffID,
		ZoneID:      p.ZoneID,
		StaffName:   p.StaffName,
		HourBuckets: p.HourBuckets,
		GrossPay:    p.GrossPay,
		Deductions:  p.Deductions,
		NetPay:      p.NetPay,
		Snapshot:    p.Snapshot,
	}
}

type RunResponse struct {
	ID          string            `json:"id"`
	PeriodStart string            `json:"periodStart"`
	PeriodEnd   string            `json:"periodEnd"`
	Status      RunStatus         `json:"status"`
	FinalizedAt *time.Time        `json:"finalizedAt"`
	FinalizedBy *string           `json:"finalizedBy"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
	Payslips    []PayslipResponse `json:"payslips,omitempty"`
	Totals      *Totals           `json:"totals,omitempty"`
	HasFlagged  bool              `json:"hasFlagged"`
}

func NewRunResponse(r Run, payslips []Payslip) RunResponse {
	resp := RunResponse{
		ID:          r.ID,
		PeriodStart: r.PeriodStart.Format(validator.DateLayout),
		PeriodEnd:   r.PeriodEnd.Format(validator.DateLayout),
		Status:      r.Status,
		FinalizedAt: r.FinalizedAt,
		FinalizedBy: r.FinalizedBy,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if payslips == nil {
		return resp
	}

	var totals Totals
	resp.Payslips = make([]PayslipResponse, 0, len(payslips))
	for _, p := range payslips {
		resp.Payslips = append(resp.Payslips, NewPayslipResponse(p))
		totals.AddStaff(StaffPreview{
			HourBuckets: p.HourBuckets,
			GrossPay:    p.GrossPay,
			LeavePay:    p.Snapshot.LeavePay,
			Deductions:  p.Snapshot.Deductions,
			Employer:    p.Snapshot.Employer,
			NetPay:      p.NetPay,
		})
		if len(p.Snapshot.Flags) > 0 {
			resp.HasFlagged = true
		}
	}
	resp.Totals = &totals
	return resp
}

type ExportFile struct {
	Name        string
	ContentType string
	Content     []byte
}

// ========== TAX CONFIG DTOs ==========

type TaxConfigRequest struct {
	TaxYear            int             `json:"taxYear"`
	Brackets           []Bracket       `json:"brackets"`
	RebatePrimary      decimal.Decimal `json:"rebatePrimary"`
	RebateSecondary    decimal.Decimal `json:"rebateSecondary"`
	RebateTertiary     decimal.Decimal `json:"rebateTertiary"`
	UIFRate            decimal.Decimal `json:"uifRate"`
	UIFCeiling         decimal.Decimal `json:"uifCeiling"`
	SDLRate            decimal.Decimal `json:"sdlRate"`
	SDLExemptThreshold decimal.Decimal `json:"sdlExemptThreshold"`
}

func (r *TaxConfigRequest) ToEntity() TaxConfig {
	return TaxConfig{
		TaxYear:            r.TaxYear,
		Brackets:           r.Brackets,
		RebatePrimary:      r.RebatePrimary,
		RebateSecondary:    r.RebateSecondary,
		RebateTertiary:     r.RebateTertiary,
		UIFRate:            r.UIFRate,
		UIFCeiling:         r.UIFCeiling,
		SDLRate:            r.SDLRate,
		SDLExemptThreshold: r.SDLExemptThreshold,
	}
}

// Validate checks the request shape; bracket consistency is reported by
// TaxConfig.Validate as a configuration error.
func (r *TaxConfigRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.TaxYear < 2000 || r.TaxYear > 2100 {
		errs.Add("taxYear", "taxYear must be between 2000 and 2100")
	}
	if len(r.Brackets) == 0 {
		errs.Add("brackets", "at least one bracket is required")
	}
	return errs.Err()
}

type TaxConfigResponse struct {
	TaxYear            int             `json:"taxYear"`
	Brackets           []Bracket       `json:"brackets"`
	RebatePrimary      decimal.Decimal `json:"rebatePrimary"`
	RebateSecondary    decimal.Decimal `json:"rebateSecondary"`
	RebateTertiary     decimal.Decimal `json:"rebateTertiary"`
	UIFRate            decimal.Decimal `json:"uifRate"`
	UIFCeiling         decimal.Decimal `json:"uifCeiling"`
	SDLRate            decimal.Decimal `json:"sdlRate"`
	SDLExemptThreshold decimal.Decimal `json:"sdlExemptThreshold"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

func NewTaxConfigResponse(c TaxConfig) TaxConfigResponse {
	return TaxConfigResponse{
		TaxYear:            c.TaxYear,
		Brackets:           c.Brackets,
		RebatePrimary:      c.RebatePrimary,
		RebateSecondary:    c.RebateSecondary,
		RebateTertiary:     c.RebateTertiary,
		UIFRate:            c.UIFRate,
		UIFCeiling:         c.UIFCeiling,
		SDLRate:            c.SDLRate,
		SDLExemptThreshold: c.SDLExemptThreshold,
		UpdatedAt:          c.UpdatedAt,
	}
}
