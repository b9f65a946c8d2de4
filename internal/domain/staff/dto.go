package staff

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/validator"
)

type StaffFilter struct {
	ZoneID     *string
	ActiveOnly bool
}

// ========== STAFF DTOs ==========

type CreateStaffRequest struct {
	Name               string          `json:"name"`
	ZoneID             *string         `json:"zoneId,omitempty"`
	PayGroupID         *string         `json:"payGroupId,omitempty"`
	HourlyRate         decimal.Decimal `json:"hourlyRate"`
	OvertimeRate       decimal.Decimal `json:"overtimeRate"`
	SundayRate         decimal.Decimal `json:"sundayRate"`
	PublicHolidayRate  decimal.Decimal `json:"publicHolidayRate"`
	HoursPerDay        decimal.Decimal `json:"hoursPerDay"`
	LunchLength        int             `json:"lunchLength"`
	PayeEnabled        *bool           `json:"payeEnabled,omitempty"`
	UIFEnabled         *bool           `json:"uifEnabled,omitempty"`
	SDLEnabled         *bool           `json:"sdlEnabled,omitempty"`
	LoanBalance        decimal.Decimal `json:"loanBalance"`
	SavingsBalance     decimal.Decimal `json:"savingsBalance"`
	AnnualLeaveBalance decimal.Decimal `json:"annualLeaveBalance"`
	SickLeaveBalance   decimal.Decimal `json:"sickLeaveBalance"`
	Deductions         []DeductionSlot `json:"deductions,omitempty"`
	Pension            *PensionSlot    `json:"pension,omitempty"`
	DateOfBirth        *string         `json:"dateOfBirth,omitempty"`
	IsActive           *bool           `json:"isActive,omitempty"`
}

func (r *CreateStaffRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	}
	for field, v := range map[string]decimal.Decimal{
		"hourlyRate":         r.HourlyRate,
		"overtimeRate":       r.OvertimeRate,
		"sundayRate":         r.SundayRate,
		"publicHolidayRate":  r.PublicHolidayRate,
		"hoursPerDay":        r.HoursPerDay,
		"loanBalance":        r.LoanBalance,
		"savingsBalance":     r.SavingsBalance,
		"annualLeaveBalance": r.AnnualLeaveBalance,
		"sickLeaveBalance":   r.SickLeaveBalance,
	} {
		if v.IsNegative() {
			errs.Add(field, "must be non-negative")
		}
	}
	if r.HoursPerDay.GreaterThan(decimal.NewFromInt(24)) {
		errs.Add("hoursPerDay", "must not exceed 24")
	}
	if r.LunchLength < 0 || r.LunchLength > 600 {
		errs.Add("lunchLength", "must be between 0 and 600 minutes")
	}
	if len(r.Deductions) > MaxDeductionSlots {
		errs.Add("deductions", fmt.Sprintf("at most %d deduction slots are allowed", MaxDeductionSlots))
	}
	for i, d := range r.Deductions {
		field := fmt.Sprintf("deductions[%d]", i)
		if validator.IsEmpty(d.Name) {
			errs.Add(field+".name", "name is required")
		}
		if err := d.Value.Validate(); err != nil {
			errs.Add(field+".value", err.Error())
		}
	}
	if r.Pension != nil {
		if err := r.Pension.Employee.Validate(); err != nil {
			errs.Add("pension.employee", err.Error())
		}
		if err := r.Pension.Employer.Validate(); err != nil {
			errs.Add("pension.employer", err.Error())
		}
	}
	if r.DateOfBirth != nil && *r.DateOfBirth != "" {
		if _, ok := validator.IsValidDate(*r.DateOfBirth); !ok {
			errs.Add("dateOfBirth", "invalid date format, use YYYY-MM-DD")
		}
	}

	return errs.Err()
}

// ToEntity builds a normalized Staff from the request. Validate must pass first.
func (r *CreateStaffRequest) ToEntity() Staff {
	s := Staff{
		Name:       r.Name,
		ZoneID:     r.ZoneID,
		PayGroupID: r.PayGroupID,
		Rates: IndividualRates{
			HourlyRate:        r.HourlyRate,
			OvertimeRate:      r.OvertimeRate,
			SundayRate:        r.SundayRate,
			PublicHolidayRate: r.PublicHolidayRate,
			HoursPerDay:       r.HoursPerDay,
		},
		LunchLength:        r.LunchLength,
		PayeEnabled:        boolOr(r.PayeEnabled, true),
		UIFEnabled:         boolOr(r.UIFEnabled, true),
		SDLEnabled:         boolOr(r.SDLEnabled, true),
		LoanBalance:        r.LoanBalance,
		SavingsBalance:     r.SavingsBalance,
		AnnualLeaveBalance: r.AnnualLeaveBalance,
		SickLeaveBalance:   r.SickLeaveBalance,
		Deductions:         r.Deductions,
		Pension:            r.Pension,
		IsActive:           boolOr(r.IsActive, true),
	}
	if r.DateOfBirth != nil && *r.DateOfBirth != "" {
		dob, _ := validator.IsValidDate(*r.DateOfBirth)
		s.DateOfBirth = &dob
	}
	if s.Deductions == nil {
		s.Deductions = []DeductionSlot{}
	}
	s.Normalize()
	return s
}

type UpdateStaffRequest struct {
	ID string `json:"-"`
	CreateStaffRequest
}

type StaffResponse struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	ZoneID             *string         `json:"zoneId"`
	ZoneName           *string         `json:"zoneName,omitempty"`
	PayGroupID         *string         `json:"payGroupId"`
	RateSource         RateSourceKind  `json:"rateSource"`
	HourlyRate         decimal.Decimal `json:"hourlyRate"`
	OvertimeRate       decimal.Decimal `json:"overtimeRate"`
	SundayRate         decimal.Decimal `json:"sundayRate"`
	PublicHolidayRate  decimal.Decimal `json:"publicHolidayRate"`
	HoursPerDay        decimal.Decimal `json:"hoursPerDay"`
	LunchLength        int             `json:"lunchLength"`
	PayeEnabled        bool            `json:"payeEnabled"`
	UIFEnabled         bool            `json:"uifEnabled"`
	SDLEnabled         bool            `json:"sdlEnabled"`
	LoanBalance        decimal.Decimal `json:"loanBalance"`
	SavingsBalance     decimal.Decimal `json:"savingsBalance"`
	AnnualLeaveBalance decimal.Decimal `json:"annualLeaveBalance"`
	SickLeaveBalance   decimal.Decimal `json:"sickLeaveBalance"`
	Deductions         []DeductionSlot `json:"deductions"`
	Pension            *PensionSlot    `json:"pension"`
	DateOfBirth        *string         `json:"dateOfBirth"`
	IsActive           bool            `json:"isActive"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

func NewStaffResponse(s Staff) StaffResponse {
	resp := StaffResponse{
		ID:                 s.ID,
		Name:               s.Name,
		ZoneID:             s.ZoneID,
		ZoneName:           s.ZoneName,
		PayGroupID:         s.PayGroupID,
		RateSource:         s.RateSource().Kind(),
		HourlyRate:         s.Rates.HourlyRate,
		OvertimeRate:       s.Rates.OvertimeRate,
		SundayRate:         s.Rates.SundayRate,
		PublicHolidayRate:  s.Rates.PublicHolidayRate,
		HoursPerDay:        s.Rates.HoursPerDay,
		LunchLength:        s.LunchLength,
		PayeEnabled:        s.PayeEnabled,
		UIFEnabled:         s.UIFEnabled,
		SDLEnabled:         s.SDLEnabled,
		LoanBalance:        s.LoanBalance,
		SavingsBalance:     s.SavingsBalance,
		AnnualLeaveBalance: s.AnnualLeaveBalance,
		SickLeaveBalance:   s.SickLeaveBalance,
		Deductions:         s.Deductions,
		Pension:            s.Pension,
		IsActive:           s.IsActive,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
	if resp.Deductions == nil {
		resp.Deductions = []DeductionSlot{}
	}
	if s.DateOfBirth != nil {
		dob := s.DateOfBirth.Format(validator.DateLayout)
		resp.DateOfBirth = &dob
	}
	return resp
}

// ========== ZONE DTOs ==========

type ZoneRequest struct {
	Name string `json:"name"`
}

func (r *ZoneRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	}
	return errs.Err()
}

type ZoneResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewZoneResponse(z Zone) ZoneResponse {
	return ZoneResponse{ID: z.ID, Name: z.Name, CreatedAt: z.CreatedAt, UpdatedAt: z.UpdatedAt}
}

// ========== PAY GROUP DTOs ==========

type PayGroupRequest struct {
	Name              string           `json:"name"`
	HourlyRate        decimal.Decimal  `json:"hourlyRate"`
	OvertimeRate      *decimal.Decimal `json:"overtimeRate,omitempty"`
	SundayRate        *decimal.Decimal `json:"sundayRate,omitempty"`
	PublicHolidayRate *decimal.Decimal `json:"publicHolidayRate,omitempty"`
	HoursPerDay       *decimal.Decimal `json:"hoursPerDay,omitempty"`
}

func (r *PayGroupRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	}
	if r.HourlyRate.IsNegative() {
		errs.Add("hourlyRate", "must be non-negative")
	}
	for field, v := range map[string]*decimal.Decimal{
		"overtimeRate":      r.OvertimeRate,
		"sundayRate":        r.SundayRate,
		"publicHolidayRate": r.PublicHolidayRate,
		"hoursPerDay":       r.HoursPerDay,
	} {
		if v != nil && !v.IsPositive() {
			errs.Add(field, "must be greater than zero")
		}
	}
	if r.HoursPerDay != nil && r.HoursPerDay.GreaterThan(decimal.NewFromInt(24)) {
		errs.Add("hoursPerDay", "must not exceed 24")
	}

	return errs.Err()
}

// ToEntity fills unset multipliers with the defaults.
func (r *PayGroupRequest) ToEntity() PayGroup {
	return PayGroup{
		Name:              r.Name,
		HourlyRate:        r.HourlyRate,
		OvertimeRate:      decimalOr(r.OvertimeRate, DefaultOvertimeRate),
		SundayRate:        decimalOr(r.SundayRate, DefaultSundayRate),
		PublicHolidayRate: decimalOr(r.PublicHolidayRate, DefaultPublicHolidayRate),
		HoursPerDay:       decimalOr(r.HoursPerDay, DefaultHoursPerDay),
	}
}

type PayGroupResponse struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	HourlyRate        decimal.Decimal `json:"hourlyRate"`
	OvertimeRate      decimal.Decimal `json:"overtimeRate"`
	SundayRate        decimal.Decimal `json:"sundayRate"`
	PublicHolidayRate decimal.Decimal `json:"publicHolidayRate"`
	HoursPerDay       decimal.Decimal `json:"hoursPerDay"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

func NewPayGroupResponse(g PayGroup) PayGroupResponse {
	return PayGroupResponse{
		ID:                g.ID,
		Name:              g.Name,
		HourlyRate:        g.HourlyRate,
		OvertimeRate:      g.OvertimeRate,
		SundayRate:        g.SundayRate,
		PublicHolidayRate: g.PublicHolidayRate,
		HoursPerDay:       g.HoursPerDay,
		CreatedAt:         g.CreatedAt,
		UpdatedAt:         g.UpdatedAt,
	}
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func decimalOr(v *decimal.Decimal, def decimal.Decimal) decimal.Decimal {
	if v == nil {
		return def
	}
	return *v
}
