package staff

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxDeductionSlots is the number of configurable deduction slots per staff member.
const MaxDeductionSlots = 4

// Default multipliers applied when an individually-rated staff member leaves a field unset.
var (
	DefaultOvertimeRate      = decimal.RequireFromString("1.5")
	DefaultSundayRate        = decimal.NewFromInt(2)
	DefaultPublicHolidayRate = decimal.NewFromInt(2)
	DefaultHoursPerDay       = decimal.NewFromInt(8)
)

// Zone groups staff for rostering and reporting.
type Zone struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PayGroup holds rates shared by every staff member that references it.
type PayGroup struct {
	ID                string
	Name              string
	HourlyRate        decimal.Decimal
	OvertimeRate      decimal.Decimal
	SundayRate        decimal.Decimal
	PublicHolidayRate decimal.Decimal
	HoursPerDay       decimal.Decimal
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IndividualRates are the per-staff rate fields used when no pay group is set.
type IndividualRates struct {
	HourlyRate        decimal.Decimal
	OvertimeRate      decimal.Decimal
	SundayRate        decimal.Decimal
	PublicHolidayRate decimal.Decimal
	HoursPerDay       decimal.Decimal
}

// DeductionSlot is one named custom deduction.
type DeductionSlot struct {
	Name  string         `json:"name"`
	Value DeductionValue `json:"value"`
}

// PensionSlot carries separate employee and employer contributions.
type PensionSlot struct {
	Name     string         `json:"name"`
	Employee DeductionValue `json:"employee"`
	Employer DeductionValue `json:"employer"`
}

type Staff struct {
	ID                 string
	Name               string
	ZoneID             *string
	PayGroupID         *string
	Rates              IndividualRates
	LunchLength        int // minutes
	PayeEnabled        bool
	UIFEnabled         bool
	SDLEnabled         bool
	LoanBalance        decimal.Decimal
	SavingsBalance     decimal.Decimal
	AnnualLeaveBalance decimal.Decimal
	SickLeaveBalance   decimal.Decimal
	Deductions         []DeductionSlot
	Pension            *PensionSlot
	DateOfBirth        *time.Time
	IsActive           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// Joined fields
	ZoneName *string
}

// RateSource reports where the staff member's rates come from.
func (s Staff) RateSource() RateSource {
	if s.PayGroupID != nil && *s.PayGroupID != "" {
		return Grouped(*s.PayGroupID)
	}
	return Individual(s.Rates)
}

// Normalize clears the individual rate fields of grouped staff.
func (s *Staff) Normalize() {
	if s.PayGroupID != nil && *s.PayGroupID == "" {
		s.PayGroupID = nil
	}
	if s.ZoneID != nil && *s.ZoneID == "" {
		s.ZoneID = nil
	}
	if s.PayGroupID != nil {
		s.Rates = IndividualRates{}
	}
}

// AgeOn returns the staff member's age in whole years on the given date, or
// false when no date of birth is recorded.
func (s Staff) AgeOn(at time.Time) (int, bool) {
	if s.DateOfBirth == nil {
		return 0, false
	}
	dob := *s.DateOfBirth
	age := at.Year() - dob.Year()
	if at.Month() < dob.Month() || (at.Month() == dob.Month() && at.Day() < dob.Day()) {
		age--
	}
	if age < 0 {
		age = 0
	}
	return age, true
}

// ========== RATE SOURCE ==========

type RateSourceKind string

const (
	RateSourceIndividual RateSourceKind = "individual"
	RateSourceGrouped    RateSourceKind = "grouped"
)

// RateSource is either Individual(rates) or Grouped(payGroupID). The zero value
// is an individual source with unset rates.
type RateSource struct {
	kind       RateSourceKind
	rates      IndividualRates
	payGroupID string
}

func Individual(rates IndividualRates) RateSource {
	return RateSource{kind: RateSourceIndividual, rates: rates}
}

func Grouped(payGroupID string) RateSource {
	return RateSource{kind: RateSourceGrouped, payGroupID: payGroupID}
}

func (r RateSource) Kind() RateSourceKind {
	if r.kind == "" {
		return RateSourceIndividual
	}
	return r.kind
}

// PayGroupID returns the referenced pay group for grouped sources.
func (r RateSource) PayGroupID() (string, bool) {
	return r.payGroupID, r.Kind() == RateSourceGrouped
}

// IndividualRates returns the individual rates for individual sources.
func (r RateSource) IndividualRates() (IndividualRates, bool) {
	return r.rates, r.Kind() == RateSourceIndividual
}
