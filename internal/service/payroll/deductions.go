package payroll

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/staffpay/staffpay-backend-go/internal/domain/payroll"
	"github.com/staffpay/staffpay-backend-go/internal/domain/staff"
)

// Monthly PAYE is projected from the hourly rate over a standard month.
var (
	standardMonthHours = decimal.NewFromInt(160)
	monthsPerYear      = decimal.NewFromInt(12)
)

// Rebate age bands.
const (
	secondaryRebateAge = 65
	tertiaryRebateAge  = 75
)

// ComputePAYE returns monthly PAYE for an hourly rate. Rebates are cumulative:
// primary always, secondary from 65 and tertiary from 75. Without a known age
// only the primary rebate applies.
func ComputePAYE(hourlyRate decimal.Decimal, age int, ageKnown bool, cfg payroll.TaxConfig) decimal.Decimal {
	annual := hourlyRate.Mul(standardMonthHours).Mul(monthsPerYear)

	bracket, ok := cfg.BracketFor(annual)
	if !ok {
		return decimal.Zero
	}
	tax := bracket.BaseTax.Add(annual.Sub(bracket.Min).Mul(bracket.Rate))

	rebate := cfg.RebatePrimary
	if ageKnown && age >= secondaryRebateAge {
		rebate = rebate.Add(cfg.RebateSecondary)
	}
	if ageKnown && age >= tertiaryRebateAge {
		rebate = rebate.Add(cfg.RebateTertiary)
	}

	monthly := tax.Sub(rebate).Div(monthsPerYear).Round(2)
	if monthly.IsNegative() {
		return decimal.Zero
	}
	return monthly
}

// ComputeUIF returns the employee share, which the employer matches.
func ComputeUIF(gross decimal.Decimal, cfg payroll.TaxConfig) decimal.Decimal {
	return decimal.Min(gross, cfg.UIFCeiling).Mul(cfg.UIFRate).Round(2)
}

// ComputeSDL is the levy on one staff member's gross, before the org-wide
// exemption check.
func ComputeSDL(gross decimal.Decimal, cfg payroll.TaxConfig) decimal.Decimal {
	return gross.Mul(cfg.SDLRate).Round(2)
}

// ComputeDeductions builds the employee deductions and employer contributions
// for one staff member, except SDL which needs the period-wide levy base. A nil
// cfg yields zero statutory amounts.
func ComputeDeductions(gross, hourlyRate decimal.Decimal, s staff.Staff, cfg *payroll.TaxConfig, asOf time.Time) (payroll.DeductionBreakdown, payroll.EmployerContributions) {
	d := payroll.DeductionBreakdown{
		PAYE:            decimal.Zero,
		UIFEmployee:     decimal.Zero,
		Custom:          []payroll.NamedAmount{},
		PensionEmployee: decimal.Zero,
	}
	e := payroll.EmployerContributions{
		UIF:     decimal.Zero,
		SDL:     decimal.Zero,
		Pension: decimal.Zero,
	}

	if cfg != nil && gross.IsPositive() {
		if s.PayeEnabled {
			age, known := s.AgeOn(asOf)
			d.PAYE = ComputePAYE(hourlyRate, age, known, *cfg)
		}
		if s.UIFEnabled {
			d.UIFEmployee = ComputeUIF(gross, *cfg)
			e.UIF = d.UIFEmployee
		}
	}

	// Nothing is withheld from a period without earnings; slots still list at zero.
	for _, slot := range s.Deductions {
		amount := decimal.Zero
		if gross.IsPositive() {
			amount = slot.Value.Resolve(gross)
		}
		d.Custom = append(d.Custom, payroll.NamedAmount{Name: slot.Name, Amount: amount})
	}
	if s.Pension != nil && gross.IsPositive() {
		d.PensionEmployee = s.Pension.Employee.Resolve(gross)
		e.Pension = s.Pension.Employer.Resolve(gross)
	}

	d.Total = d.PAYE.Add(d.UIFEmployee).Add(d.PensionEmployee)
	for _, c := range d.Custom {
		d.Total = d.Total.Add(c.Amount)
	}
	e.Total = e.UIF.Add(e.SDL).Add(e.Pension)
	return d, e
}
