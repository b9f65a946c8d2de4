package payroll

import (
	"github.com/shopspring/decimal"
	"github.com/staffpay/staffpay-backend-go/internal/domain/payroll"
	"github.com/staffpay/staffpay-backend-go/internal/domain/staff"
)

// ResolveRates returns the effective rates for s. A pay group reference wins
// over individual fields; a dangling reference falls back to the individual
// fields and raises pay_group_missing.
func ResolveRates(s staff.Staff, groups map[string]staff.PayGroup) (payroll.Rates, []payroll.Flag) {
	source := s.RateSource()

	if groupID, ok := source.PayGroupID(); ok {
		if g, found := groups[groupID]; found {
			id := g.ID
			return payroll.Rates{
				HourlyRate:         g.HourlyRate,
				OvertimeMultiplier: g.OvertimeRate,
				SundayMultiplier:   g.SundayRate,
				HolidayMultiplier:  g.PublicHolidayRate,
				HoursPerDay:        g.HoursPerDay,
				Source:             staff.RateSourceGrouped,
				PayGroupID:         &id,
			}, nil
		}
		rates := individualRates(s.Rates)
		return rates, []payroll.Flag{payroll.FlagPayGroupMissing}
	}

	return individualRates(s.Rates), nil
}

func individualRates(r staff.IndividualRates) payroll.Rates {
	return payroll.Rates{
		HourlyRate:         r.HourlyRate,
		OvertimeMultiplier: orDefault(r.OvertimeRate, staff.DefaultOvertimeRate),
		SundayMultiplier:   orDefault(r.SundayRate, staff.DefaultSundayRate),
		HolidayMultiplier:  orDefault(r.PublicHolidayRate, staff.DefaultPublicHolidayRate),
		HoursPerDay:        orDefault(r.HoursPerDay, staff.DefaultHoursPerDay),
		Source:             staff.RateSourceIndividual,
	}
}

func orDefault(v, def decimal.Decimal) decimal.Decimal {
	if v.IsZero() {
		return def
	}
	return v
}

// HoursPay prices hour buckets at the given rates, rounded to cents.
func HoursPay(h payroll.HourBuckets, r payroll.Rates) decimal.Decimal {
	rate := r.HourlyRate
	pay := h.Regular.Mul(rate).
		Add(h.Overtime.Mul(rate).Mul(r.OvertimeMultiplier)).
		Add(h.Sunday.Mul(rate).Mul(r.SundayMultiplier)).
		Add(h.Holiday.Mul(rate).Mul(r.HolidayMultiplier))
	return pay.Round(2)
}

// LeavePay is one day of paid leave: hoursPerDay at the hourly rate.
func LeavePay(r payroll.Rates) decimal.Decimal {
	return r.HoursPerDay.Mul(r.HourlyRate).Round(2)
}
