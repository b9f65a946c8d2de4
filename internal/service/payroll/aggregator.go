package payroll

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/staffpay/staffpay-backend-go/internal/domain/leave"
	"github.com/staffpay/staffpay-backend-go/internal/domain/payroll"
	"github.com/staffpay/staffpay-backend-go/internal/domain/settings"
	"github.com/staffpay/staffpay-backend-go/internal/domain/staff"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/validator"
)

// UnassignedZoneName labels staff without a zone. Its zone id is empty.
const UnassignedZoneName = "Unassigned"

// StaffInput is one staff member's classified period, ready to be priced.
type StaffInput struct {
	Staff     staff.Staff
	ZoneName  string
	Rates     payroll.Rates
	RateFlags []payroll.Flag
	Days      []payroll.DayResult
}

// BuildStaffPreview prices a staff member's period. A nil cfg zeroes the
// statutory deductions and raises tax_config_missing.
func BuildStaffPreview(in StaffInput, cfg *payroll.TaxConfig, thresholds settings.Thresholds, asOf time.Time) payroll.StaffPreview {
	p := payroll.StaffPreview{
		StaffID:     in.Staff.ID,
		Name:        in.Staff.Name,
		ZoneName:    in.ZoneName,
		Rates:       in.Rates,
		HourBuckets: zeroBuckets(),
		Days:        in.Days,
		Flags:       []payroll.Flag{},
	}
	if in.Staff.ZoneID != nil {
		p.ZoneID = *in.Staff.ZoneID
	}
	if p.Days == nil {
		p.Days = []payroll.DayResult{}
	}

	for _, f := range in.RateFlags {
		p.Flags = appendFlag(p.Flags, f)
	}
	if cfg == nil {
		p.Flags = appendFlag(p.Flags, payroll.FlagTaxConfigMissing)
	}

	for _, day := range in.Days {
		p.HourBuckets = p.HourBuckets.Add(day.HourBuckets)
		if day.OnLeave && day.LeaveType != nil && leave.LeaveType(*day.LeaveType).IsPaid() {
			p.LeaveDays++
		}
		for _, f := range day.Flags {
			p.Flags = appendFlag(p.Flags, f)
		}
	}

	p.LeavePay = LeavePay(in.Rates).Mul(decimal.NewFromInt(int64(p.LeaveDays)))
	p.GrossPay = HoursPay(p.HourBuckets, in.Rates).Add(p.LeavePay)
	p.Deductions, p.Employer = ComputeDeductions(p.GrossPay, in.Rates.HourlyRate, in.Staff, cfg, asOf)
	p.NetPay = p.GrossPay.Sub(p.Deductions.Total)

	for _, f := range ThresholdFlags(p, thresholds) {
		p.Flags = appendFlag(p.Flags, f)
	}
	p.HasFlagged = len(p.Flags) > 0
	return p
}

// ThresholdFlags compares staff totals against the sanity thresholds. Zero
// thresholds are disabled.
func ThresholdFlags(p payroll.StaffPreview, t settings.Thresholds) []payroll.Flag {
	checks := []struct {
		value decimal.Decimal
		limit decimal.Decimal
		flag  payroll.Flag
	}{
		{p.Regular, t.MaxRegularHours, payroll.FlagMaxRegularHours},
		{p.Overtime, t.MaxOvertimeHours, payroll.FlagMaxOvertimeHours},
		{p.Sunday, t.MaxSundayHours, payroll.FlagMaxSundayHours},
		{p.Holiday, t.MaxHolidayHours, payroll.FlagMaxHolidayHours},
		{p.GrossPay, t.MaxTotalOwed, payroll.FlagMaxTotalOwed},
	}

	var flags []payroll.Flag
	for _, c := range checks {
		if c.limit.IsPositive() && c.value.GreaterThan(c.limit) {
			flags = append(flags, c.flag)
		}
	}
	return flags
}

// ApplySDL runs the second, organisation-wide pass. The levy base is the gross
// of every SDL-enabled staff member; below the exemption threshold nobody pays.
func ApplySDL(previews []payroll.StaffPreview, sdlEnabled map[string]bool, cfg *payroll.TaxConfig) {
	if cfg == nil {
		return
	}

	base := decimal.Zero
	for _, p := range previews {
		if sdlEnabled[p.StaffID] {
			base = base.Add(p.GrossPay)
		}
	}
	if base.LessThan(cfg.SDLExemptThreshold) {
		return
	}

	for i := range previews {
		p := &previews[i]
		if !sdlEnabled[p.StaffID] {
			continue
		}
		p.Employer.SDL = ComputeSDL(p.GrossPay, *cfg)
		p.Employer.Total = p.Employer.UIF.Add(p.Employer.SDL).Add(p.Employer.Pension)
	}
}

// AssemblePreview groups staff results into zones, sorts them and totals every
// level. When zoneID is set only that zone is kept.
func AssemblePreview(previews []payroll.StaffPreview, start, end time.Time, zoneID *string) payroll.PayrollPreview {
	out := payroll.PayrollPreview{
		PeriodStart: start.Format(validator.DateLayout),
		PeriodEnd:   end.Format(validator.DateLayout),
		Zones:       []payroll.ZonePreview{},
	}
	out.Totals = zeroTotals()

	byZone := make(map[string]*payroll.ZonePreview)
	var order []string
	for _, p := range previews {
		if zoneID != nil && p.ZoneID != *zoneID {
			continue
		}
		z, ok := byZone[p.ZoneID]
		if !ok {
			name := p.ZoneName
			if p.ZoneID == "" {
				name = UnassignedZoneName
			}
			z = &payroll.ZonePreview{ZoneID: p.ZoneID, ZoneName: name, Staff: []payroll.StaffPreview{}, Totals: zeroTotals()}
			byZone[p.ZoneID] = z
			order = append(order, p.ZoneID)
		}
		z.Staff = append(z.Staff, p)
	}

	sort.Slice(order, func(i, j int) bool {
		a, b := byZone[order[i]], byZone[order[j]]
		if (a.ZoneID == "") != (b.ZoneID == "") {
			return b.ZoneID == ""
		}
		if a.ZoneName != b.ZoneName {
			return a.ZoneName < b.ZoneName
		}
		return a.ZoneID < b.ZoneID
	})

	for _, id := range order {
		z := byZone[id]
		sort.Slice(z.Staff, func(i, j int) bool {
			if z.Staff[i].Name != z.Staff[j].Name {
				return z.Staff[i].Name < z.Staff[j].Name
			}
			return z.Staff[i].StaffID < z.Staff[j].StaffID
		})
		for _, s := range z.Staff {
			z.AddStaff(s)
			out.AddStaff(s)
			if s.HasFlagged {
				z.HasFlagged = true
			}
		}
		if z.HasFlagged {
			out.HasFlagged = true
		}
		out.Zones = append(out.Zones, *z)
	}
	return out
}

func zeroTotals() payroll.Totals {
	z := decimal.Zero
	return payroll.Totals{
		GrandTotal:         z,
		TotalLeavePay:      z,
		TotalRegularHours:  z,
		TotalOvertimeHours: z,
		TotalSundayHours:   z,
		TotalHolidayHours:  z,
		TotalPaye:          z,
		TotalUif:           z,
		TotalUifEmployer:   z,
		TotalSdl:           z,
		TotalDeductions:    z,
		TotalNet:           z,
	}
}
