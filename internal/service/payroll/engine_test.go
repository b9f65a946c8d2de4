package payroll

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/staffpay/staffpay-backend-go/internal/domain/attendance"
	"github.com/staffpay/staffpay-backend-go/internal/domain/holiday"
	"github.com/staffpay/staffpay-backend-go/internal/domain/leave"
	"github.com/staffpay/staffpay-backend-go/internal/domain/payroll"
	"github.com/staffpay/staffpay-backend-go/internal/domain/roster"
	"github.com/staffpay/staffpay-backend-go/internal/domain/settings"
	"github.com/staffpay/staffpay-backend-go/internal/domain/staff"
	"github.com/staffpay/staffpay-backend-go/internal/fixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sast = time.FixedZone("SAST", 2*60*60)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]interface{}{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func at(date string, clock string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, sast)
	if err != nil {
		panic(err)
	}
	return t
}

func day(date string) time.Time {
	t, err := time.ParseInLocation("2006-01-02", date, sast)
	if err != nil {
		panic(err)
	}
	return t
}

func signIn(id string, t time.Time) attendance.Scan {
	return attendance.Scan{ID: id, StaffID: "s1", Kind: attendance.ScanSignIn, At: t}
}

func signOut(id string, t time.Time) attendance.Scan {
	return attendance.Scan{ID: id, StaffID: "s1", Kind: attendance.ScanSignOut, At: t}
}

func classifyInput(date string, scans ...attendance.Scan) ClassifyInput {
	st := fixtures.GetDefaultSettings()
	return ClassifyInput{
		StaffID:     "s1",
		Date:        day(date),
		Shifts:      PairScans(scans, MaxShiftLength(st)),
		HoursPerDay: dec("8"),
		Holidays:    holiday.Set{},
		Leave:       leave.Set{},
		Settings:    st,
		Now:         day(date).AddDate(0, 0, 2),
		Location:    sast,
	}
}

func hundredRates() payroll.Rates {
	rates, _ := ResolveRates(staff.Staff{Rates: staff.IndividualRates{HourlyRate: dec("100")}}, nil)
	return rates
}

// ===== WORKED EXAMPLES =====

func TestClassify_WeekdayOvertime(t *testing.T) {
	// 2025-03-04 is a Tuesday.
	in := classifyInput("2025-03-04",
		signIn("a", at("2025-03-04", "08:00")),
		signOut("b", at("2025-03-04", "18:00")),
	)

	result := Classify(in)

	assertDec(t, "8", result.Regular)
	assertDec(t, "2", result.Overtime)
	assertDec(t, "0", result.Sunday)
	assertDec(t, "0", result.Holiday)
	assertDec(t, "1100", HoursPay(result.HourBuckets, hundredRates()))
	assert.Empty(t, result.Flags)
	assert.Equal(t, 1, result.DayOfWeek)
	assert.Equal(t, 2, result.SundayDayOfWeek)
}

func TestClassify_HolidayRegardlessOfWeekday(t *testing.T) {
	// 2025-03-02 is a Sunday; the holiday bucket wins.
	in := classifyInput("2025-03-02",
		signIn("a", at("2025-03-02", "09:00")),
		signOut("b", at("2025-03-02", "15:00")),
	)
	in.Holidays = holiday.NewSet([]holiday.Holiday{{Date: day("2025-03-02"), Name: "Test Day"}})

	result := Classify(in)

	assert.True(t, result.IsHoliday)
	assertDec(t, "6", result.Holiday)
	assertDec(t, "0", result.Sunday)
	assertDec(t, "1200", HoursPay(result.HourBuckets, hundredRates()))
}

func TestClassify_IgnoredHolidayIsRegularDay(t *testing.T) {
	in := classifyInput("2025-03-04",
		signIn("a", at("2025-03-04", "09:00")),
		signOut("b", at("2025-03-04", "15:00")),
	)
	in.Holidays = holiday.NewSet([]holiday.Holiday{{Date: day("2025-03-04"), Name: "Ignored", IsIgnored: true}})

	result := Classify(in)

	assert.False(t, result.IsHoliday)
	assertDec(t, "6", result.Regular)
}

func TestClassify_SundayHours(t *testing.T) {
	in := classifyInput("2025-03-02",
		signIn("a", at("2025-03-02", "08:00")),
		signOut("b", at("2025-03-02", "18:00")),
	)

	result := Classify(in)

	assertDec(t, "10", result.Sunday)
	assertDec(t, "0", result.Regular)
	assertDec(t, "0", result.Overtime)
	assert.Equal(t, 6, result.DayOfWeek)
	assert.Equal(t, 0, result.SundayDayOfWeek)
}

func TestComputeUIF_Ceiling(t *testing.T) {
	cfg := fixtures.GetDefaultTaxConfig()

	assertDec(t, "177.12", ComputeUIF(dec("20000"), cfg))
	assertDec(t, "100", ComputeUIF(dec("10000"), cfg))
}

func TestComputePAYE_RebateBands(t *testing.T) {
	cfg := fixtures.GetDefaultTaxConfig()

	// annual 192000 in the first bracket: 34560 tax.
	assertDec(t, "1443.75", ComputePAYE(dec("100"), 0, false, cfg))
	assertDec(t, "1443.75", ComputePAYE(dec("100"), 40, true, cfg))
	assertDec(t, "656.75", ComputePAYE(dec("100"), 65, true, cfg))
	assertDec(t, "394.67", ComputePAYE(dec("100"), 75, true, cfg))
	assertDec(t, "0", ComputePAYE(dec("10"), 40, true, cfg))
}

func TestComputePAYE_Monotonic(t *testing.T) {
	cfg := fixtures.GetDefaultTaxConfig()

	prev := decimal.Zero
	for rate := int64(0); rate <= 2000; rate += 7 {
		paye := ComputePAYE(decimal.NewFromInt(rate), 30, true, cfg)
		assert.True(t, paye.GreaterThanOrEqual(prev), "PAYE decreased at rate %d", rate)
		prev = paye
	}
}

func TestComputeDeductions_ZeroGross(t *testing.T) {
	cfg := fixtures.GetDefaultTaxConfig()
	s := staff.Staff{PayeEnabled: true, UIFEnabled: true, SDLEnabled: true}

	d, e := ComputeDeductions(decimal.Zero, dec("100"), s, &cfg, day("2025-03-31"))

	assertDec(t, "0", d.PAYE)
	assertDec(t, "0", d.UIFEmployee)
	assertDec(t, "0", e.UIF)
	assertDec(t, "0", d.Total)
}

func TestComputeDeductions_ZeroGrossSkipsFixedSlots(t *testing.T) {
	cfg := fixtures.GetDefaultTaxConfig()
	s := staff.Staff{
		Deductions: []staff.DeductionSlot{{Name: "Loan", Value: staff.Fixed(dec("250"))}},
		Pension: &staff.PensionSlot{
			Name:     "Provident",
			Employee: staff.Fixed(dec("300")),
			Employer: staff.Fixed(dec("300")),
		},
	}

	d, e := ComputeDeductions(decimal.Zero, dec("100"), s, &cfg, day("2025-03-31"))

	require.Len(t, d.Custom, 1)
	assert.Equal(t, "Loan", d.Custom[0].Name)
	assertDec(t, "0", d.Custom[0].Amount)
	assertDec(t, "0", d.PensionEmployee)
	assertDec(t, "0", d.Total)
	assertDec(t, "0", e.Pension)
	assertDec(t, "0", e.Total)
}

func TestComputeDeductions_CustomAndPension(t *testing.T) {
	cfg := fixtures.GetDefaultTaxConfig()
	s := staff.Staff{
		UIFEnabled: true,
		Deductions: []staff.DeductionSlot{
			{Name: "Loan", Value: staff.Fixed(dec("250"))},
			{Name: "Union", Value: staff.Percent(dec("0.02"))},
		},
		Pension: &staff.PensionSlot{
			Name:     "Provident",
			Employee: staff.Percent(dec("0.05")),
			Employer: staff.Percent(dec("0.1")),
		},
	}

	d, e := ComputeDeductions(dec("10000"), dec("62.5"), s, &cfg, day("2025-03-31"))

	assertDec(t, "0", d.PAYE)
	assertDec(t, "100", d.UIFEmployee)
	require.Len(t, d.Custom, 2)
	assertDec(t, "250", d.Custom[0].Amount)
	assertDec(t, "200", d.Custom[1].Amount)
	assertDec(t, "500", d.PensionEmployee)
	assertDec(t, "1050", d.Total)
	assertDec(t, "100", e.UIF)
	assertDec(t, "1000", e.Pension)
	assertDec(t, "1100", e.Total)
}

// ===== RATE RESOLUTION =====

func TestResolveRates_GroupWins(t *testing.T) {
	groupID := "g1"
	s := staff.Staff{
		PayGroupID: &groupID,
		Rates:      staff.IndividualRates{HourlyRate: dec("999")},
	}
	groups := map[string]staff.PayGroup{
		"g1": {ID: "g1", HourlyRate: dec("80"), OvertimeRate: dec("1.5"), SundayRate: dec("2"), PublicHolidayRate: dec("2.5"), HoursPerDay: dec("9")},
	}

	rates, flags := ResolveRates(s, groups)

	assert.Empty(t, flags)
	assertDec(t, "80", rates.HourlyRate)
	assertDec(t, "2.5", rates.HolidayMultiplier)
	assertDec(t, "9", rates.HoursPerDay)
	assert.Equal(t, staff.RateSourceGrouped, rates.Source)
	require.NotNil(t, rates.PayGroupID)
	assert.Equal(t, "g1", *rates.PayGroupID)
}

func TestResolveRates_MissingGroupFlagged(t *testing.T) {
	groupID := "gone"
	s := staff.Staff{PayGroupID: &groupID, Rates: staff.IndividualRates{HourlyRate: dec("50")}}

	rates, flags := ResolveRates(s, map[string]staff.PayGroup{})

	assert.Equal(t, []payroll.Flag{payroll.FlagPayGroupMissing}, flags)
	assertDec(t, "50", rates.HourlyRate)
}

func TestResolveRates_IndividualDefaults(t *testing.T) {
	rates := hundredRates()

	assertDec(t, "1.5", rates.OvertimeMultiplier)
	assertDec(t, "2", rates.SundayMultiplier)
	assertDec(t, "2", rates.HolidayMultiplier)
	assertDec(t, "8", rates.HoursPerDay)
	assert.Equal(t, staff.RateSourceIndividual, rates.Source)
}

// ===== CLASSIFIER =====

func TestClassify_LeavePreemptsScans(t *testing.T) {
	in := classifyInput("2025-03-04",
		signIn("a", at("2025-03-04", "08:00")),
		signOut("b", at("2025-03-04", "18:00")),
	)
	in.Leave = leave.NewSet([]leave.LeaveRecord{{
		StaffID:   "s1",
		Type:      leave.LeaveTypeAnnual,
		Status:    leave.LeaveStatusApproved,
		StartDate: day("2025-03-04"),
		EndDate:   day("2025-03-04"),
	}})

	result := Classify(in)

	assert.True(t, result.OnLeave)
	require.NotNil(t, result.LeaveType)
	assert.Equal(t, string(leave.LeaveTypeAnnual), *result.LeaveType)
	assertDec(t, "0", result.Total())
}

func TestClassify_PendingLeaveIgnored(t *testing.T) {
	in := classifyInput("2025-03-04",
		signIn("a", at("2025-03-04", "08:00")),
		signOut("b", at("2025-03-04", "12:00")),
	)
	in.Leave = leave.NewSet([]leave.LeaveRecord{{
		StaffID:   "s1",
		Type:      leave.LeaveTypeAnnual,
		Status:    leave.LeaveStatusPending,
		StartDate: day("2025-03-04"),
		EndDate:   day("2025-03-04"),
	}})

	result := Classify(in)

	assert.False(t, result.OnLeave)
	assertDec(t, "4", result.Regular)
}

func TestClassify_ToleranceTrimAndLunch(t *testing.T) {
	lunch := 30
	in := classifyInput("2025-03-04",
		signIn("a", at("2025-03-04", "07:00")),
		signOut("b", at("2025-03-04", "17:00")),
	)
	in.Assignment = &roster.Assignment{StaffID: "s1", StartTime: "08:00", EndTime: "16:00", LunchLength: &lunch}

	result := Classify(in)

	// Trimmed to 07:45-16:15, less 30 minutes lunch.
	assert.Equal(t, 45, result.TrimmedEarlyMinutes)
	assert.Equal(t, 45, result.TrimmedLateMinutes)
	assert.Equal(t, 30, result.LunchMinutes)
	assertDec(t, "8", result.Regular)
	assertDec(t, "0", result.Overtime)
	assert.Empty(t, result.Flags)
}

func TestClassify_NoTrimWithoutAssignment(t *testing.T) {
	in := classifyInput("2025-03-04",
		signIn("a", at("2025-03-04", "07:00")),
		signOut("b", at("2025-03-04", "17:00")),
	)
	in.DefaultLunch = 60

	result := Classify(in)

	assert.Zero(t, result.TrimmedEarlyMinutes)
	assert.Zero(t, result.TrimmedLateMinutes)
	assertDec(t, "8", result.Regular)
	assertDec(t, "1", result.Overtime)
}

func TestClassify_OpenSignIn(t *testing.T) {
	cases := []struct {
		name        string
		autoEnabled bool
		age         time.Duration
		inProgress  bool
		flag        payroll.Flag
	}{
		{"fresh shift is in progress", true, time.Hour, true, ""},
		{"stale with auto sign-out", true, 20 * time.Hour, false, payroll.FlagStaleShift},
		{"stale without auto sign-out", false, 20 * time.Hour, false, payroll.FlagIncompleteShift},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			start := at("2025-03-04", "08:00")
			in := classifyInput("2025-03-04", signIn("a", start))
			in.Settings.AutoSignOut.Enabled = c.autoEnabled
			in.Now = start.Add(c.age)

			result := Classify(in)

			assert.Equal(t, c.inProgress, result.InProgress)
			if c.flag == "" {
				assert.Empty(t, result.Flags)
			} else {
				assert.Contains(t, result.Flags, c.flag)
			}
			assertDec(t, "0", result.Total())
		})
	}
}

func TestClassify_AutoSignedOutScanIsStale(t *testing.T) {
	start := at("2025-03-04", "08:00")
	scan := signIn("a", start)
	scan.IsAutoSignedOut = true
	in := classifyInput("2025-03-04", scan)
	in.Now = start.Add(time.Minute)

	result := Classify(in)

	assert.False(t, result.InProgress)
	assert.Contains(t, result.Flags, payroll.FlagStaleShift)
}

func TestClassify_SignOutOnly(t *testing.T) {
	in := classifyInput("2025-03-04", signOut("b", at("2025-03-04", "17:00")))

	result := Classify(in)
	assert.Equal(t, []payroll.Flag{payroll.FlagIncompleteShift}, result.Flags)

	in.Settings.AutoSignIn.Enabled = true
	result = Classify(in)
	assert.Equal(t, []payroll.Flag{payroll.FlagAutoSignedIn}, result.Flags)
}

func TestClassify_Absent(t *testing.T) {
	assignment := &roster.Assignment{StaffID: "s1", StartTime: "08:00", EndTime: "16:00"}

	t.Run("no scans after grace", func(t *testing.T) {
		in := classifyInput("2025-03-04")
		in.Assignment = assignment
		in.Now = at("2025-03-04", "10:00")

		result := Classify(in)

		assert.Equal(t, []payroll.Flag{payroll.FlagAbsent}, result.Flags)
		assertDec(t, "0", result.Total())
	})

	t.Run("still within grace", func(t *testing.T) {
		in := classifyInput("2025-03-04")
		in.Assignment = assignment
		in.Now = at("2025-03-04", "08:30")

		assert.Empty(t, Classify(in).Flags)
	})

	t.Run("sign-in after grace is absent with zero hours", func(t *testing.T) {
		in := classifyInput("2025-03-04",
			signIn("a", at("2025-03-04", "10:00")),
			signOut("b", at("2025-03-04", "16:00")),
		)
		in.Assignment = assignment

		result := Classify(in)

		assert.Equal(t, []payroll.Flag{payroll.FlagAbsent}, result.Flags)
		assertDec(t, "0", result.Regular)
		assertDec(t, "0", result.Total())
		require.NotNil(t, result.SignIn)
	})

	t.Run("sign-in within grace keeps hours", func(t *testing.T) {
		in := classifyInput("2025-03-04",
			signIn("a", at("2025-03-04", "08:20")),
			signOut("b", at("2025-03-04", "16:00")),
		)
		in.Assignment = assignment

		result := Classify(in)

		assert.NotContains(t, result.Flags, payroll.FlagAbsent)
		assert.True(t, result.Regular.IsPositive())
	})

	t.Run("disabled", func(t *testing.T) {
		in := classifyInput("2025-03-04")
		in.Assignment = assignment
		in.Settings.AbsentGrace.Enabled = false

		assert.Empty(t, Classify(in).Flags)
	})
}

func TestPairScans(t *testing.T) {
	first := signIn("a", at("2025-03-04", "07:00"))
	second := signIn("b", at("2025-03-04", "08:00"))
	out := signOut("c", at("2025-03-04", "16:00"))
	late := signOut("d", at("2025-03-06", "16:00"))

	shifts := PairScans([]attendance.Scan{out, late, second, first}, 14*time.Hour)

	require.Len(t, shifts, 3)
	assert.Equal(t, "a", shifts[0].SignIn.ID)
	assert.Nil(t, shifts[0].SignOut)
	assert.Equal(t, "b", shifts[1].SignIn.ID)
	assert.Equal(t, "c", shifts[1].SignOut.ID)
	assert.Nil(t, shifts[2].SignIn)
	assert.Equal(t, "d", shifts[2].SignOut.ID)
}

func TestGroupShiftsByDate_OvernightAnchorsOnSignIn(t *testing.T) {
	shifts := PairScans([]attendance.Scan{
		signIn("a", at("2025-03-04", "22:00")),
		signOut("b", at("2025-03-05", "06:00")),
	}, DefaultMaxShift)

	byDate := GroupShiftsByDate(shifts, sast)

	require.Len(t, byDate["2025-03-04"], 1)
	assert.Empty(t, byDate["2025-03-05"])
}

// ===== AGGREGATION =====

func previewFor(id, name string, zoneID *string, zoneName string, hours string) payroll.StaffPreview {
	st := staff.Staff{ID: id, Name: name, ZoneID: zoneID, SDLEnabled: true}
	rates := hundredRates()
	days := []payroll.DayResult{{HourBuckets: payroll.HourBuckets{
		Regular: dec(hours), Overtime: decimal.Zero, Sunday: decimal.Zero, Holiday: decimal.Zero,
	}, Flags: []payroll.Flag{}}}
	cfg := fixtures.GetDefaultTaxConfig()
	return BuildStaffPreview(StaffInput{Staff: st, ZoneName: zoneName, Rates: rates, Days: days}, &cfg, settings.Thresholds{}, day("2025-03-31"))
}

func TestAssemblePreview_TotalsTieOut(t *testing.T) {
	north, south := "z-north", "z-south"
	previews := []payroll.StaffPreview{
		previewFor("s3", "Cara", &south, "South", "10"),
		previewFor("s1", "Abe", &north, "North", "8"),
		previewFor("s4", "Dan", nil, "", "4"),
		previewFor("s2", "Bea", &north, "North", "12"),
	}

	result := AssemblePreview(previews, day("2025-03-01"), day("2025-03-31"), nil)

	require.Len(t, result.Zones, 3)
	assert.Equal(t, "North", result.Zones[0].ZoneName)
	assert.Equal(t, "South", result.Zones[1].ZoneName)
	assert.Equal(t, UnassignedZoneName, result.Zones[2].ZoneName)
	assert.Equal(t, "", result.Zones[2].ZoneID)
	assert.Equal(t, "Abe", result.Zones[0].Staff[0].Name)

	grand := decimal.Zero
	for _, z := range result.Zones {
		zoneGross := decimal.Zero
		for _, s := range z.Staff {
			zoneGross = zoneGross.Add(s.GrossPay)
		}
		assert.True(t, zoneGross.Equal(z.GrandTotal), "zone %s does not tie out", z.ZoneName)
		grand = grand.Add(z.GrandTotal)
	}
	assert.True(t, grand.Equal(result.GrandTotal))
	assertDec(t, "3400", result.GrandTotal)
	assert.Equal(t, 4, result.TotalStaff)
	assertDec(t, "34", result.TotalRegularHours)
}

func TestAssemblePreview_ZoneFilter(t *testing.T) {
	north := "z-north"
	previews := []payroll.StaffPreview{
		previewFor("s1", "Abe", &north, "North", "8"),
		previewFor("s2", "Dan", nil, "", "4"),
	}

	result := AssemblePreview(previews, day("2025-03-01"), day("2025-03-31"), &north)

	require.Len(t, result.Zones, 1)
	assert.Equal(t, 1, result.TotalStaff)
	assertDec(t, "800", result.GrandTotal)
}

func TestApplySDL_Threshold(t *testing.T) {
	cfg := fixtures.GetDefaultTaxConfig()
	enabled := map[string]bool{"s1": true, "s2": true}

	below := []payroll.StaffPreview{previewFor("s1", "Abe", nil, "", "8"), previewFor("s2", "Bea", nil, "", "8")}
	ApplySDL(below, enabled, &cfg)
	assertDec(t, "0", below[0].Employer.SDL)

	cfg.SDLExemptThreshold = dec("1000")
	above := []payroll.StaffPreview{previewFor("s1", "Abe", nil, "", "8"), previewFor("s2", "Bea", nil, "", "8")}
	ApplySDL(above, map[string]bool{"s1": true}, &cfg)
	// Only s1 counts towards the base (800), which is below 1000.
	assertDec(t, "0", above[0].Employer.SDL)

	ApplySDL(above, enabled, &cfg)
	assertDec(t, "8", above[0].Employer.SDL)
	assertDec(t, "8", above[1].Employer.SDL)
}

func TestBuildStaffPreview_ThresholdAndLeavePay(t *testing.T) {
	annual := string(leave.LeaveTypeAnnual)
	unpaid := string(leave.LeaveTypeUnpaid)
	days := []payroll.DayResult{
		{HourBuckets: payroll.HourBuckets{Regular: dec("8"), Overtime: dec("3"), Sunday: decimal.Zero, Holiday: decimal.Zero}, Flags: []payroll.Flag{}},
		{HourBuckets: zeroBuckets(), OnLeave: true, LeaveType: &annual, Flags: []payroll.Flag{}},
		{HourBuckets: zeroBuckets(), OnLeave: true, LeaveType: &unpaid, Flags: []payroll.Flag{}},
	}

	p := BuildStaffPreview(StaffInput{
		Staff: staff.Staff{ID: "s1", Name: "Abe"},
		Rates: hundredRates(),
		Days:  days,
	}, nil, settings.Thresholds{MaxOvertimeHours: dec("2")}, day("2025-03-31"))

	assert.Equal(t, 1, p.LeaveDays)
	assertDec(t, "800", p.LeavePay)
	// 800 regular + 450 overtime + 800 leave.
	assertDec(t, "2050", p.GrossPay)
	assert.Contains(t, p.Flags, payroll.FlagMaxOvertimeHours)
	assert.Contains(t, p.Flags, payroll.FlagTaxConfigMissing)
	assert.True(t, p.HasFlagged)
	assertDec(t, "2050", p.NetPay)
}
