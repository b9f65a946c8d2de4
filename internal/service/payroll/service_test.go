package payroll

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/staffpay/staffpay-backend-go/internal/domain/attendance"
	"github.com/staffpay/staffpay-backend-go/internal/domain/holiday"
	"github.com/staffpay/staffpay-backend-go/internal/domain/leave"
	"github.com/staffpay/staffpay-backend-go/internal/domain/payroll"
	"github.com/staffpay/staffpay-backend-go/internal/domain/roster"
	"github.com/staffpay/staffpay-backend-go/internal/domain/staff"
	"github.com/staffpay/staffpay-backend-go/internal/fixtures"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/cache"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type testEnv struct {
	svc           *PayrollServiceImpl
	runs          *memRuns
	payslips      *memPayslips
	overrides     *memOverrides
	interventions *memInterventions
	tax           *memTaxConfig
	staff         *memStaff
	scans         *memScans
	locker        *cache.MemoryLocker
	events        *recordingPublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	north := "z-north"
	cfg := fixtures.GetDefaultTaxConfig()
	st := fixtures.GetDefaultSettings()
	st.Version = 3

	env := &testEnv{
		runs:          newMemRuns(),
		payslips:      newMemPayslips(),
		overrides:     newMemOverrides(),
		interventions: &memInterventions{},
		tax:           &memTaxConfig{cfg: &cfg},
		staff: &memStaff{members: []staff.Staff{
			{ID: "s1", Name: "Abe", ZoneID: &north, Rates: staff.IndividualRates{HourlyRate: dec("100")}, UIFEnabled: true, SDLEnabled: true, IsActive: true},
			{ID: "s2", Name: "Bea", Rates: staff.IndividualRates{HourlyRate: dec("80")}, IsActive: true},
			{ID: "s3", Name: "Gone", Rates: staff.IndividualRates{HourlyRate: dec("80")}, IsActive: false},
		}},
		scans: &memScans{scans: []attendance.Scan{
			{ID: "a", StaffID: "s1", Kind: attendance.ScanSignIn, At: at("2025-03-04", "08:00")},
			{ID: "b", StaffID: "s1", Kind: attendance.ScanSignOut, At: at("2025-03-04", "18:00")},
			{ID: "c", StaffID: "s2", Kind: attendance.ScanSignIn, At: at("2025-03-05", "09:00")},
			{ID: "d", StaffID: "s2", Kind: attendance.ScanSignOut, At: at("2025-03-05", "13:00")},
			{ID: "e", StaffID: "s3", Kind: attendance.ScanSignIn, At: at("2025-03-05", "09:00")},
		}},
		locker: cache.NewMemoryLocker(),
		events: &recordingPublisher{},
	}

	env.svc = newPayrollService(Dependencies{
		Tx:            passthroughTx{},
		Runs:          env.runs,
		Payslips:      env.payslips,
		Overrides:     env.overrides,
		TaxConfigs:    env.tax,
		Staff:         env.staff,
		PayGroups:     &memPayGroups{},
		Zones:         &memZones{zones: []staff.Zone{{ID: north, Name: "North"}}},
		Scans:         env.scans,
		Interventions: env.interventions,
		Settings:      &stubSettings{current: st},
		Holidays:      &stubHolidays{set: holiday.Set{}},
		Leave:         &stubLeave{set: leave.Set{}},
		Rosters:       &stubRosters{schedule: roster.Schedule{}},
		Locker:        env.locker,
		Events:        env.events,
		Location:      sast,
		Concurrency:   4,
	})
	env.svc.now = func() time.Time { return at("2025-04-01", "12:00") }
	return env
}

func marchPreview() payroll.PreviewRequest {
	return payroll.PreviewRequest{Start: "2025-03-01", End: "2025-03-31"}
}

func staffByID(t *testing.T, p payroll.PayrollPreview, id string) payroll.StaffPreview {
	t.Helper()
	for _, z := range p.Zones {
		for _, s := range z.Staff {
			if s.StaffID == id {
				return s
			}
		}
	}
	t.Fatalf("staff %s not in preview", id)
	return payroll.StaffPreview{}
}

func dayOf(t *testing.T, s payroll.StaffPreview, date string) payroll.DayResult {
	t.Helper()
	for _, d := range s.Days {
		if d.Date == date {
			return d
		}
	}
	t.Fatalf("day %s not in preview", date)
	return payroll.DayResult{}
}

func createRun(t *testing.T, env *testEnv) string {
	t.Helper()
	run, err := env.svc.CreateRun(context.Background(), payroll.CreateRunRequest{PeriodStart: "2025-03-01", PeriodEnd: "2025-03-31"})
	require.NoError(t, err)
	assert.Equal(t, payroll.RunStatusDraft, run.Status)
	return run.ID
}

// ===== PREVIEW TESTS =====

func TestPayrollService_Preview_GroupsAndTotals(t *testing.T) {
	env := newTestEnv(t)

	preview, err := env.svc.Preview(context.Background(), marchPreview())

	require.NoError(t, err)
	require.Len(t, preview.Zones, 2)
	assert.Equal(t, "North", preview.Zones[0].ZoneName)
	assert.Equal(t, UnassignedZoneName, preview.Zones[1].ZoneName)
	assert.Equal(t, 2, preview.TotalStaff)
	assertDec(t, "1420", preview.GrandTotal)
	assertDec(t, "12", preview.TotalRegularHours)
	assertDec(t, "2", preview.TotalOvertimeHours)
	assertDec(t, "11", preview.TotalUif)
	assertDec(t, "0", preview.TotalSdl)
	assert.Equal(t, int64(3), preview.GeneratedFrom)
	assert.Equal(t, 2025, preview.TaxYear)
	assert.False(t, preview.HasFlagged)

	abe := staffByID(t, preview, "s1")
	assert.Len(t, abe.Days, 31)
	assertDec(t, "1100", abe.GrossPay)
	assertDec(t, "1089", abe.NetPay)
}

func TestPayrollService_Preview_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.svc.Preview(ctx, marchPreview())
	require.NoError(t, err)
	second, err := env.svc.Preview(ctx, marchPreview())
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestPayrollService_Preview_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	unknown := "z-unknown"

	cases := []payroll.PreviewRequest{
		{Start: "", End: "2025-03-31"},
		{Start: "2025-03-31", End: "2025-03-01"},
		{Start: "2025-01-01", End: "2025-06-30"},
		{Start: "2025-03-01", End: "2025-03-31", ZoneID: &unknown},
	}
	for _, req := range cases {
		_, err := env.svc.Preview(ctx, req)
		var verr validator.ValidationErrors
		assert.True(t, errors.As(err, &verr), "expected validation error for %+v, got %v", req, err)
	}
}

func TestPayrollService_Preview_ZoneFilter(t *testing.T) {
	env := newTestEnv(t)
	north := "z-north"
	req := marchPreview()
	req.ZoneID = &north

	preview, err := env.svc.Preview(context.Background(), req)

	require.NoError(t, err)
	require.Len(t, preview.Zones, 1)
	assertDec(t, "1100", preview.GrandTotal)
}

func TestPayrollService_Preview_MissingTaxConfigFlags(t *testing.T) {
	env := newTestEnv(t)
	env.tax.cfg = nil

	preview, err := env.svc.Preview(context.Background(), marchPreview())

	require.NoError(t, err)
	assert.True(t, preview.HasFlagged)
	abe := staffByID(t, preview, "s1")
	assert.Contains(t, abe.Flags, payroll.FlagTaxConfigMissing)
	assertDec(t, "0", abe.Deductions.UIFEmployee)
	assertDec(t, "1100", abe.GrossPay)
}

// ===== OVERRIDE TESTS =====

func TestPayrollService_Override_AppliedAndReset(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	six, zero := dec("6"), decimal.Zero
	note := "left early, badge misread"

	_, err := env.svc.UpsertDailyOverride(ctx, payroll.DailyOverrideRequest{
		StaffID: "s1",
		Date:    "2025-03-04",
		Updates: payroll.OverrideUpdates{RegularHours: &six, OvertimeHours: &zero},
		Note:    &note,
		Author:  "admin",
	})
	require.NoError(t, err)

	preview, err := env.svc.Preview(ctx, marchPreview())
	require.NoError(t, err)
	d := dayOf(t, staffByID(t, preview, "s1"), "2025-03-04")
	assert.True(t, d.IsEdited)
	assertDec(t, "6", d.Regular)
	assertDec(t, "0", d.Overtime)
	require.NotNil(t, d.EditedBy)
	assert.Equal(t, "admin", *d.EditedBy)
	assert.True(t, env.events.has(EventOverrideSaved))

	require.NoError(t, env.svc.ResetDailyOverride(ctx, payroll.ResetOverrideRequest{StaffID: "s1", Date: "2025-03-04", Author: "admin"}))

	preview, err = env.svc.Preview(ctx, marchPreview())
	require.NoError(t, err)
	d = dayOf(t, staffByID(t, preview, "s1"), "2025-03-04")
	assert.False(t, d.IsEdited)
	assertDec(t, "8", d.Regular)
	assertDec(t, "2", d.Overtime)

	require.Len(t, env.interventions.entries, 2)
	assert.Equal(t, attendance.InterventionHoursOverride, env.interventions.entries[0].Kind)
	assert.Equal(t, attendance.InterventionOverrideReset, env.interventions.entries[1].Kind)
}

func TestPayrollService_Override_UnknownStaff(t *testing.T) {
	env := newTestEnv(t)
	six := dec("6")

	_, err := env.svc.UpsertDailyOverride(context.Background(), payroll.DailyOverrideRequest{
		StaffID: "nobody",
		Date:    "2025-03-04",
		Updates: payroll.OverrideUpdates{RegularHours: &six},
		Author:  "admin",
	})

	assert.ErrorIs(t, err, staff.ErrStaffNotFound)
	assert.Empty(t, env.interventions.entries)
}

func TestPayrollService_CalculateRun_PreservesOverride(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	runID := createRun(t, env)
	six := dec("6")

	_, err := env.svc.UpsertDailyOverride(ctx, payroll.DailyOverrideRequest{
		StaffID: "s1", Date: "2025-03-04", Updates: payroll.OverrideUpdates{RegularHours: &six}, Author: "admin",
	})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		run, err := env.svc.CalculateRun(ctx, runID)
		require.NoError(t, err)
		require.Len(t, run.Payslips, 2)
		require.NotNil(t, run.Totals)

		var abe payroll.PayslipResponse
		for _, p := range run.Payslips {
			if p.StaffID == "s1" {
				abe = p
			}
		}
		assertDec(t, "6", abe.Regular)
		assertDec(t, "2", abe.Overtime)
	}
	assert.True(t, env.events.has(EventRunCalculated))
}

// ===== RUN LIFECYCLE TESTS =====

func TestPayrollService_LockRun_IsOneWay(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	runID := createRun(t, env)

	locked, err := env.svc.LockRun(ctx, payroll.LockRunRequest{RunID: runID, Actor: "admin"})
	require.NoError(t, err)
	assert.Equal(t, payroll.RunStatusFinalized, locked.Status)
	require.NotNil(t, locked.FinalizedBy)
	assert.Equal(t, "admin", *locked.FinalizedBy)
	assert.True(t, env.events.has(EventRunFinalized))

	before, err := env.payslips.ListByRun(ctx, runID)
	require.NoError(t, err)
	replaced := env.payslips.replaced

	_, err = env.svc.CalculateRun(ctx, runID)
	assert.ErrorIs(t, err, payroll.ErrRunFinalized)

	_, err = env.svc.LockRun(ctx, payroll.LockRunRequest{RunID: runID, Actor: "admin"})
	assert.ErrorIs(t, err, payroll.ErrRunFinalized)

	after, err := env.payslips.ListByRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, replaced, env.payslips.replaced)
	assert.Equal(t, before, after)
}

func TestPayrollService_LockRun_UnresolvedFlags(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.scans.scans = append(env.scans.scans, attendance.Scan{
		ID: "f", StaffID: "s2", Kind: attendance.ScanSignOut, At: at("2025-03-06", "17:00"),
	})
	runID := createRun(t, env)

	_, err := env.svc.LockRun(ctx, payroll.LockRunRequest{RunID: runID, Actor: "admin"})
	assert.ErrorIs(t, err, payroll.ErrUnresolvedFlags)

	run, err := env.runs.GetByID(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, payroll.RunStatusDraft, run.Status)

	locked, err := env.svc.LockRun(ctx, payroll.LockRunRequest{RunID: runID, Actor: "admin", AcknowledgeFlags: true})
	require.NoError(t, err)
	assert.Equal(t, payroll.RunStatusFinalized, locked.Status)
	assert.True(t, locked.HasFlagged)
}

func TestPayrollService_LockRun_ConcurrentFinalize(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	runID := createRun(t, env)

	unlock, ok, err := env.locker.TryLock(ctx, "payroll:run:"+runID, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = env.svc.LockRun(ctx, payroll.LockRunRequest{RunID: runID, Actor: "admin"})
	assert.ErrorIs(t, err, payroll.ErrFinalizeInProgress)

	require.NoError(t, unlock(ctx))
	_, err = env.svc.LockRun(ctx, payroll.LockRunRequest{RunID: runID, Actor: "admin"})
	assert.NoError(t, err)
}

func TestPayrollService_LockRun_ConfigurationErrors(t *testing.T) {
	t.Run("missing tax config", func(t *testing.T) {
		env := newTestEnv(t)
		env.tax.cfg = nil
		runID := createRun(t, env)

		_, err := env.svc.LockRun(context.Background(), payroll.LockRunRequest{RunID: runID, Actor: "admin", AcknowledgeFlags: true})

		var cfgErr *payroll.ConfigurationError
		assert.True(t, errors.As(err, &cfgErr))
	})

	t.Run("missing pay group", func(t *testing.T) {
		env := newTestEnv(t)
		gone := "g-gone"
		env.staff.members[0].PayGroupID = &gone
		runID := createRun(t, env)

		_, err := env.svc.LockRun(context.Background(), payroll.LockRunRequest{RunID: runID, Actor: "admin", AcknowledgeFlags: true})

		var cfgErr *payroll.ConfigurationError
		assert.True(t, errors.As(err, &cfgErr))
		run, _ := env.runs.GetByID(context.Background(), runID)
		assert.Equal(t, payroll.RunStatusDraft, run.Status)
	})
}

func TestPayrollService_Override_FinalizedPeriod(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	runID := createRun(t, env)
	_, err := env.svc.LockRun(ctx, payroll.LockRunRequest{RunID: runID, Actor: "admin"})
	require.NoError(t, err)
	six := dec("6")

	_, err = env.svc.UpsertDailyOverride(ctx, payroll.DailyOverrideRequest{
		StaffID: "s1", Date: "2025-03-04", Updates: payroll.OverrideUpdates{RegularHours: &six}, Author: "admin",
	})
	assert.ErrorIs(t, err, payroll.ErrPeriodFinalized)

	err = env.svc.ResetDailyOverride(ctx, payroll.ResetOverrideRequest{StaffID: "s1", Date: "2025-03-04", Author: "admin"})
	assert.ErrorIs(t, err, payroll.ErrPeriodFinalized)
	assert.Empty(t, env.interventions.entries)

	_, err = env.svc.UpsertDailyOverride(ctx, payroll.DailyOverrideRequest{
		StaffID: "s1", Date: "2025-04-02", Updates: payroll.OverrideUpdates{RegularHours: &six}, Author: "admin",
	})
	assert.NoError(t, err)
}

func TestPayrollService_CreateRun_Validation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.CreateRun(context.Background(), payroll.CreateRunRequest{PeriodStart: "2025-03-31", PeriodEnd: "2025-03-01"})

	var verr validator.ValidationErrors
	assert.True(t, errors.As(err, &verr))
}

// ===== EXPORT TESTS =====

func TestPayrollService_ExportRun(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	runID := createRun(t, env)
	_, err := env.svc.LockRun(ctx, payroll.LockRunRequest{RunID: runID, Actor: "admin"})
	require.NoError(t, err)

	file, err := env.svc.ExportRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, "payroll_2025-03-01_2025-03-31.xlsx", file.Name)
	assert.Equal(t, xlsxContentType, file.ContentType)

	book, err := excelize.OpenReader(bytes.NewReader(file.Content))
	require.NoError(t, err)
	defer book.Close()

	assert.ElementsMatch(t, []string{sheetPayslips, sheetDaily, sheetSummary}, book.GetSheetList())
	name, err := book.GetCellValue(sheetPayslips, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Abe", name)
	zone, err := book.GetCellValue(sheetPayslips, "B3")
	require.NoError(t, err)
	assert.Equal(t, UnassignedZoneName, zone)
}

func TestPayrollService_ExportRun_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.ExportRun(context.Background(), "missing")

	assert.ErrorIs(t, err, payroll.ErrRunNotFound)
}

// ===== TAX CONFIG TESTS =====

func TestPayrollService_UpdateTaxConfig(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cfg := fixtures.GetDefaultTaxConfig()
	req := payroll.TaxConfigRequest{
		TaxYear:            2026,
		Brackets:           cfg.Brackets,
		RebatePrimary:      cfg.RebatePrimary,
		RebateSecondary:    cfg.RebateSecondary,
		RebateTertiary:     cfg.RebateTertiary,
		UIFRate:            cfg.UIFRate,
		UIFCeiling:         cfg.UIFCeiling,
		SDLRate:            cfg.SDLRate,
		SDLExemptThreshold: cfg.SDLExemptThreshold,
	}

	saved, err := env.svc.UpdateTaxConfig(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 2026, saved.TaxYear)

	broken := req
	broken.Brackets = []payroll.Bracket{{Min: dec("0"), Max: nil, Rate: dec("1.5"), BaseTax: dec("0")}}
	_, err = env.svc.UpdateTaxConfig(ctx, broken)
	var cfgErr *payroll.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))

	got, err := env.svc.GetTaxConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2026, got.TaxYear)
}
