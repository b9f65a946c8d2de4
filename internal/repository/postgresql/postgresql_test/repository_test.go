package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/staffpay/staffpay-backend-go/internal/domain/leave"
	"github.com/staffpay/staffpay-backend-go/internal/domain/payroll"
	"github.com/staffpay/staffpay-backend-go/internal/domain/roster"
	"github.com/staffpay/staffpay-backend-go/internal/domain/settings"
	"github.com/staffpay/staffpay-backend-go/internal/domain/staff"
	"github.com/staffpay/staffpay-backend-go/internal/fixtures"
	"github.com/staffpay/staffpay-backend-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func createStaff(t *testing.T, ctx context.Context, repo staff.StaffRepository, name string) staff.Staff {
	t.Helper()
	s, err := repo.Create(ctx, staff.Staff{
		Name:               name,
		Rates:              staff.IndividualRates{HourlyRate: decimal.NewFromInt(100)},
		PayeEnabled:        true,
		UIFEnabled:         true,
		AnnualLeaveBalance: decimal.NewFromInt(1),
		Deductions: []staff.DeductionSlot{
			{Name: "Medical", Value: staff.Percent(decimal.RequireFromString("0.05"))},
		},
		IsActive: true,
	})
	require.NoError(t, err)
	return s
}

// ===== STAFF REPOSITORY TESTS =====

func TestStaffRepository_CreateAndDeductBalance(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewStaffRepository(setup.DB)

	s := createStaff(t, ctx, repo, "Abe")
	got, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Abe", got.Name)
	require.Len(t, got.Deductions, 1)
	assert.Equal(t, staff.DeductionPercent, got.Deductions[0].Value.Kind())

	require.NoError(t, repo.DeductLeaveBalance(ctx, s.ID, staff.LeaveBalanceAnnual, decimal.NewFromInt(1)))
	err = repo.DeductLeaveBalance(ctx, s.ID, staff.LeaveBalanceAnnual, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, staff.ErrInsufficientLeaveBalance)

	_, err = repo.GetByID(ctx, "0199a1b2-0000-7000-8000-000000000000")
	assert.ErrorIs(t, err, staff.ErrStaffNotFound)
}

// ===== LEAVE REPOSITORY TESTS =====

func TestLeaveRepository_CreateIfAbsentSkipsDuplicates(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	s := createStaff(t, ctx, postgresql.NewStaffRepository(setup.DB), "Bea")
	repo := postgresql.NewLeaveRepository(setup.DB)

	rec := leave.LeaveRecord{
		StaffID:   s.ID,
		Type:      leave.LeaveTypeAnnual,
		StartDate: date(2025, 3, 3),
		EndDate:   date(2025, 3, 3),
		Days:      decimal.NewFromInt(1),
		Status:    leave.LeaveStatusApproved,
	}
	first, created, err := repo.CreateIfAbsent(ctx, rec)
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := repo.CreateIfAbsent(ctx, rec)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	approved, err := repo.ListApprovedInRange(ctx, date(2025, 3, 1), date(2025, 3, 31))
	require.NoError(t, err)
	assert.Len(t, approved, 1)
}

// ===== PAYROLL REPOSITORY TESTS =====

func TestRunRepository_FinalizeIsOneWay(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	tx := postgresql.NewTransactor(setup.DB)
	runs := postgresql.NewRunRepository(setup.DB)

	run, err := runs.Create(ctx, payroll.Run{PeriodStart: date(2025, 3, 1), PeriodEnd: date(2025, 3, 31)})
	require.NoError(t, err)

	err = tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if _, err := runs.GetByIDForUpdate(txCtx, run.ID); err != nil {
			return err
		}
		_, err := runs.MarkFinalized(txCtx, run.ID, time.Now(), "admin")
		return err
	})
	require.NoError(t, err)

	_, err = runs.MarkFinalized(ctx, run.ID, time.Now(), "admin")
	assert.ErrorIs(t, err, payroll.ErrRunFinalized)

	covered, err := runs.HasFinalizedCovering(ctx, date(2025, 3, 15))
	require.NoError(t, err)
	assert.True(t, covered)
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	tx := postgresql.NewTransactor(setup.DB)
	zones := postgresql.NewZoneRepository(setup.DB)

	boom := errors.New("boom")
	err := tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if _, err := zones.Create(txCtx, staff.Zone{Name: "North"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	list, err := zones.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestTaxConfigRepository_SeedAndRead(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewTaxConfigRepository(setup.DB)

	_, err := repo.Get(ctx)
	assert.ErrorIs(t, err, payroll.ErrTaxConfigNotFound)

	require.NoError(t, fixtures.SeedTaxConfig(ctx, repo))
	cfg, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, fixtures.GetDefaultTaxConfig().TaxYear, cfg.TaxYear)
}

// ===== SETTINGS AND ROSTER REPOSITORY TESTS =====

func TestSettingsRepository_VersionIncrements(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewSettingsRepository(setup.DB)

	_, err := repo.Get(ctx)
	assert.ErrorIs(t, err, settings.ErrSettingsNotFound)

	first, err := repo.Save(ctx, fixtures.GetDefaultSettings())
	require.NoError(t, err)
	second, err := repo.Save(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, first.Version+1, second.Version)

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.Version, got.Version)
	assert.Equal(t, 15, got.EarlyTolerance.Value)
}

func TestRosterRepository_ReplaceAndPublish(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	s := createStaff(t, ctx, postgresql.NewStaffRepository(setup.DB), "Cas")
	zone, err := postgresql.NewZoneRepository(setup.DB).Create(ctx, staff.Zone{Name: "North"})
	require.NoError(t, err)
	repo := postgresql.NewRosterRepository(setup.DB)

	r, err := repo.Create(ctx, roster.Roster{ZoneID: zone.ID, WeekStart: date(2025, 3, 3), Status: roster.RosterStatusDraft})
	require.NoError(t, err)

	_, err = repo.ReplaceAssignments(ctx, r.ID, []roster.Assignment{
		{StaffID: s.ID, DayOfWeek: roster.Sunday, StartTime: "08:00", EndTime: "16:00"},
	})
	require.NoError(t, err)
	_, err = repo.SetPublished(ctx, r.ID, time.Now())
	require.NoError(t, err)

	list, err := repo.ListInRange(ctx, date(2025, 3, 9), date(2025, 3, 9), true)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Len(t, list[0].Assignments, 1)
	assert.Equal(t, roster.Sunday, list[0].Assignments[0].DayOfWeek)
}
