package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/staffpay/staffpay-backend-go/internal/domain/attendance"
	"github.com/staffpay/staffpay-backend-go/internal/domain/settings"
	"github.com/staffpay/staffpay-backend-go/internal/domain/staff"
	"github.com/staffpay/staffpay-backend-go/internal/fixtures"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memScans struct {
	scans  []attendance.Scan
	marked []string
}

func (m *memScans) Create(_ context.Context, s attendance.Scan) (attendance.Scan, error) {
	s.ID = "scan-new"
	m.scans = append(m.scans, s)
	return s, nil
}

func (m *memScans) ListByRange(_ context.Context, from, to time.Time, staffID *string) ([]attendance.Scan, error) {
	var out []attendance.Scan
	for _, s := range m.scans {
		if staffID != nil && s.StaffID != *staffID {
			continue
		}
		if !s.At.Before(from) && s.At.Before(to) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memScans) ListStaleSignIns(_ context.Context, before time.Time) ([]attendance.Scan, error) {
	var out []attendance.Scan
	for _, s := range m.scans {
		if s.Kind == attendance.ScanSignIn && !s.IsAutoSignedOut && s.At.Before(before) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memScans) MarkAutoSignedOut(_ context.Context, ids []string) error {
	m.marked = append(m.marked, ids...)
	return nil
}

type memInterventions struct {
	attendance.InterventionRepository
	entries []attendance.Intervention
}

func (m *memInterventions) Create(_ context.Context, i attendance.Intervention) (attendance.Intervention, error) {
	m.entries = append(m.entries, i)
	return i, nil
}

type memStaff struct {
	staff.StaffRepository
}

func (memStaff) GetByID(_ context.Context, id string) (staff.Staff, error) {
	if id != "s1" {
		return staff.Staff{}, staff.ErrStaffNotFound
	}
	return staff.Staff{ID: "s1", Name: "Abe"}, nil
}

type stubSettings struct {
	settings.SettingsService
	current settings.Settings
}

func (s *stubSettings) Current(_ context.Context) (settings.Settings, error) {
	return s.current, nil
}

func newTestService(st settings.Settings, scans *memScans, interventions *memInterventions) *AttendanceServiceImpl {
	svc := NewAttendanceService(passthroughTx{}, scans, interventions, memStaff{}, &stubSettings{current: st}, nil).(*AttendanceServiceImpl)
	svc.now = func() time.Time { return time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC) }
	return svc
}

// ===== ATTENDANCE SERVICE TESTS =====

func TestAttendanceService_RecordScan_UnknownStaff(t *testing.T) {
	scans := &memScans{}
	svc := newTestService(fixtures.GetDefaultSettings(), scans, &memInterventions{})

	_, err := svc.RecordScan(context.Background(), attendance.RecordScanRequest{StaffID: "nobody", Kind: "sign_in"})

	var verr validator.ValidationErrors
	assert.True(t, errors.As(err, &verr))
	assert.Empty(t, scans.scans)
}

func TestAttendanceService_RecordScan_AutoSignIn(t *testing.T) {
	st := fixtures.GetDefaultSettings()
	st.AutoSignIn = settings.Toggle{Enabled: true, Value: 14}
	scans := &memScans{}
	svc := newTestService(st, scans, &memInterventions{})
	ctx := context.Background()

	resp, err := svc.RecordScan(ctx, attendance.RecordScanRequest{StaffID: "s1", Kind: "sign_out"})
	require.NoError(t, err)
	assert.True(t, resp.IsAutoSignedIn)
	assert.Equal(t, "scanner", resp.Source)

	_, err = svc.RecordScan(ctx, attendance.RecordScanRequest{StaffID: "s1", Kind: "sign_in", At: "2025-03-04T13:00:00Z"})
	require.NoError(t, err)
	resp, err = svc.RecordScan(ctx, attendance.RecordScanRequest{StaffID: "s1", Kind: "sign_out", At: "2025-03-04T17:00:00Z"})
	require.NoError(t, err)
	assert.False(t, resp.IsAutoSignedIn)
}

func TestAttendanceService_SweepStaleShifts(t *testing.T) {
	now := time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)
	scans := &memScans{scans: []attendance.Scan{
		{ID: "old", StaffID: "s1", Kind: attendance.ScanSignIn, At: now.Add(-20 * time.Hour)},
		{ID: "fresh", StaffID: "s2", Kind: attendance.ScanSignIn, At: now.Add(-2 * time.Hour)},
	}}
	interventions := &memInterventions{}
	svc := newTestService(fixtures.GetDefaultSettings(), scans, interventions)

	n, err := svc.SweepStaleShifts(context.Background(), now)

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"old"}, scans.marked)
	require.Len(t, interventions.entries, 1)
	assert.Equal(t, attendance.InterventionAutoSignOut, interventions.entries[0].Kind)
	assert.Equal(t, SystemActor, interventions.entries[0].Author)
}

func TestAttendanceService_SweepStaleShifts_Disabled(t *testing.T) {
	st := fixtures.GetDefaultSettings()
	st.AutoSignOut.Enabled = false
	now := time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)
	scans := &memScans{scans: []attendance.Scan{
		{ID: "old", StaffID: "s1", Kind: attendance.ScanSignIn, At: now.Add(-20 * time.Hour)},
	}}
	svc := newTestService(st, scans, &memInterventions{})

	n, err := svc.SweepStaleShifts(context.Background(), now)

	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, scans.marked)
}
