package payroll

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/staffpay/staffpay-backend-go/internal/domain/attendance"
	"github.com/staffpay/staffpay-backend-go/internal/domain/holiday"
	"github.com/staffpay/staffpay-backend-go/internal/domain/leave"
	"github.com/staffpay/staffpay-backend-go/internal/domain/payroll"
	"github.com/staffpay/staffpay-backend-go/internal/domain/roster"
	"github.com/staffpay/staffpay-backend-go/internal/domain/settings"
	"github.com/staffpay/staffpay-backend-go/internal/domain/staff"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/validator"
)

type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ========== RUNS ==========

type memRuns struct {
	mu   sync.Mutex
	runs map[string]payroll.Run
	seq  int
}

func newMemRuns() *memRuns { return &memRuns{runs: make(map[string]payroll.Run)} }

func (m *memRuns) Create(_ context.Context, r payroll.Run) (payroll.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	r.ID = fmt.Sprintf("run-%d", m.seq)
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	m.runs[r.ID] = r
	return r, nil
}

func (m *memRuns) GetByID(_ context.Context, id string) (payroll.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[id]
	if !ok {
		return payroll.Run{}, payroll.ErrRunNotFound
	}
	return r, nil
}

func (m *memRuns) GetByIDForUpdate(ctx context.Context, id string) (payroll.Run, error) {
	return m.GetByID(ctx, id)
}

func (m *memRuns) List(_ context.Context) ([]payroll.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]payroll.Run, 0, len(m.runs))
	for _, r := range m.runs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memRuns) MarkFinalized(_ context.Context, id string, at time.Time, by string) (payroll.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[id]
	if !ok {
		return payroll.Run{}, payroll.ErrRunNotFound
	}
	r.Status = payroll.RunStatusFinalized
	r.FinalizedAt = &at
	r.FinalizedBy = &by
	m.runs[id] = r
	return r, nil
}

func (m *memRuns) Touch(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.runs[id]
	r.UpdatedAt = time.Now()
	m.runs[id] = r
	return nil
}

func (m *memRuns) HasFinalizedCovering(_ context.Context, date time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.runs {
		if r.Status == payroll.RunStatusFinalized && !date.Before(r.PeriodStart) && !date.After(r.PeriodEnd) {
			return true, nil
		}
	}
	return false, nil
}

type memPayslips struct {
	mu       sync.Mutex
	byRun    map[string][]payroll.Payslip
	replaced int
}

func newMemPayslips() *memPayslips { return &memPayslips{byRun: make(map[string][]payroll.Payslip)} }

func (m *memPayslips) ReplaceForRun(_ context.Context, runID string, payslips []payroll.Payslip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]payroll.Payslip, len(payslips))
	for i, p := range payslips {
		p.ID = fmt.Sprintf("%s-slip-%d", runID, i)
		stored[i] = p
	}
	m.byRun[runID] = stored
	m.replaced++
	return nil
}

func (m *memPayslips) ListByRun(_ context.Context, runID string) ([]payroll.Payslip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]payroll.Payslip, len(m.byRun[runID]))
	copy(out, m.byRun[runID])
	return out, nil
}

type memOverrides struct {
	mu        sync.Mutex
	overrides map[string]payroll.DailyOverride
}

func newMemOverrides() *memOverrides {
	return &memOverrides{overrides: make(map[string]payroll.DailyOverride)}
}

func overrideKey(staffID string, date time.Time) string {
	return staffID + "|" + date.Format(validator.DateLayout)
}

func (m *memOverrides) Upsert(_ context.Context, o payroll.DailyOverride) (payroll.DailyOverride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides[overrideKey(o.StaffID, o.Date)] = o
	return o, nil
}

func (m *memOverrides) Delete(_ context.Context, staffID string, date time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := overrideKey(staffID, date)
	if _, ok := m.overrides[key]; !ok {
		return payroll.ErrOverrideNotFound
	}
	delete(m.overrides, key)
	return nil
}

func (m *memOverrides) ListInRange(_ context.Context, from, to time.Time) ([]payroll.DailyOverride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []payroll.DailyOverride
	for _, o := range m.overrides {
		if !o.Date.Before(from) && !o.Date.After(to) {
			out = append(out, o)
		}
	}
	return out, nil
}

type memTaxConfig struct {
	cfg *payroll.TaxConfig
}

func (m *memTaxConfig) Get(_ context.Context) (payroll.TaxConfig, error) {
	if m.cfg == nil {
		return payroll.TaxConfig{}, payroll.ErrTaxConfigNotFound
	}
	return *m.cfg, nil
}

func (m *memTaxConfig) Save(_ context.Context, c payroll.TaxConfig) (payroll.TaxConfig, error) {
	c.UpdatedAt = time.Now()
	m.cfg = &c
	return c, nil
}

// ========== STAFF ==========

type memStaff struct {
	staff.StaffRepository
	members []staff.Staff
}

func (m *memStaff) GetByID(_ context.Context, id string) (staff.Staff, error) {
	for _, s := range m.members {
		if s.ID == id {
			return s, nil
		}
	}
	return staff.Staff{}, staff.ErrStaffNotFound
}

func (m *memStaff) List(_ context.Context, filter staff.StaffFilter) ([]staff.Staff, error) {
	var out []staff.Staff
	for _, s := range m.members {
		if filter.ActiveOnly && !s.IsActive {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

type memZones struct {
	staff.ZoneRepository
	zones []staff.Zone
}

func (m *memZones) GetByID(_ context.Context, id string) (staff.Zone, error) {
	for _, z := range m.zones {
		if z.ID == id {
			return z, nil
		}
	}
	return staff.Zone{}, staff.ErrZoneNotFound
}

func (m *memZones) List(_ context.Context) ([]staff.Zone, error) {
	return m.zones, nil
}

type memPayGroups struct {
	staff.PayGroupRepository
	groups []staff.PayGroup
}

func (m *memPayGroups) List(_ context.Context) ([]staff.PayGroup, error) {
	return m.groups, nil
}

// ========== ATTENDANCE ==========

type memScans struct {
	attendance.ScanRepository
	scans []attendance.Scan
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

type memInterventions struct {
	attendance.InterventionRepository
	mu      sync.Mutex
	entries []attendance.Intervention
}

func (m *memInterventions) Create(_ context.Context, i attendance.Intervention) (attendance.Intervention, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i.ID = fmt.Sprintf("iv-%d", len(m.entries)+1)
	m.entries = append(m.entries, i)
	return i, nil
}

// ========== COLLABORATING SERVICES ==========

type stubSettings struct {
	settings.SettingsService
	current settings.Settings
}

func (s *stubSettings) Current(_ context.Context) (settings.Settings, error) {
	return s.current, nil
}

type stubHolidays struct {
	holiday.HolidayService
	set holiday.Set
}

func (s *stubHolidays) SetForRange(_ context.Context, _, _ time.Time) (holiday.Set, error) {
	return s.set, nil
}

type stubLeave struct {
	leave.LeaveService
	set leave.Set
}

func (s *stubLeave) ApprovedSet(_ context.Context, _, _ time.Time) (leave.Set, error) {
	return s.set, nil
}

type stubRosters struct {
	roster.RosterService
	schedule roster.Schedule
}

func (s *stubRosters) PublishedSchedule(_ context.Context, _, _ time.Time) (roster.Schedule, error) {
	return s.schedule, nil
}

type recordedEvent struct {
	topic string
	event string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(topic string, event string, _ interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{topic: topic, event: event})
}

func (p *recordingPublisher) has(event string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.events {
		if e.event == event {
			return true
		}
	}
	return false
}
