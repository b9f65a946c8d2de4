package payroll

import (
	"runtime"
	"time"

	"github.com/staffpay/staffpay-backend-go/internal/domain/attendance"
	"github.com/staffpay/staffpay-backend-go/internal/domain/holiday"
	"github.com/staffpay/staffpay-backend-go/internal/domain/leave"
	"github.com/staffpay/staffpay-backend-go/internal/domain/payroll"
	"github.com/staffpay/staffpay-backend-go/internal/domain/roster"
	"github.com/staffpay/staffpay-backend-go/internal/domain/settings"
	"github.com/staffpay/staffpay-backend-go/internal/domain/staff"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/cache"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/database"
)

// EventPublisher notifies open dashboards about changes.
type EventPublisher interface {
	Publish(topic string, event string, data interface{})
}

// Dependencies are the collaborators of the payroll service.
type Dependencies struct {
	Tx            database.Transactor
	Runs          payroll.RunRepository
	Payslips      payroll.PayslipRepository
	Overrides     payroll.OverrideRepository
	TaxConfigs    payroll.TaxConfigRepository
	Staff         staff.StaffRepository
	PayGroups     staff.PayGroupRepository
	Zones         staff.ZoneRepository
	Scans         attendance.ScanRepository
	Interventions attendance.InterventionRepository
	Settings      settings.SettingsService
	Holidays      holiday.HolidayService
	Leave         leave.LeaveService
	Rosters       roster.RosterService
	Locker        cache.Locker
	Events        EventPublisher

	// Location is the timezone shifts are attributed in.
	Location *time.Location
	// Concurrency bounds parallel per-staff classification.
	Concurrency int
	// LockTTL bounds how long a finalize may hold the run lock.
	LockTTL time.Duration
}

type PayrollServiceImpl struct {
	Dependencies
	now func() time.Time
}

func NewPayrollService(deps Dependencies) payroll.PayrollService {
	return newPayrollService(deps)
}

func newPayrollService(deps Dependencies) *PayrollServiceImpl {
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	if deps.Concurrency <= 0 {
		deps.Concurrency = runtime.GOMAXPROCS(0)
	}
	if deps.LockTTL <= 0 {
		deps.LockTTL = 2 * time.Minute
	}
	if deps.Locker == nil {
		deps.Locker = cache.NewMemoryLocker()
	}
	return &PayrollServiceImpl{Dependencies: deps, now: time.Now}
}

func (s *PayrollServiceImpl) publish(topic, event string, data interface{}) {
	if s.Events != nil {
		s.Events.Publish(topic, event, data)
	}
}
