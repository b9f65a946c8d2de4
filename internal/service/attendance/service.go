package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/staffpay/staffpay-backend-go/internal/domain/attendance"
	"github.com/staffpay/staffpay-backend-go/internal/domain/settings"
	"github.com/staffpay/staffpay-backend-go/internal/domain/staff"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/database"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/sse"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/validator"
)

const (
	EventScanRecorded = "attendance.scan.recorded"
	EventShiftsSwept  = "attendance.shifts.swept"

	// SystemActor authors automatic interventions.
	SystemActor = "system"
)

type EventPublisher interface {
	Publish(topic string, event string, data interface{})
}

type AttendanceServiceImpl struct {
	tx database.Transactor
	attendance.ScanRepository
	attendance.InterventionRepository
	staffRepo       staff.StaffRepository
	settingsService settings.SettingsService
	events          EventPublisher
	now             func() time.Time
}

func NewAttendanceService(
	tx database.Transactor,
	scanRepo attendance.ScanRepository,
	interventionRepo attendance.InterventionRepository,
	staffRepo staff.StaffRepository,
	settingsService settings.SettingsService,
	events EventPublisher,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		tx:                     tx,
		ScanRepository:         scanRepo,
		InterventionRepository: interventionRepo,
		staffRepo:              staffRepo,
		settingsService:        settingsService,
		events:                 events,
		now:                    time.Now,
	}
}

// RecordScan stores a sign-in or sign-out. A sign-out without an open sign-in
// is marked auto signed in when that feature is enabled.
func (a *AttendanceServiceImpl) RecordScan(ctx context.Context, req attendance.RecordScanRequest) (attendance.ScanResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ScanResponse{}, err
	}

	if _, err := a.staffRepo.GetByID(ctx, req.StaffID); err != nil {
		if errors.Is(err, staff.ErrStaffNotFound) {
			return attendance.ScanResponse{}, validator.ValidationErrors{{Field: "staffId", Message: "unknown staff"}}
		}
		return attendance.ScanResponse{}, err
	}

	at := a.now().UTC()
	if req.At != "" {
		at, _ = validator.IsValidDateTime(req.At)
	}
	source := req.Source
	if source == "" {
		source = "scanner"
	}

	scan := attendance.Scan{
		StaffID: req.StaffID,
		Kind:    attendance.ScanKind(req.Kind),
		At:      at,
		Source:  source,
	}

	if scan.Kind == attendance.ScanSignOut {
		st, err := a.settingsService.Current(ctx)
		if err != nil {
			return attendance.ScanResponse{}, fmt.Errorf("failed to load settings: %w", err)
		}
		if st.AutoSignIn.Enabled {
			open, err := a.hasOpenSignIn(ctx, req.StaffID, at, st)
			if err != nil {
				return attendance.ScanResponse{}, err
			}
			scan.IsAutoSignedIn = !open
		}
	}

	created, err := a.ScanRepository.Create(ctx, scan)
	if err != nil {
		return attendance.ScanResponse{}, fmt.Errorf("failed to record scan: %w", err)
	}

	resp := attendance.NewScanResponse(created)
	if a.events != nil {
		a.events.Publish(sse.TopicPayroll, EventScanRecorded, resp)
	}
	return resp, nil
}

// hasOpenSignIn reports whether the staff member's last scan before at is a
// sign-in within the auto sign-in window.
func (a *AttendanceServiceImpl) hasOpenSignIn(ctx context.Context, staffID string, at time.Time, st settings.Settings) (bool, error) {
	window := time.Duration(st.AutoSignIn.Value) * time.Hour
	if window <= 0 {
		window = 24 * time.Hour
	}

	scans, err := a.ScanRepository.ListByRange(ctx, at.Add(-window), at, &staffID)
	if err != nil {
		return false, fmt.Errorf("failed to list scans: %w", err)
	}
	if len(scans) == 0 {
		return false, nil
	}
	return scans[len(scans)-1].Kind == attendance.ScanSignIn, nil
}

func (a *AttendanceServiceImpl) ListScans(ctx context.Context, filter attendance.ScanFilter) ([]attendance.ScanResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	start, _ := validator.IsValidDate(filter.Start)
	end, _ := validator.IsValidDate(filter.End)

	scans, err := a.ScanRepository.ListByRange(ctx, start, end.AddDate(0, 0, 1), filter.StaffID)
	if err != nil {
		return nil, err
	}

	resp := make([]attendance.ScanResponse, 0, len(scans))
	for _, s := range scans {
		resp = append(resp, attendance.NewScanResponse(s))
	}
	return resp, nil
}

func (a *AttendanceServiceImpl) ListInterventions(ctx context.Context, filter attendance.InterventionFilter) ([]attendance.InterventionResponse, error) {
	entries, err := a.InterventionRepository.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]attendance.InterventionResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, attendance.NewInterventionResponse(e))
	}
	return resp, nil
}

// SweepStaleShifts marks open sign-ins older than the auto sign-out threshold
// and logs an intervention for each. It does nothing while the feature is off.
func (a *AttendanceServiceImpl) SweepStaleShifts(ctx context.Context, now time.Time) (int, error) {
	st, err := a.settingsService.Current(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load settings: %w", err)
	}
	after := st.AutoSignOutAfter()
	if !st.AutoSignOut.Enabled || after <= 0 {
		return 0, nil
	}

	stale, err := a.ScanRepository.ListStaleSignIns(ctx, now.Add(-after))
	if err != nil {
		return 0, fmt.Errorf("failed to list stale sign-ins: %w", err)
	}
	if len(stale) == 0 {
		return 0, nil
	}

	note := fmt.Sprintf("open for more than %d hours", st.AutoSignOut.Value)
	err = a.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		ids := make([]string, 0, len(stale))
		for _, s := range stale {
			ids = append(ids, s.ID)
		}
		if err := a.ScanRepository.MarkAutoSignedOut(txCtx, ids); err != nil {
			return fmt.Errorf("failed to mark scans: %w", err)
		}

		for _, s := range stale {
			_, err := a.InterventionRepository.Create(txCtx, attendance.Intervention{
				StaffID: s.StaffID,
				Date:    s.At,
				Kind:    attendance.InterventionAutoSignOut,
				Author:  SystemActor,
				Note:    &note,
			})
			if err != nil {
				return fmt.Errorf("failed to log intervention: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Info("stale shifts swept", "count", len(stale))
	if a.events != nil {
		a.events.Publish(sse.TopicPayroll, EventShiftsSwept, map[string]int{"count": len(stale)})
	}
	return len(stale), nil
}
