package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/staffpay/staffpay-backend-go/internal/domain/attendance"
)

type AttendanceJobs struct {
	attendanceService attendance.AttendanceService
	interval          time.Duration
	now               func() time.Time
}

func NewAttendanceJobs(attendanceService attendance.AttendanceService, interval time.Duration) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceService: attendanceService,
		interval:          interval,
		now:               time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob(Job{
		Name:     "sweep_stale_shifts",
		Interval: j.interval,
		Fn:       j.SweepStaleShifts,
	})
}

// SweepStaleShifts closes sign-ins left open past the auto sign-out threshold.
func (j *AttendanceJobs) SweepStaleShifts(ctx context.Context) error {
	count, err := j.attendanceService.SweepStaleShifts(ctx, j.now())
	if err != nil {
		return fmt.Errorf("failed to sweep stale shifts: %w", err)
	}
	if count > 0 {
		slog.Info("cron: auto signed out stale shifts", "count", count)
	}
	return nil
}
