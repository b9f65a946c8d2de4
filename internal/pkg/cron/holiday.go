package cron

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/staffpay/staffpay-backend-go/internal/domain/holiday"
)

// HolidayJobs keeps the official holidays of the current and next year in
// the database. A year is fetched once per process unless the sync fails.
type HolidayJobs struct {
	holidayService holiday.HolidayService
	interval       time.Duration
	now            func() time.Time

	mu     sync.Mutex
	synced map[int]bool
}

func NewHolidayJobs(holidayService holiday.HolidayService, interval time.Duration) *HolidayJobs {
	return &HolidayJobs{
		holidayService: holidayService,
		interval:       interval,
		now:            time.Now,
		synced:         make(map[int]bool),
	}
}

func (j *HolidayJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob(Job{
		Name:     "sync_public_holidays",
		Interval: j.interval,
		Delay:    5 * time.Second,
		Fn:       j.SyncHolidays,
	})
}

func (j *HolidayJobs) SyncHolidays(ctx context.Context) error {
	year := j.now().Year()

	var errs []error
	for _, y := range []int{year, year + 1} {
		j.mu.Lock()
		done := j.synced[y]
		j.mu.Unlock()
		if done {
			continue
		}

		resp, err := j.holidayService.SyncYear(ctx, y)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		j.mu.Lock()
		j.synced[y] = true
		j.mu.Unlock()
		slog.Info("cron: public holidays synced", "year", y, "added", resp.Added)
	}
	return errors.Join(errs...)
}
