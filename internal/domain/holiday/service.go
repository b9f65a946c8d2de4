package holiday

import (
	"context"
	"time"
)

type HolidayService interface {
	ListHolidays(ctx context.Context, year int) ([]HolidayResponse, error)
	CreateHoliday(ctx context.Context, req CreateHolidayRequest) (HolidayResponse, error)
	SetIgnored(ctx context.Context, date string, ignored bool) (HolidayResponse, error)
	SyncYear(ctx context.Context, year int) (SyncResponse, error)
	// SetForRange returns the holidays between from and to inclusive.
	SetForRange(ctx context.Context, from, to time.Time) (Set, error)
}
