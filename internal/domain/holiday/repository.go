package holiday

import (
	"context"
	"time"
)

type HolidayRepository interface {
	// Upsert writes a custom holiday, replacing any entry for the date.
	Upsert(ctx context.Context, h Holiday) (Holiday, error)
	// UpsertOfficial inserts official holidays without touching custom or
	// ignored entries and returns how many rows were added.
	UpsertOfficial(ctx context.Context, holidays []Holiday) (int, error)
	ListByRange(ctx context.Context, from, to time.Time) ([]Holiday, error)
	SetIgnored(ctx context.Context, date time.Time, ignored bool) (Holiday, error)
}
