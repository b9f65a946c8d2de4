package roster

import (
	"fmt"
	"time"
)

// Weekday is the canonical ISO day index, Monday=0 through Sunday=6.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// sundayIndex maps the canonical index to the Sunday=0 indexing used by the
// attendance history view.
var sundayIndex = [...]int{
	Monday:    1,
	Tuesday:   2,
	Wednesday: 3,
	Thursday:  4,
	Friday:    5,
	Saturday:  6,
	Sunday:    0,
}

func (d Weekday) Valid() bool {
	return d >= Monday && d <= Sunday
}

func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// SundayIndex returns the Sunday=0 index of d.
func (d Weekday) SundayIndex() int {
	return sundayIndex[d]
}

// FromSundayIndex converts a Sunday=0 index to the canonical Weekday.
func FromSundayIndex(i int) (Weekday, error) {
	for d, s := range sundayIndex {
		if s == i {
			return Weekday(d), nil
		}
	}
	return 0, fmt.Errorf("invalid sunday-based weekday index %d", i)
}

// WeekdayOf returns the canonical weekday of t.
func WeekdayOf(t time.Time) Weekday {
	return Weekday((int(t.Weekday()) + 6) % 7)
}

// NormalizeWeekStart returns midnight of the Monday of t's week, in t's location.
func NormalizeWeekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -int(WeekdayOf(day)))
}
