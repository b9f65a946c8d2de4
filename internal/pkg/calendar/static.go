package calendar

import (
	"context"
	"time"

	"github.com/staffpay/staffpay-backend-go/internal/domain/holiday"
)

type fixedHoliday struct {
	month time.Month
	day   int
	name  string
}

var southAfricanFixed = []fixedHoliday{
	{time.January, 1, "New Year's Day"},
	{time.March, 21, "Human Rights Day"},
	{time.April, 27, "Freedom Day"},
	{time.May, 1, "Workers' Day"},
	{time.June, 16, "Youth Day"},
	{time.August, 9, "National Women's Day"},
	{time.September, 24, "Heritage Day"},
	{time.December, 16, "Day of Reconciliation"},
	{time.December, 25, "Christmas Day"},
	{time.December, 26, "Day of Goodwill"},
}

// StaticProvider computes South African public holidays without any network
// access. A holiday falling on a Sunday is also observed on the Monday.
type StaticProvider struct{}

func NewStaticProvider() *StaticProvider {
	return &StaticProvider{}
}

func (StaticProvider) Holidays(_ context.Context, year int) ([]holiday.Holiday, error) {
	var out []holiday.Holiday
	taken := make(map[time.Time]bool)
	add := func(date time.Time, name string) {
		if taken[date] {
			return
		}
		taken[date] = true
		out = append(out, holiday.Holiday{Date: date, Name: name})
	}

	easter := EasterSunday(year)
	dates := make([]holiday.Holiday, 0, len(southAfricanFixed)+2)
	for _, f := range southAfricanFixed {
		dates = append(dates, holiday.Holiday{Date: time.Date(year, f.month, f.day, 0, 0, 0, 0, time.UTC), Name: f.name})
	}
	dates = append(dates,
		holiday.Holiday{Date: easter.AddDate(0, 0, -2), Name: "Good Friday"},
		holiday.Holiday{Date: easter.AddDate(0, 0, 1), Name: "Family Day"},
	)

	for _, h := range dates {
		add(h.Date, h.Name)
	}
	for _, h := range dates {
		if h.Date.Weekday() == time.Sunday {
			add(h.Date.AddDate(0, 0, 1), h.Name+" (observed)")
		}
	}
	return out, nil
}

// EasterSunday returns the Gregorian Easter date for year.
func EasterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
