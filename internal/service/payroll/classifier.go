package payroll

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/staffpay/staffpay-backend-go/internal/domain/attendance"
	"github.com/staffpay/staffpay-backend-go/internal/domain/holiday"
	"github.com/staffpay/staffpay-backend-go/internal/domain/leave"
	"github.com/staffpay/staffpay-backend-go/internal/domain/payroll"
	"github.com/staffpay/staffpay-backend-go/internal/domain/roster"
	"github.com/staffpay/staffpay-backend-go/internal/domain/settings"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/validator"
)

// DefaultMaxShift bounds how far apart a sign-in and sign-out may be and still
// pair, and is the stale threshold when auto sign-out has no hour value.
const DefaultMaxShift = 24 * time.Hour

var sixty = decimal.NewFromInt(60)

// Shift is a sign-in paired with its sign-out. Either side may be missing.
type Shift struct {
	SignIn  *attendance.Scan
	SignOut *attendance.Scan
}

// Anchor is the instant that decides which day the shift belongs to.
func (s Shift) Anchor() time.Time {
	if s.SignIn != nil {
		return s.SignIn.At
	}
	return s.SignOut.At
}

// MaxShiftLength returns the pairing window for the given settings.
func MaxShiftLength(st settings.Settings) time.Duration {
	if d := st.AutoSignOutAfter(); d > 0 {
		return d
	}
	return DefaultMaxShift
}

// PairScans pairs each sign-in with the next sign-out of the same staff member.
// A sign-in followed by another sign-in is left open; a sign-out without an
// open sign-in, or further than maxShift from it, stands alone.
func PairScans(scans []attendance.Scan, maxShift time.Duration) []Shift {
	sorted := make([]attendance.Scan, len(scans))
	copy(sorted, scans)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].At.Before(sorted[j].At) })

	var shifts []Shift
	var open *attendance.Scan
	for i := range sorted {
		scan := &sorted[i]
		switch scan.Kind {
		case attendance.ScanSignIn:
			if open != nil {
				shifts = append(shifts, Shift{SignIn: open})
			}
			open = scan
		case attendance.ScanSignOut:
			if open != nil && scan.At.Sub(open.At) <= maxShift {
				shifts = append(shifts, Shift{SignIn: open, SignOut: scan})
				open = nil
				continue
			}
			if open != nil {
				shifts = append(shifts, Shift{SignIn: open})
				open = nil
			}
			shifts = append(shifts, Shift{SignOut: scan})
		}
	}
	if open != nil {
		shifts = append(shifts, Shift{SignIn: open})
	}
	return shifts
}

// GroupShiftsByDate keys shifts by the local calendar date of their anchor.
func GroupShiftsByDate(shifts []Shift, loc *time.Location) map[string][]Shift {
	out := make(map[string][]Shift)
	for _, s := range shifts {
		key := s.Anchor().In(loc).Format(validator.DateLayout)
		out[key] = append(out[key], s)
	}
	return out
}

// ClassifyInput is everything needed to classify one staff member's day.
type ClassifyInput struct {
	StaffID      string
	Date         time.Time // local midnight
	Shifts       []Shift
	Assignment   *roster.Assignment
	DefaultLunch int // minutes
	HoursPerDay  decimal.Decimal
	Holidays     holiday.Set
	Leave        leave.Set
	Settings     settings.Settings
	Now          time.Time
	Location     *time.Location
}

// Classify turns a day's shifts into hour buckets and anomaly flags.
func Classify(in ClassifyInput) payroll.DayResult {
	weekday := roster.WeekdayOf(in.Date)
	day := payroll.DayResult{
		Date:            in.Date.Format(validator.DateLayout),
		DayOfWeek:       int(weekday),
		SundayDayOfWeek: weekday.SundayIndex(),
		HourBuckets:     zeroBuckets(),
		IsHoliday:       in.Holidays.IsHoliday(in.Date),
		Flags:           []payroll.Flag{},
	}
	if in.Assignment != nil {
		start, end := in.Assignment.StartTime, in.Assignment.EndTime
		day.ShiftStart, day.ShiftEnd = &start, &end
	}

	// Approved leave pre-empts everything else.
	if rec, ok := in.Leave.On(in.StaffID, in.Date); ok {
		t := string(rec.Type)
		day.OnLeave = true
		day.LeaveType = &t
		return day
	}

	var shiftStart, shiftEnd time.Time
	if in.Assignment != nil {
		shiftStart, shiftEnd = in.Assignment.Window(in.Date, in.Location)
	}
	early := in.Settings.EarlyTolerance
	late := in.Settings.LateTolerance
	staleAfter := MaxShiftLength(in.Settings)

	var worked time.Duration
	var firstSignIn *time.Time
	completed := 0
	for _, shift := range in.Shifts {
		switch {
		case shift.SignIn != nil && shift.SignOut != nil:
			signIn, signOut := shift.SignIn.At, shift.SignOut.At
			if firstSignIn == nil || signIn.Before(*firstSignIn) {
				firstSignIn = &signIn
			}
			day.SignIn = earliest(day.SignIn, signIn)
			day.SignOut = latest(day.SignOut, signOut)

			if in.Assignment != nil && early.Enabled {
				limit := shiftStart.Add(-time.Duration(early.Value) * time.Minute)
				if signIn.Before(limit) {
					day.TrimmedEarlyMinutes += int(limit.Sub(signIn) / time.Minute)
					signIn = limit
				}
			}
			if in.Assignment != nil && late.Enabled {
				limit := shiftEnd.Add(time.Duration(late.Value) * time.Minute)
				if signOut.After(limit) {
					day.TrimmedLateMinutes += int(signOut.Sub(limit) / time.Minute)
					signOut = limit
				}
			}
			if signOut.After(signIn) {
				worked += signOut.Sub(signIn)
			}
			completed++

		case shift.SignIn != nil:
			signIn := shift.SignIn.At
			if firstSignIn == nil || signIn.Before(*firstSignIn) {
				firstSignIn = &signIn
			}
			day.SignIn = earliest(day.SignIn, signIn)
			stale := shift.SignIn.IsAutoSignedOut || in.Now.Sub(signIn) >= staleAfter
			switch {
			case !stale:
				day.InProgress = true
			case in.Settings.AutoSignOut.Enabled:
				day.Flags = appendFlag(day.Flags, payroll.FlagStaleShift)
			default:
				day.Flags = appendFlag(day.Flags, payroll.FlagIncompleteShift)
			}

		case shift.SignOut != nil:
			day.SignOut = latest(day.SignOut, shift.SignOut.At)
			if in.Settings.AutoSignIn.Enabled {
				day.Flags = appendFlag(day.Flags, payroll.FlagAutoSignedIn)
			} else {
				day.Flags = appendFlag(day.Flags, payroll.FlagIncompleteShift)
			}
		}
	}

	// Absent: rostered, grace elapsed, and no sign-in at or before start+grace.
	// The day pays nothing until a reviewer overrides it.
	absent := false
	if in.Assignment != nil && in.Settings.AbsentGrace.Enabled {
		deadline := shiftStart.Add(time.Duration(in.Settings.AbsentGrace.Value) * time.Minute)
		if !in.Now.Before(deadline) && (firstSignIn == nil || firstSignIn.After(deadline)) {
			day.Flags = appendFlag(day.Flags, payroll.FlagAbsent)
			absent = true
		}
	}
	if absent {
		return day
	}

	minutes := int(worked / time.Minute)
	if completed > 0 {
		lunch := in.DefaultLunch
		if in.Assignment != nil && in.Assignment.LunchLength != nil {
			lunch = *in.Assignment.LunchLength
		}
		day.LunchMinutes = lunch
		minutes -= lunch
	}
	if minutes < 0 {
		minutes = 0
	}
	hours := decimal.NewFromInt(int64(minutes)).Div(sixty).Round(2)

	switch {
	case day.IsHoliday:
		day.Holiday = hours
	case weekday == roster.Sunday:
		day.Sunday = hours
	default:
		day.Regular = decimal.Min(hours, in.HoursPerDay)
		day.Overtime = hours.Sub(day.Regular)
	}
	return day
}

func zeroBuckets() payroll.HourBuckets {
	return payroll.HourBuckets{
		Regular:  decimal.Zero,
		Overtime: decimal.Zero,
		Sunday:   decimal.Zero,
		Holiday:  decimal.Zero,
	}
}

func appendFlag(flags []payroll.Flag, f payroll.Flag) []payroll.Flag {
	for _, existing := range flags {
		if existing == f {
			return flags
		}
	}
	return append(flags, f)
}

func earliest(current *time.Time, t time.Time) *time.Time {
	if current == nil || t.Before(*current) {
		return &t
	}
	return current
}

func latest(current *time.Time, t time.Time) *time.Time {
	if current == nil || t.After(*current) {
		return &t
	}
	return current
}
