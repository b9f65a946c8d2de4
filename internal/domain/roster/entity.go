package roster

import (
	"time"

	"github.com/staffpay/staffpay-backend-go/internal/pkg/validator"
)

type RosterStatus string

const (
	RosterStatusDraft     RosterStatus = "draft"
	RosterStatusPublished RosterStatus = "published"
)

// Roster is one zone's schedule for the week starting WeekStart (a Monday).
type Roster struct {
	ID          string
	ZoneID      string
	WeekStart   time.Time
	Status      RosterStatus
	PublishedAt *time.Time
	Assignments []Assignment
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DateOf returns the calendar date of a weekday within the roster's week.
func (r Roster) DateOf(d Weekday) time.Time {
	return r.WeekStart.AddDate(0, 0, int(d))
}

type Assignment struct {
	ID          string
	RosterID    string
	StaffID     string
	DayOfWeek   Weekday
	Shift       string
	StartTime   string // "HH:MM"
	EndTime     string // "HH:MM"
	LunchLength *int   // minutes, falls back to the staff default
}

// Window returns the shift's start and end instants on date in loc. An end
// time at or before the start time rolls over to the next day.
func (a Assignment) Window(date time.Time, loc *time.Location) (time.Time, time.Time) {
	startMin, _ := validator.ClockMinutes(a.StartTime)
	endMin, _ := validator.ClockMinutes(a.EndTime)
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	start := day.Add(time.Duration(startMin) * time.Minute)
	end := day.Add(time.Duration(endMin) * time.Minute)
	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	return start, end
}

// Schedule indexes published assignments by staff member and date.
type Schedule map[string]map[string]Assignment

// NewSchedule builds a Schedule from rosters, skipping drafts. A staff member
// has at most one assignment per day across zones; BatchAssign rejects a
// second one.
func NewSchedule(rosters []Roster) Schedule {
	s := make(Schedule)
	for _, r := range rosters {
		if r.Status != RosterStatusPublished {
			continue
		}
		for _, a := range r.Assignments {
			days, ok := s[a.StaffID]
			if !ok {
				days = make(map[string]Assignment)
				s[a.StaffID] = days
			}
			days[r.DateOf(a.DayOfWeek).Format(validator.DateLayout)] = a
		}
	}
	return s
}

// On returns the staff member's assignment for date.
func (s Schedule) On(staffID string, date time.Time) (Assignment, bool) {
	a, ok := s[staffID][date.Format(validator.DateLayout)]
	return a, ok
}

// ========== TEMPLATES ==========

type TemplateScope string

const (
	TemplateScopeGlobal TemplateScope = "global"
	TemplateScopeZone   TemplateScope = "zone"
)

type Template struct {
	ID         string
	Name       string
	Scope      TemplateScope
	ZoneID     *string
	Selections Selections
	CreatedAt  time.Time
}
