package roster

import (
	"fmt"
	"time"

	"github.com/staffpay/staffpay-backend-go/internal/pkg/validator"
)

// ========== ROSTER DTOs ==========

type CreateRosterRequest struct {
	ZoneID    string `json:"zoneId"`
	WeekStart string `json:"weekStart"`
}

func (r *CreateRosterRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.ZoneID) {
		errs.Add("zoneId", "zoneId is required")
	}
	if _, ok := validator.IsValidDate(r.WeekStart); !ok {
		errs.Add("weekStart", "invalid date format, use YYYY-MM-DD")
	}
	return errs.Err()
}

type AssignmentRequest struct {
	StaffID     string `json:"staffId"`
	DayOfWeek   int    `json:"dayOfWeek"`
	Shift       string `json:"shift,omitempty"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	LunchLength *int   `json:"lunchLength,omitempty"`
}

// Day index conventions accepted on input. The attendance history view counts
// from Sunday.
const (
	WeekIndexISO    = "iso"
	WeekIndexSunday = "sunday"
)

type BatchAssignRequest struct {
	RosterID    string              `json:"-"`
	Assignments []AssignmentRequest `json:"assignments"`
	Publish     bool                `json:"publish"`
	// WeekIndex is the convention of every dayOfWeek in the batch; empty means iso.
	WeekIndex string `json:"weekIndex,omitempty"`
}

// Canonicalize converts Sunday-based day indexes to the canonical Monday=0
// form. It must run before Validate.
func (r *BatchAssignRequest) Canonicalize() error {
	switch r.WeekIndex {
	case "", WeekIndexISO:
		r.WeekIndex = WeekIndexISO
		return nil
	case WeekIndexSunday:
	default:
		return validator.ValidationErrors{{Field: "weekIndex", Message: "weekIndex must be iso or sunday"}}
	}

	var errs validator.ValidationErrors
	for i := range r.Assignments {
		day, err := FromSundayIndex(r.Assignments[i].DayOfWeek)
		if err != nil {
			errs.Add(fmt.Sprintf("assignments[%d].dayOfWeek", i), "dayOfWeek must be between 0 (Sunday) and 6 (Saturday)")
			continue
		}
		r.Assignments[i].DayOfWeek = int(day)
	}
	if err := errs.Err(); err != nil {
		return err
	}
	r.WeekIndex = WeekIndexISO
	return nil
}

// Validate checks field formats. Duplicate (staff, day) pairs are reported by
// the service as a conflict.
func (r *BatchAssignRequest) Validate() error {
	var errs validator.ValidationErrors

	for i, a := range r.Assignments {
		field := fmt.Sprintf("assignments[%d]", i)
		if validator.IsEmpty(a.StaffID) {
			errs.Add(field+".staffId", "staffId is required")
		}
		if !Weekday(a.DayOfWeek).Valid() {
			errs.Add(field+".dayOfWeek", "dayOfWeek must be between 0 (Monday) and 6 (Sunday)")
		}
		if !validator.IsValidClock(a.StartTime) {
			errs.Add(field+".startTime", "invalid time format, use HH:MM")
		}
		if !validator.IsValidClock(a.EndTime) {
			errs.Add(field+".endTime", "invalid time format, use HH:MM")
		}
		if a.LunchLength != nil && (*a.LunchLength < 0 || *a.LunchLength > 600) {
			errs.Add(field+".lunchLength", "must be between 0 and 600 minutes")
		}
	}

	return errs.Err()
}

type AssignmentResponse struct {
	ID              string `json:"id"`
	StaffID         string `json:"staffId"`
	DayOfWeek       int    `json:"dayOfWeek"`
	SundayDayOfWeek int    `json:"sundayDayOfWeek"`
	Date            string `json:"date"`
	Shift           string `json:"shift"`
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
	LunchLength     *int   `json:"lunchLength"`
}

type RosterResponse struct {
	ID          string               `json:"id"`
	ZoneID      string               `json:"zoneId"`
	WeekStart   string               `json:"weekStart"`
	Status      RosterStatus         `json:"status"`
	PublishedAt *time.Time           `json:"publishedAt"`
	Assignments []AssignmentResponse `json:"assignments"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

func NewRosterResponse(r Roster) RosterResponse {
	resp := RosterResponse{
		ID:          r.ID,
		ZoneID:      r.ZoneID,
		WeekStart:   r.WeekStart.Format(validator.DateLayout),
		Status:      r.Status,
		PublishedAt: r.PublishedAt,
		Assignments: make([]AssignmentResponse, 0, len(r.Assignments)),
		UpdatedAt:   r.UpdatedAt,
	}
	for _, a := range r.Assignments {
		resp.Assignments = append(resp.Assignments, AssignmentResponse{
			ID:              a.ID,
			StaffID:         a.StaffID,
			DayOfWeek:       int(a.DayOfWeek),
			SundayDayOfWeek: a.DayOfWeek.SundayIndex(),
			Date:            r.DateOf(a.DayOfWeek).Format(validator.DateLayout),
			Shift:           a.Shift,
			StartTime:       a.StartTime,
			EndTime:         a.EndTime,
			LunchLength:     a.LunchLength,
		})
	}
	return resp
}

// ========== TEMPLATE DTOs ==========

type CreateTemplateRequest struct {
	Name       string     `json:"name"`
	Scope      string     `json:"scope"`
	ZoneID     *string    `json:"zoneId,omitempty"`
	Selections Selections `json:"selections"`
}

func (r *CreateTemplateRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	}
	switch TemplateScope(r.Scope) {
	case TemplateScopeGlobal:
		if r.ZoneID != nil {
			errs.Add("zoneId", "global templates must not set zoneId")
		}
	case TemplateScopeZone:
		if r.ZoneID == nil || validator.IsEmpty(*r.ZoneID) {
			errs.Add("zoneId", "zoneId is required for zone templates")
		} else {
			for zoneID := range r.Selections {
				if zoneID != *r.ZoneID {
					errs.Add("selections", "zone templates may only select staff in their own zone")
					break
				}
			}
		}
	default:
		errs.Add("scope", "scope must be global or zone")
	}
	for _, days := range r.Selections {
		for day := range days {
			if !day.Valid() {
				errs.Add("selections", "day keys must be between 0 (Monday) and 6 (Sunday)")
			}
		}
	}

	return errs.Err()
}

type LoadTemplateRequest struct {
	Current Selections `json:"current"`
}

type TemplateResponse struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Scope      TemplateScope `json:"scope"`
	ZoneID     *string       `json:"zoneId"`
	Selections Selections    `json:"selections"`
	CreatedAt  time.Time     `json:"createdAt"`
}

func NewTemplateResponse(t Template) TemplateResponse {
	return TemplateResponse{
		ID:         t.ID,
		Name:       t.Name,
		Scope:      t.Scope,
		ZoneID:     t.ZoneID,
		Selections: t.Selections.Normalize(),
		CreatedAt:  t.CreatedAt,
	}
}
