package roster

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/staffpay/staffpay-backend-go/internal/domain/roster"
	"github.com/staffpay/staffpay-backend-go/internal/domain/staff"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/database"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/sse"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/validator"
)

const (
	EventRosterSaved     = "roster.saved"
	EventRosterPublished = "roster.published"
)

type EventPublisher interface {
	Publish(topic string, event string, data interface{})
}

type RosterServiceImpl struct {
	tx           database.Transactor
	rosterRepo   roster.RosterRepository
	templateRepo roster.TemplateRepository
	staffRepo    staff.StaffRepository
	zoneRepo     staff.ZoneRepository
	events       EventPublisher
	now          func() time.Time
}

func NewRosterService(
	tx database.Transactor,
	rosterRepo roster.RosterRepository,
	templateRepo roster.TemplateRepository,
	staffRepo staff.StaffRepository,
	zoneRepo staff.ZoneRepository,
	events EventPublisher,
) roster.RosterService {
	return &RosterServiceImpl{
		tx:           tx,
		rosterRepo:   rosterRepo,
		templateRepo: templateRepo,
		staffRepo:    staffRepo,
		zoneRepo:     zoneRepo,
		events:       events,
		now:          time.Now,
	}
}

// ==================== ROSTERS ====================

func (s *RosterServiceImpl) CreateRoster(ctx context.Context, req roster.CreateRosterRequest) (roster.RosterResponse, error) {
	if err := req.Validate(); err != nil {
		return roster.RosterResponse{}, err
	}
	if err := s.ensureZone(ctx, req.ZoneID); err != nil {
		return roster.RosterResponse{}, err
	}

	date, _ := validator.IsValidDate(req.WeekStart)
	weekStart := roster.NormalizeWeekStart(date)

	existing, err := s.rosterRepo.GetByZoneWeek(ctx, req.ZoneID, weekStart)
	if err == nil {
		return roster.NewRosterResponse(existing), nil
	}
	if !errors.Is(err, roster.ErrRosterNotFound) {
		return roster.RosterResponse{}, err
	}

	created, err := s.rosterRepo.Create(ctx, roster.Roster{
		ZoneID:    req.ZoneID,
		WeekStart: weekStart,
		Status:    roster.RosterStatusDraft,
	})
	if err != nil {
		return roster.RosterResponse{}, fmt.Errorf("failed to create roster: %w", err)
	}
	return roster.NewRosterResponse(created), nil
}

func (s *RosterServiceImpl) GetRoster(ctx context.Context, zoneID string, anyDateInWeek string) (roster.RosterResponse, error) {
	var errs validator.ValidationErrors
	if validator.IsEmpty(zoneID) {
		errs.Add("zoneId", "zoneId is required")
	}
	date, ok := validator.IsValidDate(anyDateInWeek)
	if !ok {
		errs.Add("weekStart", "invalid date format, use YYYY-MM-DD")
	}
	if err := errs.Err(); err != nil {
		return roster.RosterResponse{}, err
	}

	r, err := s.rosterRepo.GetByZoneWeek(ctx, zoneID, roster.NormalizeWeekStart(date))
	if err != nil {
		return roster.RosterResponse{}, err
	}
	return roster.NewRosterResponse(r), nil
}

func (s *RosterServiceImpl) GetRosterByID(ctx context.Context, id string) (roster.RosterResponse, error) {
	r, err := s.rosterRepo.GetByID(ctx, id)
	if err != nil {
		return roster.RosterResponse{}, err
	}
	return roster.NewRosterResponse(r), nil
}

// BatchAssign replaces the week's assignments and optionally publishes the
// roster in the same transaction.
func (s *RosterServiceImpl) BatchAssign(ctx context.Context, req roster.BatchAssignRequest) (roster.RosterResponse, error) {
	if err := req.Canonicalize(); err != nil {
		return roster.RosterResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return roster.RosterResponse{}, err
	}

	seen := make(map[string]bool, len(req.Assignments))
	staffIDs := make([]string, 0, len(req.Assignments))
	for _, a := range req.Assignments {
		key := fmt.Sprintf("%s/%d", a.StaffID, a.DayOfWeek)
		if seen[key] {
			return roster.RosterResponse{}, fmt.Errorf("%w: %s on %s", roster.ErrDuplicateAssignment, a.StaffID, roster.Weekday(a.DayOfWeek))
		}
		seen[key] = true
		staffIDs = append(staffIDs, a.StaffID)
	}
	if err := s.ensureStaff(ctx, staffIDs); err != nil {
		return roster.RosterResponse{}, err
	}

	var result roster.Roster
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		r, err := s.rosterRepo.GetByIDForUpdate(txCtx, req.RosterID)
		if err != nil {
			return err
		}
		if err := s.ensureNotRosteredElsewhere(txCtx, r, req.Assignments); err != nil {
			return err
		}

		assignments := make([]roster.Assignment, 0, len(req.Assignments))
		for _, a := range req.Assignments {
			assignments = append(assignments, roster.Assignment{
				RosterID:    r.ID,
				StaffID:     a.StaffID,
				DayOfWeek:   roster.Weekday(a.DayOfWeek),
				Shift:       a.Shift,
				StartTime:   a.StartTime,
				EndTime:     a.EndTime,
				LunchLength: a.LunchLength,
			})
		}
		saved, err := s.rosterRepo.ReplaceAssignments(txCtx, r.ID, assignments)
		if err != nil {
			return fmt.Errorf("failed to replace assignments: %w", err)
		}

		if req.Publish {
			r, err = s.rosterRepo.SetPublished(txCtx, r.ID, s.now().UTC())
			if err != nil {
				return fmt.Errorf("failed to publish roster: %w", err)
			}
		}
		r.Assignments = saved
		result = r
		return nil
	})
	if err != nil {
		return roster.RosterResponse{}, err
	}

	resp := roster.NewRosterResponse(result)
	event := EventRosterSaved
	if req.Publish {
		event = EventRosterPublished
	}
	s.publish(event, resp)
	return resp, nil
}

func (s *RosterServiceImpl) Publish(ctx context.Context, id string) (roster.RosterResponse, error) {
	var result roster.Roster
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		r, err := s.rosterRepo.GetByIDForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		published, err := s.rosterRepo.SetPublished(txCtx, id, s.now().UTC())
		if err != nil {
			return fmt.Errorf("failed to publish roster: %w", err)
		}
		published.Assignments = r.Assignments
		result = published
		return nil
	})
	if err != nil {
		return roster.RosterResponse{}, err
	}

	resp := roster.NewRosterResponse(result)
	s.publish(EventRosterPublished, resp)
	return resp, nil
}

func (s *RosterServiceImpl) PublishedSchedule(ctx context.Context, from, to time.Time) (roster.Schedule, error) {
	rosters, err := s.rosterRepo.ListInRange(ctx, roster.NormalizeWeekStart(from), to, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list rosters: %w", err)
	}
	return roster.NewSchedule(rosters), nil
}

// ==================== TEMPLATES ====================

func (s *RosterServiceImpl) ListTemplates(ctx context.Context) ([]roster.TemplateResponse, error) {
	list, err := s.templateRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]roster.TemplateResponse, 0, len(list))
	for _, t := range list {
		resp = append(resp, roster.NewTemplateResponse(t))
	}
	return resp, nil
}

func (s *RosterServiceImpl) CreateTemplate(ctx context.Context, req roster.CreateTemplateRequest) (roster.TemplateResponse, error) {
	if err := req.Validate(); err != nil {
		return roster.TemplateResponse{}, err
	}
	if req.ZoneID != nil {
		if err := s.ensureZone(ctx, *req.ZoneID); err != nil {
			return roster.TemplateResponse{}, err
		}
	}

	created, err := s.templateRepo.Create(ctx, roster.Template{
		Name:       req.Name,
		Scope:      roster.TemplateScope(req.Scope),
		ZoneID:     req.ZoneID,
		Selections: req.Selections.Normalize(),
	})
	if err != nil {
		return roster.TemplateResponse{}, err
	}
	return roster.NewTemplateResponse(created), nil
}

func (s *RosterServiceImpl) DeleteTemplate(ctx context.Context, id string) error {
	return s.templateRepo.Delete(ctx, id)
}

func (s *RosterServiceImpl) LoadTemplate(ctx context.Context, id string, req roster.LoadTemplateRequest) (roster.Selections, error) {
	t, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return roster.LoadTemplate(t, req.Current), nil
}

// ==================== HELPERS ====================

func (s *RosterServiceImpl) ensureZone(ctx context.Context, zoneID string) error {
	if _, err := s.zoneRepo.GetByID(ctx, zoneID); err != nil {
		if errors.Is(err, staff.ErrZoneNotFound) {
			return validator.ValidationErrors{{Field: "zoneId", Message: "unknown zone"}}
		}
		return err
	}
	return nil
}

// ensureNotRosteredElsewhere rejects a staff member already assigned on the
// same day by another zone's roster for the week.
func (s *RosterServiceImpl) ensureNotRosteredElsewhere(ctx context.Context, r roster.Roster, assignments []roster.AssignmentRequest) error {
	others, err := s.rosterRepo.ListInRange(ctx, r.WeekStart, r.WeekStart.AddDate(0, 0, 6), false)
	if err != nil {
		return err
	}

	booked := make(map[string]string)
	for _, other := range others {
		if other.ID == r.ID || !other.WeekStart.Equal(r.WeekStart) {
			continue
		}
		for _, a := range other.Assignments {
			booked[fmt.Sprintf("%s/%d", a.StaffID, a.DayOfWeek)] = other.ZoneID
		}
	}

	for _, a := range assignments {
		if zoneID, ok := booked[fmt.Sprintf("%s/%d", a.StaffID, a.DayOfWeek)]; ok {
			return fmt.Errorf("%w: %s on %s is rostered in zone %s", roster.ErrDuplicateAssignment, a.StaffID, roster.Weekday(a.DayOfWeek), zoneID)
		}
	}
	return nil
}

func (s *RosterServiceImpl) ensureStaff(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := s.staffRepo.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}

	known := make(map[string]bool, len(found))
	for _, st := range found {
		known[st.ID] = true
	}
	var errs validator.ValidationErrors
	for i, id := range ids {
		if !known[id] {
			errs.Add(fmt.Sprintf("assignments[%d].staffId", i), "unknown staff")
		}
	}
	return errs.Err()
}

func (s *RosterServiceImpl) publish(event string, data interface{}) {
	if s.events != nil {
		s.events.Publish(sse.TopicRoster, event, data)
	}
}
