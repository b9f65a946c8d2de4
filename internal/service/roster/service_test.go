package roster

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/staffpay/staffpay-backend-go/internal/domain/roster"
	"github.com/staffpay/staffpay-backend-go/internal/domain/staff"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memRosters struct {
	rosters map[string]roster.Roster
	seq     int
}

func (m *memRosters) Create(_ context.Context, r roster.Roster) (roster.Roster, error) {
	m.seq++
	r.ID = fmt.Sprintf("roster-%d", m.seq)
	m.rosters[r.ID] = r
	return r, nil
}

func (m *memRosters) GetByID(_ context.Context, id string) (roster.Roster, error) {
	r, ok := m.rosters[id]
	if !ok {
		return roster.Roster{}, roster.ErrRosterNotFound
	}
	return r, nil
}

func (m *memRosters) GetByIDForUpdate(ctx context.Context, id string) (roster.Roster, error) {
	return m.GetByID(ctx, id)
}

func (m *memRosters) GetByZoneWeek(_ context.Context, zoneID string, weekStart time.Time) (roster.Roster, error) {
	for _, r := range m.rosters {
		if r.ZoneID == zoneID && r.WeekStart.Equal(weekStart) {
			return r, nil
		}
	}
	return roster.Roster{}, roster.ErrRosterNotFound
}

func (m *memRosters) ListInRange(_ context.Context, from, to time.Time, publishedOnly bool) ([]roster.Roster, error) {
	var out []roster.Roster
	for _, r := range m.rosters {
		if publishedOnly && r.Status != roster.RosterStatusPublished {
			continue
		}
		if r.WeekStart.AddDate(0, 0, 6).Before(from) || r.WeekStart.After(to) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *memRosters) ReplaceAssignments(_ context.Context, rosterID string, assignments []roster.Assignment) ([]roster.Assignment, error) {
	r := m.rosters[rosterID]
	for i := range assignments {
		assignments[i].ID = fmt.Sprintf("%s-a%d", rosterID, i)
	}
	r.Assignments = assignments
	m.rosters[rosterID] = r
	return assignments, nil
}

func (m *memRosters) SetPublished(_ context.Context, id string, at time.Time) (roster.Roster, error) {
	r := m.rosters[id]
	r.Status = roster.RosterStatusPublished
	r.PublishedAt = &at
	m.rosters[id] = r
	return r, nil
}

type memTemplates struct {
	templates map[string]roster.Template
}

func (m *memTemplates) Create(_ context.Context, t roster.Template) (roster.Template, error) {
	for _, existing := range m.templates {
		if existing.Name == t.Name {
			return roster.Template{}, roster.ErrTemplateNameExists
		}
	}
	t.ID = fmt.Sprintf("tpl-%d", len(m.templates)+1)
	m.templates[t.ID] = t
	return t, nil
}

func (m *memTemplates) GetByID(_ context.Context, id string) (roster.Template, error) {
	t, ok := m.templates[id]
	if !ok {
		return roster.Template{}, roster.ErrTemplateNotFound
	}
	return t, nil
}

func (m *memTemplates) List(_ context.Context) ([]roster.Template, error) {
	var out []roster.Template
	for _, t := range m.templates {
		out = append(out, t)
	}
	return out, nil
}

func (m *memTemplates) Delete(_ context.Context, id string) error {
	if _, ok := m.templates[id]; !ok {
		return roster.ErrTemplateNotFound
	}
	delete(m.templates, id)
	return nil
}

type memStaff struct {
	staff.StaffRepository
	ids map[string]bool
}

func (m *memStaff) GetByIDs(_ context.Context, ids []string) ([]staff.Staff, error) {
	var out []staff.Staff
	for _, id := range ids {
		if m.ids[id] {
			out = append(out, staff.Staff{ID: id})
		}
	}
	return out, nil
}

type memZones struct {
	staff.ZoneRepository
}

func (memZones) GetByID(_ context.Context, id string) (staff.Zone, error) {
	if id != "north" && id != "south" {
		return staff.Zone{}, staff.ErrZoneNotFound
	}
	return staff.Zone{ID: id}, nil
}

type recordingPublisher struct {
	events []string
}

func (p *recordingPublisher) Publish(_ string, event string, _ interface{}) {
	p.events = append(p.events, event)
}

func newTestService() (*RosterServiceImpl, *memRosters, *recordingPublisher) {
	rosters := &memRosters{rosters: make(map[string]roster.Roster)}
	templates := &memTemplates{templates: make(map[string]roster.Template)}
	staffRepo := &memStaff{ids: map[string]bool{"s1": true, "s2": true}}
	events := &recordingPublisher{}
	svc := NewRosterService(passthroughTx{}, rosters, templates, staffRepo, memZones{}, events).(*RosterServiceImpl)
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC) }
	return svc, rosters, events
}

func shift(staffID string, day roster.Weekday) roster.AssignmentRequest {
	return roster.AssignmentRequest{StaffID: staffID, DayOfWeek: int(day), StartTime: "08:00", EndTime: "17:00"}
}

// ===== ROSTER TESTS =====

func TestRosterService_CreateRoster_NormalizesAndReusesWeek(t *testing.T) {
	svc, rosters, _ := newTestService()
	ctx := context.Background()

	first, err := svc.CreateRoster(ctx, roster.CreateRosterRequest{ZoneID: "north", WeekStart: "2025-03-06"})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-03", first.WeekStart)
	assert.Equal(t, roster.RosterStatusDraft, first.Status)

	second, err := svc.CreateRoster(ctx, roster.CreateRosterRequest{ZoneID: "north", WeekStart: "2025-03-09"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, rosters.rosters, 1)
}

func TestRosterService_CreateRoster_UnknownZone(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.CreateRoster(context.Background(), roster.CreateRosterRequest{ZoneID: "west", WeekStart: "2025-03-03"})

	var verr validator.ValidationErrors
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "zoneId", verr[0].Field)
}

func TestRosterService_BatchAssign_ReplacesAndPublishes(t *testing.T) {
	svc, _, events := newTestService()
	ctx := context.Background()

	r, err := svc.CreateRoster(ctx, roster.CreateRosterRequest{ZoneID: "north", WeekStart: "2025-03-03"})
	require.NoError(t, err)

	_, err = svc.BatchAssign(ctx, roster.BatchAssignRequest{RosterID: r.ID, Assignments: []roster.AssignmentRequest{
		shift("s1", roster.Monday), shift("s2", roster.Monday), shift("s1", roster.Tuesday),
	}})
	require.NoError(t, err)

	resp, err := svc.BatchAssign(ctx, roster.BatchAssignRequest{RosterID: r.ID, Publish: true, Assignments: []roster.AssignmentRequest{
		shift("s2", roster.Sunday),
	}})
	require.NoError(t, err)
	assert.Equal(t, roster.RosterStatusPublished, resp.Status)
	require.Len(t, resp.Assignments, 1)
	assert.Equal(t, "2025-03-09", resp.Assignments[0].Date)
	assert.Equal(t, []string{EventRosterSaved, EventRosterPublished}, events.events)

	schedule, err := svc.PublishedSchedule(ctx, time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, ok := schedule.On("s2", time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC))
	assert.True(t, ok)
	_, ok = schedule.On("s1", time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)
}

func TestRosterService_BatchAssign_DuplicateIsConflict(t *testing.T) {
	svc, rosters, _ := newTestService()
	ctx := context.Background()

	r, err := svc.CreateRoster(ctx, roster.CreateRosterRequest{ZoneID: "north", WeekStart: "2025-03-03"})
	require.NoError(t, err)

	_, err = svc.BatchAssign(ctx, roster.BatchAssignRequest{RosterID: r.ID, Assignments: []roster.AssignmentRequest{
		shift("s1", roster.Monday), shift("s1", roster.Monday),
	}})
	assert.ErrorIs(t, err, roster.ErrDuplicateAssignment)
	assert.Empty(t, rosters.rosters[r.ID].Assignments)
}

func TestRosterService_BatchAssign_SundayIndexedInput(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	r, err := svc.CreateRoster(ctx, roster.CreateRosterRequest{ZoneID: "north", WeekStart: "2025-03-03"})
	require.NoError(t, err)

	// Sunday-based: 0 is Sunday, 1 is Monday.
	resp, err := svc.BatchAssign(ctx, roster.BatchAssignRequest{
		RosterID:  r.ID,
		WeekIndex: roster.WeekIndexSunday,
		Assignments: []roster.AssignmentRequest{
			{StaffID: "s1", DayOfWeek: 0, StartTime: "08:00", EndTime: "17:00"},
			{StaffID: "s2", DayOfWeek: 1, StartTime: "08:00", EndTime: "17:00"},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Assignments, 2)

	byStaff := map[string]roster.AssignmentResponse{}
	for _, a := range resp.Assignments {
		byStaff[a.StaffID] = a
	}
	assert.Equal(t, int(roster.Sunday), byStaff["s1"].DayOfWeek)
	assert.Equal(t, 0, byStaff["s1"].SundayDayOfWeek)
	assert.Equal(t, "2025-03-09", byStaff["s1"].Date)
	assert.Equal(t, int(roster.Monday), byStaff["s2"].DayOfWeek)
	assert.Equal(t, 1, byStaff["s2"].SundayDayOfWeek)
	assert.Equal(t, "2025-03-03", byStaff["s2"].Date)
}

func TestRosterService_BatchAssign_InvalidWeekIndex(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	r, err := svc.CreateRoster(ctx, roster.CreateRosterRequest{ZoneID: "north", WeekStart: "2025-03-03"})
	require.NoError(t, err)

	_, err = svc.BatchAssign(ctx, roster.BatchAssignRequest{RosterID: r.ID, WeekIndex: "lunar", Assignments: []roster.AssignmentRequest{
		shift("s1", roster.Monday),
	}})

	var verr validator.ValidationErrors
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "weekIndex", verr[0].Field)
}

func TestRosterService_BatchAssign_CrossZoneDoubleBookingIsConflict(t *testing.T) {
	svc, rosters, _ := newTestService()
	ctx := context.Background()

	north, err := svc.CreateRoster(ctx, roster.CreateRosterRequest{ZoneID: "north", WeekStart: "2025-03-03"})
	require.NoError(t, err)
	south, err := svc.CreateRoster(ctx, roster.CreateRosterRequest{ZoneID: "south", WeekStart: "2025-03-03"})
	require.NoError(t, err)

	_, err = svc.BatchAssign(ctx, roster.BatchAssignRequest{RosterID: north.ID, Assignments: []roster.AssignmentRequest{
		shift("s1", roster.Monday),
	}})
	require.NoError(t, err)

	_, err = svc.BatchAssign(ctx, roster.BatchAssignRequest{RosterID: south.ID, Assignments: []roster.AssignmentRequest{
		shift("s1", roster.Monday),
	}})
	assert.ErrorIs(t, err, roster.ErrDuplicateAssignment)
	assert.Empty(t, rosters.rosters[south.ID].Assignments)

	// A different day in the other zone is fine.
	_, err = svc.BatchAssign(ctx, roster.BatchAssignRequest{RosterID: south.ID, Assignments: []roster.AssignmentRequest{
		shift("s1", roster.Tuesday),
	}})
	require.NoError(t, err)
}

func TestRosterService_BatchAssign_UnknownStaff(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	r, err := svc.CreateRoster(ctx, roster.CreateRosterRequest{ZoneID: "north", WeekStart: "2025-03-03"})
	require.NoError(t, err)

	_, err = svc.BatchAssign(ctx, roster.BatchAssignRequest{RosterID: r.ID, Assignments: []roster.AssignmentRequest{
		shift("s1", roster.Monday), shift("ghost", roster.Monday),
	}})

	var verr validator.ValidationErrors
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "assignments[1].staffId", verr[0].Field)
}

func TestRosterService_Publish_DraftOnlyExcludedUntilPublished(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	from := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)

	r, err := svc.CreateRoster(ctx, roster.CreateRosterRequest{ZoneID: "south", WeekStart: "2025-03-03"})
	require.NoError(t, err)
	_, err = svc.BatchAssign(ctx, roster.BatchAssignRequest{RosterID: r.ID, Assignments: []roster.AssignmentRequest{shift("s1", roster.Wednesday)}})
	require.NoError(t, err)

	schedule, err := svc.PublishedSchedule(ctx, from, to)
	require.NoError(t, err)
	assert.Empty(t, schedule)

	published, err := svc.Publish(ctx, r.ID)
	require.NoError(t, err)
	assert.NotNil(t, published.PublishedAt)
	assert.Len(t, published.Assignments, 1)

	schedule, err = svc.PublishedSchedule(ctx, from, to)
	require.NoError(t, err)
	_, ok := schedule.On("s1", time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC))
	assert.True(t, ok)
}

func TestRosterService_Templates_GlobalAndZoneLoad(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	north := "north"

	global, err := svc.CreateTemplate(ctx, roster.CreateTemplateRequest{
		Name:  "Full week",
		Scope: string(roster.TemplateScopeGlobal),
		Selections: roster.Selections{
			"north": {roster.Monday: {"s2", "s1", "s1"}},
			"south": {roster.Friday: {"s2"}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, global.Selections["north"][roster.Monday])

	zone, err := svc.CreateTemplate(ctx, roster.CreateTemplateRequest{
		Name:       "North weekend",
		Scope:      string(roster.TemplateScopeZone),
		ZoneID:     &north,
		Selections: roster.Selections{"north": {roster.Saturday: {"s1"}}},
	})
	require.NoError(t, err)

	current := roster.Selections{
		"north": {roster.Monday: {"s2"}},
		"south": {roster.Tuesday: {"s1"}},
	}

	loaded, err := svc.LoadTemplate(ctx, global.ID, roster.LoadTemplateRequest{Current: current})
	require.NoError(t, err)
	assert.True(t, loaded.Equal(global.Selections))

	loaded, err = svc.LoadTemplate(ctx, zone.ID, roster.LoadTemplateRequest{Current: current})
	require.NoError(t, err)
	assert.True(t, loaded.Equal(roster.Selections{
		"north": {roster.Saturday: {"s1"}},
		"south": {roster.Tuesday: {"s1"}},
	}))

	list, err := svc.ListTemplates(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, svc.DeleteTemplate(ctx, zone.ID))
	_, err = svc.LoadTemplate(ctx, zone.ID, roster.LoadTemplateRequest{})
	assert.ErrorIs(t, err, roster.ErrTemplateNotFound)
}

func TestRosterService_CreateTemplate_ZoneScopeRejectsOtherZones(t *testing.T) {
	svc, _, _ := newTestService()
	north := "north"

	_, err := svc.CreateTemplate(context.Background(), roster.CreateTemplateRequest{
		Name:       "Mixed",
		Scope:      string(roster.TemplateScopeZone),
		ZoneID:     &north,
		Selections: roster.Selections{"south": {roster.Monday: {"s1"}}},
	})

	var verr validator.ValidationErrors
	assert.True(t, errors.As(err, &verr))
}
