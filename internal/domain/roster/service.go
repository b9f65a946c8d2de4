package roster

import (
	"context"
	"time"
)

type RosterService interface {
	// CreateRoster returns the existing roster when the zone already has one
	// for that week.
	CreateRoster(ctx context.Context, req CreateRosterRequest) (RosterResponse, error)
	GetRoster(ctx context.Context, zoneID string, anyDateInWeek string) (RosterResponse, error)
	GetRosterByID(ctx context.Context, id string) (RosterResponse, error)
	BatchAssign(ctx context.Context, req BatchAssignRequest) (RosterResponse, error)
	Publish(ctx context.Context, id string) (RosterResponse, error)
	// PublishedSchedule returns published assignments for weeks overlapping [from, to].
	PublishedSchedule(ctx context.Context, from, to time.Time) (Schedule, error)

	ListTemplates(ctx context.Context) ([]TemplateResponse, error)
	CreateTemplate(ctx context.Context, req CreateTemplateRequest) (TemplateResponse, error)
	DeleteTemplate(ctx context.Context, id string) error
	LoadTemplate(ctx context.Context, id string, req LoadTemplateRequest) (Selections, error)
}
