package roster

import (
	"context"
	"time"
)

type RosterRepository interface {
	Create(ctx context.Context, r Roster) (Roster, error)
	GetByID(ctx context.Context, id string) (Roster, error)
	// GetByIDForUpdate locks the roster row for the rest of the transaction.
	GetByIDForUpdate(ctx context.Context, id string) (Roster, error)
	GetByZoneWeek(ctx context.Context, zoneID string, weekStart time.Time) (Roster, error)
	// ListInRange returns rosters whose week overlaps [from, to], with assignments.
	ListInRange(ctx context.Context, from, to time.Time, publishedOnly bool) ([]Roster, error)
	ReplaceAssignments(ctx context.Context, rosterID string, assignments []Assignment) ([]Assignment, error)
	SetPublished(ctx context.Context, id string, at time.Time) (Roster, error)
}

type TemplateRepository interface {
	Create(ctx context.Context, t Template) (Template, error)
	GetByID(ctx context.Context, id string) (Template, error)
	List(ctx context.Context) ([]Template, error)
	Delete(ctx context.Context, id string) error
}
