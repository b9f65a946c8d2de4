package attendance

import (
	"context"
	"time"
)

type ScanRepository interface {
	Create(ctx context.Context, s Scan) (Scan, error)
	// ListByRange returns scans with from <= at < to ordered by staff then time.
	ListByRange(ctx context.Context, from, to time.Time, staffID *string) ([]Scan, error)
	// ListStaleSignIns returns each staff member's latest scan when it is a
	// sign-in older than before that has not been auto signed out yet.
	ListStaleSignIns(ctx context.Context, before time.Time) ([]Scan, error)
	MarkAutoSignedOut(ctx context.Context, ids []string) error
}

type InterventionRepository interface {
	Create(ctx context.Context, i Intervention) (Intervention, error)
	List(ctx context.Context, filter InterventionFilter) ([]Intervention, error)
}
