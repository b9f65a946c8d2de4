package leave

import (
	"context"
	"time"
)

type LeaveRepository interface {
	// CreateIfAbsent inserts the record unless one exists for the same
	// (staff, start date, type); created is false when it was skipped.
	CreateIfAbsent(ctx context.Context, r LeaveRecord) (record LeaveRecord, created bool, err error)
	GetByID(ctx context.Context, id string) (LeaveRecord, error)
	// GetByIDForUpdate locks the row for the rest of the transaction.
	GetByIDForUpdate(ctx context.Context, id string) (LeaveRecord, error)
	List(ctx context.Context, filter LeaveFilter) ([]LeaveRecord, error)
	// ListApprovedInRange returns approved leave overlapping [from, to].
	ListApprovedInRange(ctx context.Context, from, to time.Time) ([]LeaveRecord, error)
	UpdateStatus(ctx context.Context, r LeaveRecord) (LeaveRecord, error)
}
