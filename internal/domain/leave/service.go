package leave

import (
	"context"
	"time"
)

type LeaveService interface {
	// RecordLeave expands a request into pending per-day records.
	RecordLeave(ctx context.Context, req CreateLeaveRequest) (BatchLeaveResponse, error)
	// BulkRoster creates approved per-day records from roster planning.
	BulkRoster(ctx context.Context, req BulkRosterRequest) (BatchLeaveResponse, error)
	ListLeave(ctx context.Context, filter LeaveFilter) ([]LeaveResponse, error)
	Approve(ctx context.Context, id string, actor string) (LeaveResponse, error)
	Reject(ctx context.Context, id string, actor string, req RejectLeaveRequest) (LeaveResponse, error)
	// ApprovedSet returns the approved leave overlapping [from, to].
	ApprovedSet(ctx context.Context, from, to time.Time) (Set, error)
}
