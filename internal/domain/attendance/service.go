package attendance

import (
	"context"
	"time"
)

type AttendanceService interface {
	RecordScan(ctx context.Context, req RecordScanRequest) (ScanResponse, error)
	ListScans(ctx context.Context, filter ScanFilter) ([]ScanResponse, error)
	ListInterventions(ctx context.Context, filter InterventionFilter) ([]InterventionResponse, error)
	// SweepStaleShifts marks open sign-ins older than the auto sign-out
	// threshold and returns how many were marked.
	SweepStaleShifts(ctx context.Context, now time.Time) (int, error)
}
