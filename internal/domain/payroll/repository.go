package payroll

import (
	"context"
	"time"
)

type RunRepository interface {
	Create(ctx context.Context, r Run) (Run, error)
	GetByID(ctx context.Context, id string) (Run, error)
	// GetByIDForUpdate locks the run row for the rest of the transaction.
	GetByIDForUpdate(ctx context.Context, id string) (Run, error)
	List(ctx context.Context) ([]Run, error)
	MarkFinalized(ctx context.Context, id string, at time.Time, by string) (Run, error)
	Touch(ctx context.Context, id string) error
	// HasFinalizedCovering reports whether a finalized run's period contains date.
	HasFinalizedCovering(ctx context.Context, date time.Time) (bool, error)
}

type PayslipRepository interface {
	// ReplaceForRun deletes the run's payslips and inserts the given ones.
	ReplaceForRun(ctx context.Context, runID string, payslips []Payslip) error
	ListByRun(ctx context.Context, runID string) ([]Payslip, error)
}

type OverrideRepository interface {
	Upsert(ctx context.Context, o DailyOverride) (DailyOverride, error)
	Delete(ctx context.Context, staffID string, date time.Time) error
	ListInRange(ctx context.Context, from, to time.Time) ([]DailyOverride, error)
}

type TaxConfigRepository interface {
	Get(ctx context.Context) (TaxConfig, error)
	Save(ctx context.Context, c TaxConfig) (TaxConfig, error)
}
