package payroll

import "context"

type PayrollService interface {
	// Preview computes the payroll for a period from live data. It never writes.
	Preview(ctx context.Context, req PreviewRequest) (PayrollPreview, error)
	UpsertDailyOverride(ctx context.Context, req DailyOverrideRequest) (DailyOverrideResponse, error)
	ResetDailyOverride(ctx context.Context, req ResetOverrideRequest) error

	CreateRun(ctx context.Context, req CreateRunRequest) (RunResponse, error)
	ListRuns(ctx context.Context) ([]RunResponse, error)
	GetRun(ctx context.Context, id string) (RunResponse, error)
	CalculateRun(ctx context.Context, id string) (RunResponse, error)
	LockRun(ctx context.Context, req LockRunRequest) (RunResponse, error)
	ExportRun(ctx context.Context, id string) (ExportFile, error)

	GetTaxConfig(ctx context.Context) (TaxConfigResponse, error)
	UpdateTaxConfig(ctx context.Context, req TaxConfigRequest) (TaxConfigResponse, error)
}
