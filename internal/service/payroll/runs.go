package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/staffpay/staffpay-backend-go/internal/domain/payroll"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/sse"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/validator"
)

const (
	EventRunCalculated = "payroll.run.calculated"
	EventRunFinalized  = "payroll.run.finalized"
)

func (s *PayrollServiceImpl) CreateRun(ctx context.Context, req payroll.CreateRunRequest) (payroll.RunResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.RunResponse{}, err
	}
	start, _ := validator.IsValidDate(req.PeriodStart)
	end, _ := validator.IsValidDate(req.PeriodEnd)

	run, err := s.Runs.Create(ctx, payroll.Run{
		PeriodStart: start,
		PeriodEnd:   end,
		Status:      payroll.RunStatusDraft,
	})
	if err != nil {
		return payroll.RunResponse{}, err
	}
	return payroll.NewRunResponse(run, []payroll.Payslip{}), nil
}

func (s *PayrollServiceImpl) ListRuns(ctx context.Context) ([]payroll.RunResponse, error) {
	runs, err := s.Runs.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]payroll.RunResponse, 0, len(runs))
	for _, r := range runs {
		resp = append(resp, payroll.NewRunResponse(r, nil))
	}
	return resp, nil
}

func (s *PayrollServiceImpl) GetRun(ctx context.Context, id string) (payroll.RunResponse, error) {
	run, err := s.Runs.GetByID(ctx, id)
	if err != nil {
		return payroll.RunResponse{}, err
	}
	payslips, err := s.Payslips.ListByRun(ctx, id)
	if err != nil {
		return payroll.RunResponse{}, err
	}
	return payroll.NewRunResponse(run, payslips), nil
}

// CalculateRun recomputes a draft run from live data and replaces its payslips.
func (s *PayrollServiceImpl) CalculateRun(ctx context.Context, id string) (payroll.RunResponse, error) {
	var (
		run      payroll.Run
		payslips []payroll.Payslip
	)
	err := s.Tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		run, err = s.Runs.GetByIDForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if run.Status == payroll.RunStatusFinalized {
			return payroll.ErrRunFinalized
		}

		result, err := s.computePeriod(txCtx, run.PeriodStart, run.PeriodEnd)
		if err != nil {
			return err
		}
		payslips = buildPayslips(run.ID, result)

		if err := s.Payslips.ReplaceForRun(txCtx, run.ID, payslips); err != nil {
			return fmt.Errorf("failed to store payslips: %w", err)
		}
		return s.Runs.Touch(txCtx, run.ID)
	})
	if err != nil {
		return payroll.RunResponse{}, err
	}

	stored, err := s.Payslips.ListByRun(ctx, run.ID)
	if err != nil {
		return payroll.RunResponse{}, err
	}
	resp := payroll.NewRunResponse(run, stored)
	s.publish(sse.TopicPayroll, EventRunCalculated, map[string]string{"runId": run.ID})
	return resp, nil
}

// LockRun finalizes a run. A finalized run is immutable and cannot be reopened.
func (s *PayrollServiceImpl) LockRun(ctx context.Context, req payroll.LockRunRequest) (payroll.RunResponse, error) {
	unlock, ok, err := s.Locker.TryLock(ctx, "payroll:run:"+req.RunID, s.LockTTL)
	if err != nil {
		return payroll.RunResponse{}, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !ok {
		return payroll.RunResponse{}, payroll.ErrFinalizeInProgress
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			slog.Warn("failed to release run lock", "run_id", req.RunID, "error", err)
		}
	}()

	var run payroll.Run
	err = s.Tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		run, err = s.Runs.GetByIDForUpdate(txCtx, req.RunID)
		if err != nil {
			return err
		}
		if run.Status == payroll.RunStatusFinalized {
			return payroll.ErrRunFinalized
		}

		result, err := s.computePeriod(txCtx, run.PeriodStart, run.PeriodEnd)
		if err != nil {
			return err
		}
		if result.cfgErr != nil {
			return result.cfgErr
		}

		flagged := 0
		for _, p := range result.previews {
			for _, f := range p.Flags {
				if f == payroll.FlagPayGroupMissing {
					return &payroll.ConfigurationError{Reason: fmt.Sprintf("staff %s references a missing pay group", p.StaffID)}
				}
			}
			if p.HasFlagged {
				flagged++
			}
		}
		if flagged > 0 && !req.AcknowledgeFlags {
			return fmt.Errorf("%w: %d staff flagged", payroll.ErrUnresolvedFlags, flagged)
		}

		if err := s.Payslips.ReplaceForRun(txCtx, run.ID, buildPayslips(run.ID, result)); err != nil {
			return fmt.Errorf("failed to store payslips: %w", err)
		}
		run, err = s.Runs.MarkFinalized(txCtx, run.ID, s.now().UTC(), req.Actor)
		return err
	})
	if err != nil {
		var cfgErr *payroll.ConfigurationError
		if errors.As(err, &cfgErr) {
			slog.Warn("refusing to finalize payroll run", "run_id", req.RunID, "reason", cfgErr.Reason)
		}
		return payroll.RunResponse{}, err
	}

	slog.Info("payroll run finalized", "run_id", run.ID, "by", req.Actor)
	payslips, err := s.Payslips.ListByRun(ctx, run.ID)
	if err != nil {
		return payroll.RunResponse{}, err
	}
	s.publish(sse.TopicPayroll, EventRunFinalized, map[string]string{"runId": run.ID})
	return payroll.NewRunResponse(run, payslips), nil
}

// buildPayslips freezes each staff result, including its inputs, into a payslip.
func buildPayslips(runID string, result periodResult) []payroll.Payslip {
	taxYear := 0
	if result.cfg != nil {
		taxYear = result.cfg.TaxYear
	}

	payslips := make([]payroll.Payslip, 0, len(result.previews))
	for _, p := range result.previews {
		var zoneID *string
		if p.ZoneID != "" {
			id := p.ZoneID
			zoneID = &id
		}
		zoneName := p.ZoneName
		if zoneID == nil {
			zoneName = UnassignedZoneName
		}
		payslips = append(payslips, payroll.Payslip{
			RunID:       runID,
			StaffID:     p.StaffID,
			ZoneID:      zoneID,
			StaffName:   p.Name,
			HourBuckets: p.HourBuckets,
			GrossPay:    p.GrossPay,
			Deductions:  p.Deductions.Total,
			NetPay:      p.NetPay,
			Snapshot: payroll.Snapshot{
				StaffName:       p.Name,
				ZoneName:        zoneName,
				Rates:           p.Rates,
				LeavePay:        p.LeavePay,
				LeaveDays:       p.LeaveDays,
				Deductions:      p.Deductions,
				Employer:        p.Employer,
				Flags:           p.Flags,
				Days:            p.Days,
				SettingsVersion: result.settings.Version,
				TaxYear:         taxYear,
			},
		})
	}
	return payslips
}
