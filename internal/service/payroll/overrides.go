package payroll

import (
	"context"
	"fmt"

	"github.com/staffpay/staffpay-backend-go/internal/domain/attendance"
	"github.com/staffpay/staffpay-backend-go/internal/domain/payroll"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/sse"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/validator"
)

const (
	EventOverrideSaved = "payroll.override.saved"
	EventOverrideReset = "payroll.override.reset"
)

// UpsertDailyOverride stores a manual correction for one staff day and logs it
// as an intervention. Days inside a finalized run cannot be edited.
func (s *PayrollServiceImpl) UpsertDailyOverride(ctx context.Context, req payroll.DailyOverrideRequest) (payroll.DailyOverrideResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.DailyOverrideResponse{}, err
	}
	date, _ := validator.IsValidDate(req.Date)

	if _, err := s.Staff.GetByID(ctx, req.StaffID); err != nil {
		return payroll.DailyOverrideResponse{}, err
	}

	var saved payroll.DailyOverride
	err := s.Tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.ensureEditable(txCtx, req.Date); err != nil {
			return err
		}

		var err error
		saved, err = s.Overrides.Upsert(txCtx, payroll.DailyOverride{
			StaffID:  req.StaffID,
			Date:     date,
			Regular:  req.Updates.RegularHours,
			Overtime: req.Updates.OvertimeHours,
			Sunday:   req.Updates.SundayHours,
			Holiday:  req.Updates.HolidayHours,
			Note:     req.Note,
			Author:   req.Author,
			EditedAt: s.now().UTC(),
		})
		if err != nil {
			return err
		}

		_, err = s.Interventions.Create(txCtx, attendance.Intervention{
			StaffID: req.StaffID,
			Date:    date,
			Kind:    attendance.InterventionHoursOverride,
			Author:  req.Author,
			Note:    req.Note,
		})
		return err
	})
	if err != nil {
		return payroll.DailyOverrideResponse{}, err
	}

	resp := payroll.NewDailyOverrideResponse(saved)
	s.publish(sse.TopicPayroll, EventOverrideSaved, resp)
	return resp, nil
}

// ResetDailyOverride removes a correction so the day is computed from scans again.
func (s *PayrollServiceImpl) ResetDailyOverride(ctx context.Context, req payroll.ResetOverrideRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	date, _ := validator.IsValidDate(req.Date)

	err := s.Tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.ensureEditable(txCtx, req.Date); err != nil {
			return err
		}
		if err := s.Overrides.Delete(txCtx, req.StaffID, date); err != nil {
			return err
		}
		_, err := s.Interventions.Create(txCtx, attendance.Intervention{
			StaffID: req.StaffID,
			Date:    date,
			Kind:    attendance.InterventionOverrideReset,
			Author:  req.Author,
		})
		return err
	})
	if err != nil {
		return err
	}

	s.publish(sse.TopicPayroll, EventOverrideReset, map[string]string{"staffId": req.StaffID, "date": req.Date})
	return nil
}

func (s *PayrollServiceImpl) ensureEditable(ctx context.Context, date string) error {
	d, _ := validator.IsValidDate(date)
	finalized, err := s.Runs.HasFinalizedCovering(ctx, d)
	if err != nil {
		return fmt.Errorf("failed to check finalized runs: %w", err)
	}
	if finalized {
		return payroll.ErrPeriodFinalized
	}
	return nil
}
