package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/staffpay/staffpay-backend-go/internal/domain/leave"
	"github.com/staffpay/staffpay-backend-go/internal/domain/staff"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/database"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/sse"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/validator"
)

const (
	EventLeaveRecorded = "leave.recorded"
	EventLeaveDecided  = "leave.decided"
)

type EventPublisher interface {
	Publish(topic string, event string, data interface{})
}

type LeaveServiceImpl struct {
	tx database.Transactor
	leave.LeaveRepository
	staffRepo staff.StaffRepository
	events    EventPublisher
	now       func() time.Time
}

func NewLeaveService(tx database.Transactor, leaveRepo leave.LeaveRepository, staffRepo staff.StaffRepository, events EventPublisher) leave.LeaveService {
	return &LeaveServiceImpl{
		tx:              tx,
		LeaveRepository: leaveRepo,
		staffRepo:       staffRepo,
		events:          events,
		now:             time.Now,
	}
}

// balanceFor maps leave types that draw down a staff balance.
func balanceFor(t leave.LeaveType) (staff.LeaveBalance, bool) {
	switch t {
	case leave.LeaveTypeAnnual:
		return staff.LeaveBalanceAnnual, true
	case leave.LeaveTypeSick:
		return staff.LeaveBalanceSick, true
	}
	return "", false
}

// RecordLeave expands a range or date list into pending per-day records.
// Days that already have a record of the same type are skipped.
func (l *LeaveServiceImpl) RecordLeave(ctx context.Context, req leave.CreateLeaveRequest) (leave.BatchLeaveResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.BatchLeaveResponse{}, err
	}
	if err := l.ensureStaff(ctx, "staffId", req.StaffID); err != nil {
		return leave.BatchLeaveResponse{}, err
	}

	resp := leave.BatchLeaveResponse{Created: []leave.LeaveResponse{}}
	err := l.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		for _, day := range req.ExpandDates() {
			rec, created, err := l.LeaveRepository.CreateIfAbsent(txCtx, leave.LeaveRecord{
				StaffID:   req.StaffID,
				Type:      leave.LeaveType(req.Type),
				StartDate: day,
				EndDate:   day,
				Days:      decimal.NewFromInt(1),
				Status:    leave.LeaveStatusPending,
				Note:      req.Note,
			})
			if err != nil {
				return fmt.Errorf("failed to create leave record: %w", err)
			}
			if !created {
				resp.Skipped++
				continue
			}
			resp.Created = append(resp.Created, leave.NewLeaveResponse(rec))
		}
		return nil
	})
	if err != nil {
		return leave.BatchLeaveResponse{}, err
	}

	l.publish(EventLeaveRecorded, map[string]int{"created": len(resp.Created)})
	return resp, nil
}

// BulkRoster records leave planned on the roster. Items are approved on
// creation and draw down annual and sick balances.
func (l *LeaveServiceImpl) BulkRoster(ctx context.Context, req leave.BulkRosterRequest) (leave.BatchLeaveResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.BatchLeaveResponse{}, err
	}
	for i, item := range req.Items {
		if err := l.ensureStaff(ctx, fmt.Sprintf("items[%d].staffId", i), item.StaffID); err != nil {
			return leave.BatchLeaveResponse{}, err
		}
	}

	now := l.now().UTC()
	actor := "roster"
	resp := leave.BatchLeaveResponse{Created: []leave.LeaveResponse{}}
	err := l.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		for _, item := range req.Items {
			day, _ := validator.IsValidDate(item.Date)
			candidate := leave.LeaveRecord{
				StaffID:   item.StaffID,
				Type:      leave.LeaveType(item.Type),
				StartDate: day,
				EndDate:   day,
				Days:      decimal.NewFromInt(1),
				Status:    leave.LeaveStatusApproved,
				DecidedBy: &actor,
				DecidedAt: &now,
			}
			if err := l.ensureDayUncovered(txCtx, candidate); err != nil {
				return err
			}
			rec, created, err := l.LeaveRepository.CreateIfAbsent(txCtx, candidate)
			if err != nil {
				return fmt.Errorf("failed to create leave record: %w", err)
			}
			if !created {
				resp.Skipped++
				continue
			}
			if err := l.deductBalance(txCtx, rec); err != nil {
				return err
			}
			resp.Created = append(resp.Created, leave.NewLeaveResponse(rec))
		}
		return nil
	})
	if err != nil {
		return leave.BatchLeaveResponse{}, err
	}

	l.publish(EventLeaveRecorded, map[string]int{"created": len(resp.Created)})
	return resp, nil
}

func (l *LeaveServiceImpl) ListLeave(ctx context.Context, filter leave.LeaveFilter) ([]leave.LeaveResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	records, err := l.LeaveRepository.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]leave.LeaveResponse, 0, len(records))
	for _, r := range records {
		resp = append(resp, leave.NewLeaveResponse(r))
	}
	return resp, nil
}

// Approve approves a pending record and draws down the matching balance. An
// insufficient balance rejects the approval and leaves the record pending.
func (l *LeaveServiceImpl) Approve(ctx context.Context, id string, actor string) (leave.LeaveResponse, error) {
	var updated leave.LeaveRecord
	err := l.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		rec, err := l.LeaveRepository.GetByIDForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if rec.Status != leave.LeaveStatusPending {
			return leave.ErrLeaveRecordAlreadyProcessed
		}
		if err := l.ensureDayUncovered(txCtx, rec); err != nil {
			return err
		}

		if err := l.deductBalance(txCtx, rec); err != nil {
			return err
		}

		now := l.now().UTC()
		rec.Status = leave.LeaveStatusApproved
		rec.DecidedBy = &actor
		rec.DecidedAt = &now
		updated, err = l.LeaveRepository.UpdateStatus(txCtx, rec)
		return err
	})
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	resp := leave.NewLeaveResponse(updated)
	l.publish(EventLeaveDecided, resp)
	return resp, nil
}

func (l *LeaveServiceImpl) Reject(ctx context.Context, id string, actor string, req leave.RejectLeaveRequest) (leave.LeaveResponse, error) {
	var updated leave.LeaveRecord
	err := l.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		rec, err := l.LeaveRepository.GetByIDForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if rec.Status != leave.LeaveStatusPending {
			return leave.ErrLeaveRecordAlreadyProcessed
		}

		now := l.now().UTC()
		rec.Status = leave.LeaveStatusRejected
		rec.DecidedBy = &actor
		rec.DecidedAt = &now
		if req.Reason != nil {
			rec.Note = req.Reason
		}
		updated, err = l.LeaveRepository.UpdateStatus(txCtx, rec)
		return err
	})
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	resp := leave.NewLeaveResponse(updated)
	l.publish(EventLeaveDecided, resp)
	return resp, nil
}

func (l *LeaveServiceImpl) ApprovedSet(ctx context.Context, from, to time.Time) (leave.Set, error) {
	records, err := l.LeaveRepository.ListApprovedInRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved leave: %w", err)
	}
	return leave.NewSet(records), nil
}

func (l *LeaveServiceImpl) deductBalance(ctx context.Context, rec leave.LeaveRecord) error {
	balance, ok := balanceFor(rec.Type)
	if !ok {
		return nil
	}

	err := l.staffRepo.DeductLeaveBalance(ctx, rec.StaffID, balance, rec.Days)
	if errors.Is(err, staff.ErrInsufficientLeaveBalance) {
		return validator.ValidationErrors{{
			Field:   "type",
			Message: fmt.Sprintf("insufficient %s leave balance for %s", balance, rec.StartDate.Format(validator.DateLayout)),
		}}
	}
	return err
}

// ensureDayUncovered rejects rec when the staff member already holds approved
// leave of another type on any of its days. Same-type duplicates are left to
// the repository's uniqueness check.
func (l *LeaveServiceImpl) ensureDayUncovered(ctx context.Context, rec leave.LeaveRecord) error {
	approved, err := l.LeaveRepository.ListApprovedInRange(ctx, rec.StartDate, rec.EndDate)
	if err != nil {
		return fmt.Errorf("failed to list approved leave: %w", err)
	}
	for _, other := range approved {
		if other.StaffID != rec.StaffID || other.ID == rec.ID || other.Type == rec.Type {
			continue
		}
		return fmt.Errorf("%w: staff %s already has approved %s leave on %s",
			leave.ErrLeaveDayAlreadyApproved, rec.StaffID, other.Type, other.StartDate.Format(validator.DateLayout))
	}
	return nil
}

func (l *LeaveServiceImpl) ensureStaff(ctx context.Context, field, id string) error {
	if _, err := l.staffRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, staff.ErrStaffNotFound) {
			return validator.ValidationErrors{{Field: field, Message: "unknown staff"}}
		}
		return err
	}
	return nil
}

func (l *LeaveServiceImpl) publish(event string, data interface{}) {
	if l.events != nil {
		l.events.Publish(sse.TopicPayroll, event, data)
	}
}
