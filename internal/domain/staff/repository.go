package staff

import (
	"context"

	"github.com/shopspring/decimal"
)

// LeaveBalance names a staff leave balance column.
type LeaveBalance string

const (
	LeaveBalanceAnnual LeaveBalance = "annual"
	LeaveBalanceSick   LeaveBalance = "sick"
)

type StaffRepository interface {
	Create(ctx context.Context, s Staff) (Staff, error)
	GetByID(ctx context.Context, id string) (Staff, error)
	GetByIDs(ctx context.Context, ids []string) ([]Staff, error)
	List(ctx context.Context, filter StaffFilter) ([]Staff, error)
	Update(ctx context.Context, s Staff) (Staff, error)
	Delete(ctx context.Context, id string) error

	// DeductLeaveBalance subtracts days from the named balance and returns
	// ErrInsufficientLeaveBalance when the balance would go negative.
	DeductLeaveBalance(ctx context.Context, id string, balance LeaveBalance, days decimal.Decimal) error
}

type ZoneRepository interface {
	Create(ctx context.Context, z Zone) (Zone, error)
	GetByID(ctx context.Context, id string) (Zone, error)
	List(ctx context.Context) ([]Zone, error)
	Update(ctx context.Context, z Zone) (Zone, error)
	Delete(ctx context.Context, id string) error
}

type PayGroupRepository interface {
	Create(ctx context.Context, g PayGroup) (PayGroup, error)
	GetByID(ctx context.Context, id string) (PayGroup, error)
	List(ctx context.Context) ([]PayGroup, error)
	Update(ctx context.Context, g PayGroup) (PayGroup, error)
	Delete(ctx context.Context, id string) error
}
