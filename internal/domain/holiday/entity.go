package holiday

import (
	"context"
	"time"

	"github.com/staffpay/staffpay-backend-go/internal/pkg/validator"
)

type Holiday struct {
	Date      time.Time
	Name      string
	IsCustom  bool
	IsIgnored bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Set indexes holidays by calendar date.
type Set map[string]Holiday

func NewSet(holidays []Holiday) Set {
	set := make(Set, len(holidays))
	for _, h := range holidays {
		set[h.Date.Format(validator.DateLayout)] = h
	}
	return set
}

// IsHoliday reports whether date is a holiday that has not been ignored.
func (s Set) IsHoliday(date time.Time) bool {
	h, ok := s[date.Format(validator.DateLayout)]
	return ok && !h.IsIgnored
}

// Provider supplies the official public holidays for a year.
type Provider interface {
	Holidays(ctx context.Context, year int) ([]Holiday, error)
}
