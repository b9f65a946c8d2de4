package holiday

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/staffpay/staffpay-backend-go/internal/domain/holiday"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/validator"
)

type HolidayServiceImpl struct {
	holiday.HolidayRepository
	provider holiday.Provider
}

func NewHolidayService(repo holiday.HolidayRepository, provider holiday.Provider) holiday.HolidayService {
	return &HolidayServiceImpl{HolidayRepository: repo, provider: provider}
}

func (h *HolidayServiceImpl) ListHolidays(ctx context.Context, year int) ([]holiday.HolidayResponse, error) {
	if year < 1900 || year > 2200 {
		return nil, validator.ValidationErrors{{Field: "year", Message: "invalid year"}}
	}
	from := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC)

	list, err := h.HolidayRepository.ListByRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	resp := make([]holiday.HolidayResponse, 0, len(list))
	for _, item := range list {
		resp = append(resp, holiday.NewHolidayResponse(item))
	}
	return resp, nil
}

// CreateHoliday adds a custom holiday, replacing any entry on that date.
func (h *HolidayServiceImpl) CreateHoliday(ctx context.Context, req holiday.CreateHolidayRequest) (holiday.HolidayResponse, error) {
	if err := req.Validate(); err != nil {
		return holiday.HolidayResponse{}, err
	}
	date, _ := validator.IsValidDate(req.Date)

	saved, err := h.HolidayRepository.Upsert(ctx, holiday.Holiday{Date: date, Name: req.Name, IsCustom: true})
	if err != nil {
		return holiday.HolidayResponse{}, fmt.Errorf("failed to save holiday: %w", err)
	}
	return holiday.NewHolidayResponse(saved), nil
}

// SetIgnored toggles whether a holiday counts towards holiday hours.
func (h *HolidayServiceImpl) SetIgnored(ctx context.Context, date string, ignored bool) (holiday.HolidayResponse, error) {
	d, ok := validator.IsValidDate(date)
	if !ok {
		return holiday.HolidayResponse{}, validator.ValidationErrors{{Field: "date", Message: "invalid date format, use YYYY-MM-DD"}}
	}

	saved, err := h.HolidayRepository.SetIgnored(ctx, d, ignored)
	if err != nil {
		return holiday.HolidayResponse{}, err
	}
	return holiday.NewHolidayResponse(saved), nil
}

// SyncYear pulls the official holidays for year from the provider. Custom and
// ignored entries are left untouched.
func (h *HolidayServiceImpl) SyncYear(ctx context.Context, year int) (holiday.SyncResponse, error) {
	if year < 1900 || year > 2200 {
		return holiday.SyncResponse{}, validator.ValidationErrors{{Field: "year", Message: "invalid year"}}
	}

	list, err := h.provider.Holidays(ctx, year)
	if err != nil {
		slog.Error("holiday sync failed", "year", year, "error", err)
		return holiday.SyncResponse{}, fmt.Errorf("%w: %v", holiday.ErrProviderFailed, err)
	}

	added, err := h.HolidayRepository.UpsertOfficial(ctx, list)
	if err != nil {
		return holiday.SyncResponse{}, fmt.Errorf("failed to store holidays: %w", err)
	}

	slog.Info("holidays synced", "year", year, "fetched", len(list), "added", added)
	return holiday.SyncResponse{Year: year, Fetched: len(list), Added: added}, nil
}

func (h *HolidayServiceImpl) SetForRange(ctx context.Context, from, to time.Time) (holiday.Set, error) {
	list, err := h.HolidayRepository.ListByRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	return holiday.NewSet(list), nil
}
