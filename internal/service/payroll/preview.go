package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/staffpay/staffpay-backend-go/internal/domain/attendance"
	"github.com/staffpay/staffpay-backend-go/internal/domain/payroll"
	"github.com/staffpay/staffpay-backend-go/internal/domain/settings"
	"github.com/staffpay/staffpay-backend-go/internal/domain/staff"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/validator"
	"golang.org/x/sync/errgroup"
)

// periodResult is a computed period before zone grouping.
type periodResult struct {
	previews []payroll.StaffPreview
	settings settings.Settings
	cfg      *payroll.TaxConfig
	cfgErr   error
}

// Preview implements payroll.PayrollService.
func (s *PayrollServiceImpl) Preview(ctx context.Context, req payroll.PreviewRequest) (payroll.PayrollPreview, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollPreview{}, err
	}
	if req.ZoneID != nil && *req.ZoneID != "" {
		if _, err := s.Zones.GetByID(ctx, *req.ZoneID); err != nil {
			if errors.Is(err, staff.ErrZoneNotFound) {
				return payroll.PayrollPreview{}, validator.ValidationErrors{{Field: "zoneId", Message: "unknown zone"}}
			}
			return payroll.PayrollPreview{}, err
		}
	}

	start, end := req.Period()
	result, err := s.computePeriod(ctx, start, end)
	if err != nil {
		return payroll.PayrollPreview{}, err
	}

	preview := AssemblePreview(result.previews, start, end, req.ZoneID)
	preview.GeneratedFrom = result.settings.Version
	if result.cfg != nil {
		preview.TaxYear = result.cfg.TaxYear
	}
	return preview, nil
}

// computePeriod classifies and prices every active staff member for the
// inclusive period. It only reads.
func (s *PayrollServiceImpl) computePeriod(ctx context.Context, start, end time.Time) (periodResult, error) {
	loc := s.Location
	from := localDate(start, loc)
	to := localDate(end, loc)

	st, err := s.Settings.Current(ctx)
	if err != nil {
		return periodResult{}, fmt.Errorf("failed to load settings: %w", err)
	}
	result := periodResult{settings: st}

	cfg, err := s.TaxConfigs.Get(ctx)
	switch {
	case errors.Is(err, payroll.ErrTaxConfigNotFound):
		result.cfgErr = &payroll.ConfigurationError{Reason: "tax config has not been set up"}
	case err != nil:
		return periodResult{}, fmt.Errorf("failed to load tax config: %w", err)
	default:
		if verr := cfg.Validate(); verr != nil {
			result.cfgErr = verr
		} else {
			result.cfg = &cfg
		}
	}

	staffList, err := s.Staff.List(ctx, staff.StaffFilter{ActiveOnly: true})
	if err != nil {
		return periodResult{}, fmt.Errorf("failed to list staff: %w", err)
	}
	groupList, err := s.PayGroups.List(ctx)
	if err != nil {
		return periodResult{}, fmt.Errorf("failed to list pay groups: %w", err)
	}
	groups := make(map[string]staff.PayGroup, len(groupList))
	for _, g := range groupList {
		groups[g.ID] = g
	}
	zoneList, err := s.Zones.List(ctx)
	if err != nil {
		return periodResult{}, fmt.Errorf("failed to list zones: %w", err)
	}
	zoneNames := make(map[string]string, len(zoneList))
	for _, z := range zoneList {
		zoneNames[z.ID] = z.Name
	}

	maxShift := MaxShiftLength(st)
	scans, err := s.Scans.ListByRange(ctx, from.Add(-maxShift), to.AddDate(0, 0, 1).Add(maxShift), nil)
	if err != nil {
		return periodResult{}, fmt.Errorf("failed to list scans: %w", err)
	}
	scansByStaff := make(map[string][]attendance.Scan)
	for _, sc := range scans {
		scansByStaff[sc.StaffID] = append(scansByStaff[sc.StaffID], sc)
	}

	holidays, err := s.Holidays.SetForRange(ctx, start, end)
	if err != nil {
		return periodResult{}, fmt.Errorf("failed to load holidays: %w", err)
	}
	leaveSet, err := s.Leave.ApprovedSet(ctx, start, end)
	if err != nil {
		return periodResult{}, fmt.Errorf("failed to load leave: %w", err)
	}
	schedule, err := s.Rosters.PublishedSchedule(ctx, start, end)
	if err != nil {
		return periodResult{}, fmt.Errorf("failed to load rosters: %w", err)
	}
	overrideList, err := s.Overrides.ListInRange(ctx, start, end)
	if err != nil {
		return periodResult{}, fmt.Errorf("failed to load overrides: %w", err)
	}
	overrides := make(map[string]map[string]payroll.DailyOverride)
	for _, o := range overrideList {
		if overrides[o.StaffID] == nil {
			overrides[o.StaffID] = make(map[string]payroll.DailyOverride)
		}
		overrides[o.StaffID][o.Date.Format(validator.DateLayout)] = o
	}

	now := s.now()
	asOf := to
	previews := make([]payroll.StaffPreview, len(staffList))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.Concurrency)
	for i, member := range staffList {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}

			rates, rateFlags := ResolveRates(member, groups)
			byDate := GroupShiftsByDate(PairScans(scansByStaff[member.ID], maxShift), loc)

			var days []payroll.DayResult
			for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
				key := d.Format(validator.DateLayout)
				in := ClassifyInput{
					StaffID:      member.ID,
					Date:         d,
					Shifts:       byDate[key],
					DefaultLunch: member.LunchLength,
					HoursPerDay:  rates.HoursPerDay,
					Holidays:     holidays,
					Leave:        leaveSet,
					Settings:     st,
					Now:          now,
					Location:     loc,
				}
				if a, ok := schedule.On(member.ID, d); ok {
					in.Assignment = &a
				}
				day := Classify(in)
				if o, ok := overrides[member.ID][key]; ok {
					day = o.Apply(day)
				}
				days = append(days, day)
			}

			zoneName := ""
			if member.ZoneID != nil {
				zoneName = zoneNames[*member.ZoneID]
			}
			previews[i] = BuildStaffPreview(StaffInput{
				Staff:     member,
				ZoneName:  zoneName,
				Rates:     rates,
				RateFlags: rateFlags,
				Days:      days,
			}, result.cfg, st.Thresholds, asOf)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return periodResult{}, err
	}

	sdlEnabled := make(map[string]bool, len(staffList))
	for _, member := range staffList {
		sdlEnabled[member.ID] = member.SDLEnabled
	}
	ApplySDL(previews, sdlEnabled, result.cfg)

	result.previews = previews
	return result, nil
}

// localDate returns midnight of t's calendar date in loc.
func localDate(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
