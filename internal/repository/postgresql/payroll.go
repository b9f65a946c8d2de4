package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/staffpay/staffpay-backend-go/internal/domain/payroll"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/database"
)

// ========== RUNS ==========

type runRepositoryImpl struct {
	db *database.DB
}

func NewRunRepository(db *database.DB) payroll.RunRepository {
	return &runRepositoryImpl{db: db}
}

const runColumns = `id, period_start, period_end, status, finalized_at, finalized_by, created_at, updated_at`

func scanRun(row pgx.Row) (payroll.Run, error) {
	var r payroll.Run
	err := row.Scan(&r.ID, &r.PeriodStart, &r.PeriodEnd, &r.Status, &r.FinalizedAt, &r.FinalizedBy, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func (r *runRepositoryImpl) Create(ctx context.Context, run payroll.Run) (payroll.Run, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_runs (id, period_start, period_end, status)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + runColumns

	out, err := scanRun(q.QueryRow(ctx, query, newID(), run.PeriodStart, run.PeriodEnd, payroll.RunStatusDraft))
	if err != nil {
		return payroll.Run{}, fmt.Errorf("failed to create payroll run: %w", err)
	}
	return out, nil
}

func (r *runRepositoryImpl) GetByID(ctx context.Context, id string) (payroll.Run, error) {
	return r.get(ctx, `SELECT `+runColumns+` FROM payroll_runs WHERE id = $1`, id)
}

func (r *runRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (payroll.Run, error) {
	return r.get(ctx, `SELECT `+runColumns+` FROM payroll_runs WHERE id = $1 FOR UPDATE`, id)
}

func (r *runRepositoryImpl) get(ctx context.Context, query string, id string) (payroll.Run, error) {
	q := GetQuerier(ctx, r.db)

	out, err := scanRun(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Run{}, payroll.ErrRunNotFound
		}
		return payroll.Run{}, fmt.Errorf("failed to get payroll run: %w", err)
	}
	return out, nil
}

func (r *runRepositoryImpl) List(ctx context.Context) ([]payroll.Run, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+runColumns+` FROM payroll_runs ORDER BY period_start DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll runs: %w", err)
	}
	defer rows.Close()

	var list []payroll.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, run)
	}
	return list, rows.Err()
}

func (r *runRepositoryImpl) MarkFinalized(ctx context.Context, id string, at time.Time, by string) (payroll.Run, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_runs
		SET status = 'finalized', finalized_at = $2, finalized_by = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'draft'
		RETURNING ` + runColumns

	out, err := scanRun(q.QueryRow(ctx, query, id, at, by))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Run{}, payroll.ErrRunFinalized
		}
		return payroll.Run{}, fmt.Errorf("failed to finalize payroll run: %w", err)
	}
	return out, nil
}

func (r *runRepositoryImpl) Touch(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE payroll_runs SET updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to touch payroll run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrRunNotFound
	}
	return nil
}

func (r *runRepositoryImpl) HasFinalizedCovering(ctx context.Context, date time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM payroll_runs
			WHERE status = 'finalized' AND period_start <= $1 AND period_end >= $1
		)`, date).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check finalized runs: %w", err)
	}
	return exists, nil
}

// ========== PAYSLIPS ==========

type payslipRepositoryImpl struct {
	db *database.DB
}

func NewPayslipRepository(db *database.DB) payroll.PayslipRepository {
	return &payslipRepositoryImpl{db: db}
}

func (r *payslipRepositoryImpl) ReplaceForRun(ctx context.Context, runID string, payslips []payroll.Payslip) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM payslips WHERE run_id = $1`, runID); err != nil {
		return fmt.Errorf("failed to clear payslips: %w", err)
	}

	query := `
		INSERT INTO payslips (
			id, run_id, staff_id, zone_id, staff_name,
			regular_hours, overtime_hours, sunday_hours, public_holiday_hours,
			gross_pay, deductions, net_pay, snapshot_data
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	for _, p := range payslips {
		snapshot, err := json.Marshal(p.Snapshot)
		if err != nil {
			return fmt.Errorf("failed to encode payslip snapshot: %w", err)
		}
		_, err = q.Exec(ctx, query,
			newID(), runID, p.StaffID, p.ZoneID, p.StaffName,
			p.Regular, p.Overtime, p.Sunday, p.Holiday,
			p.GrossPay, p.Deductions, p.NetPay, snapshot,
		)
		if err != nil {
			return fmt.Errorf("failed to insert payslip: %w", err)
		}
	}
	return nil
}

func (r *payslipRepositoryImpl) ListByRun(ctx context.Context, runID string) ([]payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, run_id, staff_id, zone_id, staff_name,
			   regular_hours, overtime_hours, sunday_hours, public_holiday_hours,
			   gross_pay, deductions, net_pay, snapshot_data, created_at
		FROM payslips
		WHERE run_id = $1
		ORDER BY staff_name, staff_id`

	rows, err := q.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslips: %w", err)
	}
	defer rows.Close()

	var list []payroll.Payslip
	for rows.Next() {
		var p payroll.Payslip
		var snapshot []byte
		err := rows.Scan(
			&p.ID, &p.RunID, &p.StaffID, &p.ZoneID, &p.StaffName,
			&p.Regular, &p.Overtime, &p.Sunday, &p.Holiday,
			&p.GrossPay, &p.Deductions, &p.NetPay, &snapshot, &p.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(snapshot, &p.Snapshot); err != nil {
			return nil, fmt.Errorf("failed to decode payslip snapshot: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// ========== DAILY OVERRIDES ==========

type overrideRepositoryImpl struct {
	db *database.DB
}

func NewOverrideRepository(db *database.DB) payroll.OverrideRepository {
	return &overrideRepositoryImpl{db: db}
}

const overrideColumns = `staff_id, date, regular_hours, overtime_hours, sunday_hours, holiday_hours, note, author, edited_at`

func scanOverride(row pgx.Row) (payroll.DailyOverride, error) {
	var o payroll.DailyOverride
	err := row.Scan(&o.StaffID, &o.Date, &o.Regular, &o.Overtime, &o.Sunday, &o.Holiday, &o.Note, &o.Author, &o.EditedAt)
	return o, err
}

func (r *overrideRepositoryImpl) Upsert(ctx context.Context, o payroll.DailyOverride) (payroll.DailyOverride, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO daily_overrides (staff_id, date, regular_hours, overtime_hours, sunday_hours, holiday_hours, note, author, edited_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (staff_id, date) DO UPDATE SET
			regular_hours = EXCLUDED.regular_hours,
			overtime_hours = EXCLUDED.overtime_hours,
			sunday_hours = EXCLUDED.sunday_hours,
			holiday_hours = EXCLUDED.holiday_hours,
			note = EXCLUDED.note,
			author = EXCLUDED.author,
			edited_at = NOW()
		RETURNING ` + overrideColumns

	out, err := scanOverride(q.QueryRow(ctx, query, o.StaffID, o.Date, o.Regular, o.Overtime, o.Sunday, o.Holiday, o.Note, o.Author))
	if err != nil {
		return payroll.DailyOverride{}, fmt.Errorf("failed to upsert daily override: %w", err)
	}
	return out, nil
}

func (r *overrideRepositoryImpl) Delete(ctx context.Context, staffID string, date time.Time) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM daily_overrides WHERE staff_id = $1 AND date = $2`, staffID, date)
	if err != nil {
		return fmt.Errorf("failed to delete daily override: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrOverrideNotFound
	}
	return nil
}

func (r *overrideRepositoryImpl) ListInRange(ctx context.Context, from, to time.Time) ([]payroll.DailyOverride, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT `+overrideColumns+`
		FROM daily_overrides
		WHERE date BETWEEN $1 AND $2
		ORDER BY staff_id, date`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily overrides: %w", err)
	}
	defer rows.Close()

	var list []payroll.DailyOverride
	for rows.Next() {
		o, err := scanOverride(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// ========== TAX CONFIG ==========

type taxConfigRepositoryImpl struct {
	db *database.DB
}

func NewTaxConfigRepository(db *database.DB) payroll.TaxConfigRepository {
	return &taxConfigRepositoryImpl{db: db}
}

func (r *taxConfigRepositoryImpl) Get(ctx context.Context) (payroll.TaxConfig, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT tax_year, brackets, rebate_primary, rebate_secondary, rebate_tertiary,
			   uif_rate, uif_ceiling, sdl_rate, sdl_exempt_threshold, updated_at
		FROM tax_config WHERE id = 1`

	var c payroll.TaxConfig
	var brackets []byte
	err := q.QueryRow(ctx, query).Scan(
		&c.TaxYear, &brackets, &c.RebatePrimary, &c.RebateSecondary, &c.RebateTertiary,
		&c.UIFRate, &c.UIFCeiling, &c.SDLRate, &c.SDLExemptThreshold, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.TaxConfig{}, payroll.ErrTaxConfigNotFound
		}
		return payroll.TaxConfig{}, fmt.Errorf("failed to get tax config: %w", err)
	}
	if err := json.Unmarshal(brackets, &c.Brackets); err != nil {
		return payroll.TaxConfig{}, fmt.Errorf("failed to decode tax brackets: %w", err)
	}
	return c, nil
}

func (r *taxConfigRepositoryImpl) Save(ctx context.Context, c payroll.TaxConfig) (payroll.TaxConfig, error) {
	q := GetQuerier(ctx, r.db)

	brackets, err := json.Marshal(c.Brackets)
	if err != nil {
		return payroll.TaxConfig{}, fmt.Errorf("failed to encode tax brackets: %w", err)
	}

	query := `
		INSERT INTO tax_config (
			id, tax_year, brackets, rebate_primary, rebate_secondary, rebate_tertiary,
			uif_rate, uif_ceiling, sdl_rate, sdl_exempt_threshold
		) VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			tax_year = EXCLUDED.tax_year,
			brackets = EXCLUDED.brackets,
			rebate_primary = EXCLUDED.rebate_primary,
			rebate_secondary = EXCLUDED.rebate_secondary,
			rebate_tertiary = EXCLUDED.rebate_tertiary,
			uif_rate = EXCLUDED.uif_rate,
			uif_ceiling = EXCLUDED.uif_ceiling,
			sdl_rate = EXCLUDED.sdl_rate,
			sdl_exempt_threshold = EXCLUDED.sdl_exempt_threshold,
			updated_at = NOW()
		RETURNING updated_at`

	err = q.QueryRow(ctx, query,
		c.TaxYear, brackets, c.RebatePrimary, c.RebateSecondary, c.RebateTertiary,
		c.UIFRate, c.UIFCeiling, c.SDLRate, c.SDLExemptThreshold,
	).Scan(&c.UpdatedAt)
	if err != nil {
		return payroll.TaxConfig{}, fmt.Errorf("failed to save tax config: %w", err)
	}
	return c, nil
}
