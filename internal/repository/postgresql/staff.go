package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/staffpay/staffpay-backend-go/internal/domain/staff"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/database"
)

type staffRepositoryImpl struct {
	db *database.DB
}

func NewStaffRepository(db *database.DB) staff.StaffRepository {
	return &staffRepositoryImpl{db: db}
}

const staffColumns = `
	s.id, s.name, s.zone_id, s.pay_group_id,
	s.hourly_rate, s.overtime_rate, s.sunday_rate, s.public_holiday_rate, s.hours_per_day,
	s.lunch_length, s.paye_enabled, s.uif_enabled, s.sdl_enabled,
	s.loan_balance, s.savings_balance, s.annual_leave_balance, s.sick_leave_balance,
	s.deductions, s.pension, s.date_of_birth, s.is_active, s.created_at, s.updated_at,
	z.name`

func scanStaff(row pgx.Row) (staff.Staff, error) {
	var s staff.Staff
	var deductions, pension []byte
	err := row.Scan(
		&s.ID, &s.Name, &s.ZoneID, &s.PayGroupID,
		&s.Rates.HourlyRate, &s.Rates.OvertimeRate, &s.Rates.SundayRate, &s.Rates.PublicHolidayRate, &s.Rates.HoursPerDay,
		&s.LunchLength, &s.PayeEnabled, &s.UIFEnabled, &s.SDLEnabled,
		&s.LoanBalance, &s.SavingsBalance, &s.AnnualLeaveBalance, &s.SickLeaveBalance,
		&deductions, &pension, &s.DateOfBirth, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
		&s.ZoneName,
	)
	if err != nil {
		return staff.Staff{}, err
	}

	if len(deductions) > 0 {
		if err := json.Unmarshal(deductions, &s.Deductions); err != nil {
			return staff.Staff{}, fmt.Errorf("failed to decode deductions: %w", err)
		}
	}
	if len(pension) > 0 {
		var p staff.PensionSlot
		if err := json.Unmarshal(pension, &p); err != nil {
			return staff.Staff{}, fmt.Errorf("failed to decode pension: %w", err)
		}
		s.Pension = &p
	}
	return s, nil
}

func encodeStaffSlots(s staff.Staff) ([]byte, []byte, error) {
	slots := s.Deductions
	if slots == nil {
		slots = []staff.DeductionSlot{}
	}
	deductions, err := json.Marshal(slots)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode deductions: %w", err)
	}

	var pension []byte
	if s.Pension != nil {
		pension, err = json.Marshal(s.Pension)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode pension: %w", err)
		}
	}
	return deductions, pension, nil
}

func (r *staffRepositoryImpl) Create(ctx context.Context, s staff.Staff) (staff.Staff, error) {
	q := GetQuerier(ctx, r.db)

	deductions, pension, err := encodeStaffSlots(s)
	if err != nil {
		return staff.Staff{}, err
	}

	query := `
		INSERT INTO staff (
			id, name, zone_id, pay_group_id,
			hourly_rate, overtime_rate, sunday_rate, public_holiday_rate, hours_per_day,
			lunch_length, paye_enabled, uif_enabled, sdl_enabled,
			loan_balance, savings_balance, annual_leave_balance, sick_leave_balance,
			deductions, pension, date_of_birth, is_active
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8, $9,
			$10, $11, $12, $13,
			$14, $15, $16, $17,
			$18, $19, $20, $21
		)`

	s.ID = newID()
	_, err = q.Exec(ctx, query,
		s.ID, s.Name, s.ZoneID, s.PayGroupID,
		s.Rates.HourlyRate, s.Rates.OvertimeRate, s.Rates.SundayRate, s.Rates.PublicHolidayRate, s.Rates.HoursPerDay,
		s.LunchLength, s.PayeEnabled, s.UIFEnabled, s.SDLEnabled,
		s.LoanBalance, s.SavingsBalance, s.AnnualLeaveBalance, s.SickLeaveBalance,
		deductions, pension, s.DateOfBirth, s.IsActive,
	)
	if err != nil {
		return staff.Staff{}, fmt.Errorf("failed to create staff: %w", err)
	}

	return r.GetByID(ctx, s.ID)
}

func (r *staffRepositoryImpl) GetByID(ctx context.Context, id string) (staff.Staff, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + staffColumns + `
		FROM staff s
		LEFT JOIN zones z ON z.id = s.zone_id
		WHERE s.id = $1`

	s, err := scanStaff(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return staff.Staff{}, staff.ErrStaffNotFound
		}
		return staff.Staff{}, fmt.Errorf("failed to get staff by id: %w", err)
	}
	return s, nil
}

func (r *staffRepositoryImpl) GetByIDs(ctx context.Context, ids []string) ([]staff.Staff, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + staffColumns + `
		FROM staff s
		LEFT JOIN zones z ON z.id = s.zone_id
		WHERE s.id::text = ANY($1)`

	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get staff by ids: %w", err)
	}
	defer rows.Close()

	return collectStaff(rows)
}

func (r *staffRepositoryImpl) List(ctx context.Context, filter staff.StaffFilter) ([]staff.Staff, error) {
	q := GetQuerier(ctx, r.db)

	var conditions []string
	var args []interface{}
	if filter.ZoneID != nil {
		args = append(args, *filter.ZoneID)
		conditions = append(conditions, fmt.Sprintf("s.zone_id = $%d", len(args)))
	}
	if filter.ActiveOnly {
		conditions = append(conditions, "s.is_active = TRUE")
	}

	query := `SELECT ` + staffColumns + `
		FROM staff s
		LEFT JOIN zones z ON z.id = s.zone_id`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY s.name, s.id"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	defer rows.Close()

	return collectStaff(rows)
}

func collectStaff(rows pgx.Rows) ([]staff.Staff, error) {
	var list []staff.Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func (r *staffRepositoryImpl) Update(ctx context.Context, s staff.Staff) (staff.Staff, error) {
	q := GetQuerier(ctx, r.db)

	deductions, pension, err := encodeStaffSlots(s)
	if err != nil {
		return staff.Staff{}, err
	}

	query := `
		UPDATE staff SET
			name = $2, zone_id = $3, pay_group_id = $4,
			hourly_rate = $5, overtime_rate = $6, sunday_rate = $7, public_holiday_rate = $8, hours_per_day = $9,
			lunch_length = $10, paye_enabled = $11, uif_enabled = $12, sdl_enabled = $13,
			loan_balance = $14, savings_balance = $15, annual_leave_balance = $16, sick_leave_balance = $17,
			deductions = $18, pension = $19, date_of_birth = $20, is_active = $21,
			updated_at = NOW()
		WHERE id = $1`

	tag, err := q.Exec(ctx, query,
		s.ID, s.Name, s.ZoneID, s.PayGroupID,
		s.Rates.HourlyRate, s.Rates.OvertimeRate, s.Rates.SundayRate, s.Rates.PublicHolidayRate, s.Rates.HoursPerDay,
		s.LunchLength, s.PayeEnabled, s.UIFEnabled, s.SDLEnabled,
		s.LoanBalance, s.SavingsBalance, s.AnnualLeaveBalance, s.SickLeaveBalance,
		deductions, pension, s.DateOfBirth, s.IsActive,
	)
	if err != nil {
		return staff.Staff{}, fmt.Errorf("failed to update staff: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return staff.Staff{}, staff.ErrStaffNotFound
	}

	return r.GetByID(ctx, s.ID)
}

func (r *staffRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM staff WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete staff: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return staff.ErrStaffNotFound
	}
	return nil
}

func (r *staffRepositoryImpl) DeductLeaveBalance(ctx context.Context, id string, balance staff.LeaveBalance, days decimal.Decimal) error {
	q := GetQuerier(ctx, r.db)

	var column string
	switch balance {
	case staff.LeaveBalanceAnnual:
		column = "annual_leave_balance"
	case staff.LeaveBalanceSick:
		column = "sick_leave_balance"
	default:
		return fmt.Errorf("unknown leave balance %q", balance)
	}

	query := fmt.Sprintf(`
		UPDATE staff SET %[1]s = %[1]s - $2, updated_at = NOW()
		WHERE id = $1 AND %[1]s >= $2`, column)

	tag, err := q.Exec(ctx, query, id, days)
	if err != nil {
		return fmt.Errorf("failed to deduct leave balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return staff.ErrInsufficientLeaveBalance
	}
	return nil
}

// ==================== ZONES ====================

type zoneRepositoryImpl struct {
	db *database.DB
}

func NewZoneRepository(db *database.DB) staff.ZoneRepository {
	return &zoneRepositoryImpl{db: db}
}

func (r *zoneRepositoryImpl) Create(ctx context.Context, z staff.Zone) (staff.Zone, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO zones (id, name) VALUES ($1, $2)
		RETURNING id, name, created_at, updated_at`

	var out staff.Zone
	err := q.QueryRow(ctx, query, newID(), z.Name).Scan(&out.ID, &out.Name, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "uk_zone_name") {
			return staff.Zone{}, staff.ErrZoneNameExists
		}
		return staff.Zone{}, fmt.Errorf("failed to create zone: %w", err)
	}
	return out, nil
}

func (r *zoneRepositoryImpl) GetByID(ctx context.Context, id string) (staff.Zone, error) {
	q := GetQuerier(ctx, r.db)

	var out staff.Zone
	err := q.QueryRow(ctx, `SELECT id, name, created_at, updated_at FROM zones WHERE id = $1`, id).
		Scan(&out.ID, &out.Name, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return staff.Zone{}, staff.ErrZoneNotFound
		}
		return staff.Zone{}, fmt.Errorf("failed to get zone by id: %w", err)
	}
	return out, nil
}

func (r *zoneRepositoryImpl) List(ctx context.Context) ([]staff.Zone, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT id, name, created_at, updated_at FROM zones ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list zones: %w", err)
	}
	defer rows.Close()

	var list []staff.Zone
	for rows.Next() {
		var z staff.Zone
		if err := rows.Scan(&z.ID, &z.Name, &z.CreatedAt, &z.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, z)
	}
	return list, rows.Err()
}

func (r *zoneRepositoryImpl) Update(ctx context.Context, z staff.Zone) (staff.Zone, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE zones SET name = $2, updated_at = NOW() WHERE id = $1
		RETURNING id, name, created_at, updated_at`

	var out staff.Zone
	err := q.QueryRow(ctx, query, z.ID, z.Name).Scan(&out.ID, &out.Name, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return staff.Zone{}, staff.ErrZoneNotFound
		}
		if strings.Contains(err.Error(), "uk_zone_name") {
			return staff.Zone{}, staff.ErrZoneNameExists
		}
		return staff.Zone{}, fmt.Errorf("failed to update zone: %w", err)
	}
	return out, nil
}

func (r *zoneRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM zones WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete zone: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return staff.ErrZoneNotFound
	}
	return nil
}

// ==================== PAY GROUPS ====================

type payGroupRepositoryImpl struct {
	db *database.DB
}

func NewPayGroupRepository(db *database.DB) staff.PayGroupRepository {
	return &payGroupRepositoryImpl{db: db}
}

const payGroupColumns = `id, name, hourly_rate, overtime_rate, sunday_rate, public_holiday_rate, hours_per_day, created_at, updated_at`

func scanPayGroup(row pgx.Row) (staff.PayGroup, error) {
	var g staff.PayGroup
	err := row.Scan(&g.ID, &g.Name, &g.HourlyRate, &g.OvertimeRate, &g.SundayRate, &g.PublicHolidayRate, &g.HoursPerDay, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}

func (r *payGroupRepositoryImpl) Create(ctx context.Context, g staff.PayGroup) (staff.PayGroup, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO pay_groups (id, name, hourly_rate, overtime_rate, sunday_rate, public_holiday_rate, hours_per_day)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + payGroupColumns

	out, err := scanPayGroup(q.QueryRow(ctx, query, newID(), g.Name, g.HourlyRate, g.OvertimeRate, g.SundayRate, g.PublicHolidayRate, g.HoursPerDay))
	if err != nil {
		if strings.Contains(err.Error(), "uk_pay_group_name") {
			return staff.PayGroup{}, staff.ErrPayGroupNameExists
		}
		return staff.PayGroup{}, fmt.Errorf("failed to create pay group: %w", err)
	}
	return out, nil
}

func (r *payGroupRepositoryImpl) GetByID(ctx context.Context, id string) (staff.PayGroup, error) {
	q := GetQuerier(ctx, r.db)

	out, err := scanPayGroup(q.QueryRow(ctx, `SELECT `+payGroupColumns+` FROM pay_groups WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return staff.PayGroup{}, staff.ErrPayGroupNotFound
		}
		return staff.PayGroup{}, fmt.Errorf("failed to get pay group by id: %w", err)
	}
	return out, nil
}

func (r *payGroupRepositoryImpl) List(ctx context.Context) ([]staff.PayGroup, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+payGroupColumns+` FROM pay_groups ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list pay groups: %w", err)
	}
	defer rows.Close()

	var list []staff.PayGroup
	for rows.Next() {
		g, err := scanPayGroup(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, g)
	}
	return list, rows.Err()
}

func (r *payGroupRepositoryImpl) Update(ctx context.Context, g staff.PayGroup) (staff.PayGroup, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE pay_groups SET
			name = $2, hourly_rate = $3, overtime_rate = $4, sunday_rate = $5,
			public_holiday_rate = $6, hours_per_day = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + payGroupColumns

	out, err := scanPayGroup(q.QueryRow(ctx, query, g.ID, g.Name, g.HourlyRate, g.OvertimeRate, g.SundayRate, g.PublicHolidayRate, g.HoursPerDay))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return staff.PayGroup{}, staff.ErrPayGroupNotFound
		}
		if strings.Contains(err.Error(), "uk_pay_group_name") {
			return staff.PayGroup{}, staff.ErrPayGroupNameExists
		}
		return staff.PayGroup{}, fmt.Errorf("failed to update pay group: %w", err)
	}
	return out, nil
}

func (r *payGroupRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM pay_groups WHERE id = $1`, id)
	if err != nil {
		if strings.Contains(err.Error(), "staff_pay_group_id_fkey") {
			return staff.ErrPayGroupInUse
		}
		return fmt.Errorf("failed to delete pay group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return staff.ErrPayGroupNotFound
	}
	return nil
}
