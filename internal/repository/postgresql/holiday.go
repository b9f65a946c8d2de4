package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/staffpay/staffpay-backend-go/internal/domain/holiday"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/database"
)

type holidayRepositoryImpl struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) holiday.HolidayRepository {
	return &holidayRepositoryImpl{db: db}
}

const holidayColumns = `date, name, is_custom, is_ignored, created_at, updated_at`

func scanHoliday(row pgx.Row) (holiday.Holiday, error) {
	var h holiday.Holiday
	err := row.Scan(&h.Date, &h.Name, &h.IsCustom, &h.IsIgnored, &h.CreatedAt, &h.UpdatedAt)
	return h, err
}

func (r *holidayRepositoryImpl) Upsert(ctx context.Context, h holiday.Holiday) (holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO public_holidays (date, name, is_custom, is_ignored)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (date) DO UPDATE SET
			name = EXCLUDED.name,
			is_custom = EXCLUDED.is_custom,
			is_ignored = EXCLUDED.is_ignored,
			updated_at = NOW()
		RETURNING ` + holidayColumns

	out, err := scanHoliday(q.QueryRow(ctx, query, h.Date, h.Name, h.IsCustom, h.IsIgnored))
	if err != nil {
		return holiday.Holiday{}, fmt.Errorf("failed to upsert holiday: %w", err)
	}
	return out, nil
}

func (r *holidayRepositoryImpl) UpsertOfficial(ctx context.Context, holidays []holiday.Holiday) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO public_holidays (date, name, is_custom, is_ignored)
		VALUES ($1, $2, FALSE, FALSE)
		ON CONFLICT (date) DO NOTHING`

	added := 0
	for _, h := range holidays {
		tag, err := q.Exec(ctx, query, h.Date, h.Name)
		if err != nil {
			return added, fmt.Errorf("failed to insert official holiday: %w", err)
		}
		added += int(tag.RowsAffected())
	}
	return added, nil
}

func (r *holidayRepositoryImpl) ListByRange(ctx context.Context, from, to time.Time) ([]holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + holidayColumns + ` FROM public_holidays WHERE date BETWEEN $1 AND $2 ORDER BY date`

	rows, err := q.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()

	var list []holiday.Holiday
	for rows.Next() {
		h, err := scanHoliday(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, h)
	}
	return list, rows.Err()
}

func (r *holidayRepositoryImpl) SetIgnored(ctx context.Context, date time.Time, ignored bool) (holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE public_holidays SET is_ignored = $2, updated_at = NOW()
		WHERE date = $1
		RETURNING ` + holidayColumns

	out, err := scanHoliday(q.QueryRow(ctx, query, date, ignored))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return holiday.Holiday{}, holiday.ErrHolidayNotFound
		}
		return holiday.Holiday{}, fmt.Errorf("failed to set holiday ignored: %w", err)
	}
	return out, nil
}
