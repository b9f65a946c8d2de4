package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/staffpay/staffpay-backend-go/internal/domain/leave"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/database"
)

type leaveRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRepository(db *database.DB) leave.LeaveRepository {
	return &leaveRepositoryImpl{db: db}
}

const leaveColumns = `
	lr.id, lr.staff_id, lr.type, lr.start_date, lr.end_date, lr.days, lr.status,
	lr.note, lr.decided_by, lr.decided_at, lr.created_at, lr.updated_at, s.name`

func scanLeave(row pgx.Row) (leave.LeaveRecord, error) {
	var r leave.LeaveRecord
	err := row.Scan(
		&r.ID, &r.StaffID, &r.Type, &r.StartDate, &r.EndDate, &r.Days, &r.Status,
		&r.Note, &r.DecidedBy, &r.DecidedAt, &r.CreatedAt, &r.UpdatedAt, &r.StaffName,
	)
	return r, err
}

func (r *leaveRepositoryImpl) CreateIfAbsent(ctx context.Context, rec leave.LeaveRecord) (leave.LeaveRecord, bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_records (id, staff_id, type, start_date, end_date, days, status, note, decided_by, decided_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT ON CONSTRAINT uk_leave_staff_day_type DO NOTHING
		RETURNING id`

	var id string
	err := q.QueryRow(ctx, query,
		newID(), rec.StaffID, rec.Type, rec.StartDate, rec.EndDate, rec.Days, rec.Status,
		rec.Note, rec.DecidedBy, rec.DecidedAt,
	).Scan(&id)
	if err != nil {
		if strings.Contains(err.Error(), "uk_leave_staff_day_approved") {
			return leave.LeaveRecord{}, false, leave.ErrLeaveDayAlreadyApproved
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRecord{}, false, fmt.Errorf("failed to create leave record: %w", err)
		}

		existing, err := scanLeave(q.QueryRow(ctx, `
			SELECT `+leaveColumns+`
			FROM leave_records lr
			JOIN staff s ON s.id = lr.staff_id
			WHERE lr.staff_id = $1 AND lr.start_date = $2 AND lr.type = $3`,
			rec.StaffID, rec.StartDate, rec.Type,
		))
		if err != nil {
			return leave.LeaveRecord{}, false, fmt.Errorf("failed to load existing leave record: %w", err)
		}
		return existing, false, nil
	}

	created, err := r.GetByID(ctx, id)
	return created, err == nil, err
}

func (r *leaveRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRecord, error) {
	return r.get(ctx, id, "")
}

func (r *leaveRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (leave.LeaveRecord, error) {
	return r.get(ctx, id, " FOR UPDATE OF lr")
}

func (r *leaveRepositoryImpl) get(ctx context.Context, id string, lock string) (leave.LeaveRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + leaveColumns + `
		FROM leave_records lr
		JOIN staff s ON s.id = lr.staff_id
		WHERE lr.id = $1` + lock

	rec, err := scanLeave(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRecord{}, leave.ErrLeaveRecordNotFound
		}
		return leave.LeaveRecord{}, fmt.Errorf("failed to get leave record by id: %w", err)
	}
	return rec, nil
}

func (r *leaveRepositoryImpl) List(ctx context.Context, filter leave.LeaveFilter) ([]leave.LeaveRecord, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "TRUE"
	var args []interface{}
	argIdx := 1

	if filter.StaffID != nil && *filter.StaffID != "" {
		baseWhere += fmt.Sprintf(" AND lr.staff_id = $%d", argIdx)
		args = append(args, *filter.StaffID)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND lr.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.From != nil {
		baseWhere += fmt.Sprintf(" AND lr.end_date >= $%d", argIdx)
		args = append(args, *filter.From)
		argIdx++
	}
	if filter.To != nil {
		baseWhere += fmt.Sprintf(" AND lr.start_date <= $%d", argIdx)
		args = append(args, *filter.To)
	}

	query := `
		SELECT ` + leaveColumns + `
		FROM leave_records lr
		JOIN staff s ON s.id = lr.staff_id
		WHERE ` + baseWhere + `
		ORDER BY lr.start_date DESC, s.name`

	return r.query(ctx, q, query, args...)
}

func (r *leaveRepositoryImpl) ListApprovedInRange(ctx context.Context, from, to time.Time) ([]leave.LeaveRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + leaveColumns + `
		FROM leave_records lr
		JOIN staff s ON s.id = lr.staff_id
		WHERE lr.status = 'approved' AND lr.end_date >= $1 AND lr.start_date <= $2
		ORDER BY lr.staff_id, lr.start_date`

	return r.query(ctx, q, query, from, to)
}

func (r *leaveRepositoryImpl) query(ctx context.Context, q database.Querier, query string, args ...interface{}) ([]leave.LeaveRecord, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave records: %w", err)
	}
	defer rows.Close()

	var list []leave.LeaveRecord
	for rows.Next() {
		rec, err := scanLeave(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}

func (r *leaveRepositoryImpl) UpdateStatus(ctx context.Context, rec leave.LeaveRecord) (leave.LeaveRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_records
		SET status = $2, note = $3, decided_by = $4, decided_at = $5, updated_at = NOW()
		WHERE id = $1`

	tag, err := q.Exec(ctx, query, rec.ID, rec.Status, rec.Note, rec.DecidedBy, rec.DecidedAt)
	if err != nil {
		if strings.Contains(err.Error(), "uk_leave_staff_day_approved") {
			return leave.LeaveRecord{}, leave.ErrLeaveDayAlreadyApproved
		}
		return leave.LeaveRecord{}, fmt.Errorf("failed to update leave status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return leave.LeaveRecord{}, leave.ErrLeaveRecordNotFound
	}
	return r.GetByID(ctx, rec.ID)
}
