package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/staffpay/staffpay-backend-go/internal/domain/attendance"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/database"
)

type scanRepositoryImpl struct {
	db *database.DB
}

func NewScanRepository(db *database.DB) attendance.ScanRepository {
	return &scanRepositoryImpl{db: db}
}

const scanColumns = `id, staff_id, kind, at, source, is_auto_signed_out, is_auto_signed_in, created_at`

func (r *scanRepositoryImpl) Create(ctx context.Context, s attendance.Scan) (attendance.Scan, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO scans (id, staff_id, kind, at, source, is_auto_signed_out, is_auto_signed_in)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	s.ID = newID()
	err := q.QueryRow(ctx, query, s.ID, s.StaffID, s.Kind, s.At, s.Source, s.IsAutoSignedOut, s.IsAutoSignedIn).
		Scan(&s.CreatedAt)
	if err != nil {
		return attendance.Scan{}, fmt.Errorf("failed to create scan: %w", err)
	}
	return s, nil
}

func (r *scanRepositoryImpl) ListByRange(ctx context.Context, from, to time.Time, staffID *string) ([]attendance.Scan, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "at >= $1 AND at < $2"
	args := []interface{}{from, to}
	if staffID != nil && *staffID != "" {
		baseWhere += " AND staff_id = $3"
		args = append(args, *staffID)
	}

	query := `SELECT ` + scanColumns + ` FROM scans WHERE ` + baseWhere + ` ORDER BY staff_id, at, id`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	defer rows.Close()

	var list []attendance.Scan
	for rows.Next() {
		var s attendance.Scan
		if err := rows.Scan(&s.ID, &s.StaffID, &s.Kind, &s.At, &s.Source, &s.IsAutoSignedOut, &s.IsAutoSignedIn, &s.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func (r *scanRepositoryImpl) ListStaleSignIns(ctx context.Context, before time.Time) ([]attendance.Scan, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + scanColumns + ` FROM (
			SELECT DISTINCT ON (staff_id) ` + scanColumns + `
			FROM scans
			ORDER BY staff_id, at DESC, id DESC
		) latest
		WHERE kind = 'sign_in' AND at < $1 AND is_auto_signed_out = FALSE
		ORDER BY at`

	rows, err := q.Query(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale sign-ins: %w", err)
	}
	defer rows.Close()

	var list []attendance.Scan
	for rows.Next() {
		var s attendance.Scan
		if err := rows.Scan(&s.ID, &s.StaffID, &s.Kind, &s.At, &s.Source, &s.IsAutoSignedOut, &s.IsAutoSignedIn, &s.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func (r *scanRepositoryImpl) MarkAutoSignedOut(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `UPDATE scans SET is_auto_signed_out = TRUE WHERE id::text = ANY($1)`, ids); err != nil {
		return fmt.Errorf("failed to mark scans auto signed out: %w", err)
	}
	return nil
}

// ==================== INTERVENTIONS ====================

type interventionRepositoryImpl struct {
	db *database.DB
}

func NewInterventionRepository(db *database.DB) attendance.InterventionRepository {
	return &interventionRepositoryImpl{db: db}
}

func (r *interventionRepositoryImpl) Create(ctx context.Context, i attendance.Intervention) (attendance.Intervention, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO interventions (id, staff_id, date, kind, author, note)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	i.ID = newID()
	if err := q.QueryRow(ctx, query, i.ID, i.StaffID, i.Date, i.Kind, i.Author, i.Note).Scan(&i.CreatedAt); err != nil {
		return attendance.Intervention{}, fmt.Errorf("failed to create intervention: %w", err)
	}
	return i, nil
}

func (r *interventionRepositoryImpl) List(ctx context.Context, filter attendance.InterventionFilter) ([]attendance.Intervention, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "TRUE"
	var args []interface{}
	argIdx := 1

	if filter.StaffID != nil && *filter.StaffID != "" {
		baseWhere += fmt.Sprintf(" AND staff_id = $%d", argIdx)
		args = append(args, *filter.StaffID)
		argIdx++
	}
	if filter.From != nil {
		baseWhere += fmt.Sprintf(" AND date >= $%d", argIdx)
		args = append(args, *filter.From)
		argIdx++
	}
	if filter.To != nil {
		baseWhere += fmt.Sprintf(" AND date <= $%d", argIdx)
		args = append(args, *filter.To)
	}

	query := `
		SELECT id, staff_id, date, kind, author, note, created_at
		FROM interventions
		WHERE ` + baseWhere + `
		ORDER BY created_at DESC, id DESC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list interventions: %w", err)
	}
	defer rows.Close()

	var list []attendance.Intervention
	for rows.Next() {
		var i attendance.Intervention
		if err := rows.Scan(&i.ID, &i.StaffID, &i.Date, &i.Kind, &i.Author, &i.Note, &i.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, i)
	}
	return list, rows.Err()
}
