package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/staffpay/staffpay-backend-go/internal/domain/roster"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/database"
)

type rosterRepositoryImpl struct {
	db *database.DB
}

func NewRosterRepository(db *database.DB) roster.RosterRepository {
	return &rosterRepositoryImpl{db: db}
}

const rosterColumns = `id, zone_id, week_start, status, published_at, created_at, updated_at`

func scanRoster(row pgx.Row) (roster.Roster, error) {
	var r roster.Roster
	err := row.Scan(&r.ID, &r.ZoneID, &r.WeekStart, &r.Status, &r.PublishedAt, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func (r *rosterRepositoryImpl) Create(ctx context.Context, ros roster.Roster) (roster.Roster, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO rosters (id, zone_id, week_start, status)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + rosterColumns

	out, err := scanRoster(q.QueryRow(ctx, query, newID(), ros.ZoneID, ros.WeekStart, ros.Status))
	if err != nil {
		if strings.Contains(err.Error(), "uk_roster_zone_week") {
			return r.GetByZoneWeek(ctx, ros.ZoneID, ros.WeekStart)
		}
		return roster.Roster{}, fmt.Errorf("failed to create roster: %w", err)
	}
	out.Assignments = []roster.Assignment{}
	return out, nil
}

func (r *rosterRepositoryImpl) GetByID(ctx context.Context, id string) (roster.Roster, error) {
	return r.getOne(ctx, `SELECT `+rosterColumns+` FROM rosters WHERE id = $1`, id)
}

func (r *rosterRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (roster.Roster, error) {
	return r.getOne(ctx, `SELECT `+rosterColumns+` FROM rosters WHERE id = $1 FOR UPDATE`, id)
}

func (r *rosterRepositoryImpl) GetByZoneWeek(ctx context.Context, zoneID string, weekStart time.Time) (roster.Roster, error) {
	return r.getOne(ctx, `SELECT `+rosterColumns+` FROM rosters WHERE zone_id = $1 AND week_start = $2`, zoneID, weekStart)
}

func (r *rosterRepositoryImpl) getOne(ctx context.Context, query string, args ...interface{}) (roster.Roster, error) {
	q := GetQuerier(ctx, r.db)

	out, err := scanRoster(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return roster.Roster{}, roster.ErrRosterNotFound
		}
		return roster.Roster{}, fmt.Errorf("failed to get roster: %w", err)
	}

	assignments, err := r.listAssignments(ctx, []string{out.ID})
	if err != nil {
		return roster.Roster{}, err
	}
	out.Assignments = assignments[out.ID]
	if out.Assignments == nil {
		out.Assignments = []roster.Assignment{}
	}
	return out, nil
}

func (r *rosterRepositoryImpl) ListInRange(ctx context.Context, from, to time.Time, publishedOnly bool) ([]roster.Roster, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + rosterColumns + `
		FROM rosters
		WHERE week_start <= $2 AND week_start + 6 >= $1`
	if publishedOnly {
		query += ` AND status = 'published'`
	}
	query += ` ORDER BY week_start, zone_id`

	rows, err := q.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list rosters: %w", err)
	}

	var list []roster.Roster
	var ids []string
	for rows.Next() {
		ros, err := scanRoster(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		list = append(list, ros)
		ids = append(ids, ros.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	assignments, err := r.listAssignments(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].Assignments = assignments[list[i].ID]
	}
	return list, nil
}

func (r *rosterRepositoryImpl) listAssignments(ctx context.Context, rosterIDs []string) (map[string][]roster.Assignment, error) {
	out := make(map[string][]roster.Assignment, len(rosterIDs))
	if len(rosterIDs) == 0 {
		return out, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, roster_id, staff_id, day_of_week, shift, start_time, end_time, lunch_length
		FROM roster_assignments
		WHERE roster_id::text = ANY($1)
		ORDER BY day_of_week, start_time, staff_id`

	rows, err := q.Query(ctx, query, rosterIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster assignments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a roster.Assignment
		var day int16
		if err := rows.Scan(&a.ID, &a.RosterID, &a.StaffID, &day, &a.Shift, &a.StartTime, &a.EndTime, &a.LunchLength); err != nil {
			return nil, err
		}
		a.DayOfWeek = roster.Weekday(day)
		out[a.RosterID] = append(out[a.RosterID], a)
	}
	return out, rows.Err()
}

func (r *rosterRepositoryImpl) ReplaceAssignments(ctx context.Context, rosterID string, assignments []roster.Assignment) ([]roster.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM roster_assignments WHERE roster_id = $1`, rosterID); err != nil {
		return nil, fmt.Errorf("failed to clear roster assignments: %w", err)
	}

	batch := &pgx.Batch{}
	saved := make([]roster.Assignment, 0, len(assignments))
	for _, a := range assignments {
		a.ID = newID()
		a.RosterID = rosterID
		batch.Queue(`
			INSERT INTO roster_assignments (id, roster_id, staff_id, day_of_week, shift, start_time, end_time, lunch_length)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			a.ID, a.RosterID, a.StaffID, int16(a.DayOfWeek), a.Shift, a.StartTime, a.EndTime, a.LunchLength,
		)
		saved = append(saved, a)
	}
	if err := r.sendBatch(ctx, batch); err != nil {
		if strings.Contains(err.Error(), "uk_assignment_staff_day") {
			return nil, roster.ErrDuplicateAssignment
		}
		return nil, fmt.Errorf("failed to insert roster assignments: %w", err)
	}

	if _, err := q.Exec(ctx, `UPDATE rosters SET updated_at = NOW() WHERE id = $1`, rosterID); err != nil {
		return nil, fmt.Errorf("failed to touch roster: %w", err)
	}
	return saved, nil
}

// sendBatch runs the batch on the caller's transaction when there is one.
func (r *rosterRepositoryImpl) sendBatch(ctx context.Context, batch *pgx.Batch) error {
	if batch.Len() == 0 {
		return nil
	}
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx.SendBatch(ctx, batch).Close()
	}
	return r.db.Pool.SendBatch(ctx, batch).Close()
}

func (r *rosterRepositoryImpl) SetPublished(ctx context.Context, id string, at time.Time) (roster.Roster, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE rosters SET status = 'published', published_at = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + rosterColumns

	out, err := scanRoster(q.QueryRow(ctx, query, id, at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return roster.Roster{}, roster.ErrRosterNotFound
		}
		return roster.Roster{}, fmt.Errorf("failed to publish roster: %w", err)
	}
	return out, nil
}

// ==================== TEMPLATES ====================

type templateRepositoryImpl struct {
	db *database.DB
}

func NewTemplateRepository(db *database.DB) roster.TemplateRepository {
	return &templateRepositoryImpl{db: db}
}

func scanTemplate(row pgx.Row) (roster.Template, error) {
	var t roster.Template
	var selections []byte
	if err := row.Scan(&t.ID, &t.Name, &t.Scope, &t.ZoneID, &selections, &t.CreatedAt); err != nil {
		return roster.Template{}, err
	}
	s, err := roster.DeserializeSelections(selections)
	if err != nil {
		return roster.Template{}, fmt.Errorf("failed to decode template selections: %w", err)
	}
	t.Selections = s
	return t, nil
}

func (r *templateRepositoryImpl) Create(ctx context.Context, t roster.Template) (roster.Template, error) {
	q := GetQuerier(ctx, r.db)

	selections, err := t.Selections.Serialize()
	if err != nil {
		return roster.Template{}, fmt.Errorf("failed to encode template selections: %w", err)
	}

	query := `
		INSERT INTO roster_templates (id, name, scope, zone_id, selections)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, scope, zone_id, selections, created_at`

	out, err := scanTemplate(q.QueryRow(ctx, query, newID(), t.Name, t.Scope, t.ZoneID, selections))
	if err != nil {
		if strings.Contains(err.Error(), "uk_roster_template_name") {
			return roster.Template{}, roster.ErrTemplateNameExists
		}
		return roster.Template{}, fmt.Errorf("failed to create roster template: %w", err)
	}
	return out, nil
}

func (r *templateRepositoryImpl) GetByID(ctx context.Context, id string) (roster.Template, error) {
	q := GetQuerier(ctx, r.db)

	out, err := scanTemplate(q.QueryRow(ctx, `
		SELECT id, name, scope, zone_id, selections, created_at
		FROM roster_templates WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return roster.Template{}, roster.ErrTemplateNotFound
		}
		return roster.Template{}, fmt.Errorf("failed to get roster template: %w", err)
	}
	return out, nil
}

func (r *templateRepositoryImpl) List(ctx context.Context) ([]roster.Template, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, name, scope, zone_id, selections, created_at
		FROM roster_templates ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster templates: %w", err)
	}
	defer rows.Close()

	var list []roster.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *templateRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM roster_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete roster template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return roster.ErrTemplateNotFound
	}
	return nil
}
