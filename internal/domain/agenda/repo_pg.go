package agenda

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinica/clinica/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// =========== Template Repository ===========

type templateRepoPG struct{ pool *pgxpool.Pool }

func NewTemplateRepoPG(pool *pgxpool.Pool) TemplateRepository { return &templateRepoPG{pool: pool} }

func (r *templateRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const templateCols = `id, professional_id, day_of_week, start_time, end_time, slot_minutes,
	active, valid_from, valid_to, created_at, updated_at`

func (r *templateRepoPG) scanTemplate(row pgx.Row) (*WeeklyTemplate, error) {
	var t WeeklyTemplate
	err := row.Scan(&t.ID, &t.ProfessionalID, &t.DayOfWeek, &t.StartTime, &t.EndTime,
		&t.SlotMinutes, &t.Active, &t.ValidFrom, &t.ValidTo, &t.CreatedAt, &t.UpdatedAt)
	return &t, err
}

func (r *templateRepoPG) Create(ctx context.Context, t *WeeklyTemplate) error {
	t.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO weekly_template (id, professional_id, day_of_week, start_time, end_time,
			slot_minutes, active, valid_from, valid_to)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		t.ID, t.ProfessionalID, t.DayOfWeek, t.StartTime, t.EndTime,
		t.SlotMinutes, t.Active, t.ValidFrom, t.ValidTo)
	return err
}

func (r *templateRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*WeeklyTemplate, error) {
	return r.scanTemplate(r.conn(ctx).QueryRow(ctx, `SELECT `+templateCols+` FROM weekly_template WHERE id = $1`, id))
}

func (r *templateRepoPG) Update(ctx context.Context, t *WeeklyTemplate) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE weekly_template SET day_of_week=$2, start_time=$3, end_time=$4, slot_minutes=$5,
			active=$6, valid_from=$7, valid_to=$8, updated_at=NOW()
		WHERE id = $1`,
		t.ID, t.DayOfWeek, t.StartTime, t.EndTime, t.SlotMinutes, t.Active, t.ValidFrom, t.ValidTo)
	return err
}

func (r *templateRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM weekly_template WHERE id = $1`, id)
	return err
}

func (r *templateRepoPG) ListByProfessional(ctx context.Context, professionalID uuid.UUID, limit, offset int) ([]*WeeklyTemplate, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM weekly_template WHERE professional_id = $1`, professionalID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+templateCols+` FROM weekly_template
		WHERE professional_id = $1 ORDER BY day_of_week, start_time LIMIT $2 OFFSET $3`,
		professionalID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*WeeklyTemplate
	for rows.Next() {
		t, err := r.scanTemplate(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, t)
	}
	return items, total, nil
}

func (r *templateRepoPG) ListAllByProfessional(ctx context.Context, professionalID uuid.UUID) ([]*WeeklyTemplate, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+templateCols+` FROM weekly_template
		WHERE professional_id = $1 ORDER BY day_of_week, start_time`, professionalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*WeeklyTemplate
	for rows.Next() {
		t, err := r.scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, nil
}

// =========== Exception Repository ===========

type exceptionRepoPG struct{ pool *pgxpool.Pool }

func NewExceptionRepoPG(pool *pgxpool.Pool) ExceptionRepository { return &exceptionRepoPG{pool: pool} }

func (r *exceptionRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const exceptionCols = `id, professional_id, date, start_time, end_time, slot_minutes, notes,
	created_at, updated_at`

func (r *exceptionRepoPG) scanException(row pgx.Row) (*DateException, error) {
	var e DateException
	err := row.Scan(&e.ID, &e.ProfessionalID, &e.Date, &e.StartTime, &e.EndTime,
		&e.SlotMinutes, &e.Notes, &e.CreatedAt, &e.UpdatedAt)
	return &e, err
}

func (r *exceptionRepoPG) Create(ctx context.Context, e *DateException) error {
	e.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO date_exception (id, professional_id, date, start_time, end_time, slot_minutes, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		e.ID, e.ProfessionalID, e.Date, e.StartTime, e.EndTime, e.SlotMinutes, e.Notes)
	return err
}

func (r *exceptionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*DateException, error) {
	return r.scanException(r.conn(ctx).QueryRow(ctx, `SELECT `+exceptionCols+` FROM date_exception WHERE id = $1`, id))
}

func (r *exceptionRepoPG) Update(ctx context.Context, e *DateException) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE date_exception SET date=$2, start_time=$3, end_time=$4, slot_minutes=$5, notes=$6, updated_at=NOW()
		WHERE id = $1`,
		e.ID, e.Date, e.StartTime, e.EndTime, e.SlotMinutes, e.Notes)
	return err
}

func (r *exceptionRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM date_exception WHERE id = $1`, id)
	return err
}

func (r *exceptionRepoPG) ListByProfessional(ctx context.Context, professionalID uuid.UUID, limit, offset int) ([]*DateException, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM date_exception WHERE professional_id = $1`, professionalID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+exceptionCols+` FROM date_exception
		WHERE professional_id = $1 ORDER BY date LIMIT $2 OFFSET $3`,
		professionalID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*DateException
	for rows.Next() {
		e, err := r.scanException(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, nil
}

func (r *exceptionRepoPG) ListInRange(ctx context.Context, professionalID uuid.UUID, from, to time.Time) ([]*DateException, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+exceptionCols+` FROM date_exception
		WHERE professional_id = $1 AND date >= $2 AND date < $3 ORDER BY date, start_time`,
		professionalID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*DateException
	for rows.Next() {
		e, err := r.scanException(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, nil
}

// =========== Block Repository ===========

type blockRepoPG struct{ pool *pgxpool.Pool }

func NewBlockRepoPG(pool *pgxpool.Pool) BlockRepository { return &blockRepoPG{pool: pool} }

func (r *blockRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const blockCols = `id, professional_id, start_at, end_at, reason, created_at, updated_at`

func (r *blockRepoPG) scanBlock(row pgx.Row) (*Block, error) {
	var b Block
	err := row.Scan(&b.ID, &b.ProfessionalID, &b.StartAt, &b.EndAt, &b.Reason, &b.CreatedAt, &b.UpdatedAt)
	return &b, err
}

func (r *blockRepoPG) Create(ctx context.Context, b *Block) error {
	b.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO unavailability_block (id, professional_id, start_at, end_at, reason)
		VALUES ($1,$2,$3,$4,$5)`,
		b.ID, b.ProfessionalID, b.StartAt, b.EndAt, b.Reason)
	return err
}

func (r *blockRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Block, error) {
	return r.scanBlock(r.conn(ctx).QueryRow(ctx, `SELECT `+blockCols+` FROM unavailability_block WHERE id = $1`, id))
}

func (r *blockRepoPG) Update(ctx context.Context, b *Block) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE unavailability_block SET start_at=$2, end_at=$3, reason=$4, updated_at=NOW()
		WHERE id = $1`,
		b.ID, b.StartAt, b.EndAt, b.Reason)
	return err
}

func (r *blockRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM unavailability_block WHERE id = $1`, id)
	return err
}

func (r *blockRepoPG) ListByProfessional(ctx context.Context, professionalID uuid.UUID, limit, offset int) ([]*Block, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM unavailability_block WHERE professional_id = $1`, professionalID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+blockCols+` FROM unavailability_block
		WHERE professional_id = $1 ORDER BY start_at DESC LIMIT $2 OFFSET $3`,
		professionalID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Block
	for rows.Next() {
		b, err := r.scanBlock(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, b)
	}
	return items, total, nil
}

func (r *blockRepoPG) ListInRange(ctx context.Context, professionalID uuid.UUID, from, to time.Time) ([]*Block, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+blockCols+` FROM unavailability_block
		WHERE professional_id = $1 AND start_at < $3 AND end_at > $2 ORDER BY start_at`,
		professionalID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Block
	for rows.Next() {
		b, err := r.scanBlock(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, nil
}
