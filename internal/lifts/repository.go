package lifts

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the pgx-backed lift repository.
func NewRepository(db *pgxpool.Pool) RepositoryPort {
	return &repository{db: db}
}

const liftColumns = `id, name, status, current_ro_id, last_serviced, next_service_at, updated_at`

func (r *repository) Get(ctx context.Context, id string) (Lift, error) {
	row := r.db.QueryRow(ctx, `SELECT `+liftColumns+` FROM lifts WHERE id = $1`, id)
	l, err := scanLift(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lift{}, ErrNotFound
	}
	return l, err
}

func (r *repository) List(ctx context.Context) ([]Lift, error) {
	rows, err := r.db.Query(ctx, `SELECT `+liftColumns+` FROM lifts ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lifts []Lift
	for rows.Next() {
		l, err := scanLift(rows)
		if err != nil {
			return nil, err
		}
		lifts = append(lifts, l)
	}
	return lifts, rows.Err()
}

func (r *repository) FindByRO(ctx context.Context, roID string) (Lift, error) {
	row := r.db.QueryRow(ctx, `SELECT `+liftColumns+` FROM lifts WHERE current_ro_id = $1`, roID)
	l, err := scanLift(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lift{}, ErrNotFound
	}
	return l, err
}

func (r *repository) Update(ctx context.Context, l Lift) error {
	tag, err := r.db.Exec(ctx, `UPDATE lifts SET
status = $2, current_ro_id = $3, last_serviced = $4, next_service_at = $5, updated_at = $6
WHERE id = $1`,
		l.ID, string(l.Status), l.CurrentROID, l.LastServiced, l.NextServiceAt, l.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanLift(row pgx.Row) (Lift, error) {
	var l Lift
	var status string
	if err := row.Scan(&l.ID, &l.Name, &status, &l.CurrentROID, &l.LastServiced, &l.NextServiceAt, &l.UpdatedAt); err != nil {
		return Lift{}, err
	}
	l.Status = Status(status)
	return l, nil
}
