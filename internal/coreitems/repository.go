package coreitems

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the pgx-backed core item repository.
func NewRepository(db *pgxpool.Pool) RepositoryPort {
	return &repository{db: db}
}

const coreColumns = `id, part_id, ro_id, description, core_charge, condition, status, created_at, returned_at`

func (r *repository) Insert(ctx context.Context, c CoreItem) error {
	_, err := r.db.Exec(ctx, `INSERT INTO core_items (id, part_id, ro_id, description, core_charge, condition, status, created_at, returned_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.PartID, c.ROID, c.Description, c.CoreCharge, string(c.Condition), string(c.Status), c.CreatedAt, c.ReturnedAt)
	return err
}

func (r *repository) Get(ctx context.Context, id string) (CoreItem, error) {
	row := r.db.QueryRow(ctx, `SELECT `+coreColumns+` FROM core_items WHERE id = $1`, id)
	c, err := scanCoreItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return CoreItem{}, ErrNotFound
	}
	return c, err
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]CoreItem, error) {
	query := `SELECT ` + coreColumns + ` FROM core_items WHERE 1=1`
	args := []any{}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` AND status = $1`
	}
	if filter.ROID != "" {
		args = append(args, filter.ROID)
		if len(args) == 1 {
			query += ` AND ro_id = $1`
		} else {
			query += ` AND ro_id = $2`
		}
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []CoreItem
	for rows.Next() {
		c, err := scanCoreItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func (r *repository) Update(ctx context.Context, c CoreItem) error {
	tag, err := r.db.Exec(ctx, `UPDATE core_items SET status = $2, returned_at = $3 WHERE id = $1`,
		c.ID, string(c.Status), c.ReturnedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCoreItem(row pgx.Row) (CoreItem, error) {
	var c CoreItem
	var condition, status string
	if err := row.Scan(&c.ID, &c.PartID, &c.ROID, &c.Description, &c.CoreCharge, &condition, &status, &c.CreatedAt, &c.ReturnedAt); err != nil {
		return CoreItem{}, err
	}
	c.Condition = Condition(condition)
	c.Status = Status(status)
	return c, nil
}
