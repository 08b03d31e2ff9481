package parts

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the pgx-backed parts repository.
func NewRepository(db *pgxpool.Pool) RepositoryPort {
	return &repository{db: db}
}

const partColumns = `id, part_number, name, description, quantity, min_quantity, unit_cost, location, supplier_id, created_at, updated_at`

func (r *repository) Insert(ctx context.Context, p Part) error {
	_, err := r.db.Exec(ctx, `INSERT INTO parts
(id, part_number, name, description, quantity, min_quantity, unit_cost, location, supplier_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.PartNumber, p.Name, p.Description, p.Quantity, p.MinQuantity, p.UnitCost, p.Location, p.SupplierID, p.CreatedAt, p.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

func (r *repository) Get(ctx context.Context, id string) (Part, error) {
	row := r.db.QueryRow(ctx, `SELECT `+partColumns+` FROM parts WHERE id = $1`, id)
	p, err := scanPart(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Part{}, ErrNotFound
	}
	return p, err
}

func (r *repository) GetByNumber(ctx context.Context, partNumber string) (Part, error) {
	row := r.db.QueryRow(ctx, `SELECT `+partColumns+` FROM parts WHERE part_number = $1`, partNumber)
	p, err := scanPart(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Part{}, ErrNotFound
	}
	return p, err
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Part, error) {
	query := `SELECT ` + partColumns + ` FROM parts WHERE 1=1`
	args := []any{}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += ` AND (name ILIKE $1 OR part_number ILIKE $1)`
	}
	if filter.LowOnly {
		query += ` AND quantity <= min_quantity`
	}
	query += ` ORDER BY part_number ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var parts []Part
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	return parts, rows.Err()
}

func (r *repository) Update(ctx context.Context, p Part) error {
	tag, err := r.db.Exec(ctx, `UPDATE parts SET
name = $2, description = $3, quantity = $4, min_quantity = $5, unit_cost = $6,
location = $7, supplier_id = $8, updated_at = $9
WHERE id = $1`,
		p.ID, p.Name, p.Description, p.Quantity, p.MinQuantity, p.UnitCost, p.Location, p.SupplierID, p.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) InsertMovement(ctx context.Context, m Movement) error {
	_, err := r.db.Exec(ctx, `INSERT INTO part_movements (part_id, delta, reason, ref_id, at)
VALUES ($1, $2, $3, $4, $5)`,
		m.PartID, m.Delta, m.Reason, m.RefID, m.At)
	return err
}

func scanPart(row pgx.Row) (Part, error) {
	var p Part
	if err := row.Scan(&p.ID, &p.PartNumber, &p.Name, &p.Description, &p.Quantity, &p.MinQuantity,
		&p.UnitCost, &p.Location, &p.SupplierID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Part{}, err
	}
	return p, nil
}
