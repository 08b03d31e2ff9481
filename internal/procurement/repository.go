package procurement

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/liftboard/liftboard/internal/platform/db"
)

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx-backed purchase order repository.
func NewRepository(pool *pgxpool.Pool) RepositoryPort {
	return &repository{pool: pool}
}

const poColumns = `id, number, supplier_id, status, total_amount, expected_at, created_at, updated_at`

func (r *repository) Insert(ctx context.Context, po PO) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO purchase_orders (id, number, supplier_id, status, total_amount, expected_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			po.ID, po.Number, po.SupplierID, string(po.Status), po.TotalAmount, po.ExpectedAt, po.CreatedAt, po.UpdatedAt)
		if err != nil {
			return err
		}
		for _, l := range po.Lines {
			_, err := tx.Exec(ctx, `INSERT INTO purchase_order_lines (id, po_id, part_id, description, quantity, unit_price, line_total)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				l.ID, l.POID, l.PartID, l.Description, l.Quantity, l.UnitPrice, l.LineTotal)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repository) Get(ctx context.Context, id string) (PO, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+poColumns+` FROM purchase_orders WHERE id = $1`, id)
	po, err := scanPO(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return PO{}, ErrNotFound
	}
	if err != nil {
		return PO{}, err
	}
	lines, err := r.linesFor(ctx, []string{po.ID})
	if err != nil {
		return PO{}, err
	}
	po.Lines = lines[po.ID]
	return po, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]PO, error) {
	query := `SELECT ` + poColumns + ` FROM purchase_orders WHERE 1=1`
	args := []any{}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` AND status = $1`
	}
	if filter.SupplierID != "" {
		args = append(args, filter.SupplierID)
		if len(args) == 1 {
			query += ` AND supplier_id = $1`
		} else {
			query += ` AND supplier_id = $2`
		}
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pos []PO
	var ids []string
	for rows.Next() {
		po, err := scanPO(rows)
		if err != nil {
			return nil, err
		}
		pos = append(pos, po)
		ids = append(ids, po.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return pos, nil
	}
	lines, err := r.linesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range pos {
		pos[i].Lines = lines[pos[i].ID]
	}
	return pos, nil
}

func (r *repository) Update(ctx context.Context, po PO) error {
	tag, err := r.pool.Exec(ctx, `UPDATE purchase_orders SET
status = $2, total_amount = $3, expected_at = $4, updated_at = $5
WHERE id = $1`,
		po.ID, string(po.Status), po.TotalAmount, po.ExpectedAt, po.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) linesFor(ctx context.Context, poIDs []string) (map[string][]POLine, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, po_id, part_id, description, quantity, unit_price, line_total
FROM purchase_order_lines WHERE po_id = ANY($1) ORDER BY id`, poIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string][]POLine, len(poIDs))
	for rows.Next() {
		var l POLine
		if err := rows.Scan(&l.ID, &l.POID, &l.PartID, &l.Description, &l.Quantity, &l.UnitPrice, &l.LineTotal); err != nil {
			return nil, err
		}
		result[l.POID] = append(result[l.POID], l)
	}
	return result, rows.Err()
}

func scanPO(row pgx.Row) (PO, error) {
	var po PO
	var status string
	if err := row.Scan(&po.ID, &po.Number, &po.SupplierID, &status, &po.TotalAmount, &po.ExpectedAt, &po.CreatedAt, &po.UpdatedAt); err != nil {
		return PO{}, err
	}
	po.Status = POStatus(status)
	return po, nil
}
