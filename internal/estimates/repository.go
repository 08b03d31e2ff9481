package estimates

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

// NewRepository constructs the pgx-backed estimate repository.
func NewRepository(pool *pgxpool.Pool) RepositoryPort {
	return &repository{pool: pool}
}

const estimateColumns = `id, ro_id, status, discount, created_at, updated_at`

func (r *repository) Insert(ctx context.Context, est Estimate) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO estimates (id, ro_id, status, discount, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`,
			est.ID, est.ROID, string(est.Status), est.Discount, est.CreatedAt, est.UpdatedAt)
		if err != nil {
			return err
		}
		for _, item := range est.Items {
			_, err := tx.Exec(ctx, `INSERT INTO estimate_items (id, estimate_id, type, description, quantity, unit_price)
VALUES ($1, $2, $3, $4, $5, $6)`,
				item.ID, item.EstimateID, string(item.Type), item.Description, item.Quantity, item.UnitPrice)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repository) Get(ctx context.Context, id string) (Estimate, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+estimateColumns+` FROM estimates WHERE id = $1`, id)
	return r.hydrate(ctx, row)
}

func (r *repository) GetByRO(ctx context.Context, roID string) (Estimate, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+estimateColumns+` FROM estimates WHERE ro_id = $1 ORDER BY created_at DESC LIMIT 1`, roID)
	return r.hydrate(ctx, row)
}

func (r *repository) hydrate(ctx context.Context, row pgx.Row) (Estimate, error) {
	est, err := scanEstimate(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Estimate{}, ErrNotFound
	}
	if err != nil {
		return Estimate{}, err
	}
	items, err := r.itemsFor(ctx, []string{est.ID})
	if err != nil {
		return Estimate{}, err
	}
	est.Items = items[est.ID]
	return est, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Estimate, error) {
	query := `SELECT ` + estimateColumns + ` FROM estimates`
	args := []any{}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` WHERE status = $1`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ests []Estimate
	var ids []string
	for rows.Next() {
		est, err := scanEstimate(rows)
		if err != nil {
			return nil, err
		}
		ests = append(ests, est)
		ids = append(ids, est.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return ests, nil
	}
	items, err := r.itemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range ests {
		ests[i].Items = items[ests[i].ID]
	}
	return ests, nil
}

func (r *repository) Update(ctx context.Context, est Estimate) error {
	tag, err := r.pool.Exec(ctx, `UPDATE estimates SET status = $2, discount = $3, updated_at = $4 WHERE id = $1`,
		est.ID, string(est.Status), est.Discount, est.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) InsertItem(ctx context.Context, item Item) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO estimate_items (id, estimate_id, type, description, quantity, unit_price)
VALUES ($1, $2, $3, $4, $5, $6)`,
		item.ID, item.EstimateID, string(item.Type), item.Description, item.Quantity, item.UnitPrice)
	return err
}

func (r *repository) DeleteItem(ctx context.Context, estimateID, itemID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM estimate_items WHERE id = $1 AND estimate_id = $2`, itemID, estimateID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *repository) itemsFor(ctx context.Context, estimateIDs []string) (map[string][]Item, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, estimate_id, type, description, quantity, unit_price
FROM estimate_items WHERE estimate_id = ANY($1) ORDER BY id`, estimateIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string][]Item, len(estimateIDs))
	for rows.Next() {
		var item Item
		var typ string
		if err := rows.Scan(&item.ID, &item.EstimateID, &typ, &item.Description, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, err
		}
		item.Type = ItemType(typ)
		result[item.EstimateID] = append(result[item.EstimateID], item)
	}
	return result, rows.Err()
}

func scanEstimate(row pgx.Row) (Estimate, error) {
	var est Estimate
	var status string
	if err := row.Scan(&est.ID, &est.ROID, &status, &est.Discount, &est.CreatedAt, &est.UpdatedAt); err != nil {
		return Estimate{}, err
	}
	est.Status = Status(status)
	return est, nil
}
