package alerts

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the pgx-backed alert repository.
func NewRepository(db *pgxpool.Pool) RepositoryPort {
	return &repository{db: db}
}

const alertColumns = `id, type, title, message, entity_id, entity_type, is_read, created_at, expires_at`

func (r *repository) Insert(ctx context.Context, a Alert) error {
	_, err := r.db.Exec(ctx, `INSERT INTO alerts (id, type, title, message, entity_id, entity_type, is_read, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, string(a.Type), a.Title, a.Message, a.EntityID, string(a.EntityType), a.IsRead, a.CreatedAt, a.ExpiresAt)
	return err
}

func (r *repository) Get(ctx context.Context, id string) (Alert, error) {
	row := r.db.QueryRow(ctx, `SELECT `+alertColumns+` FROM alerts WHERE id = $1`, id)
	a, err := scanAlert(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Alert{}, ErrNotFound
	}
	return a, err
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE (expires_at IS NULL OR expires_at >= $1)`
	args := []any{filter.Now}
	if filter.UnreadOnly {
		query += ` AND is_read = FALSE`
	}
	if filter.EntityType != "" {
		query += ` AND entity_type = $2`
		args = append(args, string(filter.EntityType))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func (r *repository) MarkRead(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `UPDATE alerts SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) MarkAllRead(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `UPDATE alerts SET is_read = TRUE WHERE is_read = FALSE`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *repository) HasUnreadFor(ctx context.Context, entityID string, entityType EntityType) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (
SELECT 1 FROM alerts WHERE entity_id = $1 AND entity_type = $2 AND is_read = FALSE)`,
		entityID, string(entityType)).Scan(&exists)
	return exists, err
}

func scanAlert(row pgx.Row) (Alert, error) {
	var a Alert
	var typ, entityType string
	if err := row.Scan(&a.ID, &typ, &a.Title, &a.Message, &a.EntityID, &entityType, &a.IsRead, &a.CreatedAt, &a.ExpiresAt); err != nil {
		return Alert{}, err
	}
	a.Type = Type(typ)
	a.EntityType = EntityType(entityType)
	return a, nil
}
