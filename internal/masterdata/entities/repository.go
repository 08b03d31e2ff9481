package entities

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	Insert(ctx context.Context, entity Entity) error
	Get(ctx context.Context, id string) (Entity, error)
	List(ctx context.Context, search string) ([]Entity, error)
	Update(ctx context.Context, entity Entity) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the pgx-backed entity repository.
func NewRepository(db *pgxpool.Pool) RepositoryPort {
	return &repository{db: db}
}

const entityColumns = `id, name, kind, email, phone, address, notes, created_at, updated_at`

func (r *repository) Insert(ctx context.Context, e Entity) error {
	_, err := r.db.Exec(ctx, `INSERT INTO entities (id, name, kind, email, phone, address, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.Name, string(e.Kind), e.Email, e.Phone, e.Address, e.Notes, e.CreatedAt, e.UpdatedAt)
	return err
}

func (r *repository) Get(ctx context.Context, id string) (Entity, error) {
	row := r.db.QueryRow(ctx, `SELECT `+entityColumns+` FROM entities WHERE id = $1`, id)
	e, err := scanEntity(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entity{}, ErrNotFound
	}
	return e, err
}

func (r *repository) List(ctx context.Context, search string) ([]Entity, error) {
	query := `SELECT ` + entityColumns + ` FROM entities`
	args := []any{}
	if search != "" {
		args = append(args, "%"+search+"%")
		query += ` WHERE name ILIKE $1`
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entities []Entity
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, rows.Err()
}

func (r *repository) Update(ctx context.Context, e Entity) error {
	tag, err := r.db.Exec(ctx, `UPDATE entities SET
name = $2, kind = $3, email = $4, phone = $5, address = $6, notes = $7, updated_at = $8
WHERE id = $1`,
		e.ID, e.Name, string(e.Kind), e.Email, e.Phone, e.Address, e.Notes, e.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanEntity(row pgx.Row) (Entity, error) {
	var e Entity
	var kind string
	if err := row.Scan(&e.ID, &e.Name, &kind, &e.Email, &e.Phone, &e.Address, &e.Notes, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return Entity{}, err
	}
	e.Kind = Kind(kind)
	return e, nil
}
