package techs

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	Insert(ctx context.Context, tech Tech) error
	Get(ctx context.Context, id string) (Tech, error)
	List(ctx context.Context) ([]Tech, error)
	Update(ctx context.Context, tech Tech) error
	Exists(ctx context.Context, id string) (bool, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the pgx-backed technician repository.
func NewRepository(db *pgxpool.Pool) RepositoryPort {
	return &repository{db: db}
}

const techColumns = `id, name, specialties, certifications, availability, hourly_rate, created_at, updated_at`

func (r *repository) Insert(ctx context.Context, t Tech) error {
	_, err := r.db.Exec(ctx, `INSERT INTO techs (id, name, specialties, certifications, availability, hourly_rate, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.Name, t.Specialties, t.Certifications, string(t.Availability), t.HourlyRate, t.CreatedAt, t.UpdatedAt)
	return err
}

func (r *repository) Get(ctx context.Context, id string) (Tech, error) {
	row := r.db.QueryRow(ctx, `SELECT `+techColumns+` FROM techs WHERE id = $1`, id)
	t, err := scanTech(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Tech{}, ErrNotFound
	}
	return t, err
}

func (r *repository) List(ctx context.Context) ([]Tech, error) {
	rows, err := r.db.Query(ctx, `SELECT `+techColumns+` FROM techs ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var techs []Tech
	for rows.Next() {
		t, err := scanTech(rows)
		if err != nil {
			return nil, err
		}
		techs = append(techs, t)
	}
	return techs, rows.Err()
}

func (r *repository) Update(ctx context.Context, t Tech) error {
	tag, err := r.db.Exec(ctx, `UPDATE techs SET name = $2, specialties = $3, certifications = $4, availability = $5, hourly_rate = $6, updated_at = $7 WHERE id = $1`,
		t.ID, t.Name, t.Specialties, t.Certifications, string(t.Availability), t.HourlyRate, t.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM techs WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func scanTech(row pgx.Row) (Tech, error) {
	var t Tech
	var availability string
	if err := row.Scan(&t.ID, &t.Name, &t.Specialties, &t.Certifications, &availability, &t.HourlyRate, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return Tech{}, err
	}
	t.Availability = Availability(availability)
	return t, nil
}
