package vehicles

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	Insert(ctx context.Context, vehicle Vehicle) error
	Get(ctx context.Context, id string) (Vehicle, error)
	List(ctx context.Context, ownerID string) ([]Vehicle, error)
	Update(ctx context.Context, vehicle Vehicle) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the pgx-backed vehicle repository.
func NewRepository(db *pgxpool.Pool) RepositoryPort {
	return &repository{db: db}
}

const vehicleColumns = `id, owner_id, year, make, model, vin, license_plate, color, mileage, created_at, updated_at`

func (r *repository) Insert(ctx context.Context, v Vehicle) error {
	_, err := r.db.Exec(ctx, `INSERT INTO vehicles (id, owner_id, year, make, model, vin, license_plate, color, mileage, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		v.ID, v.OwnerID, v.Year, v.Make, v.Model, v.VIN, v.LicensePlate, v.Color, v.Mileage, v.CreatedAt, v.UpdatedAt)
	return err
}

func (r *repository) Get(ctx context.Context, id string) (Vehicle, error) {
	row := r.db.QueryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, id)
	v, err := scanVehicle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Vehicle{}, ErrNotFound
	}
	return v, err
}

func (r *repository) List(ctx context.Context, ownerID string) ([]Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles`
	args := []any{}
	if ownerID != "" {
		args = append(args, ownerID)
		query += ` WHERE owner_id = $1`
	}
	query += ` ORDER BY make, model`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

func (r *repository) Update(ctx context.Context, v Vehicle) error {
	tag, err := r.db.Exec(ctx, `UPDATE vehicles SET
owner_id = $2, year = $3, make = $4, model = $5, vin = $6, license_plate = $7, color = $8, mileage = $9, updated_at = $10
WHERE id = $1`,
		v.ID, v.OwnerID, v.Year, v.Make, v.Model, v.VIN, v.LicensePlate, v.Color, v.Mileage, v.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanVehicle(row pgx.Row) (Vehicle, error) {
	var v Vehicle
	if err := row.Scan(&v.ID, &v.OwnerID, &v.Year, &v.Make, &v.Model, &v.VIN, &v.LicensePlate, &v.Color, &v.Mileage, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return Vehicle{}, err
	}
	return v, nil
}
