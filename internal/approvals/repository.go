package approvals

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the pgx-backed approval repository.
func NewRepository(db *pgxpool.Pool) RepositoryPort {
	return &repository{db: db}
}

const approvalColumns = `id, entity_id, entity_type, description, amount, status, requested_at, responded_at, responded_by`

func (r *repository) Insert(ctx context.Context, a Approval) error {
	_, err := r.db.Exec(ctx, `INSERT INTO approvals (id, entity_id, entity_type, description, amount, status, requested_at, responded_at, responded_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.EntityID, string(a.EntityType), a.Description, a.Amount, string(a.Status), a.RequestedAt, a.RespondedAt, a.RespondedBy)
	return err
}

func (r *repository) Get(ctx context.Context, id string) (Approval, error) {
	row := r.db.QueryRow(ctx, `SELECT `+approvalColumns+` FROM approvals WHERE id = $1`, id)
	a, err := scanApproval(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Approval{}, ErrNotFound
	}
	return a, err
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Approval, error) {
	query := `SELECT ` + approvalColumns + ` FROM approvals WHERE 1=1`
	args := []any{}
	if filter.EntityID != "" {
		args = append(args, filter.EntityID)
		query += ` AND entity_id = $1`
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		if len(args) == 1 {
			query += ` AND status = $1`
		} else {
			query += ` AND status = $2`
		}
	}
	query += ` ORDER BY requested_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var approvals []Approval
	for rows.Next() {
		a, err := scanApproval(rows)
		if err != nil {
			return nil, err
		}
		approvals = append(approvals, a)
	}
	return approvals, rows.Err()
}

func (r *repository) Update(ctx context.Context, a Approval) error {
	tag, err := r.db.Exec(ctx, `UPDATE approvals SET status = $2, responded_at = $3, responded_by = $4 WHERE id = $1`,
		a.ID, string(a.Status), a.RespondedAt, a.RespondedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanApproval(row pgx.Row) (Approval, error) {
	var a Approval
	var entityType, status string
	if err := row.Scan(&a.ID, &a.EntityID, &entityType, &a.Description, &a.Amount, &status, &a.RequestedAt, &a.RespondedAt, &a.RespondedBy); err != nil {
		return Approval{}, err
	}
	a.EntityType = EntityType(entityType)
	a.Status = Status(status)
	return a, nil
}
