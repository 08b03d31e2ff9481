package repairs

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

// NewRepository constructs the pgx-backed repairs repository.
func NewRepository(pool *pgxpool.Pool) RepositoryPort {
	return &repository{pool: pool}
}

type txRepository struct {
	tx pgx.Tx
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

const roColumns = `id, number, vehicle_id, customer_id, description, status, priority,
estimated_completion, actual_completion, assigned_techs, is_rework, rework_reason, created_at, updated_at`

func (r *repository) GetRO(ctx context.Context, id string) (RO, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+roColumns+` FROM repair_orders WHERE id = $1`, id)
	ro, err := scanRO(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return RO{}, ErrNotFound
	}
	if err != nil {
		return RO{}, err
	}
	phases, err := r.phasesFor(ctx, []string{ro.ID})
	if err != nil {
		return RO{}, err
	}
	ro.Phases = phases[ro.ID]
	return ro, nil
}

func (r *repository) ListROs(ctx context.Context, filter ListFilter) ([]RO, error) {
	query := `SELECT ` + roColumns + ` FROM repair_orders WHERE 1=1`
	args := []any{}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` AND status = $1`
	}
	if filter.TechID != "" {
		args = append(args, filter.TechID)
		if len(args) == 1 {
			query += ` AND $1 = ANY(assigned_techs)`
		} else {
			query += ` AND $2 = ANY(assigned_techs)`
		}
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ros []RO
	var ids []string
	for rows.Next() {
		ro, err := scanRO(rows)
		if err != nil {
			return nil, err
		}
		ros = append(ros, ro)
		ids = append(ids, ro.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return ros, nil
	}
	phases, err := r.phasesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range ros {
		ros[i].Phases = phases[ros[i].ID]
	}
	return ros, nil
}

func (r *repository) phasesFor(ctx context.Context, roIDs []string) (map[string][]Phase, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, ro_id, name, description, estimated_hours, actual_hours,
status, started_at, ended_at, assigned_tech_id, phase_order
FROM repair_phases WHERE ro_id = ANY($1) ORDER BY phase_order ASC`, roIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string][]Phase, len(roIDs))
	for rows.Next() {
		var p Phase
		var status string
		if err := rows.Scan(&p.ID, &p.ROID, &p.Name, &p.Description, &p.EstimatedHours, &p.ActualHours,
			&status, &p.StartedAt, &p.EndedAt, &p.AssignedTechID, &p.Order); err != nil {
			return nil, err
		}
		p.Status = PhaseStatus(status)
		result[p.ROID] = append(result[p.ROID], p)
	}
	return result, rows.Err()
}

func (t *txRepository) InsertRO(ctx context.Context, ro RO) error {
	_, err := t.tx.Exec(ctx, `INSERT INTO repair_orders
(id, number, vehicle_id, customer_id, description, status, priority,
 estimated_completion, actual_completion, assigned_techs, is_rework, rework_reason, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		ro.ID, ro.Number, ro.VehicleID, ro.CustomerID, ro.Description, string(ro.Status), string(ro.Priority),
		ro.EstimatedCompletion, ro.ActualCompletion, ro.AssignedTechs, ro.IsRework, ro.ReworkReason, ro.CreatedAt, ro.UpdatedAt)
	return err
}

func (t *txRepository) UpdateRO(ctx context.Context, ro RO) error {
	tag, err := t.tx.Exec(ctx, `UPDATE repair_orders SET
status = $2, priority = $3, description = $4, estimated_completion = $5, actual_completion = $6,
assigned_techs = $7, is_rework = $8, rework_reason = $9, updated_at = $10
WHERE id = $1`,
		ro.ID, string(ro.Status), string(ro.Priority), ro.Description, ro.EstimatedCompletion, ro.ActualCompletion,
		ro.AssignedTechs, ro.IsRework, ro.ReworkReason, ro.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *txRepository) InsertPhase(ctx context.Context, p Phase) error {
	_, err := t.tx.Exec(ctx, `INSERT INTO repair_phases
(id, ro_id, name, description, estimated_hours, actual_hours, status, started_at, ended_at, assigned_tech_id, phase_order)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.ROID, p.Name, p.Description, p.EstimatedHours, p.ActualHours, string(p.Status),
		p.StartedAt, p.EndedAt, p.AssignedTechID, p.Order)
	return err
}

func (t *txRepository) UpdatePhase(ctx context.Context, p Phase) error {
	tag, err := t.tx.Exec(ctx, `UPDATE repair_phases SET
status = $2, actual_hours = $3, started_at = $4, ended_at = $5, assigned_tech_id = $6
WHERE id = $1`,
		p.ID, string(p.Status), p.ActualHours, p.StartedAt, p.EndedAt, p.AssignedTechID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPhaseNotFound
	}
	return nil
}

func (t *txRepository) InsertHistory(ctx context.Context, entry HistoryEntry) error {
	_, err := t.tx.Exec(ctx, `INSERT INTO repair_phase_history (ro_id, phase_id, phase_name, event, tech_id, at)
VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ROID, entry.PhaseID, entry.PhaseName, entry.Event, entry.TechID, entry.At)
	return err
}

func scanRO(row pgx.Row) (RO, error) {
	var ro RO
	var status, priority string
	if err := row.Scan(&ro.ID, &ro.Number, &ro.VehicleID, &ro.CustomerID, &ro.Description, &status, &priority,
		&ro.EstimatedCompletion, &ro.ActualCompletion, &ro.AssignedTechs, &ro.IsRework, &ro.ReworkReason,
		&ro.CreatedAt, &ro.UpdatedAt); err != nil {
		return RO{}, err
	}
	ro.Status = ROStatus(status)
	ro.Priority = Priority(priority)
	if ro.AssignedTechs == nil {
		ro.AssignedTechs = []string{}
	}
	return ro, nil
}
