package shared

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNumberTaken indicates a document number collided with an existing one.
var ErrNumberTaken = errors.New("document number already taken")

// Numbering issues sequential human-readable document numbers such as
// RO-2024-001 and PO-2024-001, one counter per prefix and year.
type Numbering struct {
	pool *pgxpool.Pool
}

// NewNumbering constructs the numbering helper.
func NewNumbering(pool *pgxpool.Pool) *Numbering {
	return &Numbering{pool: pool}
}

// Next reserves and returns the next number for the prefix in the given year.
func (n *Numbering) Next(ctx context.Context, prefix string, at time.Time) (string, error) {
	if n == nil || n.pool == nil {
		return "", errors.New("numbering not initialised")
	}
	if prefix == "" {
		return "", errors.New("numbering prefix required")
	}
	year := at.UTC().Year()
	var seq int64
	err := n.pool.QueryRow(ctx, `INSERT INTO document_counters (prefix, year, seq)
VALUES ($1, $2, 1)
ON CONFLICT (prefix, year) DO UPDATE SET seq = document_counters.seq + 1
RETURNING seq`, prefix, year).Scan(&seq)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return "", ErrNumberTaken
		}
		return "", err
	}
	return FormatNumber(prefix, year, seq), nil
}

// FormatNumber renders a document number from its parts.
func FormatNumber(prefix string, year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%03d", prefix, year, seq)
}
