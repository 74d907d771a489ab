package tags

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/circlehub/backend/internal/circles"
	"github.com/circlehub/backend/internal/models"
)

// Repository handles circle tag persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a tags repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// lockHost loads a circle's host under a row lock inside tx.
func lockHost(ctx context.Context, tx pgx.Tx, circleID int64) (int64, error) {
	var hostID int64
	err := tx.QueryRow(ctx, `SELECT host_id FROM circles WHERE id = $1 FOR UPDATE`, circleID).Scan(&hostID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, models.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("load circle: %w", err)
	}
	return hostID, nil
}

// Add attaches a tag to a circle. Host only; the ownership check and insert
// share one transaction. The tag is also upserted into the global catalog.
func (r *Repository) Add(ctx context.Context, actorID, circleID int64, tag string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	hostID, err := lockHost(ctx, tx, circleID)
	if err != nil {
		return err
	}
	if !circles.CanModify(actorID, hostID) {
		return models.ErrUnauthorized
	}

	if _, err := tx.Exec(ctx, `INSERT INTO circle_tags (circle_id, tag) VALUES ($1, $2) ON CONFLICT DO NOTHING`, circleID, tag); err != nil {
		return fmt.Errorf("insert circle tag: %w", err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO tags (tag) VALUES ($1) ON CONFLICT DO NOTHING`, tag); err != nil {
		return fmt.Errorf("upsert tag catalog: %w", err)
	}
	return tx.Commit(ctx)
}

// Remove detaches a tag from a circle. Host only; same transaction boundary
// as Add. The global catalog keeps the tag value.
func (r *Repository) Remove(ctx context.Context, actorID, circleID int64, tag string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	hostID, err := lockHost(ctx, tx, circleID)
	if err != nil {
		return err
	}
	if !circles.CanModify(actorID, hostID) {
		return models.ErrUnauthorized
	}

	if _, err := tx.Exec(ctx, `DELETE FROM circle_tags WHERE circle_id = $1 AND tag = $2`, circleID, tag); err != nil {
		return fmt.Errorf("delete circle tag: %w", err)
	}
	return tx.Commit(ctx)
}

// ListByCircle returns the tag strings attached to a circle.
func (r *Repository) ListByCircle(ctx context.Context, circleID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT tag FROM circle_tags WHERE circle_id = $1 ORDER BY tag`, circleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTags(rows)
}

// ListAll returns the global tag catalog.
func (r *Repository) ListAll(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT tag FROM tags ORDER BY tag`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTags(rows)
}

func scanTags(rows pgx.Rows) ([]string, error) {
	var list []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}
