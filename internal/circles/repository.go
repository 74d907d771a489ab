package circles

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/circlehub/backend/internal/models"
)

const circleColumns = `id, host_id, title, description, participants_limit, start_date, is_live, is_ended, created_at, updated_at`

// Repository handles circle lifecycle persistence. Ownership-gated writes run
// the ownership read and the mutation in one transaction with a row lock, so
// two interleaved requests cannot race the policy check.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a circles repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new circle hosted by c.HostID. The actor must be the host.
// On success c is overwritten with the stored row, generated id included.
func (r *Repository) Create(ctx context.Context, actorID int64, c *models.Circle) error {
	if !CanCreate(actorID, c.HostID) {
		return models.ErrUnauthorized
	}
	if c.ParticipantsLimit <= 0 {
		c.ParticipantsLimit = models.DefaultParticipantsLimit
	}
	const q = `INSERT INTO circles (host_id, title, description, participants_limit, start_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + circleColumns
	err := r.pool.QueryRow(ctx, q, c.HostID, c.Title, c.Description, c.ParticipantsLimit, c.StartDate).
		Scan(&c.ID, &c.HostID, &c.Title, &c.Description, &c.ParticipantsLimit, &c.StartDate, &c.IsLive, &c.IsEnded, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert circle: %w", err)
	}
	return nil
}

// GetByID returns a circle with its host's username.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.CircleWithHost, error) {
	const q = `SELECT c.id, c.host_id, c.title, c.description, c.participants_limit, c.start_date, c.is_live, c.is_ended, c.created_at, c.updated_at, u.username
		FROM circles c JOIN users u ON c.host_id = u.id
		WHERE c.id = $1`
	var cw models.CircleWithHost
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&cw.ID, &cw.HostID, &cw.Title, &cw.Description, &cw.ParticipantsLimit,
		&cw.StartDate, &cw.IsLive, &cw.IsEnded, &cw.CreatedAt, &cw.UpdatedAt, &cw.HostUsername)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cw, nil
}

// List returns all circles with host usernames, ordered by start date.
func (r *Repository) List(ctx context.Context) ([]models.CircleWithHost, error) {
	const q = `SELECT c.id, c.host_id, c.title, c.description, c.participants_limit, c.start_date, c.is_live, c.is_ended, c.created_at, c.updated_at, u.username
		FROM circles c JOIN users u ON c.host_id = u.id
		ORDER BY c.start_date`
	return r.queryCircles(ctx, q)
}

// ListByHost returns circles hosted by a user, ordered by start date.
func (r *Repository) ListByHost(ctx context.Context, hostID int64) ([]models.CircleWithHost, error) {
	const q = `SELECT c.id, c.host_id, c.title, c.description, c.participants_limit, c.start_date, c.is_live, c.is_ended, c.created_at, c.updated_at, u.username
		FROM circles c JOIN users u ON c.host_id = u.id
		WHERE c.host_id = $1
		ORDER BY c.start_date`
	return r.queryCircles(ctx, q, hostID)
}

// ListFollowing returns circles hosted by anyone the viewer follows, ordered
// by start date.
func (r *Repository) ListFollowing(ctx context.Context, viewerID int64) ([]models.CircleWithHost, error) {
	const q = `SELECT c.id, c.host_id, c.title, c.description, c.participants_limit, c.start_date, c.is_live, c.is_ended, c.created_at, c.updated_at, u.username
		FROM circles c
		JOIN users u ON c.host_id = u.id
		JOIN follow_relationships f ON f.user_id = u.id
		WHERE f.follower_id = $1
		ORDER BY c.start_date`
	return r.queryCircles(ctx, q, viewerID)
}

// Update merges the patch into the stored circle. The ownership read, policy
// check and write share one transaction; the circle row is locked for the
// duration. Returns the updated row.
func (r *Repository) Update(ctx context.Context, actorID, circleID int64, p Patch) (*models.Circle, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var cur models.Circle
	err = tx.QueryRow(ctx, `SELECT `+circleColumns+` FROM circles WHERE id = $1 FOR UPDATE`, circleID).
		Scan(&cur.ID, &cur.HostID, &cur.Title, &cur.Description, &cur.ParticipantsLimit, &cur.StartDate, &cur.IsLive, &cur.IsEnded, &cur.CreatedAt, &cur.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load circle: %w", err)
	}
	if !CanModify(actorID, cur.HostID) {
		return nil, models.ErrUnauthorized
	}

	p.Apply(&cur)

	const q = `UPDATE circles
		SET title = $1, description = $2, participants_limit = $3, start_date = $4, is_live = $5, is_ended = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING ` + circleColumns
	var out models.Circle
	err = tx.QueryRow(ctx, q, cur.Title, cur.Description, cur.ParticipantsLimit, cur.StartDate, cur.IsLive, cur.IsEnded, circleID).
		Scan(&out.ID, &out.HostID, &out.Title, &out.Description, &out.ParticipantsLimit, &out.StartDate, &out.IsLive, &out.IsEnded, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update circle: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &out, nil
}

// Delete removes a circle. Host or admin only. Registrations, tags and flags
// go with it via store-level cascade.
func (r *Repository) Delete(ctx context.Context, actorID int64, actorRole models.Role, circleID int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var hostID int64
	err = tx.QueryRow(ctx, `SELECT host_id FROM circles WHERE id = $1 FOR UPDATE`, circleID).Scan(&hostID)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load circle: %w", err)
	}
	if !CanDelete(actorID, actorRole, hostID) {
		return models.ErrUnauthorized
	}

	if _, err := tx.Exec(ctx, `DELETE FROM circles WHERE id = $1`, circleID); err != nil {
		return fmt.Errorf("delete circle: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *Repository) queryCircles(ctx context.Context, q string, args ...interface{}) ([]models.CircleWithHost, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.CircleWithHost
	for rows.Next() {
		var cw models.CircleWithHost
		if err := rows.Scan(&cw.ID, &cw.HostID, &cw.Title, &cw.Description, &cw.ParticipantsLimit,
			&cw.StartDate, &cw.IsLive, &cw.IsEnded, &cw.CreatedAt, &cw.UpdatedAt, &cw.HostUsername); err != nil {
			return nil, err
		}
		list = append(list, cw)
	}
	return list, rows.Err()
}
