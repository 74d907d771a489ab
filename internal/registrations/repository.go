package registrations

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/circlehub/backend/internal/models"
)

// Repository handles circle membership persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a registrations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Register enrolls a user in a circle. The capacity check and the insert run
// in one transaction under the circle row lock, so concurrent registrations
// cannot exceed participants_limit.
func (r *Repository) Register(ctx context.Context, userID, circleID int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var limit int
	err = tx.QueryRow(ctx, `SELECT participants_limit FROM circles WHERE id = $1 FOR UPDATE`, circleID).Scan(&limit)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load circle: %w", err)
	}

	var count int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM circle_registrations WHERE circle_id = $1`, circleID).Scan(&count); err != nil {
		return fmt.Errorf("count registrations: %w", err)
	}
	if count >= limit {
		return models.ErrCircleFull
	}

	_, err = tx.Exec(ctx, `INSERT INTO circle_registrations (circle_id, user_id) VALUES ($1, $2)`, circleID, userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.ErrAlreadyRegistered
		}
		return fmt.Errorf("insert registration: %w", err)
	}
	return tx.Commit(ctx)
}

// Deregister removes a user's registration. Removing a registration that does
// not exist is a silent no-op.
func (r *Repository) Deregister(ctx context.Context, userID, circleID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM circle_registrations WHERE circle_id = $1 AND user_id = $2`, circleID, userID)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	return nil
}

// ListRegistrants returns the (id, username) set of users registered for a circle.
func (r *Repository) ListRegistrants(ctx context.Context, circleID int64) ([]models.UserRef, error) {
	const q = `SELECT u.id, u.username FROM circle_registrations cr
		JOIN users u ON cr.user_id = u.id
		WHERE cr.circle_id = $1`
	rows, err := r.pool.Query(ctx, q, circleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.UserRef
	for rows.Next() {
		var u models.UserRef
		if err := rows.Scan(&u.ID, &u.Username); err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// ListRegistered returns circles the user registered for, ordered by start date.
func (r *Repository) ListRegistered(ctx context.Context, userID int64) ([]models.CircleWithHost, error) {
	const q = `SELECT c.id, c.host_id, c.title, c.description, c.participants_limit, c.start_date, c.is_live, c.is_ended, c.created_at, c.updated_at, u.username
		FROM circle_registrations cr
		JOIN circles c ON cr.circle_id = c.id
		JOIN users u ON c.host_id = u.id
		WHERE cr.user_id = $1
		ORDER BY c.start_date`
	rows, err := r.pool.Query(ctx, q, userID)
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
