package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/meridianhq/meridian/internal/data/pgxutil"
	"github.com/meridianhq/meridian/internal/domain/model"
)

// UserRepo provides database operations for users and their moderation state.
type UserRepo struct {
	DB *sql.DB
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

// GetByID retrieves the pipeline-relevant slice of a user row.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var out model.User
	if err := pgxutil.WithConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT id, username, theme, css, last_online
			FROM users
			WHERE id = $1
		`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
		return err
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return &out, nil
}

// TouchAndCheck updates the user's last-online timestamp and reports whether
// an active moderation sanction points at them. Both statements run in one
// transaction so a concurrent request never sees the timestamp move while
// reading a sanction flag computed before it.
func (r *UserRepo) TouchAndCheck(ctx context.Context, userID string) (bool, error) {
	var sanctioned bool
	if err := pgxutil.WithTx(ctx, r.DB, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE users SET last_online = now() WHERE id = $1`, userID)
		if err != nil {
			return fmt.Errorf("touch last_online: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrUserNotFound
		}

		row := tx.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM moderation_actions
				WHERE target_user_id = $1 AND active
			)
		`, userID)
		if err := row.Scan(&sanctioned); err != nil {
			return fmt.Errorf("check active sanction: %w", err)
		}
		return nil
	}); err != nil {
		return false, err
	}
	return sanctioned, nil
}
