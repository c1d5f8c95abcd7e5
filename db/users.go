package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"studioflow/models"
)

// CreateUser inserts a user and returns its id.
func (s *Store) CreateUser(ctx context.Context, username, hash string) (int, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (username, hash) VALUES (?, ?)",
		username, hash,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read user id: %w", err)
	}
	return int(id), nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	return s.getUser(ctx, "SELECT id, username, hash FROM users WHERE username = ?", username)
}

func (s *Store) GetUserByID(ctx context.Context, id int) (models.User, error) {
	return s.getUser(ctx, "SELECT id, username, hash FROM users WHERE id = ?", id)
}

func (s *Store) getUser(ctx context.Context, query string, arg any) (models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Username, &u.Hash)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// UsernameTaken reports whether a user other than excludeID owns username.
// Pass 0 to check against every user.
func (s *Store) UsernameTaken(ctx context.Context, username string, excludeID int) (bool, error) {
	var id int
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM users WHERE username = ? AND id != ?",
		username, excludeID,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return true, nil
}

func (s *Store) UpdateUsername(ctx context.Context, id int, username string) error {
	_, err := s.db.ExecContext(ctx, "UPDATE users SET username = ? WHERE id = ?", username, id)
	if err != nil {
		return fmt.Errorf("failed to update username: %w", err)
	}
	return nil
}

// UpdateCredentials replaces username and password hash in one statement.
func (s *Store) UpdateCredentials(ctx context.Context, id int, username, hash string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE users SET username = ?, hash = ? WHERE id = ?",
		username, hash, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update credentials: %w", err)
	}
	return nil
}
