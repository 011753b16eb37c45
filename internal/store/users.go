package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/divvyhq/divvy/internal/ledger"
)

func (s *Store) CreateUser(ctx context.Context, name string) (*ledger.User, error) {
	if name == "" {
		return nil, fmt.Errorf("user name is required")
	}

	res, err := s.writer.ExecContext(ctx, `INSERT INTO users (name) VALUES (?)`, name)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", ledger.ErrDuplicateUser, name)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("user id: %w", err)
	}
	return s.GetUser(ctx, id)
}

func (s *Store) GetUser(ctx context.Context, id int64) (*ledger.User, error) {
	row := s.reader.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (s *Store) GetUserByName(ctx context.Context, name string) (*ledger.User, error) {
	row := s.reader.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM users WHERE name = ?`, name)
	return scanUser(row)
}

func (s *Store) ListUsers(ctx context.Context) ([]ledger.User, error) {
	rows, err := s.reader.QueryContext(ctx,
		`SELECT id, name, created_at FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []ledger.User
	for rows.Next() {
		var u ledger.User
		var createdAt string
		if err := rows.Scan(&u.ID, &u.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		users = append(users, u)
	}
	return users, rows.Err()
}

// RenameUser is the only mutation a user supports after onboarding.
func (s *Store) RenameUser(ctx context.Context, id int64, newName string) (*ledger.User, error) {
	if newName == "" {
		return nil, fmt.Errorf("user name is required")
	}

	res, err := s.writer.ExecContext(ctx, `UPDATE users SET name = ? WHERE id = ?`, newName, id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", ledger.ErrDuplicateUser, newName)
		}
		return nil, fmt.Errorf("rename user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ledger.ErrUserNotFound
	}
	return s.GetUser(ctx, id)
}

func scanUser(row *sql.Row) (*ledger.User, error) {
	var u ledger.User
	var createdAt string
	err := row.Scan(&u.ID, &u.Name, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &u, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
