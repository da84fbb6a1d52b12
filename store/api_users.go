package store

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// APIUser is a collaborator account allowed to call the write side of the
// HTTP API on behalf of the ordering application.
type APIUser struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

const apiUserSelectCols = `id, username, password_hash, created_at`

// CreateAPIUser stores a new account. Usernames are unique and trimmed.
func (db *DB) CreateAPIUser(ctx context.Context, username, passwordHash string) (*APIUser, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("create api user: empty username")
	}
	if passwordHash == "" {
		return nil, fmt.Errorf("create api user %s: empty password hash", username)
	}
	id, err := db.insert(ctx, `INSERT INTO api_users (username, password_hash) VALUES (?, ?)`, username, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("create api user %s: %w", username, err)
	}
	return db.apiUserWhere(ctx, "id", id)
}

// GetAPIUser looks an account up by name. A missing user returns an error
// wrapping sql.ErrNoRows.
func (db *DB) GetAPIUser(ctx context.Context, username string) (*APIUser, error) {
	return db.apiUserWhere(ctx, "username", strings.TrimSpace(username))
}

func (db *DB) CountAPIUsers(ctx context.Context) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM api_users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count api users: %w", err)
	}
	return n, nil
}

func (db *DB) apiUserWhere(ctx context.Context, col string, arg any) (*APIUser, error) {
	var u APIUser
	var createdAt any
	q := fmt.Sprintf(`SELECT %s FROM api_users WHERE %s=?`, apiUserSelectCols, col)
	err := db.QueryRowContext(ctx, db.Q(q), arg).Scan(&u.ID, &u.Username, &u.PasswordHash, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("api user %s=%v: %w", col, arg, err)
	}
	u.CreatedAt = parseTime(createdAt)
	return &u, nil
}
