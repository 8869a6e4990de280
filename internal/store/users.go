package store

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

func (s *Store) CreateUser(email, passwordHash string) (*User, error) {
	id := uuid.NewString()
	email = strings.ToLower(strings.TrimSpace(email))
	_, err := s.db.Exec(
		`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		id, email, passwordHash, millis(s.now()),
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return s.GetUser(id)
}

func (s *Store) GetUser(id string) (*User, error) {
	return s.scanUser(s.db.QueryRow(
		`SELECT id, email, password_hash, created_at FROM users WHERE id = ?`, id,
	), id)
}

func (s *Store) GetUserByEmail(email string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return s.scanUser(s.db.QueryRow(
		`SELECT id, email, password_hash, created_at FROM users WHERE email = ?`, email,
	), email)
}

func (s *Store) scanUser(row scanner, key string) (*User, error) {
	u := &User{}
	var createdAt int64
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &createdAt); err != nil {
		return nil, notFound(err, "user", key)
	}
	u.CreatedAt = fromMillis(createdAt)
	return u, nil
}
