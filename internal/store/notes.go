package store

import (
	"fmt"

	"github.com/google/uuid"
)

const noteColumns = `id, user_id, title, body, created_at, updated_at`

func (s *Store) CreateNote(userID string, n Note) (string, error) {
	if userID == "" {
		return "", ErrNotAuthenticated
	}
	now := millis(s.now())
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO notes (`+noteColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		id, userID, n.Title, n.Body, now, now,
	)
	if err != nil {
		return "", fmt.Errorf("insert note: %w", err)
	}
	s.hub.notify(userID, collectionNotes)
	return id, nil
}

func (s *Store) GetNote(userID, id string) (*Note, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	n, err := scanNote(s.db.QueryRow(
		`SELECT `+noteColumns+` FROM notes WHERE user_id = ? AND id = ?`, userID, id,
	))
	if err != nil {
		return nil, notFound(err, "note", id)
	}
	return n, nil
}

// ListNotes returns the user's notes, most recently updated first.
func (s *Store) ListNotes(userID string) ([]Note, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	rows, err := s.db.Query(
		`SELECT `+noteColumns+` FROM notes WHERE user_id = ? ORDER BY updated_at DESC, id`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

func (s *Store) UpdateNote(userID string, n Note) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	res, err := s.db.Exec(
		`UPDATE notes SET title = ?, body = ?, updated_at = ? WHERE user_id = ? AND id = ?`,
		n.Title, n.Body, millis(s.now()), userID, n.ID,
	)
	if err != nil {
		return fmt.Errorf("update note %s: %w", n.ID, err)
	}
	if err := affected(res, "note", n.ID); err != nil {
		return err
	}
	s.hub.notify(userID, collectionNotes)
	return nil
}

func (s *Store) DeleteNote(userID, id string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	res, err := s.db.Exec(`DELETE FROM notes WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("delete note %s: %w", id, err)
	}
	if err := affected(res, "note", id); err != nil {
		return err
	}
	s.hub.notify(userID, collectionNotes)
	return nil
}

func scanNote(row scanner) (*Note, error) {
	n := &Note{}
	var createdAt, updatedAt int64
	if err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Body, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	n.CreatedAt = fromMillis(createdAt)
	n.UpdatedAt = fromMillis(updatedAt)
	return n, nil
}
