package store

import (
	"fmt"
	"strconv"
)

// Settings live in one table keyed by (user_id, key). The '' user holds the
// global rows: the session and the defaults every user starts from.

func (s *Store) GetSetting(key string) (string, error) {
	return s.GetUserSetting("", key)
}

func (s *Store) SetSetting(key, value string) error {
	return s.SetUserSetting("", key, value)
}

func (s *Store) DeleteSetting(key string) error {
	_, err := s.db.Exec(`DELETE FROM settings WHERE user_id = '' AND key = ?`, key)
	return err
}

// GetBoolSetting reads key as a boolean, returning fallback when unset or malformed.
func (s *Store) GetBoolSetting(key string, fallback bool) bool {
	return s.GetUserBoolSetting("", key, fallback)
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	return s.GetUserSettings("")
}

// GetUserSetting returns the user's value for key, or the global one when
// the user never set it.
func (s *Store) GetUserSetting(userID, key string) (string, error) {
	var value string
	err := s.db.QueryRow(
		`SELECT value FROM settings WHERE key = ? AND user_id IN (?, '') ORDER BY user_id DESC LIMIT 1`,
		key, userID,
	).Scan(&value)
	if err != nil {
		return "", notFound(err, "setting", key)
	}
	return value, nil
}

// SetUserSetting stores value for userID only. An empty userID writes the
// global row.
func (s *Store) SetUserSetting(userID, key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (user_id, key, value) VALUES (?, ?, ?)
		 ON CONFLICT(user_id, key) DO UPDATE SET value = excluded.value`,
		userID, key, value,
	)
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

func (s *Store) GetUserBoolSetting(userID, key string, fallback bool) bool {
	v, err := s.GetUserSetting(userID, key)
	if err != nil {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// GetUserSettings lists the settings userID sees: global rows overlaid by
// the user's own, sorted by key.
func (s *Store) GetUserSettings(userID string) ([]Setting, error) {
	rows, err := s.db.Query(`
		SELECT key, value FROM settings AS g
		WHERE g.user_id = ?
		   OR (g.user_id = '' AND NOT EXISTS (
		       SELECT 1 FROM settings AS u WHERE u.user_id = ? AND u.key = g.key))
		ORDER BY key`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}
