package auth

import (
	"database/sql"
	"fmt"
	"strconv"
)

// SQLiteStore persists session state in the session_store table created by
// the shared migrations. Triple writes run in a single transaction.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const upsertKeySQL = `
	INSERT INTO session_store (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
`

func (s *SQLiteStore) Get(key string) (string, bool) {
	var value string
	err := s.db.QueryRow("SELECT value FROM session_store WHERE key = ?", key).Scan(&value)
	if err != nil {
		return "", false
	}
	return value, true
}

func (s *SQLiteStore) Set(key, value string) error {
	if _, err := s.db.Exec(upsertKeySQL, key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM session_store WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Reset() error {
	if _, err := s.db.Exec("DELETE FROM session_store"); err != nil {
		return fmt.Errorf("failed to reset session store: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SaveSession(sess Session) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin session transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(upsertKeySQL, KeyAccessToken, sess.AccessToken); err != nil {
		return fmt.Errorf("failed to write access token: %w", err)
	}
	if _, err := tx.Exec(upsertKeySQL, KeyExpiresAt, strconv.FormatInt(sess.ExpiresAt, 10)); err != nil {
		return fmt.Errorf("failed to write token expiry: %w", err)
	}
	if sess.LoggedIn {
		if _, err := tx.Exec(upsertKeySQL, KeyLoggedIn, "true"); err != nil {
			return fmt.Errorf("failed to write logged-in flag: %w", err)
		}
	} else {
		if _, err := tx.Exec("DELETE FROM session_store WHERE key = ?", KeyLoggedIn); err != nil {
			return fmt.Errorf("failed to clear logged-in flag: %w", err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) ClearSession() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin session transaction: %w", err)
	}
	defer tx.Rollback()

	for _, key := range []string{KeyAccessToken, KeyExpiresAt, KeyLoggedIn} {
		if _, err := tx.Exec("DELETE FROM session_store WHERE key = ?", key); err != nil {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
	}

	return tx.Commit()
}
