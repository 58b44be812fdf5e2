package auth

import (
	"strconv"
	"sync"
)

// Storage keys. These are the only persisted-state contracts; values are
// plain strings with no schema versioning.
const (
	KeyAccessToken  = "access_token"
	KeyExpiresAt    = "token_expires_at"
	KeyLoggedIn     = "logged_in"
	KeyCodeVerifier = "code_verifier"
)

// Session is the durable user session state.
//
// LoggedIn=true implies a refresh token exists server-side; AccessToken
// present implies ExpiresAt>0 (epoch milliseconds).
type Session struct {
	AccessToken string
	ExpiresAt   int64
	LoggedIn    bool
}

// Store persists session state as key/string pairs.
//
// SaveSession and ClearSession keep the token, expiry and logged-in flag
// logically atomic: all three are updated together, never partially.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
	// Reset removes every key, including transient ones.
	Reset() error
	SaveSession(s Session) error
	ClearSession() error
}

// LoadSession reads session state from a store. The second return reports
// whether any session keys were present.
func LoadSession(st Store) (Session, bool) {
	var s Session

	token, tokenOK := st.Get(KeyAccessToken)
	expiresRaw, expiresOK := st.Get(KeyExpiresAt)
	loggedIn, loggedInOK := st.Get(KeyLoggedIn)

	if !tokenOK && !expiresOK && !loggedInOK {
		return s, false
	}

	s.AccessToken = token
	if expiresOK {
		if ms, err := strconv.ParseInt(expiresRaw, 10, 64); err == nil {
			s.ExpiresAt = ms
		}
	}
	s.LoggedIn = loggedIn == "true"

	return s, true
}

// MemoryStore is an in-memory [Store] used by tests and as a no-persistence
// fallback. Reloads of the process start from a clean slate.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemoryStore) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]string)
	return nil
}

func (m *MemoryStore) SaveSession(s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[KeyAccessToken] = s.AccessToken
	m.data[KeyExpiresAt] = strconv.FormatInt(s.ExpiresAt, 10)
	if s.LoggedIn {
		m.data[KeyLoggedIn] = "true"
	} else {
		delete(m.data, KeyLoggedIn)
	}
	return nil
}

func (m *MemoryStore) ClearSession() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, KeyAccessToken)
	delete(m.data, KeyExpiresAt)
	delete(m.data, KeyLoggedIn)
	return nil
}
