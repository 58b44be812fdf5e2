package auth

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/99designs/keyring"
)

// KeyringStore persists session state in the operating system keychain via
// 99designs/keyring, falling back to an encrypted file backend where no
// native keychain is available.
//
// Keyring backends offer no multi-key transactions; SaveSession writes
// sequentially, which is safe because a single Manager serializes all
// session writes.
type KeyringStore struct {
	ring keyring.Keyring
}

// NewKeyringStore opens the "jammming" keyring service. fileDir is used by
// the file fallback backend.
func NewKeyringStore(fileDir string) (*KeyringStore, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName:      "jammming",
		FileDir:          fileDir,
		FilePasswordFunc: keyring.FixedStringPrompt("jammming"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open keyring: %w", err)
	}
	return &KeyringStore{ring: ring}, nil
}

func (k *KeyringStore) Get(key string) (string, bool) {
	item, err := k.ring.Get(key)
	if err != nil {
		return "", false
	}
	return string(item.Data), true
}

func (k *KeyringStore) Set(key, value string) error {
	if err := k.ring.Set(keyring.Item{Key: key, Data: []byte(value)}); err != nil {
		return fmt.Errorf("failed to set %s in keyring: %w", key, err)
	}
	return nil
}

func (k *KeyringStore) Delete(key string) error {
	if err := k.ring.Remove(key); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("failed to remove %s from keyring: %w", key, err)
	}
	return nil
}

func (k *KeyringStore) Reset() error {
	keys, err := k.ring.Keys()
	if err != nil {
		return fmt.Errorf("failed to list keyring keys: %w", err)
	}
	for _, key := range keys {
		if err := k.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

func (k *KeyringStore) SaveSession(s Session) error {
	if err := k.Set(KeyAccessToken, s.AccessToken); err != nil {
		return err
	}
	if err := k.Set(KeyExpiresAt, strconv.FormatInt(s.ExpiresAt, 10)); err != nil {
		return err
	}
	if s.LoggedIn {
		return k.Set(KeyLoggedIn, "true")
	}
	return k.Delete(KeyLoggedIn)
}

func (k *KeyringStore) ClearSession() error {
	for _, key := range []string{KeyAccessToken, KeyExpiresAt, KeyLoggedIn} {
		if err := k.Delete(key); err != nil {
			return err
		}
	}
	return nil
}
