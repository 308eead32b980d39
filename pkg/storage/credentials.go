package storage

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/zalando/go-keyring"
)

// DefaultKeyringService is the keyring service name botflow stores its
// session under.
const DefaultKeyringService = "botflow"

// CredentialStore stores secrets by key.
type CredentialStore interface {
	// Set stores a credential securely
	Set(key, value string) error
	// Get retrieves a credential, returning ErrNotFound if absent
	Get(key string) (string, error)
	// Delete removes a credential. Deleting a missing key is not an error.
	Delete(key string) error
}

// KeyringCredentialStore implements CredentialStore using the system keyring.
// - macOS: Uses Keychain
// - Windows: Uses Credential Manager
// - Linux: Uses Secret Service (GNOME Keyring, KWallet)
type KeyringCredentialStore struct {
	service string
}

// NewKeyringCredentialStore creates a store under the given service name.
// An empty name selects DefaultKeyringService.
func NewKeyringCredentialStore(service string) *KeyringCredentialStore {
	if service == "" {
		service = DefaultKeyringService
	}
	return &KeyringCredentialStore{service: service}
}

// Set stores a credential in the system keyring. The key is the account
// name and value the password.
func (s *KeyringCredentialStore) Set(key, value string) error {
	if key == "" {
		return fmt.Errorf("credential key cannot be empty")
	}
	if err := keyring.Set(s.service, key, value); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}
	return nil
}

// Get retrieves a credential from the system keyring.
func (s *KeyringCredentialStore) Get(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("credential key cannot be empty")
	}
	value, err := keyring.Get(s.service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("credential %s: %w", key, ErrNotFound)
		}
		return "", fmt.Errorf("failed to retrieve credential: %w", err)
	}
	return value, nil
}

// Delete removes a credential from the system keyring.
func (s *KeyringCredentialStore) Delete(key string) error {
	if key == "" {
		return fmt.Errorf("credential key cannot be empty")
	}
	if err := keyring.Delete(s.service, key); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}

// MemoryCredentialStore keeps credentials in process memory. It is used in
// tests and when no keyring is available.
type MemoryCredentialStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryCredentialStore returns an empty store.
func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{data: make(map[string]string)}
}

func (s *MemoryCredentialStore) Set(key, value string) error {
	if key == "" {
		return fmt.Errorf("credential key cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *MemoryCredentialStore) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return "", fmt.Errorf("credential %s: %w", key, ErrNotFound)
	}
	return v, nil
}

func (s *MemoryCredentialStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Keys returns the stored keys in sorted order.
func (s *MemoryCredentialStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.data))
}
