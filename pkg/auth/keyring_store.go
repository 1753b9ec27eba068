package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "tweetcsv"
	keyringPrefix  = "profile_"
	keyringIndex   = "profiles"
)

// KeyringStore implements CredentialStore using the system keychain. The
// keychain cannot enumerate entries, so profile names are kept in an index
// entry of their own.
type KeyringStore struct {
	mu sync.Mutex
}

// NewKeyringStore creates a new keyring-based credential store
func NewKeyringStore() (*KeyringStore, error) {
	testKey := "test_availability"
	if err := keyring.Set(keyringService, testKey, "test"); err != nil {
		return nil, fmt.Errorf("keyring not available: %w", err)
	}
	_ = keyring.Delete(keyringService, testKey)

	return &KeyringStore{}, nil
}

// Store saves credentials to the system keychain
func (k *KeyringStore) Store(set *CredentialSet) error {
	if set == nil || set.Profile == "" {
		return ErrInvalidCredentials
	}

	data, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if err := keyring.Set(keyringService, keyringPrefix+set.Profile, string(data)); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}
	return k.updateIndex(func(names map[string]bool) { names[set.Profile] = true })
}

// Retrieve gets credentials from the system keychain
func (k *KeyringStore) Retrieve(profile string) (*CredentialSet, error) {
	if profile == "" {
		return nil, ErrInvalidCredentials
	}

	data, err := keyring.Get(keyringService, keyringPrefix+profile)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrCredentialsNotFound
		}
		return nil, fmt.Errorf("failed to retrieve from keyring: %w", err)
	}

	var set CredentialSet
	if err := json.Unmarshal([]byte(data), &set); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credentials: %w", err)
	}

	return &set, nil
}

// List returns every profile named in the index
func (k *KeyringStore) List() ([]*CredentialSet, error) {
	names, err := k.index()
	if err != nil {
		return nil, err
	}

	sets := make([]*CredentialSet, 0, len(names))
	for _, name := range names {
		set, err := k.Retrieve(name)
		if err != nil {
			continue
		}
		sets = append(sets, set)
	}
	return sets, nil
}

// Delete removes credentials from the system keychain
func (k *KeyringStore) Delete(profile string) error {
	if profile == "" {
		return ErrInvalidCredentials
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if err := keyring.Delete(keyringService, keyringPrefix+profile); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrCredentialsNotFound
		}
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	return k.updateIndex(func(names map[string]bool) { delete(names, profile) })
}

// Exists checks if credentials exist in the keychain
func (k *KeyringStore) Exists(profile string) bool {
	if profile == "" {
		return false
	}
	_, err := keyring.Get(keyringService, keyringPrefix+profile)
	return err == nil
}

func (k *KeyringStore) index() ([]string, error) {
	data, err := keyring.Get(keyringService, keyringIndex)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read keyring index: %w", err)
	}
	if data == "" {
		return nil, nil
	}
	return strings.Split(data, "\n"), nil
}

func (k *KeyringStore) updateIndex(update func(map[string]bool)) error {
	current, err := k.index()
	if err != nil {
		return err
	}
	names := make(map[string]bool, len(current))
	for _, name := range current {
		names[name] = true
	}
	update(names)

	list := make([]string, 0, len(names))
	for name := range names {
		list = append(list, name)
	}
	if len(list) == 0 {
		err := keyring.Delete(keyringService, keyringIndex)
		if errors.Is(err, keyring.ErrNotFound) {
			return nil
		}
		return err
	}
	return keyring.Set(keyringService, keyringIndex, strings.Join(list, "\n"))
}
