package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"
)

// CredentialSet holds the four OAuth 1.0a secrets of one Twitter app/user pair
type CredentialSet struct {
	Profile           string    `json:"profile"`
	ConsumerKey       string    `json:"consumer_key"`
	ConsumerSecret    string    `json:"consumer_secret"`
	AccessToken       string    `json:"access_token"`
	AccessTokenSecret string    `json:"access_token_secret"`
	LastModified      time.Time `json:"last_modified"`
}

// Missing returns the names of the secrets that are empty, in flag order.
func (c CredentialSet) Missing() []string {
	var missing []string
	if c.ConsumerKey == "" {
		missing = append(missing, "consumer key")
	}
	if c.ConsumerSecret == "" {
		missing = append(missing, "consumer secret")
	}
	if c.AccessToken == "" {
		missing = append(missing, "access token")
	}
	if c.AccessTokenSecret == "" {
		missing = append(missing, "access token secret")
	}
	return missing
}

// Complete reports whether all four secrets are present
func (c CredentialSet) Complete() bool {
	return len(c.Missing()) == 0
}

// CredentialStore is the interface for storing and retrieving credential profiles
type CredentialStore interface {
	// Store saves credentials under set.Profile
	Store(set *CredentialSet) error

	// Retrieve gets credentials for a specific profile
	Retrieve(profile string) (*CredentialSet, error)

	// List returns all stored profiles
	List() ([]*CredentialSet, error)

	// Delete removes credentials for a specific profile
	Delete(profile string) error

	// Exists checks if credentials exist for a profile
	Exists(profile string) bool
}

// Manager handles credential storage with fallback mechanisms
type Manager struct {
	stores []CredentialStore
}

// NewManager creates a credential manager backed by the system keychain (when
// available), an encrypted file in the config directory, and the environment.
func NewManager() (*Manager, error) {
	var stores []CredentialStore

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "credentials.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore)

	stores = append(stores, NewEnvironmentStore(os.Getenv))

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores creates a Manager over the given stores, tried in order
func NewManagerWithStores(stores ...CredentialStore) *Manager {
	return &Manager{stores: stores}
}

// Store saves credentials using the first store that accepts them
func (m *Manager) Store(set *CredentialSet) error {
	if set == nil || set.Profile == "" {
		return errors.New("profile name is required")
	}
	if missing := set.Missing(); len(missing) > 0 {
		return &MissingCredentialsError{Fields: missing}
	}

	set.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		err := store.Store(set)
		if err == nil {
			return nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return fmt.Errorf("failed to store credentials: %w", lastErr)
	}
	return errors.New("no available credential stores")
}

// Retrieve gets credentials from the first store that has them
func (m *Manager) Retrieve(profile string) (*CredentialSet, error) {
	for _, store := range m.stores {
		if set, err := store.Retrieve(profile); err == nil && set != nil {
			return set, nil
		}
	}
	return nil, fmt.Errorf("%w for profile: %s", ErrCredentialsNotFound, profile)
}

// List returns all stored profiles from all stores, sorted by name. When a
// profile lives in several stores the most recently modified copy wins.
func (m *Manager) List() ([]*CredentialSet, error) {
	byProfile := make(map[string]*CredentialSet)

	for _, store := range m.stores {
		sets, err := store.List()
		if err != nil {
			continue
		}
		for _, set := range sets {
			if existing, ok := byProfile[set.Profile]; !ok || set.LastModified.After(existing.LastModified) {
				byProfile[set.Profile] = set
			}
		}
	}

	result := make([]*CredentialSet, 0, len(byProfile))
	for _, set := range byProfile {
		result = append(result, set)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Profile < result[j].Profile })

	return result, nil
}

// Delete removes credentials from all stores
func (m *Manager) Delete(profile string) error {
	var deleted bool
	var lastErr error

	for _, store := range m.stores {
		if err := store.Delete(profile); err == nil {
			deleted = true
		} else {
			lastErr = err
		}
	}

	if !deleted && lastErr != nil && !errors.Is(lastErr, ErrCredentialsNotFound) && !errors.Is(lastErr, ErrStoreUnavailable) {
		return fmt.Errorf("failed to delete credentials: %w", lastErr)
	}
	if !deleted {
		return fmt.Errorf("%w for profile: %s", ErrCredentialsNotFound, profile)
	}

	return nil
}

// getConfigDir returns the configuration directory path
func getConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "tweetcsv")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "tweetcsv")
	default:
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "tweetcsv")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config", "tweetcsv")
		}
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// SanitizeProfile creates a copy of the set with every secret masked
func SanitizeProfile(set *CredentialSet) *CredentialSet {
	if set == nil {
		return nil
	}

	return &CredentialSet{
		Profile:           set.Profile,
		ConsumerKey:       maskString(set.ConsumerKey),
		ConsumerSecret:    maskString(set.ConsumerSecret),
		AccessToken:       maskString(set.AccessToken),
		AccessTokenSecret: maskString(set.AccessTokenSecret),
		LastModified:      set.LastModified,
	}
}

// maskString masks all but the first 4 and last 4 characters of a string
func maskString(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

var (
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
)
