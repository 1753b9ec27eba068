package auth

import (
	"sync"
)

// MockStore implements CredentialStore for testing purposes
type MockStore struct {
	sets map[string]*CredentialSet
	mu   sync.RWMutex

	// Error injection for testing
	StoreError    error
	RetrieveError error
	ListError     error
	DeleteError   error
}

// NewMockStore creates a new mock credential store
func NewMockStore() *MockStore {
	return &MockStore{
		sets: make(map[string]*CredentialSet),
	}
}

// Store saves credentials to the mock store
func (m *MockStore) Store(set *CredentialSet) error {
	if m.StoreError != nil {
		return m.StoreError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if set == nil || set.Profile == "" {
		return ErrInvalidCredentials
	}

	cp := *set
	m.sets[set.Profile] = &cp

	return nil
}

// Retrieve gets credentials from the mock store
func (m *MockStore) Retrieve(profile string) (*CredentialSet, error) {
	if m.RetrieveError != nil {
		return nil, m.RetrieveError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if profile == "" {
		return nil, ErrInvalidCredentials
	}

	set, exists := m.sets[profile]
	if !exists {
		return nil, ErrCredentialsNotFound
	}

	cp := *set
	return &cp, nil
}

// List returns all stored profiles
func (m *MockStore) List() ([]*CredentialSet, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var sets []*CredentialSet
	for _, set := range m.sets {
		cp := *set
		sets = append(sets, &cp)
	}

	return sets, nil
}

// Delete removes credentials from the mock store
func (m *MockStore) Delete(profile string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if profile == "" {
		return ErrInvalidCredentials
	}

	if _, exists := m.sets[profile]; !exists {
		return ErrCredentialsNotFound
	}

	delete(m.sets, profile)
	return nil
}

// Exists checks if credentials exist in the mock store
func (m *MockStore) Exists(profile string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.sets[profile]
	return exists
}

// Clear removes all profiles from the mock store
func (m *MockStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sets = make(map[string]*CredentialSet)
}

// Count returns the number of stored profiles
func (m *MockStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sets)
}

// NewMockManager creates a Manager with a single mock store for testing
func NewMockManager() (*Manager, *MockStore) {
	mockStore := NewMockStore()
	return NewManagerWithStores(mockStore), mockStore
}
