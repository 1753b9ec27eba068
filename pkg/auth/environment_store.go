package auth

import (
	"time"
)

// EnvProfile is the name under which the environment credentials are listed
const EnvProfile = "env"

// EnvironmentStore is a read-only view of the four credential variables
type EnvironmentStore struct {
	getenv func(string) string
}

// NewEnvironmentStore creates a store reading variables through getenv
func NewEnvironmentStore(getenv func(string) string) *EnvironmentStore {
	return &EnvironmentStore{getenv: getenv}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(set *CredentialSet) error {
	return ErrStoreUnavailable
}

// Retrieve returns the environment credentials for the "env" profile. All
// four variables must be set.
func (e *EnvironmentStore) Retrieve(profile string) (*CredentialSet, error) {
	if profile != EnvProfile {
		return nil, ErrCredentialsNotFound
	}

	set := &CredentialSet{
		Profile:           EnvProfile,
		ConsumerKey:       e.getenv(EnvConsumerKey),
		ConsumerSecret:    e.getenv(EnvConsumerSecret),
		AccessToken:       e.getenv(EnvAccessToken),
		AccessTokenSecret: e.getenv(EnvAccessTokenSecret),
		LastModified:      time.Now(),
	}
	if !set.Complete() {
		return nil, ErrCredentialsNotFound
	}
	return set, nil
}

// List returns the env profile if all variables are set
func (e *EnvironmentStore) List() ([]*CredentialSet, error) {
	set, err := e.Retrieve(EnvProfile)
	if err != nil {
		return []*CredentialSet{}, nil
	}
	return []*CredentialSet{set}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(profile string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials exist
func (e *EnvironmentStore) Exists(profile string) bool {
	_, err := e.Retrieve(profile)
	return err == nil
}
