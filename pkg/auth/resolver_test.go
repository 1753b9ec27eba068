package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveExplicitNeverReadsEnvironment(t *testing.T) {
	getenv := func(k string) string {
		t.Fatalf("environment read for %s", k)
		return ""
	}

	res, err := Resolve(Params{
		Hashtag:           "golang",
		ConsumerKey:       "ck",
		ConsumerSecret:    "cs",
		AccessToken:       "at",
		AccessTokenSecret: "as",
	}, getenv)

	require.NoError(t, err)
	assert.Equal(t, "#golang", res.Hashtag)
	assert.Equal(t, "as", res.Credentials.AccessTokenSecret)
	assert.Empty(t, res.FromEnv)
}

func TestResolveFromEnvironment(t *testing.T) {
	res, err := Resolve(Params{}, envFrom(map[string]string{
		EnvConsumerKey:       "ck",
		EnvConsumerSecret:    "cs",
		EnvAccessToken:       "at",
		EnvAccessTokenSecret: "as",
	}))

	require.NoError(t, err)
	assert.Equal(t, DefaultHashtag, res.Hashtag)
	assert.Equal(t, CredentialSet{ConsumerKey: "ck", ConsumerSecret: "cs", AccessToken: "at", AccessTokenSecret: "as"}, res.Credentials)
	assert.Len(t, res.FromEnv, 4)
}

func TestResolveExplicitOverridesEnvironment(t *testing.T) {
	res, err := Resolve(Params{ConsumerKey: "flag"}, envFrom(map[string]string{
		EnvConsumerKey:       "env",
		EnvConsumerSecret:    "cs",
		EnvAccessToken:       "at",
		EnvAccessTokenSecret: "as",
	}))

	require.NoError(t, err)
	assert.Equal(t, "flag", res.Credentials.ConsumerKey)
	assert.NotContains(t, res.FromEnv, EnvConsumerKey)
}

func TestResolveMissing(t *testing.T) {
	_, err := Resolve(Params{ConsumerKey: "ck"}, envFrom(map[string]string{EnvAccessToken: "at"}))

	var missing *MissingCredentialsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"consumer secret", "access token secret"}, missing.Fields)
	assert.EqualError(t, err, "missing credentials: consumer secret, access token secret")
}

func TestResolveFromProfile(t *testing.T) {
	profiles := NewMockStore()
	require.NoError(t, profiles.Store(testSet("work")))

	r := &Resolver{
		Getenv:   envFrom(map[string]string{EnvConsumerKey: "env_key"}),
		Profiles: profiles,
		Profile:  "work",
	}
	res, err := r.Resolve(Params{AccessToken: "flag_token"})

	require.NoError(t, err)
	assert.Equal(t, "env_key", res.Credentials.ConsumerKey)
	assert.Equal(t, "flag_token", res.Credentials.AccessToken)
	assert.Equal(t, "consumer_secret_123456", res.Credentials.ConsumerSecret)
	assert.Equal(t, "work", res.FromProfile)
	assert.Equal(t, "work", res.Credentials.Profile)
}

func TestResolveProfileIgnoredWithoutName(t *testing.T) {
	profiles := NewMockStore()
	require.NoError(t, profiles.Store(testSet("work")))

	r := &Resolver{Getenv: envFrom(nil), Profiles: profiles}
	_, err := r.Resolve(Params{})

	var missing *MissingCredentialsError
	assert.ErrorAs(t, err, &missing)
}

func TestResolveUnknownProfile(t *testing.T) {
	r := &Resolver{Getenv: envFrom(nil), Profiles: NewMockStore(), Profile: "ghost"}
	_, err := r.Resolve(Params{})

	assert.True(t, errors.Is(err, ErrCredentialsNotFound))
}

func TestNormalizeHashtag(t *testing.T) {
	tests := map[string]string{
		"":        "#donaldtrump",
		"   ":     "#donaldtrump",
		"foo":     "#foo",
		"#foo":    "#foo",
		"##foo":   "#foo",
		" golang": "#golang",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeHashtag(in), "input %q", in)
	}
}
