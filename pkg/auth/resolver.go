package auth

import (
	"fmt"
	"os"
	"strings"
)

// DefaultHashtag is searched when the caller supplies none.
const DefaultHashtag = "#donaldtrump"

// Environment variables consulted for secrets that were not given explicitly.
const (
	EnvConsumerKey       = "CONSUMER_KEY"
	EnvConsumerSecret    = "CONSUMER_SECRET"
	EnvAccessToken       = "ACCESS_TOKEN"
	EnvAccessTokenSecret = "ACCESS_TOKEN_SECRET"
)

// Params are the explicitly supplied inputs. An empty string means the value
// was not supplied.
type Params struct {
	Hashtag           string
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string
}

// Resolution is a validated hashtag plus a complete credential set.
type Resolution struct {
	Hashtag     string
	Credentials CredentialSet

	// FromEnv lists the secrets that came from the environment.
	FromEnv []string
	// FromProfile is set when a stored profile filled at least one secret.
	FromProfile string
}

// MissingCredentialsError is returned when a secret is still empty after
// every fallback.
type MissingCredentialsError struct {
	Fields []string
}

func (e *MissingCredentialsError) Error() string {
	return fmt.Sprintf("missing credentials: %s", strings.Join(e.Fields, ", "))
}

// ProfileSource looks up a stored credential profile.
type ProfileSource interface {
	Retrieve(profile string) (*CredentialSet, error)
}

// Resolver turns Params into a Resolution. Explicit values win; the
// environment fills the gaps; a named stored profile fills what is left.
type Resolver struct {
	Getenv   func(string) string
	Profiles ProfileSource
	Profile  string
}

// NewResolver returns a Resolver reading the process environment.
func NewResolver() *Resolver {
	return &Resolver{Getenv: os.Getenv}
}

// Resolve applies the fallbacks without touching the network.
func Resolve(p Params, getenv func(string) string) (Resolution, error) {
	return (&Resolver{Getenv: getenv}).Resolve(p)
}

// Resolve applies the fallbacks. The environment is only read for secrets
// that were not supplied.
func (r *Resolver) Resolve(p Params) (Resolution, error) {
	res := Resolution{
		Hashtag: NormalizeHashtag(p.Hashtag),
		Credentials: CredentialSet{
			ConsumerKey:       p.ConsumerKey,
			ConsumerSecret:    p.ConsumerSecret,
			AccessToken:       p.AccessToken,
			AccessTokenSecret: p.AccessTokenSecret,
		},
	}

	getenv := r.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	c := &res.Credentials
	fill := func(dst *string, env string) {
		if *dst != "" {
			return
		}
		if v := getenv(env); v != "" {
			*dst = v
			res.FromEnv = append(res.FromEnv, env)
		}
	}
	fill(&c.ConsumerKey, EnvConsumerKey)
	fill(&c.ConsumerSecret, EnvConsumerSecret)
	fill(&c.AccessToken, EnvAccessToken)
	fill(&c.AccessTokenSecret, EnvAccessTokenSecret)

	if !c.Complete() && r.Profile != "" && r.Profiles != nil {
		stored, err := r.Profiles.Retrieve(r.Profile)
		if err != nil {
			return res, fmt.Errorf("load profile %q: %w", r.Profile, err)
		}
		if fillFromProfile(c, stored) {
			res.FromProfile = r.Profile
		}
	}

	if missing := c.Missing(); len(missing) > 0 {
		return res, &MissingCredentialsError{Fields: missing}
	}
	c.Profile = r.Profile
	return res, nil
}

func fillFromProfile(dst *CredentialSet, src *CredentialSet) bool {
	var used bool
	for _, f := range []struct{ dst, src *string }{
		{&dst.ConsumerKey, &src.ConsumerKey},
		{&dst.ConsumerSecret, &src.ConsumerSecret},
		{&dst.AccessToken, &src.AccessToken},
		{&dst.AccessTokenSecret, &src.AccessTokenSecret},
	} {
		if *f.dst == "" && *f.src != "" {
			*f.dst = *f.src
			used = true
		}
	}
	return used
}

// NormalizeHashtag returns the search term with exactly one leading '#'.
// An empty term becomes DefaultHashtag.
func NormalizeHashtag(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultHashtag
	}
	return "#" + strings.TrimLeft(s, "#")
}
