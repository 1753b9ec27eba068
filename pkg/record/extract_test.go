package record

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rawPost = `{
  "created_at": "Mon Jul 02 10:00:00 +0000 2018",
  "id": 1013753016018980864,
  "id_str": "1013753016018980864",
  "full_text": "Hello, \"world\"\nIt's #golang",
  "metadata": {"result_type": "recent", "iso_language_code": "en"},
  "retweeted": false,
  "retweet_count": 7,
  "user": {
    "id": 42,
    "name": "Jane, Doe",
    "screen_name": "jdoe",
    "location": "Paris, France",
    "friends_count": 10,
    "followers_count": 0
  }
}`

func TestExtract(t *testing.T) {
	got, err := Extract([]byte(rawPost))
	require.NoError(t, err)

	want := Record{
		CreatedAt:      "Mon Jul 02 10:00:00 +0000 2018",
		ID:             "1013753016018980864",
		FullText:       "Hello worldIts #golang",
		ResultType:     "recent",
		Language:       "en",
		UserID:         "42",
		PermalinkURL:   "https://twitter.com/jdoe/status/1013753016018980864",
		UserName:       "Jane Doe",
		ScreenName:     "jdoe",
		Location:       "Paris France",
		FriendsCount:   "10",
		Retweeted:      "False",
		RetweetCount:   "7",
		FollowersCount: "0",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractDefaults(t *testing.T) {
	raw := strings.NewReplacer(
		`"location": "Paris, France"`, `"location": ""`,
		`"friends_count": 10`, `"friends_count": ""`,
		`"retweet_count": 7`, `"retweet_count": null`,
		`"retweeted": false`, `"retweeted": true`,
	).Replace(rawPost)

	got, err := Extract([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, "NULL", got.Location)
	assert.Equal(t, "0", got.FriendsCount)
	assert.Equal(t, "0", got.RetweetCount)
	assert.Equal(t, "True", got.Retweeted)
}

func TestExtractLocationOnlyPunctuationBecomesNull(t *testing.T) {
	raw := strings.Replace(rawPost, `"location": "Paris, France"`, `"location": ",,'\t"`, 1)

	got, err := Extract([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "NULL", got.Location)
}

func TestExtractNormalizesText(t *testing.T) {
	// "e" followed by a combining acute accent composes to U+00E9.
	raw := strings.Replace(rawPost, `"full_text": "Hello, \"world\"\nIt's #golang"`, `"full_text": "cafe\u0301"`, 1)

	got, err := Extract([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "caf\u00e9", got.FullText)
}

func TestExtractMissingField(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		path string
	}{
		{"no id", strings.Replace(rawPost, `"id": 1013753016018980864,`, "", 1), PathID},
		{"no metadata", strings.Replace(rawPost, `"metadata": {"result_type": "recent", "iso_language_code": "en"},`, "", 1), PathResultType},
		{"no followers", strings.Replace(rawPost, `,
    "followers_count": 0`, "", 1), PathFollowersCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract([]byte(tt.raw))

			var missing *MissingFieldError
			require.True(t, errors.As(err, &missing), "got %v", err)
			assert.Equal(t, tt.path, missing.Path)
		})
	}
}

func TestExtractInvalidJSON(t *testing.T) {
	_, err := Extract([]byte(`{"id": `))
	assert.ErrorIs(t, err, ErrInvalidJSON)

	_, err = Extract([]byte(`[1, 2]`))
	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestPermalink(t *testing.T) {
	assert.Equal(t, "https://twitter.com/jdoe/status/123", Permalink("jdoe", "123"))
}

func TestHeader(t *testing.T) {
	want := []string{
		"created_at", "id", "full_text", "result_type", "language", "user_id", "permalink_url",
		"user_name", "screen_name", "location", "friends_count", "retweeted", "retweet_count", "followers_count",
	}
	assert.Equal(t, want, Header())

	h := Header()
	h[0] = "changed"
	assert.Equal(t, "created_at", Header()[0])
}

func TestDDL(t *testing.T) {
	ddl := DDL("tweets")

	assert.True(t, strings.HasPrefix(ddl, "CREATE EXTERNAL TABLE IF NOT EXISTS tweets ("))
	assert.Contains(t, ddl, "  created_at STRING,\n")
	assert.Contains(t, ddl, "  followers_count STRING\n)")
}
