package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tweetcsv/pkg/record"
)

func sampleRecord(id string) record.Record {
	return record.Record{
		CreatedAt:      "Mon Jul 02 10:00:00 +0000 2018",
		ID:             id,
		FullText:       "hello #golang",
		ResultType:     "recent",
		Language:       "en",
		UserID:         "42",
		PermalinkURL:   record.Permalink("jdoe", id),
		UserName:       "Jane Doe",
		ScreenName:     "jdoe",
		Location:       "NULL",
		FriendsCount:   "0",
		Retweeted:      "False",
		RetweetCount:   "3",
		FollowersCount: "9",
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "Foo-tweets.csv", FileName("#Foo"))
	assert.Equal(t, "golang-tweets.csv", FileName("golang"))
}

func TestAppend(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w, err := NewCSVWriter(dir, "#Foo")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Foo-tweets.csv"), w.Path())

	_, err = os.Stat(w.Path())
	assert.True(t, os.IsNotExist(err), "file must not exist before the first append")

	require.NoError(t, w.Append(sampleRecord("1")))
	require.NoError(t, w.Append(sampleRecord("2")))

	data, err := os.ReadFile(w.Path())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Mon Jul 02 10:00:00 +0000 2018,1,hello #golang,recent,en,42,https://twitter.com/jdoe/status/1,Jane Doe,jdoe,NULL,0,False,3,9", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Mon Jul 02 10:00:00 +0000 2018,2,"))

	n, err := w.Rows()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestAppendAccumulatesAcrossWriters(t *testing.T) {
	dir := t.TempDir()

	first, err := NewCSVWriter(dir, "#golang")
	require.NoError(t, err)
	require.NoError(t, first.Append(sampleRecord("1")))

	second, err := NewCSVWriter(dir, "golang")
	require.NoError(t, err)
	require.NoError(t, second.Append(sampleRecord("1")))

	recs, err := ReadAll(second.Path())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, sampleRecord("1"), recs[0])
	assert.Equal(t, recs[0], recs[1], "duplicates are kept")
}

func TestRowsMissingFile(t *testing.T) {
	w, err := NewCSVWriter(t.TempDir(), "#none")
	require.NoError(t, err)

	n, err := w.Rows()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAppendLeadingSpaceRoundTrips(t *testing.T) {
	w, err := NewCSVWriter(t.TempDir(), "#golang")
	require.NoError(t, err)

	rec := sampleRecord("1")
	rec.FullText = " leading space"
	require.NoError(t, w.Append(rec))

	recs, err := ReadAll(w.Path())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, " leading space", recs[0].FullText)
}

func TestAppendLeavesLeadingSpacesUnquoted(t *testing.T) {
	w, err := NewCSVWriter(t.TempDir(), "#golang")
	require.NoError(t, err)

	raw := []byte(`{
		"created_at": "x",
		"id": 1,
		"full_text": "\n hello",
		"metadata": {"result_type": "recent", "iso_language_code": "en"},
		"user": {"id": 2, "name": " Jane", "screen_name": "jdoe", "location": " Paris", "friends_count": 1, "followers_count": 1},
		"retweeted": false,
		"retweet_count": 0
	}`)
	rec, err := record.Extract(raw)
	require.NoError(t, err)
	require.NoError(t, w.Append(rec))

	data, err := os.ReadFile(w.Path())
	require.NoError(t, err)
	assert.Equal(t, "x,1, hello,recent,en,2,https://twitter.com/jdoe/status/1, Jane,jdoe, Paris,1,False,0,1\n", string(data))
	assert.NotContains(t, string(data), `"`)
}

func TestRowWriterQuotesDelimiters(t *testing.T) {
	var b strings.Builder
	rw := &rowWriter{w: &b}

	require.NoError(t, rw.Write([]string{"a,b", `say "hi"`, "line\nbreak", " plain", `\.`}))
	assert.Equal(t, "\"a,b\",\"say \"\"hi\"\"\",\"line\nbreak\", plain,\\.\n", b.String())
}

func TestAppendFailsOnUnwritablePath(t *testing.T) {
	dir := t.TempDir()
	w, err := NewCSVWriter(dir, "#golang")
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(w.Path(), 0755))

	assert.ErrorContains(t, w.Append(sampleRecord("1")), "failed to open output file")
}
