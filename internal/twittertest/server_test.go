package twittertest

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type page struct {
	Statuses []struct {
		IDStr string `json:"id_str"`
	} `json:"statuses"`
	SearchMetadata struct {
		NextResults string `json:"next_results"`
	} `json:"search_metadata"`
}

func get(t *testing.T, s *Server, query string) (*http.Response, page) {
	t.Helper()
	resp, err := http.Get(s.URL() + "/search/tweets.json" + query)
	require.NoError(t, err)
	defer resp.Body.Close()

	var p page
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	}
	return resp, p
}

func ids(p page) []string {
	var out []string
	for _, s := range p.Statuses {
		out = append(out, s.IDStr)
	}
	return out
}

func TestServerPaginatesWithMaxID(t *testing.T) {
	s := NewServer(GenerateTweets(5)...)
	defer s.Close()

	_, first := get(t, s, "?q=%23golang&count=2")
	assert.Equal(t, []string{"5", "4"}, ids(first))
	require.NotEmpty(t, first.SearchMetadata.NextResults)

	next, err := url.ParseQuery(first.SearchMetadata.NextResults[1:])
	require.NoError(t, err)
	assert.Equal(t, "3", next.Get("max_id"))
	assert.Equal(t, "#golang", next.Get("q"))

	_, second := get(t, s, first.SearchMetadata.NextResults)
	assert.Equal(t, []string{"3", "2"}, ids(second))

	_, third := get(t, s, second.SearchMetadata.NextResults)
	assert.Equal(t, []string{"1"}, ids(third))
	assert.Empty(t, third.SearchMetadata.NextResults)

	assert.Equal(t, 3, s.RequestCount())
	assert.Len(t, s.Queries(), 3)
}

func TestServerFailuresAndRateLimit(t *testing.T) {
	s := NewServer(GenerateTweets(1)...)
	defer s.Close()
	s.EnableRateLimitForRequests(1)
	s.FailRequest(2, http.StatusUnauthorized)

	resp, _ := get(t, s, "?q=x")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "0", resp.Header.Get("X-Rate-Limit-Remaining"))

	resp, _ = get(t, s, "?q=x")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, p := get(t, s, "?q=x")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"1"}, ids(p))
	assert.Equal(t, 1, s.RateLimitHits())
}

func TestTweetJSON(t *testing.T) {
	var v map[string]interface{}
	require.NoError(t, json.Unmarshal(Tweet{ID: 9, Text: "hi"}.JSON(), &v))

	assert.Equal(t, "9", v["id_str"])
	assert.Equal(t, "hi", v["full_text"])
	assert.Equal(t, "jdoe", v["user"].(map[string]interface{})["screen_name"])
}
