// Package twittertest provides a stub of the Twitter v1.1 search API for
// tests. It paginates a fixed timeline the way the real endpoint does, with
// max_id cursors in search_metadata.next_results.
package twittertest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// Tweet is one post of the stub timeline.
type Tweet struct {
	ID   int64
	Text string
	// ScreenName defaults to "jdoe".
	ScreenName string
	Location   string
}

// JSON renders the tweet as an extended-mode search result.
func (t Tweet) JSON() json.RawMessage {
	screen := t.ScreenName
	if screen == "" {
		screen = "jdoe"
	}
	body, _ := json.Marshal(map[string]interface{}{
		"created_at": "Mon Jul 02 10:00:00 +0000 2018",
		"id":         t.ID,
		"id_str":     strconv.FormatInt(t.ID, 10),
		"full_text":  t.Text,
		"metadata": map[string]string{
			"result_type":       "recent",
			"iso_language_code": "en",
		},
		"retweeted":     false,
		"retweet_count": 0,
		"user": map[string]interface{}{
			"id":              7,
			"name":            "Jane Doe",
			"screen_name":     screen,
			"location":        t.Location,
			"friends_count":   1,
			"followers_count": 2,
		},
	})
	return body
}

// GenerateTweets returns n tweets with ids n down to 1.
func GenerateTweets(n int) []Tweet {
	tweets := make([]Tweet, n)
	for i := range tweets {
		id := int64(n - i)
		tweets[i] = Tweet{ID: id, Text: fmt.Sprintf("tweet %d", id)}
	}
	return tweets
}

// Server simulates the search and verify_credentials endpoints.
type Server struct {
	server *httptest.Server

	mu       sync.Mutex
	tweets   []Tweet
	pageSize int
	failures map[int]int
	limited  int
	queries  []url.Values

	requestCount  int32
	rateLimitHits int32
}

// NewServer starts a stub serving tweets, newest (highest id) first.
func NewServer(tweets ...Tweet) *Server {
	sorted := append([]Tweet(nil), tweets...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID > sorted[j].ID })

	s := &Server{
		tweets:   sorted,
		failures: make(map[int]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/search/tweets.json", s.handleSearch)
	mux.HandleFunc("/account/verify_credentials.json", s.handleVerify)
	s.server = httptest.NewServer(mux)
	return s
}

// URL returns the base URL to use as the client's API base.
func (s *Server) URL() string {
	return s.server.URL
}

// Close shuts down the server
func (s *Server) Close() {
	s.server.Close()
}

// SetPageSize caps every page below the requested count.
func (s *Server) SetPageSize(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageSize = n
}

// FailRequest makes the nth search request (1-based) answer with status.
func (s *Server) FailRequest(n, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[n] = status
}

// EnableRateLimitForRequests answers the next count search requests with 429
// and a reset time that has already passed.
func (s *Server) EnableRateLimitForRequests(count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limited = count
}

// RequestCount returns the number of search requests served
func (s *Server) RequestCount() int {
	return int(atomic.LoadInt32(&s.requestCount))
}

// RateLimitHits returns the number of 429 responses sent
func (s *Server) RateLimitHits() int {
	return int(atomic.LoadInt32(&s.rateLimitHits))
}

// Queries returns the query of every search request in order.
func (s *Server) Queries() []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]url.Values(nil), s.queries...)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	n := int(atomic.AddInt32(&s.requestCount, 1))
	q := r.URL.Query()

	s.mu.Lock()
	s.queries = append(s.queries, q)
	status := s.failures[n]
	limited := s.limited > 0
	if limited {
		s.limited--
	}
	pageSize := s.pageSize
	s.mu.Unlock()

	if limited {
		atomic.AddInt32(&s.rateLimitHits, 1)
		w.Header().Set("X-Rate-Limit-Limit", "180")
		w.Header().Set("X-Rate-Limit-Remaining", "0")
		w.Header().Set("X-Rate-Limit-Reset", strconv.FormatInt(time.Now().Add(-time.Second).Unix(), 10))
		sendError(w, http.StatusTooManyRequests)
		return
	}
	if status != 0 {
		sendError(w, status)
		return
	}

	count, _ := strconv.Atoi(q.Get("count"))
	if count <= 0 {
		count = 15
	}
	if pageSize > 0 && pageSize < count {
		count = pageSize
	}
	maxID := int64(-1)
	if v := q.Get("max_id"); v != "" {
		maxID, _ = strconv.ParseInt(v, 10, 64)
	}

	statuses := []json.RawMessage{}
	var last int64
	more := false
	for _, t := range s.tweets {
		if maxID >= 0 && t.ID > maxID {
			continue
		}
		if len(statuses) == count {
			more = true
			break
		}
		statuses = append(statuses, t.JSON())
		last = t.ID
	}

	meta := map[string]interface{}{
		"count": count,
		"query": url.QueryEscape(q.Get("q")),
	}
	if more {
		next := url.Values{
			"max_id":           {strconv.FormatInt(last-1, 10)},
			"q":                {q.Get("q")},
			"count":            {strconv.Itoa(count)},
			"include_entities": {"1"},
		}
		meta["next_results"] = "?" + next.Encode()
	}

	remaining := 180 - n
	if remaining < 1 {
		remaining = 1
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Rate-Limit-Limit", "180")
	w.Header().Set("X-Rate-Limit-Remaining", strconv.Itoa(remaining))
	w.Header().Set("X-Rate-Limit-Reset", strconv.FormatInt(time.Now().Add(15*time.Minute).Unix(), 10))
	json.NewEncoder(w).Encode(map[string]interface{}{
		"statuses":        statuses,
		"search_metadata": meta,
	})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"id_str":"7","screen_name":"jdoe"}`))
}

// sendError writes the API's {"errors":[...]} body for status.
func sendError(w http.ResponseWriter, status int) {
	code, message := 131, "Internal error"
	switch status {
	case http.StatusUnauthorized:
		code, message = 32, "Could not authenticate you."
	case http.StatusTooManyRequests:
		code, message = 88, "Rate limit exceeded"
	case http.StatusNotFound:
		code, message = 34, "Sorry, that page does not exist."
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"errors": []map[string]interface{}{{"code": code, "message": message}},
	})
}
