package twitter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "tweetcsv/pkg/errors"
	"tweetcsv/pkg/logger"
)

func testConfig(url string) Config {
	return Config{
		ConsumerKey:       "ck",
		ConsumerSecret:    "cs",
		AccessToken:       "at",
		AccessTokenSecret: "as",
		BaseURL:           url,
		Timeout:           5 * time.Second,
		WaitOnRateLimit:   true,
	}
}

// newTestClient returns a client whose sleeps are recorded instead of taken.
func newTestClient(t *testing.T, url string, log logger.Logger) (*Client, *[]time.Duration) {
	t.Helper()
	if log == nil {
		log = logger.NewNopLogger()
	}
	c := NewClient(testConfig(url), log)
	now := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return now }
	var slept []time.Duration
	c.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return ctx.Err()
	}
	return c, &slept
}

func TestGetSignsRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		assert.True(t, strings.HasPrefix(auth, "OAuth "), auth)
		assert.Contains(t, auth, `oauth_consumer_key="ck"`)
		assert.Contains(t, auth, `oauth_token="at"`)
		assert.Contains(t, auth, `oauth_signature_method="HMAC-SHA1"`)
		assert.Equal(t, "/search/tweets.json", r.URL.Path)
		w.Write([]byte(`{"statuses":[]}`))
	}))
	defer server.Close()

	c, _ := newTestClient(t, server.URL, nil)
	body, err := c.Get(context.Background(), SearchEndpoint, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"statuses":[]}`, string(body))
}

func TestGetErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   apierrors.ErrorType
		code   int
	}{
		{"bad auth", http.StatusUnauthorized, `{"errors":[{"code":32,"message":"Could not authenticate you."}]}`, apierrors.ErrorTypeAuth, 32},
		{"not found", http.StatusNotFound, `{"errors":[{"code":34,"message":"Sorry, that page does not exist."}]}`, apierrors.ErrorTypeNotFound, 34},
		{"server", http.StatusServiceUnavailable, `over capacity`, apierrors.ErrorTypeServerError, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c, _ := newTestClient(t, server.URL, nil)
			_, err := c.Get(context.Background(), SearchEndpoint, nil)

			var apiErr *apierrors.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.want, apiErr.Type)
			assert.Equal(t, tt.status, apiErr.Code)
			if tt.code != 0 {
				assert.True(t, apiErr.HasAPICode(tt.code))
			}
		})
	}
}

func TestGetWaitsOutRateLimit(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("X-Rate-Limit-Limit", "180")
			w.Header().Set("X-Rate-Limit-Remaining", "0")
			w.Header().Set("X-Rate-Limit-Reset", strconv.Itoa(1_700_000_000+120))
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"errors":[{"code":88,"message":"Rate limit exceeded"}]}`))
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	tl := logger.NewTestLogger()
	c, slept := newTestClient(t, server.URL, tl)

	body, err := c.Get(context.Background(), SearchEndpoint, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, []time.Duration{121 * time.Second}, *slept)
	assert.Len(t, tl.GetMessagesByLevel("WARN"), 2, "one 4xx request log and one rate limit log")
}

func TestGetRateLimitWithoutResetWaitsFullWindow(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c, slept := newTestClient(t, server.URL, nil)
	_, err := c.Get(context.Background(), SearchEndpoint, nil)
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{15 * time.Minute}, *slept)
}

func TestGetRateLimitNoWait(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c, slept := newTestClient(t, server.URL, nil)
	c.wait = false

	_, err := c.Get(context.Background(), SearchEndpoint, nil)
	assert.True(t, apierrors.IsRateLimited(err))
	assert.Empty(t, *slept)
}

func TestGetWaitsWhenWindowExhausted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Rate-Limit-Remaining", "0")
		w.Header().Set("X-Rate-Limit-Reset", strconv.Itoa(1_700_000_000+30))
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c, slept := newTestClient(t, server.URL, nil)

	_, err := c.Get(context.Background(), SearchEndpoint, nil)
	require.NoError(t, err)
	assert.Empty(t, *slept, "the first request goes out immediately")

	_, err = c.Get(context.Background(), SearchEndpoint, nil)
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{31 * time.Second}, *slept)
}

func TestGetCanceledWhileWaiting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c, _ := newTestClient(t, server.URL, nil)
	ctx, cancel := context.WithCancel(context.Background())
	c.sleep = func(context.Context, time.Duration) error {
		cancel()
		return context.Canceled
	}

	_, err := c.Get(ctx, SearchEndpoint, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c, _ := newTestClient(t, url, nil)
	_, err := c.Get(context.Background(), SearchEndpoint, nil)

	var apiErr *apierrors.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierrors.ErrorTypeNetwork, apiErr.Type)
}

func TestVerifyCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/account/verify_credentials.json", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("skip_status"))
		w.Write([]byte(`{"id":42,"screen_name":"jdoe"}`))
	}))
	defer server.Close()

	c, _ := newTestClient(t, server.URL, nil)
	name, err := c.VerifyCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "jdoe", name)
}
